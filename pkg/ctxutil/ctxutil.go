package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	buildIDKey ctxKey = "build_id"
	phaseKey   ctxKey = "phase"
)

// WithBuildID stores the build ID in the context.
func WithBuildID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, buildIDKey, id)
}

// BuildIDFromCtx extracts the build ID from the context.
// Returns uuid.Nil and false if the value is missing, nil UUID, or wrong type.
func BuildIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(buildIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// WithPhase stores the name of the running import phase in the context.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, phaseKey, phase)
}

// PhaseFromCtx extracts the phase name from the context.
// Returns an empty string if absent.
func PhaseFromCtx(ctx context.Context) string {
	phase, _ := ctx.Value(phaseKey).(string)
	return phase
}
