package config

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/lexibuild/internal/domain"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Assembly.validate(); err != nil {
		return fmt.Errorf("assembly: %w", err)
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if err := s.validate(); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
		if seen[s.Abbrev] {
			return fmt.Errorf("sources[%d]: duplicate abbrev %q: %w", i, s.Abbrev, domain.ErrValidation)
		}
		seen[s.Abbrev] = true
	}

	if c.Database.Enabled() && c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database: min_conns (%d) exceeds max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	for pos, paradigm := range c.Paradigms {
		if strings.TrimSpace(pos) == "" || strings.TrimSpace(paradigm) == "" {
			return fmt.Errorf("paradigms: %w", domain.NewValidationError(pos, "empty pos or paradigm"))
		}
	}

	return nil
}

func (a *AssemblyConfig) validate() error {
	if strings.TrimSpace(a.OutputPath) == "" {
		return domain.NewValidationError("output_path", "required")
	}
	switch a.Descriptor {
	case DescriptorParadigm, DescriptorPOS:
	default:
		return domain.NewValidationError("descriptor", fmt.Sprintf("must be %q or %q (got %q)", DescriptorParadigm, DescriptorPOS, a.Descriptor))
	}
	for _, tag := range a.LexicalTags {
		if !IsTag(tag) {
			return domain.NewValidationError("lexical_tags", fmt.Sprintf("%q is not a tag", tag))
		}
	}
	return nil
}

func (s SourceConfig) validate() error {
	var errs []domain.FieldError
	if strings.TrimSpace(s.Abbrev) == "" {
		errs = append(errs, domain.FieldError{Field: "abbrev", Message: "required"})
	}
	if s.Format != FormatJSONL && s.Format != FormatTSV {
		errs = append(errs, domain.FieldError{Field: "format", Message: fmt.Sprintf("must be %q or %q", FormatJSONL, FormatTSV)})
	}
	if strings.TrimSpace(s.Path) == "" {
		errs = append(errs, domain.FieldError{Field: "path", Message: "required"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// IsTag reports whether s looks like an analysis tag: "+V" or "IC+".
func IsTag(s string) bool {
	if len(s) < 2 {
		return false
	}
	return strings.HasPrefix(s, "+") != strings.HasSuffix(s, "+")
}
