// Package slug derives URL-safe identifiers from headwords and generates the
// short "@"-prefixed suffixes that keep homograph slugs apart.
package slug

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/heartmarshall/lexibuild/internal/domain"
)

var separatorRe = regexp.MustCompile(`[/\\ ]+`)

// Base replaces runs of "/", "\" and space in head with a single underscore.
func Base(head string) string {
	return separatorRe.ReplaceAllString(head, "_")
}

// Disambiguate returns one suffix per descriptor, in input order. A single
// descriptor needs no suffix and gets "". Otherwise each item is settled by
// the first tier that tells it apart from the other unsettled items:
//
//  1. first character of the lower-cased descriptor
//  2. lower-cased descriptor up to its first "-"
//  3. whole lower-cased descriptor
//  4. enumeration: "<descriptor>.<n>", or "<n>" for an empty descriptor
//
// Items with an empty descriptor only take part in tier 4. Enumeration skips
// any n whose token an earlier tier already produced.
func Disambiguate(descriptors []string) ([]string, error) {
	if len(descriptors) <= 1 {
		return make([]string, len(descriptors)), nil
	}

	d := disambiguator{
		lowered:  make([]string, len(descriptors)),
		assigned: make([]string, len(descriptors)),
		used:     make(map[string]bool, len(descriptors)),
	}
	for i, desc := range descriptors {
		d.lowered[i] = strings.ToLower(desc)
	}

	tiers := []func(string) string{generalClass, specificClass, fullDescriptor}
	for _, key := range tiers {
		if err := d.tier(key); err != nil {
			return nil, err
		}
	}
	if err := d.enumerate(); err != nil {
		return nil, err
	}

	for i, s := range d.assigned {
		if s == "" {
			return nil, fmt.Errorf("descriptor %q at %d left unassigned: %w", descriptors[i], i, domain.ErrDisambiguation)
		}
	}
	return d.assigned, nil
}

type disambiguator struct {
	lowered  []string
	assigned []string
	used     map[string]bool
}

func generalClass(desc string) string {
	for _, r := range desc {
		return string(r)
	}
	return ""
}

func specificClass(desc string) string {
	head, _, _ := strings.Cut(desc, "-")
	return head
}

func fullDescriptor(desc string) string {
	return desc
}

// tier assigns "@<key>" to every unassigned item whose key is unique among
// the unassigned items.
func (d *disambiguator) tier(key func(string) string) error {
	groups := make(map[string][]int)
	var order []string
	for i, desc := range d.lowered {
		if d.assigned[i] != "" {
			continue
		}
		k := key(desc)
		if k == "" {
			continue
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	for _, k := range order {
		members := groups[k]
		if len(members) != 1 {
			continue
		}
		if err := d.assign(members[0], "@"+k); err != nil {
			return err
		}
	}
	return nil
}

func (d *disambiguator) enumerate() error {
	n := 0
	for i, desc := range d.lowered {
		if d.assigned[i] != "" {
			continue
		}
		// An earlier tier may already hold the token, e.g. descriptor "1"
		// settled as "@1". Such indices are skipped.
		var suffix string
		for {
			n++
			suffix = enumerated(desc, n)
			if !d.used[suffix] {
				break
			}
		}
		if err := d.assign(i, suffix); err != nil {
			return err
		}
	}
	return nil
}

func enumerated(desc string, n int) string {
	if desc == "" {
		return "@" + strconv.Itoa(n)
	}
	return "@" + desc + "." + strconv.Itoa(n)
}

func (d *disambiguator) assign(i int, suffix string) error {
	if d.used[suffix] {
		return fmt.Errorf("suffix %q produced twice: %w", suffix, domain.ErrDisambiguation)
	}
	d.used[suffix] = true
	d.assigned[i] = suffix
	return nil
}
