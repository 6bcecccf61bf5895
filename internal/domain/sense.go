package domain

import "slices"

// Sense is one gloss together with the abbreviations of the sources that
// attest it. Sources is kept sorted and free of duplicates.
type Sense struct {
	Definition string   `json:"definition"`
	Sources    []string `json:"sources"`
}

// AddSources unions sources into the sense.
func (s *Sense) AddSources(sources ...string) {
	for _, src := range sources {
		if src == "" {
			continue
		}
		i, found := slices.BinarySearch(s.Sources, src)
		if found {
			continue
		}
		s.Sources = slices.Insert(s.Sources, i, src)
	}
}

// HasSource reports whether src attests the sense.
func (s Sense) HasSource(src string) bool {
	_, found := slices.BinarySearch(s.Sources, src)
	return found
}

// RemoveSource drops src from the sense and reports whether any source remains.
func (s *Sense) RemoveSource(src string) bool {
	if i, found := slices.BinarySearch(s.Sources, src); found {
		s.Sources = slices.Delete(s.Sources, i, i+1)
	}
	return len(s.Sources) > 0
}
