package templates

import (
	"sort"

	"github.com/tsawler/drawsnap/matching"
	"github.com/tsawler/drawsnap/model"
)

// CloseMatchCutoff is the minimum name similarity for a close-match lookup.
const CloseMatchCutoff = 0.8

// Snapshot is an immutable view of the store. Extraction reads templates
// from one snapshot for its whole run, so later writes never change
// templates mid-extraction.
type Snapshot struct {
	templates map[string]*model.TableTemplate
}

func newSnapshot(templates map[string]*model.TableTemplate) *Snapshot {
	return &Snapshot{templates: templates}
}

// Len returns the number of templates.
func (s *Snapshot) Len() int {
	return len(s.templates)
}

// Keys returns the normalized vendor keys in sorted order.
func (s *Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.templates))
	for k := range s.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup finds a template by exact normalized key, then by the closest key
// at or above CloseMatchCutoff. The returned template is a copy. The boolean
// reports whether the hit was exact.
func (s *Snapshot) Lookup(vendor string) (tmpl *model.TableTemplate, exact bool, err error) {
	key := model.VendorKey(vendor)
	if key == "" {
		return nil, false, ErrNotFound
	}

	if t, ok := s.templates[key]; ok {
		return t.Clone(), true, nil
	}

	best, bestKey := 0.0, ""
	for _, k := range s.Keys() {
		if sim := matching.Similarity(key, k); sim > best {
			best, bestKey = sim, k
		}
	}
	if best >= CloseMatchCutoff {
		return s.templates[bestKey].Clone(), false, nil
	}
	return nil, false, ErrNotFound
}

// Get is Lookup without the exactness flag.
func (s *Snapshot) Get(vendor string) (*model.TableTemplate, error) {
	t, _, err := s.Lookup(vendor)
	return t, err
}

// Templates returns copies of every template ordered by key.
func (s *Snapshot) Templates() []*model.TableTemplate {
	out := make([]*model.TableTemplate, 0, len(s.templates))
	for _, k := range s.Keys() {
		out = append(out, s.templates[k].Clone())
	}
	return out
}

// Candidates returns vendor-matching candidates for every template. Extra
// keywords, keyed by vendor name in any case, are merged with the template's
// own keywords.
func (s *Snapshot) Candidates(extra map[string][]string) []matching.Candidate {
	extraByKey := make(map[string][]string, len(extra))
	for vendor, kws := range extra {
		key := model.VendorKey(vendor)
		extraByKey[key] = append(extraByKey[key], kws...)
	}

	out := make([]matching.Candidate, 0, len(s.templates))
	for _, k := range s.Keys() {
		t := s.templates[k]
		keywords := append(append([]string(nil), t.Keywords...), extraByKey[k]...)
		out = append(out, matching.Candidate{
			Vendor:    t.Vendor,
			Keywords:  keywords,
			UpdatedAt: t.UpdatedAt,
		})
	}
	return out
}
