package templates

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tsawler/drawsnap/model"
)

// record is the on-disk form of a template.
type record struct {
	Vendor     string    `json:"vendor"`
	TableBox   []float64 `json:"table_box"`
	Columns    []float64 `json:"columns"`
	Confidence *float64  `json:"confidence,omitempty"`
	Keywords   []string  `json:"keywords,omitempty"`
	Created    string    `json:"created,omitempty"`
	UpdatedAt  string    `json:"updatedAt,omitempty"`

	// Modified is the legacy name of UpdatedAt; read but never written
	Modified string `json:"modified,omitempty"`
}

// timestampLayouts are tried in order when parsing stored times.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// toTemplate converts a stored record, falling back to key for a missing
// vendor name.
func (r record) toTemplate(key string) (*model.TableTemplate, error) {
	if len(r.TableBox) != 4 {
		return nil, fmt.Errorf("%w: table_box needs 4 values, got %d", model.ErrInvalidTemplate, len(r.TableBox))
	}

	tmpl := &model.TableTemplate{
		Vendor:     strings.TrimSpace(r.Vendor),
		TableBox:   model.NewBBoxFromCorners(r.TableBox[0], r.TableBox[1], r.TableBox[2], r.TableBox[3]),
		Columns:    append([]float64(nil), r.Columns...),
		Confidence: 1,
		Keywords:   append([]string(nil), r.Keywords...),
	}
	if tmpl.Vendor == "" {
		tmpl.Vendor = key
	}
	if r.Confidence != nil {
		tmpl.Confidence = *r.Confidence
	}

	var err error
	if tmpl.Created, err = parseTimestamp(r.Created); err != nil {
		return nil, fmt.Errorf("created: %w", err)
	}
	updated := r.UpdatedAt
	if updated == "" {
		updated = r.Modified
	}
	if tmpl.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return nil, fmt.Errorf("updatedAt: %w", err)
	}
	if tmpl.UpdatedAt.IsZero() {
		tmpl.UpdatedAt = tmpl.Created
	}

	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func fromTemplate(t *model.TableTemplate) record {
	c := t.TableBox.Corners()
	confidence := t.Confidence
	return record{
		Vendor:     t.Vendor,
		TableBox:   c[:],
		Columns:    append([]float64(nil), t.Columns...),
		Confidence: &confidence,
		Keywords:   append([]string(nil), t.Keywords...),
		Created:    formatTimestamp(t.Created),
		UpdatedAt:  formatTimestamp(t.UpdatedAt),
	}
}

// Decode parses a standalone template record. A non-empty vendor overrides
// the vendor named in data.
func Decode(data []byte, vendor string) (*model.TableTemplate, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidTemplate, err)
	}
	if vendor != "" {
		rec.Vendor = vendor
	}
	if strings.TrimSpace(rec.Vendor) == "" {
		return nil, fmt.Errorf("%w: no vendor named", model.ErrInvalidTemplate)
	}
	return rec.toTemplate(rec.Vendor)
}

// Encode renders t in the stored record form.
func Encode(t *model.TableTemplate) ([]byte, error) {
	return json.MarshalIndent(fromTemplate(t), "", "  ")
}
