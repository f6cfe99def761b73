package export

import (
	"fmt"

	"github.com/tsawler/drawsnap/model"
)

// HeaderMap maps vendors to the column names written above their tables.
// Vendor names are matched case-insensitively.
type HeaderMap map[string][]string

// Lookup returns the header row for vendor if one is configured and its
// length equals columns. A configured header of the wrong length is not
// applied; the returned warning says why.
func (m HeaderMap) Lookup(vendor string, columns int) (header []string, warning string) {
	key := model.VendorKey(vendor)
	for name, names := range m {
		if model.VendorKey(name) != key {
			continue
		}
		if len(names) != columns {
			return nil, fmt.Sprintf("Header mapping for %s has %d names but the table has %d columns; headers not applied",
				vendor, len(names), columns)
		}
		return append([]string(nil), names...), ""
	}
	return nil, ""
}
