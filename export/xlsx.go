package export

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tsawler/drawsnap/model"
)

// XML namespaces used in XLSX files.
const (
	nsSpreadsheetML = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// sheetName is the name of the single worksheet written.
const sheetName = "Table"

type contentTypesXML struct {
	XMLName  xml.Name      `xml:"Types"`
	Xmlns    string        `xml:"xmlns,attr"`
	Default  []defaultXML  `xml:"Default"`
	Override []overrideXML `xml:"Override"`
}

type defaultXML struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type overrideXML struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// relationshipsXML represents .rels files.
type relationshipsXML struct {
	XMLName      xml.Name          `xml:"Relationships"`
	Xmlns        string            `xml:"xmlns,attr"`
	Relationship []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// workbookXML represents xl/workbook.xml.
type workbookXML struct {
	XMLName xml.Name  `xml:"workbook"`
	Xmlns   string    `xml:"xmlns,attr"`
	XmlnsR  string    `xml:"xmlns:r,attr"`
	Sheets  sheetsXML `xml:"sheets"`
}

type sheetsXML struct {
	Sheet []sheetRefXML `xml:"sheet"`
}

type sheetRefXML struct {
	Name    string `xml:"name,attr"`
	SheetID string `xml:"sheetId,attr"`
	RID     string `xml:"r:id,attr"`
}

// worksheetXML represents xl/worksheets/sheet1.xml.
type worksheetXML struct {
	XMLName   xml.Name      `xml:"worksheet"`
	Xmlns     string        `xml:"xmlns,attr"`
	Dimension *dimensionXML `xml:"dimension,omitempty"`
	SheetData sheetDataXML  `xml:"sheetData"`
}

type dimensionXML struct {
	Ref string `xml:"ref,attr"` // e.g., "A1:D10"
}

type sheetDataXML struct {
	Rows []rowXML `xml:"row"`
}

type rowXML struct {
	R     int       `xml:"r,attr"` // Row number (1-indexed)
	Cells []cellXML `xml:"c"`
}

type cellXML struct {
	R  string        `xml:"r,attr"`           // Cell reference (e.g., "A1")
	T  string        `xml:"t,attr,omitempty"` // n=number, inlineStr=inline string
	V  string        `xml:"v,omitempty"`
	Is *inlineStrXML `xml:"is,omitempty"`
}

type inlineStrXML struct {
	T string `xml:"t"`
}

// writeXLSX writes grid as a single-sheet workbook. Plain numbers become
// numeric cells; everything else is an inline string.
func writeXLSX(w io.Writer, grid *model.Grid, header []string) error {
	rows := grid.Rows
	if header != nil {
		rows = append([][]string{header}, rows...)
	}

	zw := zip.NewWriter(w)

	parts := []struct {
		name string
		v    any
	}{
		{"[Content_Types].xml", contentTypesXML{
			Xmlns: nsContentTypes,
			Default: []defaultXML{
				{Extension: "rels", ContentType: "application/vnd.openxmlformats-package.relationships+xml"},
				{Extension: "xml", ContentType: "application/xml"},
			},
			Override: []overrideXML{
				{PartName: "/xl/workbook.xml", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"},
				{PartName: "/xl/worksheets/sheet1.xml", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"},
			},
		}},
		{"_rels/.rels", relationshipsXML{
			Xmlns: nsPackageRels,
			Relationship: []relationshipXML{
				{ID: "rId1", Type: nsRelationships + "/officeDocument", Target: "xl/workbook.xml"},
			},
		}},
		{"xl/workbook.xml", workbookXML{
			Xmlns:  nsSpreadsheetML,
			XmlnsR: nsRelationships,
			Sheets: sheetsXML{Sheet: []sheetRefXML{{Name: sheetName, SheetID: "1", RID: "rId1"}}},
		}},
		{"xl/_rels/workbook.xml.rels", relationshipsXML{
			Xmlns: nsPackageRels,
			Relationship: []relationshipXML{
				{ID: "rId1", Type: nsRelationships + "/worksheet", Target: "worksheets/sheet1.xml"},
			},
		}},
		{"xl/worksheets/sheet1.xml", worksheet(rows)},
	}

	for _, p := range parts {
		if err := writeXMLPart(zw, p.name, p.v); err != nil {
			zw.Close()
			return fmt.Errorf("writing xlsx %s: %w", p.name, err)
		}
	}
	return zw.Close()
}

func worksheet(rows [][]string) worksheetXML {
	ws := worksheetXML{Xmlns: nsSpreadsheetML}

	maxCol := 0
	for r, row := range rows {
		x := rowXML{R: r + 1}
		for c, value := range row {
			if value == "" {
				continue
			}
			x.Cells = append(x.Cells, cellValue(CellRef(c, r), value))
			if c+1 > maxCol {
				maxCol = c + 1
			}
		}
		ws.SheetData.Rows = append(ws.SheetData.Rows, x)
	}

	if len(rows) > 0 && maxCol > 0 {
		ws.Dimension = &dimensionXML{Ref: "A1:" + CellRef(maxCol-1, len(rows)-1)}
	}
	return ws
}

func cellValue(ref, value string) cellXML {
	if isPlainNumber(value) {
		return cellXML{R: ref, T: "n", V: value}
	}
	return cellXML{R: ref, T: "inlineStr", Is: &inlineStrXML{T: value}}
}

// isPlainNumber reports whether s can be stored as a number without losing
// its text, so codes like "007" stay strings.
func isPlainNumber(s string) bool {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return false
	}
	digits := strings.TrimPrefix(s, "-")
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return false
	}
	return !strings.ContainsAny(s, "eEinfINF+")
}

func writeXMLPart(zw *zip.Writer, name string, v any) error {
	f, err := zw.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(f).Encode(v)
}

// IndexToColumn converts a 0-indexed column number to column letter(s).
// 0=A, 1=B, ..., 25=Z, 26=AA, 27=AB, etc.
func IndexToColumn(index int) string {
	if index < 0 {
		return ""
	}

	result := ""
	index++ // Convert to 1-indexed for calculation
	for index > 0 {
		index-- // Adjust for 0-based modulo
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}

// CellRef creates a cell reference string from column and row indices (0-indexed).
func CellRef(col, row int) string {
	return fmt.Sprintf("%s%d", IndexToColumn(col), row+1)
}
