// Package model provides the data types shared by every stage of template
// based table slicing.
//
// # Tokens
//
// A [PositionedToken] is one unit of recognized text with its bounding box
// and a 0-100 confidence. Tokens come from a Token Source (OCR, hOCR files,
// native PDF text) and are never modified afterwards.
//
// # Templates
//
// A [TableTemplate] describes where a vendor's table sits on the page
// (TableBox) and how it is split into columns (Columns, ascending
// x-boundaries). [TableTemplate.Validate] enforces the invariants the
// binning stages depend on.
//
// # Grids
//
// A [Grid] is the rectangular result of slicing: every row has exactly
// Columns cells. When no usable data exists the grid is a placeholder with a
// single diagnostic cell, so exporters always have a row to write:
//
//	grid := model.NewPlaceholderGrid(model.PlaceholderNoText)
//	err := export.Write(os.Stdout, grid, export.CSV, nil)
//
// # Geometry
//
// [BBox] and [Point] use page image coordinates: the origin is the top-left
// corner and Y grows downward.
package model
