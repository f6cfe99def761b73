// Package export writes extracted grids to files.
//
// Grids can be written as CSV, TSV or Markdown, optionally preceded by a
// per-vendor header row. Output names are timestamped so repeated runs
// never overwrite each other, and [MergeGrids] concatenates the grids of
// several pages into one table.
package export
