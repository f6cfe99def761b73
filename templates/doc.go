// Package templates persists vendor table templates.
//
// Templates live in a single JSON file keyed by normalized vendor name
// (lower-cased, trimmed). A [Repository] loads the file once and serves an
// immutable [Snapshot] for extraction; updates build a new snapshot and are
// written with an atomic replace (temporary file, then rename), so a crash
// or a concurrent writer can never leave the store half written.
//
// Store format:
//
//	{
//	  "acme": {
//	    "vendor": "Acme",
//	    "table_box": [50, 200, 550, 700],
//	    "columns": [50, 300, 420, 550],
//	    "confidence": 1,
//	    "keywords": ["acme corp"],
//	    "created": "2024-03-01T10:00:00Z",
//	    "updatedAt": "2024-03-02T09:30:00Z"
//	  }
//	}
//
// The legacy "modified" field is read as updatedAt, and timestamps without a
// zone are accepted as UTC.
package templates
