package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/drawsnap/export"
	"github.com/tsawler/drawsnap/matching"
	"github.com/tsawler/drawsnap/ocr"
	"github.com/tsawler/drawsnap/quality"
	"github.com/tsawler/drawsnap/tables"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drawsnap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, tables.DefaultConfig(), c.TablesConfig())
	assert.Equal(t, quality.DefaultConfig(), c.QualityConfig())
	assert.Equal(t, matching.DefaultConfig(), c.MatchingConfig())
	assert.Equal(t, ocr.DefaultOptions(), c.OCROptions())
	assert.Equal(t, export.CSV, c.ExportFormat())
	assert.Equal(t, 50, c.Matching.SampleTokens)
}

func TestLoad_EmptyPath(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
slicer:
  adaptive: false
  default_threshold: 15
quality:
  min_score: 70
  weights:
    types: 0.3
matching:
  threshold: 0.75
templates:
  path: /data/templates.json
  backup: false
vendors:
  Acme: [acme supplies, acme corp]
headers:
  Acme: [Item, Qty]
ocr:
  language: eng+deu
  page_seg_mode: 6
export:
  format: md
batch:
  workers: 4
server:
  address: 127.0.0.1:9000
  allowed_origins: ["https://example.com"]
log:
  level: debug
`)

	c, err := Load(path)
	require.NoError(t, err)

	sc := c.TablesConfig()
	assert.False(t, sc.Adaptive)
	assert.Equal(t, 15.0, sc.DefaultThreshold)
	assert.Equal(t, 1.2, sc.BufferFactor)

	qc := c.QualityConfig()
	assert.Equal(t, 70.0, qc.MinScore)
	assert.Equal(t, 0.3, qc.Weights.Types)
	assert.Equal(t, 0.20, qc.Weights.Fill)

	assert.Equal(t, 0.75, c.MatchingConfig().Threshold)
	assert.Equal(t, "/data/templates.json", c.Templates.Path)
	assert.False(t, c.Templates.Backup)
	assert.Equal(t, []string{"acme supplies", "acme corp"}, c.Vendors["Acme"])

	header, warning := c.HeaderMap().Lookup("acme", 2)
	assert.Equal(t, []string{"Item", "Qty"}, header)
	assert.Empty(t, warning)

	assert.Equal(t, ocr.PSM_SINGLE_BLOCK, c.OCROptions().PageSegMode)
	assert.Equal(t, "eng+deu", c.OCROptions().Language)
	assert.Equal(t, export.Markdown, c.ExportFormat())
	assert.Equal(t, 4, c.Batch.Workers)
	assert.Equal(t, "127.0.0.1:9000", c.Server.Address)
	assert.Equal(t, []string{"https://example.com"}, c.Server.AllowedOrigins)
	assert.True(t, c.Logger(os.Stderr).Enabled(context.Background(), -4))
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("DRAWSNAP_TEST_STORE", "/srv/templates.json")
	path := writeConfig(t, "templates:\n  path: ${DRAWSNAP_TEST_STORE}\n")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/templates.json", c.Templates.Path)
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeConfig(t, "slicer:\n  bufer_factor: 1.5\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bufer_factor")
}

func TestParse_EmptyDocument(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"negative weight", "quality:\n  weights:\n    fill: -1\n", "quality.weights.fill"},
		{"threshold range", "matching:\n  threshold: 1.5\n", "matching.threshold"},
		{"format", "export:\n  format: xls\n", "export.format"},
		{"level", "log:\n  level: loud\n", "log.level"},
		{"workers", "batch:\n  workers: -2\n", "batch.workers"},
		{"store path", "templates:\n  path: \"\"\n", "templates.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
