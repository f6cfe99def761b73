package templates

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/drawsnap/model"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func openTestRepo(t *testing.T, backup bool) (*Repository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vendor_templates.json")
	repo, err := Open(path, Options{
		Backup: backup,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return repo, path
}

func acme() *model.TableTemplate {
	return &model.TableTemplate{
		Vendor:   "Acme Corp",
		TableBox: model.NewBBoxFromCorners(50, 200, 550, 700),
		Columns:  []float64{50, 300, 420, 550},
		Keywords: []string{"acme"},
	}
}

func TestOpen_MissingFile(t *testing.T) {
	repo, path := openTestRepo(t, false)
	assert.Equal(t, 0, repo.Snapshot().Len())
	assert.NoFileExists(t, path)
}

func TestPut_RoundTrip(t *testing.T) {
	repo, path := openTestRepo(t, false)

	stored, err := repo.Put(acme())
	require.NoError(t, err)
	assert.Equal(t, fixedNow, stored.Created)
	assert.Equal(t, fixedNow, stored.UpdatedAt)
	assert.Equal(t, 1.0, stored.Confidence)
	require.FileExists(t, path)

	reopened, err := Open(path, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)

	got, err := reopened.Get("ACME corp ")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Vendor)
	assert.Equal(t, []float64{50, 300, 420, 550}, got.Columns)
	assert.Equal(t, model.NewBBoxFromCorners(50, 200, 550, 700), got.TableBox)
	assert.Equal(t, []string{"acme"}, got.Keywords)
	assert.True(t, got.Created.Equal(fixedNow))
}

func TestPut_RejectsInvalid(t *testing.T) {
	repo, path := openTestRepo(t, false)

	bad := acme()
	bad.Columns = []float64{300, 50}
	_, err := repo.Put(bad)
	require.ErrorIs(t, err, ErrInvalidTemplate)

	noVendor := acme()
	noVendor.Vendor = "  "
	_, err = repo.Put(noVendor)
	require.ErrorIs(t, err, ErrInvalidTemplate)

	assert.NoFileExists(t, path)
}

func TestPut_UpdateKeepsCreated(t *testing.T) {
	repo, _ := openTestRepo(t, false)
	_, err := repo.Put(acme())
	require.NoError(t, err)

	later := fixedNow.Add(time.Hour)
	repo.now = func() time.Time { return later }

	updated := acme()
	updated.Columns = []float64{50, 200, 550}
	stored, err := repo.Put(updated)
	require.NoError(t, err)

	assert.Equal(t, fixedNow, stored.Created)
	assert.Equal(t, later, stored.UpdatedAt)
	assert.Equal(t, 2, stored.ColumnCount())
	assert.Equal(t, 1, repo.Snapshot().Len())
}

func TestGet_CloseMatch(t *testing.T) {
	repo, _ := openTestRepo(t, false)
	_, err := repo.Put(acme())
	require.NoError(t, err)

	got, err := repo.Get("acme corq")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Vendor)

	_, err = repo.Get("globex")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Get("")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGet_ReturnsCopy(t *testing.T) {
	repo, _ := openTestRepo(t, false)
	_, err := repo.Put(acme())
	require.NoError(t, err)

	got, err := repo.Get("acme corp")
	require.NoError(t, err)
	got.Columns[0] = -1

	again, err := repo.Get("acme corp")
	require.NoError(t, err)
	assert.Equal(t, 50.0, again.Columns[0])
}

func TestSnapshot_IsolatedFromWrites(t *testing.T) {
	repo, _ := openTestRepo(t, false)
	_, err := repo.Put(acme())
	require.NoError(t, err)

	snap := repo.Snapshot()
	require.NoError(t, repo.Remove("Acme Corp"))

	_, err = snap.Get("acme corp")
	assert.NoError(t, err, "earlier snapshot must keep its templates")
	_, err = repo.Get("acme corp")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemove(t *testing.T) {
	repo, path := openTestRepo(t, false)
	_, err := repo.Put(acme())
	require.NoError(t, err)

	require.NoError(t, repo.Remove(" ACME CORP"))
	require.ErrorIs(t, repo.Remove("acme corp"), ErrNotFound)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestSave_Backup(t *testing.T) {
	repo, path := openTestRepo(t, true)

	_, err := repo.Put(acme())
	require.NoError(t, err)
	assert.NoFileExists(t, path+".backup")

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	second := acme()
	second.Vendor = "Globex"
	_, err = repo.Put(second)
	require.NoError(t, err)

	backup, err := os.ReadFile(path + ".backup")
	require.NoError(t, err)
	assert.Equal(t, string(first), string(backup))

	// No temporary files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLoad_LegacyAndInvalidRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendor_templates.json")
	content := `{
  "newark": {
    "vendor": "Newark",
    "table_box": [10, 20, 610, 820],
    "columns": [10, 200, 400, 610],
    "created": "2024-01-05T09:15:00.123456",
    "modified": "2024-02-01T10:00:00"
  },
  "broken": {
    "vendor": "Broken",
    "table_box": [10, 20, 610],
    "columns": [10, 610]
  },
  "unsorted": {
    "vendor": "Unsorted",
    "table_box": [0, 0, 100, 100],
    "columns": [50, 10, 100]
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	repo, err := Open(path, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)

	assert.Equal(t, []string{"newark"}, repo.Snapshot().Keys())

	got, err := repo.Get("newark")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC), got.UpdatedAt)
	assert.Equal(t, 2024, got.Created.Year())
	assert.Equal(t, 1.0, got.Confidence)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendor_templates.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.Error(t, err)
}

func TestStats(t *testing.T) {
	repo, _ := openTestRepo(t, false)
	assert.Equal(t, 0, repo.Stats().Count)

	_, err := repo.Put(acme())
	require.NoError(t, err)

	repo.now = func() time.Time { return fixedNow.Add(48 * time.Hour) }
	two := acme()
	two.Vendor = "Globex"
	two.Columns = []float64{50, 550}
	_, err = repo.Put(two)
	require.NoError(t, err)

	stats := repo.Stats()
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, []string{"acme corp", "globex"}, stats.Vendors)
	assert.Equal(t, 2.0, stats.AvgColumns)
	assert.Equal(t, 1, stats.MinColumns)
	assert.Equal(t, 3, stats.MaxColumns)
	assert.Equal(t, fixedNow, stats.Oldest)
	assert.Equal(t, fixedNow.Add(48*time.Hour), stats.Newest)
}

func TestExportImport(t *testing.T) {
	repo, _ := openTestRepo(t, false)
	_, err := repo.Put(acme())
	require.NoError(t, err)

	exported := filepath.Join(t.TempDir(), "acme.json")
	require.NoError(t, repo.Export("acme corp", exported))
	require.ErrorIs(t, repo.Export("nobody", exported), ErrNotFound)

	other, _ := openTestRepo(t, false)
	imported, err := other.Import(exported, "Acme West")
	require.NoError(t, err)
	assert.Equal(t, "Acme West", imported.Vendor)
	assert.Equal(t, []float64{50, 300, 420, 550}, imported.Columns)
	assert.Equal(t, []string{"Acme West"}, other.Vendors())
}

func TestSnapshot_Candidates(t *testing.T) {
	repo, _ := openTestRepo(t, false)
	_, err := repo.Put(acme())
	require.NoError(t, err)

	candidates := repo.Snapshot().Candidates(map[string][]string{
		"ACME CORP": {"acme industries"},
		"unknown":   {"ignored"},
	})
	require.Len(t, candidates, 1)
	assert.Equal(t, "Acme Corp", candidates[0].Vendor)
	assert.Equal(t, []string{"acme", "acme industries"}, candidates[0].Keywords)
	assert.Equal(t, fixedNow, candidates[0].UpdatedAt)
}

func TestDecodeEncode(t *testing.T) {
	tmpl, err := Decode([]byte(`{"table_box":[0,0,200,50],"columns":[0,100,200],"modified":"2024-03-01 08:00:00"}`), "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", tmpl.Vendor)
	assert.Equal(t, 1.0, tmpl.Confidence)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), tmpl.UpdatedAt)

	data, err := Encode(tmpl)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"updatedAt": "2024-03-01T08:00:00Z"`)
	assert.NotContains(t, string(data), "modified")

	_, err = Decode([]byte(`{"table_box":[0,0,200,50],"columns":[0,100,200]}`), "")
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	_, err = Decode([]byte(`{"vendor":"X","table_box":[0,0,200,50],"columns":[100,0]}`), "")
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	_, err = Decode([]byte(`not json`), "Acme")
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}
