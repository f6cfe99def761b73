package templates

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tsawler/drawsnap/model"
)

var (
	// ErrNotFound is returned when no template matches a vendor.
	ErrNotFound = errors.New("template not found")

	// ErrInvalidTemplate is returned when a template fails validation.
	ErrInvalidTemplate = model.ErrInvalidTemplate
)

// Options configures a Repository.
type Options struct {
	// Backup keeps the previous store as <path>.backup on every save
	Backup bool

	Logger *slog.Logger

	// Now stamps created/updatedAt; defaults to time.Now
	Now func() time.Time
}

// Repository owns the template store file. Reads go through immutable
// snapshots; writes are serialized in-process and replace the file
// atomically.
type Repository struct {
	path   string
	backup bool
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	snapshot *Snapshot
}

// Open loads the store at path. A missing file yields an empty repository;
// it is created on the first save.
func Open(path string, opts Options) (*Repository, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := &Repository{
		path:     path,
		backup:   opts.Backup,
		logger:   opts.Logger,
		now:      opts.Now,
		snapshot: newSnapshot(map[string]*model.TableTemplate{}),
	}
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the store file path.
func (r *Repository) Path() string {
	return r.path
}

// Load re-reads the store file and replaces the current snapshot. Snapshots
// handed out earlier are unaffected. Records that fail validation are
// skipped with a warning.
func (r *Repository) Load() error {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Info("no template store found, starting empty", "path", r.path)
		r.setSnapshot(map[string]*model.TableTemplate{})
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading template store: %w", err)
	}

	var records map[string]record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parsing template store %s: %w", r.path, err)
	}

	templates := make(map[string]*model.TableTemplate, len(records))
	for name, rec := range records {
		tmpl, err := rec.toTemplate(name)
		if err != nil {
			r.logger.Warn("skipping invalid template", "vendor", name, "error", err)
			continue
		}
		templates[model.VendorKey(tmpl.Vendor)] = tmpl
	}

	r.setSnapshot(templates)
	r.logger.Info("loaded templates", "path", r.path, "count", len(templates))
	return nil
}

// Snapshot returns the current immutable view of the store.
func (r *Repository) Snapshot() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot
}

func (r *Repository) setSnapshot(templates map[string]*model.TableTemplate) {
	r.mu.Lock()
	r.snapshot = newSnapshot(templates)
	r.mu.Unlock()
}

// Get looks up a template by vendor, exact key first and then close match.
func (r *Repository) Get(vendor string) (*model.TableTemplate, error) {
	tmpl, exact, err := r.Snapshot().Lookup(vendor)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, vendor)
	}
	if !exact {
		r.logger.Info("using close template match", "vendor", vendor, "match", tmpl.Vendor)
	}
	return tmpl, nil
}

// Vendors returns the display names of every stored vendor, ordered by key.
func (r *Repository) Vendors() []string {
	templates := r.Snapshot().Templates()
	out := make([]string, len(templates))
	for i, t := range templates {
		out[i] = t.Vendor
	}
	return out
}

// Put validates tmpl and adds or replaces the vendor's template, then saves.
// Created is kept from an existing template (or stamped now for a new one)
// and UpdatedAt is always stamped now.
func (r *Repository) Put(tmpl *model.TableTemplate) (*model.TableTemplate, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	key := model.VendorKey(tmpl.Vendor)
	if key == "" {
		return nil, fmt.Errorf("%w: vendor name is empty", ErrInvalidTemplate)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := tmpl.Clone()
	stored.Vendor = strings.TrimSpace(tmpl.Vendor)
	now := r.now().UTC()

	existing, updating := r.snapshot.templates[key]
	switch {
	case updating && !existing.Created.IsZero():
		stored.Created = existing.Created
	case stored.Created.IsZero():
		stored.Created = now
	}
	stored.UpdatedAt = now
	if stored.Confidence == 0 {
		stored.Confidence = 1
	}

	next := r.snapshot.copyTemplates()
	next[key] = stored
	if err := r.save(next); err != nil {
		return nil, err
	}
	r.snapshot = newSnapshot(next)

	if updating {
		r.logger.Info("updated template", "vendor", stored.Vendor)
	} else {
		r.logger.Info("added template", "vendor", stored.Vendor)
	}
	return stored.Clone(), nil
}

// Remove deletes the vendor's template (exact key only) and saves.
func (r *Repository) Remove(vendor string) error {
	key := model.VendorKey(vendor)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.snapshot.templates[key]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, vendor)
	}

	next := r.snapshot.copyTemplates()
	delete(next, key)
	if err := r.save(next); err != nil {
		return err
	}
	r.snapshot = newSnapshot(next)

	r.logger.Info("removed template", "vendor", vendor)
	return nil
}

// Save writes the current snapshot to disk.
func (r *Repository) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(r.snapshot.templates)
}

// save writes templates with an atomic replace. Callers hold r.mu.
func (r *Repository) save(templates map[string]*model.TableTemplate) error {
	records := make(map[string]record, len(templates))
	for key, t := range templates {
		records[key] = fromTemplate(t)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding template store: %w", err)
	}
	data = append(data, '\n')

	if r.backup {
		previous, err := os.ReadFile(r.path)
		switch {
		case err == nil:
			if err := writeFileAtomic(r.path+".backup", previous); err != nil {
				return fmt.Errorf("writing template backup: %w", err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("reading template store for backup: %w", err)
		}
	}

	if err := writeFileAtomic(r.path, data); err != nil {
		return fmt.Errorf("writing template store: %w", err)
	}
	r.logger.Debug("saved templates", "path", r.path, "count", len(templates))
	return nil
}

// writeFileAtomic writes data to a temporary file in the target directory
// and renames it over path.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *Snapshot) copyTemplates() map[string]*model.TableTemplate {
	out := make(map[string]*model.TableTemplate, len(s.templates)+1)
	for k, v := range s.templates {
		out[k] = v
	}
	return out
}

// Stats summarizes the store.
type Stats struct {
	Count      int       `json:"count"`
	Vendors    []string  `json:"vendors"`
	AvgColumns float64   `json:"avg_columns"`
	MinColumns int       `json:"min_columns"`
	MaxColumns int       `json:"max_columns"`
	Newest     time.Time `json:"newest,omitempty"`
	Oldest     time.Time `json:"oldest,omitempty"`
}

// Stats returns counts and column statistics over the current snapshot.
// Newest and Oldest are creation times.
func (r *Repository) Stats() Stats {
	snap := r.Snapshot()
	stats := Stats{Count: snap.Len(), Vendors: snap.Keys()}
	if stats.Count == 0 {
		return stats
	}

	total := 0
	stats.MinColumns = math.MaxInt
	var created []time.Time
	for _, t := range snap.templates {
		n := t.ColumnCount()
		total += n
		stats.MinColumns = min(stats.MinColumns, n)
		stats.MaxColumns = max(stats.MaxColumns, n)
		if !t.Created.IsZero() {
			created = append(created, t.Created)
		}
	}
	stats.AvgColumns = float64(total) / float64(stats.Count)

	if len(created) > 0 {
		sort.Slice(created, func(i, j int) bool { return created[i].Before(created[j]) })
		stats.Oldest = created[0]
		stats.Newest = created[len(created)-1]
	}
	return stats
}

// Export writes one vendor's template to path as a standalone JSON record.
func (r *Repository) Export(vendor, path string) error {
	tmpl, err := r.Get(vendor)
	if err != nil {
		return err
	}

	data, err := Encode(tmpl)
	if err != nil {
		return fmt.Errorf("encoding template: %w", err)
	}
	if err := writeFileAtomic(path, append(data, '\n')); err != nil {
		return fmt.Errorf("exporting template: %w", err)
	}
	r.logger.Info("exported template", "vendor", tmpl.Vendor, "path", path)
	return nil
}

// Import reads a standalone template record from path and stores it. A
// non-empty vendor overrides the vendor named in the file.
func (r *Repository) Import(path, vendor string) (*model.TableTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template file: %w", err)
	}

	tmpl, err := Decode(data, vendor)
	if err != nil {
		return nil, fmt.Errorf("parsing template file %s: %w", path, err)
	}
	return r.Put(tmpl)
}
