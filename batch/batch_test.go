package batch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/drawsnap"
	"github.com/tsawler/drawsnap/model"
	"github.com/tsawler/drawsnap/runlog"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func template() *model.TableTemplate {
	return &model.TableTemplate{
		Vendor:   "Acme",
		TableBox: model.NewBBoxFromCorners(0, 0, 200, 50),
		Columns:  []float64{0, 100, 200},
	}
}

func rowTokens(label, qty string) []model.PositionedToken {
	return []model.PositionedToken{
		model.NewToken("Item", 10, 10, 40, 20, 95),
		model.NewToken("1", 120, 10, 130, 20, 90),
		model.NewToken(label, 10, 30, 60, 40, 92),
		model.NewToken(qty, 120, 30, 130, 40, 88),
	}
}

func job(source string, toks []model.PositionedToken) Job {
	return Job{Source: source, Extractor: drawsnap.FromTokens(toks).Template(template())}
}

func TestRun_OrderAndMerge(t *testing.T) {
	runner := NewRunner(Options{Workers: 2, Logger: quietLogger()})
	jobs := []Job{
		job("a.json", rowTokens("Widget", "2")),
		job("b.json", rowTokens("Gadget", "5")),
		job("c.json", rowTokens("Sprocket", "9")),
	}

	outcomes, err := runner.Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	for i, o := range outcomes {
		assert.Equal(t, jobs[i].Source, o.Source)
		assert.NoError(t, o.Err)
		assert.True(t, o.Acceptable(), o.Source)
	}

	grid, skipped := Merge(outcomes)
	assert.Empty(t, skipped)
	require.Equal(t, 6, grid.RowCount())
	assert.Equal(t, []string{"Widget", "2"}, grid.Rows[1])
	assert.Equal(t, []string{"Gadget", "5"}, grid.Rows[3])
	assert.Equal(t, []string{"Sprocket", "9"}, grid.Rows[5])
}

func TestRun_FailuresDoNotStopBatch(t *testing.T) {
	runner := NewRunner(Options{Workers: 1, Logger: quietLogger()})
	jobs := []Job{
		{Source: "missing-vendor.json", Extractor: drawsnap.FromTokens(rowTokens("Widget", "2")).Vendor("Nobody")},
		job("empty.json", nil),
		{Source: "nil.json"},
		job("good.json", rowTokens("Widget", "2")),
	}

	outcomes, err := runner.Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	assert.True(t, errors.Is(outcomes[0].Err, drawsnap.ErrNoTemplate))
	require.Len(t, outcomes[0].Results, 1)
	assert.True(t, outcomes[0].Results[0].Grid.Placeholder)

	assert.NoError(t, outcomes[1].Err)
	assert.False(t, outcomes[1].Acceptable())

	assert.Error(t, outcomes[2].Err)
	assert.True(t, outcomes[3].Acceptable())

	grid, skipped := Merge(outcomes)
	assert.Equal(t, 2, grid.RowCount())
	assert.Equal(t, []string{"missing-vendor.json", "empty.json (page 1)", "nil.json"}, skipped)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(Options{Workers: 1, Logger: quietLogger()})
	outcomes, err := runner.Run(ctx, []Job{job("a.json", rowTokens("Widget", "2"))})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, context.Canceled)
	assert.Equal(t, "a.json", outcomes[0].Source)
}

func TestRun_RecordsRuns(t *testing.T) {
	store, err := runlog.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	runner := NewRunner(Options{Workers: 2, RunLog: store, Logger: quietLogger()})
	outcomes, err := runner.Run(context.Background(), []Job{
		job("a.json", rowTokens("Widget", "2")),
		job("b.json", nil),
	})
	require.NoError(t, err)
	require.Len(t, outcomes[0].RunIDs, 1)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rec, err := store.Get(outcomes[0].RunIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "Acme", rec.Vendor)
	assert.Equal(t, 2, rec.Rows)
	assert.Equal(t, "SUCCESS", rec.Status())
}

func TestNewRunner_DefaultWorkers(t *testing.T) {
	assert.Greater(t, NewRunner(Options{}).Workers(), 0)
	assert.Equal(t, 3, NewRunner(Options{Workers: 3}).Workers())
}
