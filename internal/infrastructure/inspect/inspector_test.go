package inspect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/results"
	infradataset "github.com/dftest-dev/dftest/internal/infrastructure/dataset"
	"github.com/dftest-dev/dftest/internal/infrastructure/system"
)

type launch struct {
	name string
	args []string
}

type recorder struct {
	calls []launch
	err   error
}

func (r *recorder) launch(name string, args ...string) error {
	r.calls = append(r.calls, launch{name: name, args: args})
	return r.err
}

func request(t *testing.T) results.InspectRequest {
	t.Helper()
	rows, err := dataset.FromRows(
		[]string{"Object Number", "Object ID"},
		[][]string{{"bad-id", "2"}, {"x,y", ""}},
	)
	require.NoError(t, err)
	return results.InspectRequest{Column: "Object Number", Rows: rows, RowIndices: []int{1, 7}}
}

func TestInspector_InspectCSV(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	inspector := NewInspector(&system.Config{Viewer: "libreoffice --calc", ExportDir: dir, ExportFormat: system.ExportCSV},
		WithLauncher(rec.launch))

	require.NoError(t, inspector.Inspect(context.Background(), request(t)))

	require.Len(t, rec.calls, 1)
	call := rec.calls[0]
	assert.Equal(t, "libreoffice", call.name)
	require.Len(t, call.args, 2)
	assert.Equal(t, "--calc", call.args[0])

	path := call.args[1]
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "dftest-Object_Number-"))
	assert.Equal(t, ".csv", filepath.Ext(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "row,Object Number,Object ID\n1,bad-id,2\n7,\"x,y\",\n", string(content))
}

func TestInspector_ExportParquet(t *testing.T) {
	dir := t.TempDir()
	inspector := NewInspector(&system.Config{ExportDir: dir, ExportFormat: system.ExportParquet})

	path, err := inspector.Export(request(t))
	require.NoError(t, err)
	assert.Equal(t, ".parquet", filepath.Ext(path))

	loader := infradataset.NewLoader(infradataset.DefaultCSVOptions(), nil)
	table, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"row", "Object Number", "Object ID"}, table.Columns())
	rows, err := table.Column("row")
	require.NoError(t, err)
	assert.Equal(t, "7", rows[1].String())
	ids, err := table.Column("Object ID")
	require.NoError(t, err)
	assert.True(t, ids[1].IsMissing())
}

func TestInspector_RowColumnNameClash(t *testing.T) {
	rows, err := dataset.FromRows([]string{"row"}, [][]string{{"a"}})
	require.NoError(t, err)

	table, err := withRowIndex(rows, []int{3})
	require.NoError(t, err)
	assert.Equal(t, []string{"_row", "row"}, table.Columns())
}

func TestInspector_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("launcher failure", func(t *testing.T) {
		rec := &recorder{err: errors.New("not found")}
		inspector := NewInspector(&system.Config{Viewer: "nope", ExportDir: dir}, WithLauncher(rec.launch))
		err := inspector.Inspect(context.Background(), request(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("cancelled context", func(t *testing.T) {
		rec := &recorder{}
		inspector := NewInspector(&system.Config{ExportDir: dir}, WithLauncher(rec.launch))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, inspector.Inspect(ctx, request(t)), context.Canceled)
		assert.Empty(t, rec.calls)
	})

	t.Run("index mismatch", func(t *testing.T) {
		req := request(t)
		req.RowIndices = []int{1}
		_, err := NewInspector(&system.Config{ExportDir: dir}).Export(req)
		require.Error(t, err)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := NewInspector(&system.Config{ExportDir: dir, ExportFormat: "xlsx"}).Export(request(t))
		require.Error(t, err)
		matches, _ := filepath.Glob(filepath.Join(dir, "*.xlsx"))
		assert.Empty(t, matches, "failed exports are removed")
	})

	t.Run("no rows", func(t *testing.T) {
		_, err := NewInspector(nil).Export(results.InspectRequest{Column: "a"})
		require.Error(t, err)
	})
}

func TestNewInspector_Defaults(t *testing.T) {
	inspector := NewInspector(&system.Config{})
	assert.Equal(t, system.ExportCSV, inspector.format)
	assert.Equal(t, os.TempDir(), inspector.dir)
	assert.Equal(t, platformOpener(), inspector.viewer)
}
