// Package inspect exports invalid rows to a file and opens it in an external viewer.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/results"
	infradataset "github.com/dftest-dev/dftest/internal/infrastructure/dataset"
	"github.com/dftest-dev/dftest/internal/infrastructure/system"
)

// RowColumn is the exported column holding each row's index in the original dataset.
const RowColumn = "row"

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Launcher starts an external program without waiting for it.
type Launcher func(name string, args ...string) error

// Inspector implements results.RowInspector by writing the rows to ExportDir
// and handing the file to the configured viewer.
type Inspector struct {
	launch Launcher
	logger *slog.Logger
	viewer []string
	format system.ExportFormat
	dir    string
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithLauncher replaces the process launcher.
func WithLauncher(l Launcher) Option {
	return func(i *Inspector) {
		i.launch = l
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		i.logger = logger
	}
}

// NewInspector creates an Inspector from the system settings. A nil cfg uses the defaults.
func NewInspector(cfg *system.Config, opts ...Option) *Inspector {
	if cfg == nil {
		cfg = system.DefaultConfig()
	}
	i := &Inspector{
		launch: startDetached,
		logger: slog.Default(),
		viewer: strings.Fields(cfg.Viewer),
		format: cfg.ExportFormat,
		dir:    cfg.ExportDir,
	}
	if i.format == "" {
		i.format = system.ExportCSV
	}
	if i.dir == "" {
		i.dir = os.TempDir()
	}
	if len(i.viewer) == 0 {
		i.viewer = platformOpener()
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inspect exports the rows and opens them. It returns once the viewer has started.
func (i *Inspector) Inspect(ctx context.Context, req results.InspectRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := i.Export(req)
	if err != nil {
		return err
	}

	args := append(append([]string{}, i.viewer[1:]...), path)
	if err := i.launch(i.viewer[0], args...); err != nil {
		return fmt.Errorf("failed to open %s with %s: %w", path, i.viewer[0], err)
	}
	i.logger.Info("opened invalid rows", "column", req.Column, "rows", len(req.RowIndices), "path", path)
	return nil
}

// Export writes the rows, prefixed with their original row index, to a new
// file in the export directory and returns its path.
func (i *Inspector) Export(req results.InspectRequest) (path string, err error) {
	if req.Rows == nil {
		return "", errors.New("no rows to export")
	}
	table, err := withRowIndex(req.Rows, req.RowIndices)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(i.dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	pattern := "dftest-" + unsafeFileChars.ReplaceAllString(req.Column, "_") + "-*." + string(i.format)
	f, err := os.CreateTemp(i.dir, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	switch i.format {
	case system.ExportParquet:
		err = infradataset.WriteParquet(table, f)
	case system.ExportCSV:
		err = infradataset.WriteCSV(table, f)
	default:
		err = fmt.Errorf("unsupported export format %q", i.format)
	}
	if err != nil {
		_ = os.Remove(f.Name()) // Best-effort cleanup
		return "", fmt.Errorf("failed to export rows of %q: %w", req.Column, err)
	}

	i.logger.Debug("exported rows", "column", req.Column, "path", f.Name(), "format", i.format)
	return f.Name(), nil
}

// withRowIndex prepends the original row indices as a column.
func withRowIndex(rows dataset.Dataset, indices []int) (*dataset.Table, error) {
	if len(indices) != rows.RowCount() {
		return nil, fmt.Errorf("have %d row indices for %d rows", len(indices), rows.RowCount())
	}

	name := RowColumn
	for dataset.HasColumn(rows, name) {
		name = "_" + name
	}

	columns := append([]string{name}, rows.Columns()...)
	data := make(map[string][]dataset.Value, len(columns))

	index := make([]dataset.Value, len(indices))
	for j, idx := range indices {
		index[j] = dataset.Of(int64(idx))
	}
	data[name] = index

	for _, column := range rows.Columns() {
		values, err := rows.Column(column)
		if err != nil {
			return nil, err
		}
		data[column] = values
	}
	return dataset.NewTable(columns, data)
}

func platformOpener() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"cmd", "/c", "start", ""}
	default:
		return []string{"xdg-open"}
	}
}

// startDetached starts the program and reaps it in the background.
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...) //nolint:gosec // G204: viewer comes from the user's own settings
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait() // Best-effort reap
	}()
	return nil
}
