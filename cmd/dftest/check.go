package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dftest-dev/dftest/internal/application/dto"
	"github.com/dftest-dev/dftest/internal/application/ports"
	"github.com/dftest-dev/dftest/internal/domain/results"
)

// CheckOptions holds the flags of the check command.
type CheckOptions struct {
	CommonOptions

	RulesPath string
	OutFile   string
	Columns   []string
	Include   []string

	Graphs        bool
	BinaryHeatmap bool
	Open          bool
	Stub          bool
	ShowValid     bool
	ShowUntested  bool
	AllFailed     bool
	Strict        bool
}

var checkOpts = CheckOptions{CommonOptions: DefaultCommonOptions()}

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <data.csv|data.parquet>",
	Short: "Validate a dataset against a rules file",
	Long: `Load a rules file and evaluate every test it binds against every row of
the dataset. Rules are either line rules (one "<kind> <column> [param ...]"
per line) or a YAML profile.

Reporting:
  --show-valid       List columns without invalid rows
  --show-untested    List columns without tests
  --stub             Only print coverage and the summary table
  --graphs           Draw summary charts and a validity heatmap
  --column NAME      Restrict per-column charts and --open to these columns
  --open             Export the invalid rows of each --column and open them`,
	Example: `  dftest check MetObjects.csv --rules tests.conf
  dftest check MetObjects.csv --rules profile.yaml --format sarif -o dftest.sarif
  dftest check MetObjects.csv --rules tests.conf --column "Object Number" --open --include "Object ID"`,
	Args: cobra.ExactArgs(1),
	RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, args []string) error {
		return runCheck(cc, cmd, args[0], resolveCheckOptions(checkOpts))
	}),
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkOpts.RegisterFlags(checkCmd)
	addCommonFlags(checkCmd)

	f := checkCmd.Flags()
	f.StringVarP(&checkOpts.RulesPath, "rules", "r", "", "Rules file (.conf line rules or .yaml profile)")
	f.StringVarP(&checkOpts.OutFile, "output", "o", "", "Output file path (default: stdout)")
	f.StringSliceVar(&checkOpts.Columns, "column", nil, "Columns to chart and open (repeatable)")
	f.StringSliceVar(&checkOpts.Include, "include", nil, "Extra columns exported next to opened rows")
	f.BoolVar(&checkOpts.Graphs, "graphs", false, "Render terminal charts")
	f.BoolVar(&checkOpts.BinaryHeatmap, "binary-heatmap", false, "Show not applicable cells as valid in heatmaps")
	f.BoolVar(&checkOpts.Open, "open", false, "Export and open the invalid rows of each --column")
	f.BoolVar(&checkOpts.Stub, "stub", false, "Only print coverage and the summary table")
	f.BoolVar(&checkOpts.ShowValid, "show-valid", false, "Include fully valid columns in the report")
	f.BoolVar(&checkOpts.ShowUntested, "show-untested", false, "Include untested columns in the report")
	f.BoolVar(&checkOpts.AllFailed, "all-failed", false, "List every invalid row instead of the first few")
	f.BoolVar(&checkOpts.Strict, "strict", false, "Exit non-zero when any cell is invalid")
	f.Int("max-failed-rows", 0, "Invalid rows listed per test in the table report (0 = system setting)")
	_ = checkCmd.MarkFlagRequired("rules")

	_ = viper.BindPFlag("format", f.Lookup("format"))
	_ = viper.BindPFlag("parallel", f.Lookup("parallel"))
	_ = viper.BindPFlag("workers", f.Lookup("workers"))
	_ = viper.BindPFlag("max-failed-rows", f.Lookup("max-failed-rows"))
}

// resolveCheckOptions layers the config file and DFTEST_* environment under the flags.
func resolveCheckOptions(opts CheckOptions) CheckOptions {
	opts.Format = viper.GetString("format")
	opts.Parallel = viper.GetBool("parallel")
	opts.Workers = viper.GetInt("workers")
	return opts
}

// runCheck implements the core logic for the check command
func runCheck(cc *CommandContext, cmd *cobra.Command, datasetPath string, opts CheckOptions) error {
	if err := opts.ValidateFlags(); err != nil {
		return err
	}
	if opts.Open && len(opts.Columns) == 0 {
		return fmt.Errorf("--open requires at least one --column")
	}

	ctx, cancel := opts.ApplyToContext(cc.Context)
	defer cancel()

	req := dto.ValidateDatasetRequest{
		Metadata:    dto.RequestMetadata{RequestID: uuid.NewString()},
		DatasetPath: datasetPath,
		RulesPath:   opts.RulesPath,
		Execution: dto.ExecutionOptions{
			Parallel:   opts.Parallel,
			MaxWorkers: opts.Workers,
		},
	}
	if opts.Open {
		req.Options = dto.ValidateOptions{OpenColumns: opts.Columns, IncludeColumns: opts.Include}
	}

	resp, err := cc.Container.ValidateDatasetUseCase().Execute(ctx, req)
	if err != nil {
		return err
	}
	res := resp.Results
	summary := res.Summary()

	cc.Logger.Info("validation complete",
		"duration", resp.Metadata.Duration,
		"rows", summary.Rows,
		"tested_columns", summary.TestedColumns,
		"valid_columns", summary.ValidColumns,
		"invalid_cells", summary.InvalidCells)

	// Determine output writer
	writer := cmd.OutOrStdout()
	toFile := opts.OutFile != ""
	if toFile {
		//nolint:gosec // G304: User-controlled output file path is intentional
		file, err := os.Create(opts.OutFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			_ = file.Close() // Best-effort cleanup
		}()
		writer = file
		cc.Logger.Info("writing output", "file", opts.OutFile, "format", opts.Format)
	}

	if !opts.Quiet || toFile {
		maxFailed := viper.GetInt("max-failed-rows")
		if maxFailed <= 0 {
			maxFailed = cc.Container.SystemConfig().MaxFailedRows
		}
		formatter, err := cc.Container.FormatterFactory().Create(opts.Format, writer, ports.FormatterOptions{
			RulesPath:        opts.RulesPath,
			MaxFailedRows:    maxFailed,
			Indent:           true,
			EnableColor:      colorEnabled() && !toFile,
			ShowValidColumns: opts.ShowValid,
			ShowUntested:     opts.ShowUntested,
			Stub:             opts.Stub,
			PrintAllFailed:   opts.AllFailed,
		})
		if err != nil {
			return err
		}
		if err := formatter.Format(res); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
	}

	if opts.Graphs {
		// Charts share stdout with the table report only; structured formats keep stdout clean.
		chartOut := cmd.ErrOrStderr()
		if opts.Format == "table" && !toFile {
			chartOut = cmd.OutOrStdout()
		}
		renderGraphs(chartOut, cc.Container.ChartRenderer(), res, opts.Columns, opts.BinaryHeatmap, cc.Logger)
	}

	if opts.Strict && res.HasInvalid() {
		return fmt.Errorf("check failed: %d invalid cells in %d of %d validated columns",
			summary.InvalidCells, summary.TestedColumns-summary.ValidColumns, summary.TestedColumns)
	}

	return nil
}

// renderGraphs draws the run's charts. Rendering failures are logged and never fail the check.
func renderGraphs(w io.Writer, renderer ports.ChartRenderer, res *results.Results, columns []string, binary bool, logger *slog.Logger) {
	draw := func(name string, fn func() error) {
		if err := fn(); err != nil {
			logger.Warn("failed to render chart", "chart", name, "error", err)
			return
		}
		_, _ = fmt.Fprintln(w) // Best-effort terminal output
	}

	draw("summary", func() error { return renderer.RenderSummary(w, res.SummaryChart()) })
	draw("heatmap", func() error { return renderer.RenderHeatmap(w, res.ValidityHeatmap(binary)) })

	for _, column := range columns {
		col, err := res.ColumnResults(column)
		if err != nil {
			logger.Warn("cannot chart column", "column", column, "error", err)
			continue
		}
		draw(column+" tests", func() error { return renderer.RenderBarChart(w, col.TestsSuccessChart()) })
		draw(column+" rate", func() error { return renderer.RenderBarChart(w, col.TestsRateChart()) })
		draw(column+" validity", func() error { return renderer.RenderPieChart(w, col.ValidityChart()) })
		draw(column+" heatmap", func() error { return renderer.RenderHeatmap(w, col.ValidityHeatmap(binary)) })
	}
}
