package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/domain/dataset"
)

// InitOptions holds the flags of the init command.
type InitOptions struct {
	OutputPath    string
	Columns       []string
	NoInteractive bool
	Force         bool
}

var initOpts InitOptions

var initCmd = &cobra.Command{
	Use:   "init <data.csv|data.parquet>",
	Short: "Generate a starter rules profile from a dataset",
	Long: `Read a dataset, pick the columns to validate and a test kind for each,
and write a YAML rules profile. Types, value lists and numeric bounds are
inferred from the data.

Without --no-interactive the columns and kinds are chosen in a form.`,
	Example: `  dftest init MetObjects.csv
  dftest init MetObjects.csv --no-interactive --column "Object ID" --column Department -o met.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, args []string) error {
		return runInit(cc, cmd, args[0], initOpts)
	}),
}

func init() {
	initCmd.Flags().StringVarP(&initOpts.OutputPath, "output", "o", "rules.yaml", "Output file path")
	initCmd.Flags().StringSliceVar(&initOpts.Columns, "column", nil, "Columns to include (default: all)")
	initCmd.Flags().BoolVar(&initOpts.NoInteractive, "no-interactive", false, "Disable interactive prompts")
	initCmd.Flags().BoolVar(&initOpts.Force, "force", false, "Overwrite an existing output file")
	addCommonFlags(initCmd)

	rootCmd.AddCommand(initCmd)
}

func runInit(cc *CommandContext, cmd *cobra.Command, datasetPath string, opts InitOptions) error {
	if !opts.Force {
		if _, err := os.Stat(opts.OutputPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", opts.OutputPath)
		}
	}

	ds, err := cc.Container.DatasetLoader().Load(cc.Context, datasetPath)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	cc.Logger.Info("dataset loaded", "rows", ds.RowCount(), "columns", len(ds.Columns()))

	generator := NewProfileGenerator(datasetPath)

	columns := opts.Columns
	if len(columns) == 0 && !opts.NoInteractive {
		if columns, err = promptColumns(ds); err != nil {
			return err
		}
	}
	if len(columns) == 0 {
		columns = ds.Columns()
	}

	choices := make([]ColumnChoice, 0, len(columns))
	for _, column := range columns {
		if !dataset.HasColumn(ds, column) {
			return fmt.Errorf("column %q not found in %s", column, datasetPath)
		}
		choice := ColumnChoice{Column: column, Kind: generator.Suggest(ds, column)}
		if !opts.NoInteractive {
			if err := promptKind(&choice); err != nil {
				return err
			}
		}
		choices = append(choices, choice)
	}

	doc, err := generator.Generate(ds, choices)
	if err != nil {
		return fmt.Errorf("profile generation failed: %w", err)
	}
	data, err := generator.Render(doc, cc.Container.RulesLoader().Registry())
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.OutputPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Generated profile with %d tests on %d columns\n", len(choices), len(doc.Columns))
	_, _ = fmt.Fprintf(out, "✓ Profile saved to %s\n", opts.OutputPath)
	_, _ = fmt.Fprintf(out, "Run 'dftest check %s --rules %s' to validate.\n", datasetPath, opts.OutputPath)
	return nil
}

func promptColumns(ds dataset.Dataset) ([]string, error) {
	var selected []string
	options := make([]huh.Option[string], 0, len(ds.Columns()))
	for _, column := range ds.Columns() {
		options = append(options, huh.NewOption(column, column).Selected(true))
	}
	err := huh.NewMultiSelect[string]().
		Title("Select columns to validate").
		Options(options...).
		Value(&selected).
		Run()
	return selected, err
}

func promptKind(choice *ColumnChoice) error {
	err := huh.NewSelect[string]().
		Title(fmt.Sprintf("Test for column %q", choice.Column)).
		Options(
			huh.NewOption("Type (inferred from values)", checks.KindType),
			huh.NewOption("Value list (distinct values)", checks.KindInList),
			huh.NewOption("Numeric range (observed min/max)", checks.KindInRange),
			huh.NewOption("Regular expression", checks.KindMatch),
			huh.NewOption("Not equal to a sentinel", checks.KindNotEqual),
			huh.NewOption("Expression", checks.KindExpr),
		).
		Value(&choice.Kind).
		Run()
	if err != nil {
		return err
	}
	if !NeedsArgument(choice.Kind) {
		return nil
	}

	titles := map[string]string{
		checks.KindMatch:    "Pattern",
		checks.KindNotEqual: "Value to reject",
		checks.KindExpr:     "Expression (value, number, is_number, column)",
	}
	return huh.NewInput().
		Title(titles[choice.Kind]).
		Value(&choice.Argument).
		Validate(func(s string) error {
			if s == "" {
				return fmt.Errorf("required")
			}
			return nil
		}).
		Run()
}
