package main

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/dftest-dev/dftest/internal/domain/checks"
)

// kindsCmd lists the registered test kinds.
var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the test kinds available in rules files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		listKinds(cmd.OutOrStdout(), checks.DefaultRegistry())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}

func listKinds(w io.Writer, registry *checks.Registry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"Kind", "Aliases", "Usage", "Description"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Usage", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Description", WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
	})
	for _, k := range registry.Kinds() {
		t.AppendRow(table.Row{k.Name, strings.Join(k.Aliases, ", "), k.Usage, k.Description})
	}
	t.Render()
}
