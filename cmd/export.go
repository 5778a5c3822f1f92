package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/luxfi/cfdump/pkg/application"
	"github.com/luxfi/cfdump/pkg/database"
	"github.com/luxfi/cfdump/pkg/export"
	"github.com/luxfi/cfdump/pkg/render"
)

// NewExportCmd creates the export command
func NewExportCmd(app *application.CFDump) *cobra.Command {
	var (
		format    string
		output    string
		rendering string
	)

	cmd := &cobra.Command{
		Use:   "export [db-path]",
		Short: "Write every column family to a jsonl, yaml or sqlite file",
		Args:  cobra.MaximumNArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			bindFlags(app, cmd, partitionFlagKeys)
		},
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			r, err := render.Parse(rendering)
			if err != nil {
				return err
			}
			if output == "" || (output == "-" && f == export.SQLite) {
				return fmt.Errorf("--output must name a file for %s exports", f)
			}

			path, err := app.DBPath(args)
			if err != nil {
				return err
			}
			opts, err := app.DatabaseOptions()
			if err != nil {
				return err
			}
			descriptors, err := app.Descriptors(path, opts)
			if err != nil {
				return err
			}

			store, err := database.Open(path, descriptors, opts)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, store.Close()) }()

			exporter := export.New(app.Log, f, r)
			var counts map[string]int
			if output == "-" {
				counts, err = exporter.Export(cmd.Context(), store, cmd.OutOrStdout())
			} else {
				counts, err = exporter.ExportFile(cmd.Context(), store, export.Run{
					ID:        app.RunID,
					Source:    path,
					Engine:    store.Engine(),
					CreatedAt: time.Now(),
				}, output)
			}
			if err != nil {
				return err
			}

			total := 0
			for _, n := range counts {
				total += n
			}
			app.Log.Info("Export complete", "output", output, "format", f, "partitions", len(counts), "entries", total, "run_id", app.RunID)
			if output != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries from %d column families to %s\n", total, len(counts), output)
			}
			return nil
		},
	}

	addPartitionFlags(cmd)
	cmd.Flags().StringVar(&format, "format", "jsonl", "export format (jsonl, yaml, sqlite)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (jsonl and yaml only)")
	cmd.Flags().StringVar(&rendering, "render", "auto", "byte rendering for yaml (raw, hex, auto)")

	return cmd
}
