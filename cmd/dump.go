package cmd

import (
	"github.com/spf13/cobra"

	"github.com/luxfi/cfdump/configs"
	"github.com/luxfi/cfdump/pkg/application"
	"github.com/luxfi/cfdump/pkg/dump"
)

// NewDumpCmd creates the dump command
func NewDumpCmd(app *application.CFDump) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [db-path]",
		Short: "Print every key and value of every column family",
		Long: `Open the store with the default column family and the numbered column
families, print the configured properties and then every key/value pair
of each column family in order. Handles are released before exit on every
path.`,
		Args: cobra.MaximumNArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			bindFlags(app, cmd, partitionFlagKeys, map[string]string{
				"format":     application.KeyDumpFormat,
				"limit":      application.KeyDumpLimit,
				"properties": application.KeyDumpProperties,
				"keep-going": application.KeyDumpKeepGoing,
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
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
			dumpOpts, err := app.DumpOptions()
			if err != nil {
				return err
			}

			app.Log.Info("Dumping store", "path", path, "engine", opts.Engine, "partitions", len(descriptors), "run_id", app.RunID)
			report := dump.New(cmd.OutOrStdout(), app.Log, app.Metrics, dumpOpts).Run(cmd.Context(), path, descriptors, opts)
			return report.Err()
		},
	}

	addPartitionFlags(cmd)
	cmd.Flags().String("format", "raw", "byte rendering (raw, hex, auto)")
	cmd.Flags().Int("limit", 0, "maximum entries per partition (0 = all)")
	cmd.Flags().StringSlice("properties", configs.DumpProperties, "properties printed after the store is loaded")
	cmd.Flags().Bool("keep-going", false, "continue with the next partition after an iteration error")

	return cmd
}
