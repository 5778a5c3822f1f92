package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/cfdump/pkg/application"
	"github.com/luxfi/cfdump/pkg/database"
)

// NewPartitionsCmd creates the partitions command
func NewPartitionsCmd(app *application.CFDump) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partitions [db-path]",
		Short: "List the column families recorded on disk",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.DBPath(args)
			if err != nil {
				return err
			}
			opts, err := app.DatabaseOptions()
			if err != nil {
				return err
			}

			names, err := database.ListPartitions(path, opts)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	return cmd
}
