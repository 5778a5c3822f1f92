package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luxfi/cfdump/configs"
	"github.com/luxfi/cfdump/pkg/application"
	"github.com/luxfi/cfdump/pkg/database"
)

// NewStatsCmd creates the stats command
func NewStatsCmd(app *application.CFDump) *cobra.Command {
	var (
		properties  []string
		unavailable bool
	)

	cmd := &cobra.Command{
		Use:   "stats [db-path]",
		Short: "Print the engine's diagnostic properties",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			path, err := app.DBPath(args)
			if err != nil {
				return err
			}
			opts, err := app.DatabaseOptions()
			if err != nil {
				return err
			}

			store, err := database.Open(path, nil, opts)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, store.Close()) }()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Store: %s\n", store.Path())
			fmt.Fprintf(out, "Engine: %s\n\n", store.Engine())

			shown := 0
			for _, name := range properties {
				value, ok := store.Property(name)
				if !ok {
					if unavailable {
						fmt.Fprintf(out, "%s: (unavailable)\n", name)
					}
					continue
				}
				shown++
				value = strings.TrimRight(value, "\n")
				if strings.Contains(value, "\n") {
					fmt.Fprintf(out, "%s:\n%s\n", name, value)
				} else {
					fmt.Fprintf(out, "%s: %s\n", name, value)
				}
			}
			if shown == 0 {
				fmt.Fprintln(out, "No properties available")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&properties, "properties", configs.StatsProperties, "properties to print")
	cmd.Flags().BoolVar(&unavailable, "show-unavailable", false, "also list properties the engine does not know")

	return cmd
}
