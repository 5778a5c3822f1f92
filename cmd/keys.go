package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/cfdump/pkg/application"
	"github.com/luxfi/cfdump/pkg/database"
	"github.com/luxfi/cfdump/pkg/inspect"
	"github.com/luxfi/cfdump/pkg/render"
)

// NewKeysCmd creates the keys command
func NewKeysCmd(app *application.CFDump) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "keys [db-path]",
		Short: "Show the key prefix distribution of each column family",
		Args:  cobra.MaximumNArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			bindFlags(app, cmd, partitionFlagKeys)
		},
		RunE: func(cmd *cobra.Command, args []string) (err error) {
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

			inspector := inspect.NewInspector(store)
			for _, p := range store.Partitions() {
				stats, err := inspector.KeyStats(cmd.Context(), p.Name(), limit)
				if err != nil {
					return err
				}
				printKeyStats(cmd, stats)
			}
			return nil
		},
	}

	addPartitionFlags(cmd)
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of keys to examine per partition (0 = all)")

	return cmd
}

func printKeyStats(cmd *cobra.Command, stats *inspect.KeyStats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Column family: %s\n", stats.Partition)
	fmt.Fprintf(out, "  Keys: %d, key bytes: %d, value bytes: %d\n", stats.Keys, stats.KeyBytes, stats.ValueBytes)
	defer fmt.Fprintln(out)
	if stats.Keys == 0 {
		return
	}

	fmt.Fprintf(out, "  Key prefix distribution:\n")
	for _, pc := range stats.Prefixes {
		fmt.Fprintf(out, "    %s: %d keys\n", prefixLabel(pc.Prefix), pc.Count)
	}
	fmt.Fprintf(out, "  Sample keys:\n")
	for _, key := range stats.Samples {
		fmt.Fprintf(out, "    %s\n", render.Auto.Bytes(key))
	}
}

func prefixLabel(b byte) string {
	if render.Printable([]byte{b}) {
		return fmt.Sprintf("0x%02x %q", b, b)
	}
	return fmt.Sprintf("0x%02x", b)
}
