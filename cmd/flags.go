package cmd

import (
	"github.com/spf13/cobra"

	"github.com/luxfi/cfdump/configs"
	"github.com/luxfi/cfdump/pkg/application"
)

var partitionFlagKeys = map[string]string{
	"partitions":     application.KeyPartitionNames,
	"all":            application.KeyPartitionAll,
	"prefix":         application.KeyPartitionPrefix,
	"count":          application.KeyPartitionCount,
	"create-missing": application.KeyCreateMissingPartitions,
}

// addPartitionFlags declares the flags that choose which partitions to open.
func addPartitionFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("partitions", nil, "partitions to open (default: default plus the numbered partitions)")
	cmd.Flags().Bool("all", false, "open every partition recorded on disk")
	cmd.Flags().String("prefix", configs.DefaultPrefix, "numbered partition name prefix")
	cmd.Flags().Int("count", configs.DefaultCount, "number of numbered partitions")
	cmd.Flags().Bool("create-missing", false, "create requested partitions that are missing (read-write rocksdb only)")
}

// bindFlags binds the flags of the running command. Several commands share
// config keys, so binding happens once the command is chosen.
func bindFlags(app *application.CFDump, cmd *cobra.Command, keys ...map[string]string) {
	for _, k := range keys {
		mustBind(app.Config, cmd.Flags(), k)
	}
}
