package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/luxfi/cfdump/pkg/application"
	"github.com/luxfi/cfdump/pkg/database"
	"github.com/luxfi/cfdump/pkg/server"
)

// NewServeCmd creates the serve command
func NewServeCmd(app *application.CFDump) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [db-path]",
		Short: "Browse a store read-only over HTTP",
		Long:  "Open the store read-only and serve its column families, properties and metrics as JSON until interrupted.",
		Args:  cobra.MaximumNArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			bindFlags(app, cmd, partitionFlagKeys, map[string]string{
				"addr": application.KeyServeAddr,
			})
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
			opts.ReadOnly = true
			descriptors, err := app.Descriptors(path, opts)
			if err != nil {
				return err
			}

			store, err := database.Open(path, descriptors, opts)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, store.Close()) }()

			srv := server.New(store, app.Registry, app.Log, app.Config.GetString(application.KeyServeAddr))
			if err := srv.Start(); err != nil {
				return err
			}

			<-cmd.Context().Done()
			app.Log.Info("Shutting down HTTP server")
			return srv.Stop()
		},
	}

	addPartitionFlags(cmd)
	cmd.Flags().String("addr", ":8080", "listen address for the HTTP server")

	return cmd
}
