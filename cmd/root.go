package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/luxfi/cfdump/pkg/application"
)

var (
	// Version information (set by ldflags)
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var configFile string
	app := application.New()

	rootCmd := &cobra.Command{
		Use:           "cfdump",
		Short:         "Dump and inspect the column families of embedded key-value stores",
		Long:          `Open an existing RocksDB, pebble, LevelDB or badger store, print its diagnostic properties and dump every key and value of every column family.`,
		Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeApp(app, configFile)
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default is ./cfdump.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("engine", "auto", "storage engine (auto, rocksdb, pebble, leveldb, badger)")
	flags.Bool("read-only", false, "open the store read-only")
	mustBind(app.Config, flags, map[string]string{
		"log-level": application.KeyLogLevel,
		"engine":    application.KeyDBEngine,
		"read-only": application.KeyDBReadOnly,
	})

	// Add commands
	rootCmd.AddCommand(NewDumpCmd(app))
	rootCmd.AddCommand(NewPartitionsCmd(app))
	rootCmd.AddCommand(NewStatsCmd(app))
	rootCmd.AddCommand(NewKeysCmd(app))
	rootCmd.AddCommand(NewExportCmd(app))
	rootCmd.AddCommand(NewServeCmd(app))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

func initConfig(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("cfdump")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func initializeApp(app *application.CFDump, configFile string) error {
	if err := initConfig(app.Config, configFile); err != nil {
		return err
	}

	level, err := application.ParseLevel(app.Config.GetString(application.KeyLogLevel))
	if err != nil {
		return err
	}
	app.Setup(application.NewLogger("cfdump", level), app.Config)

	if used := app.Config.ConfigFileUsed(); used != "" {
		app.Log.Debug("Loaded config", "file", used)
	}
	app.Log.Debug("Starting", "run_id", app.RunID, "version", Version)
	return nil
}

// mustBind binds flags to config keys. The flags are declared alongside the
// call, so a missing one is a programming error.
func mustBind(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind --%s: %v", name, err))
		}
	}
}
