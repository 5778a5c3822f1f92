package application

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/luxfi/cfdump/configs"
	"github.com/luxfi/cfdump/pkg/core"
	"github.com/luxfi/cfdump/pkg/database"
	"github.com/luxfi/cfdump/pkg/dump"
	"github.com/luxfi/cfdump/pkg/render"
)

// Configuration keys.
const (
	KeyDBPath                  = "db.path"
	KeyDBEngine                = "db.engine"
	KeyDBReadOnly              = "db.read_only"
	KeyCreateMissingPartitions = "db.create_missing_partitions"
	KeyPartitionNames          = "partitions.names"
	KeyPartitionPrefix         = "partitions.prefix"
	KeyPartitionCount          = "partitions.count"
	KeyPartitionAll            = "partitions.all"
	KeyDumpProperties          = "dump.properties"
	KeyDumpFormat              = "dump.format"
	KeyDumpLimit               = "dump.limit"
	KeyDumpKeepGoing           = "dump.keep_going"
	KeyServeAddr               = "serve.addr"
	KeyLogLevel                = "log.level"
)

// EnvPrefix is prepended to every environment override, CFDUMP_DB_PATH etc.
const EnvPrefix = "CFDUMP"

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDBPath, "")
	v.SetDefault(KeyDBEngine, string(database.EngineAuto))
	v.SetDefault(KeyDBReadOnly, false)
	v.SetDefault(KeyCreateMissingPartitions, false)
	v.SetDefault(KeyPartitionNames, []string{})
	v.SetDefault(KeyPartitionPrefix, configs.DefaultPrefix)
	v.SetDefault(KeyPartitionCount, configs.DefaultCount)
	v.SetDefault(KeyPartitionAll, false)
	v.SetDefault(KeyDumpProperties, configs.DumpProperties)
	v.SetDefault(KeyDumpFormat, string(render.Raw))
	v.SetDefault(KeyDumpLimit, 0)
	v.SetDefault(KeyDumpKeepGoing, false)
	v.SetDefault(KeyServeAddr, ":8080")
	v.SetDefault(KeyLogLevel, "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// DBPath returns the store path from the first argument or db.path.
func (c *CFDump) DBPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if p := c.Config.GetString(KeyDBPath); p != "" {
		return p, nil
	}
	return "", core.ErrInvalidConfig(KeyDBPath, "no store path given")
}

// DatabaseOptions builds the options used to open the store.
func (c *CFDump) DatabaseOptions() (database.Options, error) {
	engine, err := database.ParseEngine(c.Config.GetString(KeyDBEngine))
	if err != nil {
		return database.Options{}, core.ErrInvalidConfig(KeyDBEngine, err.Error())
	}
	return database.Options{
		Engine:                  engine,
		ReadOnly:                c.Config.GetBool(KeyDBReadOnly),
		CreateMissingPartitions: c.Config.GetBool(KeyCreateMissingPartitions),
		Metrics:                 c.Metrics,
	}, nil
}

// Descriptors resolves the partitions to open for the store at path.
// An explicit list wins over partitions.all, which wins over prefix/count.
func (c *CFDump) Descriptors(path string, opts database.Options) ([]string, error) {
	if names := c.Config.GetStringSlice(KeyPartitionNames); len(names) > 0 {
		return database.NormalizeDescriptors(names), nil
	}
	if c.Config.GetBool(KeyPartitionAll) {
		return database.ListPartitions(path, opts)
	}

	count := c.Config.GetInt(KeyPartitionCount)
	if count < 0 {
		return nil, core.ErrInvalidConfigf(KeyPartitionCount, "must not be negative, got %d", count)
	}
	prefix := c.Config.GetString(KeyPartitionPrefix)
	if prefix == "" && count > 0 {
		return nil, core.ErrInvalidConfig(KeyPartitionPrefix, "must not be empty")
	}
	return configs.Descriptors(prefix, count), nil
}

// DumpOptions builds the dump options.
func (c *CFDump) DumpOptions() (dump.Options, error) {
	format, err := render.Parse(c.Config.GetString(KeyDumpFormat))
	if err != nil {
		return dump.Options{}, core.ErrInvalidConfig(KeyDumpFormat, err.Error())
	}
	limit := c.Config.GetInt(KeyDumpLimit)
	if limit < 0 {
		return dump.Options{}, core.ErrInvalidConfigf(KeyDumpLimit, "must not be negative, got %d", limit)
	}
	return dump.Options{
		Format:     format,
		Limit:      limit,
		Properties: c.Config.GetStringSlice(KeyDumpProperties),
		KeepGoing:  c.Config.GetBool(KeyDumpKeepGoing),
	}, nil
}
