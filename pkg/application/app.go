package application

import (
	"github.com/google/uuid"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/luxfi/cfdump/pkg/metrics"
)

// CFDump is the application context shared by every command.
type CFDump struct {
	Log      log.Logger
	Config   *viper.Viper
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// RunID identifies this invocation in logs and exports.
	RunID string
}

// New creates an application context with defaults applied to a fresh
// viper instance. Setup replaces the logger and config once flags are parsed.
func New() *CFDump {
	v := viper.New()
	SetDefaults(v)
	return &CFDump{
		Log:    log.NewLogger("cfdump"),
		Config: v,
	}
}

// Setup initializes the application with dependencies
func (c *CFDump) Setup(logger log.Logger, config *viper.Viper) {
	c.Log = logger
	c.Config = config
	c.Registry = prometheus.NewRegistry()
	c.Metrics = metrics.New(c.Registry)
	c.RunID = uuid.Must(uuid.NewV7()).String()
}
