package config

import (
	"fmt"

	"github.com/tokenfee/feemap/pkg/core/storage/dbconfig"
	"go.uber.org/zap/zapcore"
)

// ApplicationConfiguration config specific to the node.
type ApplicationConfiguration struct {
	LogLevel        string                   `yaml:"LogLevel"`
	LogPath         string                   `yaml:"LogPath"`
	DBConfiguration dbconfig.DBConfiguration `yaml:"DBConfiguration"`
	Prometheus      BasicService             `yaml:"Prometheus"`
	Pprof           BasicService             `yaml:"Pprof"`
	// ResponderID is the node's network address the fee map digest is
	// appended to.
	ResponderID string `yaml:"ResponderID"`
}

// Validate checks ApplicationConfiguration for internal consistency and returns
// an error if anything inappropriate found.
func (a *ApplicationConfiguration) Validate() error {
	if len(a.LogLevel) > 0 {
		if _, err := zapcore.ParseLevel(a.LogLevel); err != nil {
			return fmt.Errorf("invalid LogLevel: %w", err)
		}
	}
	if err := a.Prometheus.Validate(); err != nil {
		return fmt.Errorf("invalid Prometheus configuration: %w", err)
	}
	if err := a.Pprof.Validate(); err != nil {
		return fmt.Errorf("invalid Pprof configuration: %w", err)
	}
	return nil
}
