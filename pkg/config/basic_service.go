package config

import "errors"

// BasicService is used as a simple base for node services like Prometheus
// monitoring.
type BasicService struct {
	Enabled bool `yaml:"Enabled"`
	// Addresses holds the list of bind addresses in the form of "address:port".
	Addresses []string `yaml:"Addresses"`
}

// Validate returns an error if the service is enabled without any address to
// bind to.
func (s BasicService) Validate() error {
	if s.Enabled && len(s.Addresses) == 0 {
		return errors.New("no bind addresses configured")
	}
	return nil
}
