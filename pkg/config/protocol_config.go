package config

import (
	"fmt"

	"github.com/tokenfee/feemap/pkg/config/netmode"
	"github.com/tokenfee/feemap/pkg/feemap"
	"github.com/tokenfee/feemap/pkg/token"
)

// ProtocolConfiguration represents the protocol config.
type ProtocolConfiguration struct {
	Magic netmode.Magic `yaml:"Magic"`
	// MinimumFees is the minimum transaction fee by token ID. When omitted,
	// the default fee map (MOB only) is used.
	MinimumFees map[token.ID]uint64 `yaml:"MinimumFees"`
}

// Validate checks ProtocolConfiguration for internal consistency and returns
// an error if anything inappropriate found.
func (p *ProtocolConfiguration) Validate() error {
	if p.MinimumFees != nil {
		if err := feemap.Validate(p.MinimumFees); err != nil {
			return fmt.Errorf("MinimumFees: %w", err)
		}
	}
	return nil
}

// FeeMap returns the fee map built from MinimumFees.
func (p *ProtocolConfiguration) FeeMap() (*feemap.FeeMap, error) {
	if p.MinimumFees == nil {
		return feemap.Default(), nil
	}
	return feemap.New(p.MinimumFees)
}
