package netmode

import "strconv"

const (
	// MainNet contains magic code used in the main network.
	MainNet Magic = 0x4d4f424d // MOBM
	// TestNet contains magic code used in the testing network.
	TestNet Magic = 0x4d4f4254 // MOBT
	// PrivNet contains magic code usually used for private networks.
	PrivNet Magic = 56753
	// UnitTestNet is a stub magic code used for testing purposes.
	UnitTestNet Magic = 42
)

// Magic describes the network the node will operate on.
type Magic uint32

// String implements the stringer interface.
func (n Magic) String() string {
	switch n {
	case PrivNet:
		return "privnet"
	case TestNet:
		return "testnet"
	case MainNet:
		return "mainnet"
	case UnitTestNet:
		return "unit_testnet"
	default:
		return "net 0x" + strconv.FormatUint(uint64(n), 16)
	}
}
