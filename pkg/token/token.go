package token

// MicroMOBToPicoMOB is the number of picoMOB in one microMOB.
const MicroMOBToPicoMOB uint64 = 1_000_000

// MobMinimumFee is the minimum MOB transaction fee, in picoMOB.
const MobMinimumFee = 400 * MicroMOBToPicoMOB

// Token describes a built-in token known to the protocol.
type Token interface {
	// ID returns the token's identifier.
	ID() ID
	// MinimumFee returns the protocol minimum fee in the token's smallest unit.
	MinimumFee() uint64
	String() string
}

// Mob is the base ledger asset.
type Mob struct{}

var _ Token = Mob{}

// ID implements the Token interface.
func (Mob) ID() ID { return MOB }

// MinimumFee implements the Token interface.
func (Mob) MinimumFee() uint64 { return MobMinimumFee }

// String implements the Token interface.
func (Mob) String() string { return "MOB" }

// known is the closed set of built-in tokens ordered by ID.
var known = []Token{
	Mob{},
}

// Known returns all built-in tokens ordered by ID.
func Known() []Token {
	res := make([]Token, len(known))
	copy(res, known)
	return res
}

// ByID returns the built-in token with the given ID.
func ByID(id ID) (Token, bool) {
	for _, t := range known {
		if t.ID() == id {
			return t, true
		}
	}
	return nil, false
}

// FromString returns the built-in token with the given name.
func FromString(s string) (Token, bool) {
	for _, t := range known {
		if t.String() == s {
			return t, true
		}
	}
	return nil, false
}

// Name returns the name of the built-in token with the given ID or its
// decimal representation for unknown tokens.
func Name(id ID) string {
	if t, ok := ByID(id); ok {
		return t.String()
	}
	return id.String()
}
