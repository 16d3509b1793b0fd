/*
Package feemap implements a validated per-token minimum fee schedule along with
its digest.

A FeeMap always contains a positive fee for every token it lists and always
lists MOB. Its digest is recomputed on every change, so FeeMap.Digest never
returns a value for older contents. FeeMap doesn't synchronize access, callers
sharing it between goroutines must serialize UpdateOrDefault with respect to
readers.
*/
package feemap

import (
	"slices"
	"sort"

	"github.com/tokenfee/feemap/pkg/token"
)

// Entry is a single token fee.
type Entry struct {
	Token token.ID `json:"token_id"`
	Fee   uint64   `json:"fee"`
}

// ResponderID is an opaque network peer identifier.
type ResponderID string

// FeeMap is a validated map of minimum fees by token. The zero value is
// equivalent to the one returned from Default.
type FeeMap struct {
	// entries are sorted by token in ascending order.
	entries []Entry
	digest  string
}

var defaultFeeMap = func() FeeMap {
	entries := []Entry{{Token: token.MOB, Fee: token.MobMinimumFee}}
	return FeeMap{entries: entries, digest: calcDigest(entries)}
}()

// DefaultMap returns the default token to fee mapping which only contains
// MOB with its protocol minimum fee.
func DefaultMap() map[token.ID]uint64 {
	return map[token.ID]uint64{token.MOB: token.MobMinimumFee}
}

// Default returns a fee map containing only the MOB minimum fee.
func Default() *FeeMap {
	return defaultFeeMap.Copy()
}

// New validates the given fees and creates a FeeMap from them.
func New(fees map[token.ID]uint64) (*FeeMap, error) {
	entries := toEntries(fees)
	if err := validateEntries(entries); err != nil {
		return nil, err
	}
	return &FeeMap{entries: entries, digest: calcDigest(entries)}, nil
}

// NewFromEntries creates a FeeMap from entries given in any order. If a token
// is listed more than once, the last entry for it is used.
func NewFromEntries(entries ...Entry) (*FeeMap, error) {
	fees := make(map[token.ID]uint64, len(entries))
	for _, e := range entries {
		fees[e.Token] = e.Fee
	}
	return New(fees)
}

// Validate checks whether the given fees can form a FeeMap. It returns
// InvalidFeeError for the lowest token with a zero fee or MissingFeeError if
// there is no MOB fee.
func Validate(fees map[token.ID]uint64) error {
	return validateEntries(toEntries(fees))
}

func validateEntries(entries []Entry) error {
	for _, e := range entries {
		if e.Fee == 0 {
			return &InvalidFeeError{Token: e.Token, Fee: e.Fee}
		}
	}
	if _, ok := search(entries, token.MOB); !ok {
		return &MissingFeeError{Token: token.MOB}
	}
	return nil
}

func toEntries(fees map[token.ID]uint64) []Entry {
	entries := make([]Entry, 0, len(fees))
	for id, fee := range fees {
		entries = append(entries, Entry{Token: id, Fee: fee})
	}
	sortEntries(entries)
	return entries
}

func sortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		switch {
		case a.Token < b.Token:
			return -1
		case a.Token > b.Token:
			return 1
		}
		return 0
	})
}

func search(entries []Entry, id token.ID) (int, bool) {
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].Token >= id
	})
	return i, i < len(entries) && entries[i].Token == id
}

// state returns the entries and digest, substituting the defaults for a
// zero FeeMap.
func (m *FeeMap) state() ([]Entry, string) {
	if m == nil || m.entries == nil {
		return defaultFeeMap.entries, defaultFeeMap.digest
	}
	return m.entries, m.digest
}

// Fee returns the minimum fee for the given token and whether it's set.
func (m *FeeMap) Fee(id token.ID) (uint64, bool) {
	entries, _ := m.state()
	i, ok := search(entries, id)
	if !ok {
		return 0, false
	}
	return entries[i].Fee, true
}

// UpdateOrDefault replaces the contents of m with the given fees or resets it
// to the default map if fees is nil. An empty non-nil map is validated like
// any other (and fails). On error m is left unchanged. A nil m can't be
// updated, ErrNilFeeMap is returned for it.
func (m *FeeMap) UpdateOrDefault(fees map[token.ID]uint64) error {
	if m == nil {
		return ErrNilFeeMap
	}
	if fees == nil {
		*m = *Default()
		return nil
	}
	entries := toEntries(fees)
	if err := validateEntries(entries); err != nil {
		return err
	}
	m.entries = entries
	m.digest = calcDigest(entries)
	return nil
}

// Iterate calls f for every entry in ascending token order until f returns
// false.
func (m *FeeMap) Iterate(f func(id token.ID, fee uint64) bool) {
	entries, _ := m.state()
	for _, e := range entries {
		if !f(e.Token, e.Fee) {
			return
		}
	}
}

// Entries returns a copy of all entries in ascending token order.
func (m *FeeMap) Entries() []Entry {
	entries, _ := m.state()
	return slices.Clone(entries)
}

// Map returns a copy of the fee map contents.
func (m *FeeMap) Map() map[token.ID]uint64 {
	entries, _ := m.state()
	res := make(map[token.ID]uint64, len(entries))
	for _, e := range entries {
		res[e.Token] = e.Fee
	}
	return res
}

// Len returns the number of tokens having a fee.
func (m *FeeMap) Len() int {
	entries, _ := m.state()
	return len(entries)
}

// Digest returns the hex-encoded digest of the fee map contents.
func (m *FeeMap) Digest() string {
	_, d := m.state()
	return d
}

// ResponderID appends the fee map digest to the given responder ID, producing
// an ID that is unique to the current fee configuration.
func (m *FeeMap) ResponderID(id ResponderID) ResponderID {
	return id + "-" + ResponderID(m.Digest())
}

// Copy returns a deep copy of m.
func (m *FeeMap) Copy() *FeeMap {
	entries, digest := m.state()
	return &FeeMap{entries: slices.Clone(entries), digest: digest}
}

// Equals checks whether both fee maps have the same contents.
func (m *FeeMap) Equals(other *FeeMap) bool {
	a, _ := m.state()
	b, _ := other.state()
	return slices.Equal(a, b)
}
