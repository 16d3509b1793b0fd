package feemap

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tokenfee/feemap/pkg/io"
	"github.com/tokenfee/feemap/pkg/token"
	"gopkg.in/yaml.v3"
)

// MaxEntries is the maximum number of entries accepted when decoding a binary
// fee map.
const MaxEntries = 4096

var (
	_ io.Serializable  = (*FeeMap)(nil)
	_ json.Marshaler   = (*FeeMap)(nil)
	_ json.Unmarshaler = (*FeeMap)(nil)
	_ yaml.Marshaler   = (*FeeMap)(nil)
	_ yaml.Unmarshaler = (*FeeMap)(nil)
)

// EncodeBinary implements the io.Serializable interface.
func (e Entry) EncodeBinary(w *io.BinWriter) {
	e.Token.EncodeBinary(w)
	w.WriteU64LE(e.Fee)
}

// DecodeBinary implements the io.Serializable interface.
func (e *Entry) DecodeBinary(r *io.BinReader) {
	e.Token.DecodeBinary(r)
	e.Fee = r.ReadU64LE()
}

// EncodeBinary implements the io.Serializable interface. Entries are written
// in ascending token order.
func (m *FeeMap) EncodeBinary(w *io.BinWriter) {
	entries, _ := m.state()
	io.WriteArray(w, entries)
}

// DecodeBinary implements the io.Serializable interface. Entries must be in
// strictly ascending token order and form a valid fee map, otherwise m is
// left unchanged and r.Err is set. At most MaxEntries entries are accepted.
func (m *FeeMap) DecodeBinary(r *io.BinReader) {
	var entries []Entry
	io.ReadArray(r, &entries, MaxEntries)
	if r.Err != nil {
		return
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Token >= entries[i].Token {
			r.Err = ErrUnsortedEntries
			return
		}
	}
	if err := validateEntries(entries); err != nil {
		r.Err = err
		return
	}
	m.entries = entries
	m.digest = calcDigest(entries)
}

// MarshalJSON implements the json.Marshaler interface. The fee map is
// encoded as an array of entries in ascending token order.
func (m *FeeMap) MarshalJSON() ([]byte, error) {
	entries, _ := m.state()
	return json.Marshal(entries)
}

// UnmarshalJSON implements the json.Unmarshaler interface. Entries may come
// in any order, but every token can only be listed once.
func (m *FeeMap) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	fees := make(map[token.ID]uint64, len(entries))
	for _, e := range entries {
		if _, ok := fees[e.Token]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateToken, e.Token)
		}
		fees[e.Token] = e.Fee
	}
	res, err := New(fees)
	if err != nil {
		return err
	}
	*m = *res
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface. The fee map is
// encoded as a token to fee mapping in ascending token order.
func (m *FeeMap) MarshalYAML() (any, error) {
	entries, _ := m.state()
	node := &yaml.Node{
		Kind:    yaml.MappingNode,
		Tag:     "!!map",
		Content: make([]*yaml.Node, 0, 2*len(entries)),
	}
	for _, e := range entries {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: e.Token.String()},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatUint(e.Fee, 10)},
		)
	}
	return node, nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (m *FeeMap) UnmarshalYAML(node *yaml.Node) error {
	var fees map[token.ID]uint64
	if err := node.Decode(&fees); err != nil {
		return err
	}
	res, err := New(fees)
	if err != nil {
		return err
	}
	*m = *res
	return nil
}
