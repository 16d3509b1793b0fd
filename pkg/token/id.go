/*
Package token contains ledger asset identifiers and the protocol-level
properties of the built-in tokens.
*/
package token

import (
	"strconv"

	"github.com/tokenfee/feemap/pkg/crypto/transcript"
	"github.com/tokenfee/feemap/pkg/io"
)

// ID identifies an asset on the ledger.
type ID uint32

// MOB is the ID of the ledger's base asset.
const MOB ID = 0

// String implements the fmt.Stringer interface.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// EncodeBinary implements the io.Serializable interface.
func (id ID) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(uint32(id))
}

// DecodeBinary implements the io.Serializable interface.
func (id *ID) DecodeBinary(r *io.BinReader) {
	*id = ID(r.ReadU32LE())
}

// AppendToTranscript implements the transcript.Appender interface.
func (id ID) AppendToTranscript(label string, t *transcript.Transcript) {
	t.AppendUint32(label, uint32(id))
}
