/*
Package transcript implements a domain-separated hashing transcript used to
derive deterministic digests of structured data.

A transcript is a cSHAKE256 instance keyed by its domain (used as the
customization string). Every appended value is written as a single record:

	tag (1 byte) || var-uint label length || label || value

where value is a little-endian fixed-width integer. The tags are 0x01 for
sequence headers (uint64 length), 0x02 for uint32 values and 0x03 for uint64
values. The digest is the first 32 bytes squeezed from the state.
*/
package transcript

import (
	"encoding/hex"

	"github.com/tokenfee/feemap/pkg/io"
	"golang.org/x/crypto/sha3"
)

// DigestSize is the size of a transcript digest in bytes.
const DigestSize = 32

// Record tags.
const (
	seqHeaderTag byte = 0x01
	uint32Tag    byte = 0x02
	uint64Tag    byte = 0x03
)

// Digest is a finalized transcript value.
type Digest [DigestSize]byte

// String returns the lowercase hex representation of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Appender is implemented by values that know how to append themselves to
// a transcript.
type Appender interface {
	AppendToTranscript(label string, t *Transcript)
}

// Transcript accumulates labeled values. It is not safe for concurrent use.
type Transcript struct {
	h sha3.ShakeHash
	w *io.BinWriter
}

// New creates a transcript for the given domain.
func New(domain string) *Transcript {
	h := sha3.NewCShake256(nil, []byte(domain))
	return &Transcript{
		h: h,
		w: io.NewBinWriterFromIO(h),
	}
}

func (t *Transcript) header(tag byte, label string) {
	t.w.WriteB(tag)
	t.w.WriteString(label)
}

// AppendSeqHeader appends the length of a following sequence of n labeled
// elements.
func (t *Transcript) AppendSeqHeader(label string, n uint64) {
	t.header(seqHeaderTag, label)
	t.w.WriteU64LE(n)
}

// AppendUint32 appends a labeled uint32 value.
func (t *Transcript) AppendUint32(label string, v uint32) {
	t.header(uint32Tag, label)
	t.w.WriteU32LE(v)
}

// AppendUint64 appends a labeled uint64 value.
func (t *Transcript) AppendUint64(label string, v uint64) {
	t.header(uint64Tag, label)
	t.w.WriteU64LE(v)
}

// Append appends a value implementing Appender.
func (t *Transcript) Append(label string, a Appender) {
	a.AppendToTranscript(label, t)
}

// Digest returns the current digest. The transcript is not consumed and more
// values can be appended after this call.
func (t *Transcript) Digest() Digest {
	var d Digest
	// ShakeHash reads never fail.
	_, _ = t.h.Clone().Read(d[:])
	return d
}
