package io

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxArraySize is the maximum size of an array which can be decoded.
const MaxArraySize = 0x1000000

// ErrTooBig is returned when a decoded array length exceeds the allowed
// maximum.
var ErrTooBig = errors.New("array is too big")

// ErrNonCanonicalVarUint is returned when a var-uint uses a longer form than
// its value requires.
var ErrNonCanonicalVarUint = errors.New("non-canonical var-uint encoding")

// BinReader is a convenient wrapper around an io.Reader and err object.
// Used to simplify error handling when reading into a struct with many fields.
type BinReader struct {
	r   io.Reader
	uv  [8]byte
	Err error
}

// NewBinReaderFromIO makes a BinReader from io.Reader.
func NewBinReaderFromIO(ior io.Reader) *BinReader {
	return &BinReader{r: ior}
}

// NewBinReaderFromBuf makes a BinReader from a byte buffer.
func NewBinReaderFromBuf(b []byte) *BinReader {
	r := bytes.NewReader(b)
	return NewBinReaderFromIO(r)
}

// Len returns the number of bytes of the unread portion of the buffer if
// reading from bytes.Reader or -1 otherwise.
func (r *BinReader) Len() int {
	var res = -1
	byteReader, ok := r.r.(*bytes.Reader)
	if ok {
		res = byteReader.Len()
	}
	return res
}

// ReadU64LE reads a little-endian encoded uint64 value from the underlying
// io.Reader. On read failures it returns zero.
func (r *BinReader) ReadU64LE() uint64 {
	r.ReadBytes(r.uv[:8])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(r.uv[:8])
}

// ReadU32LE reads a little-endian encoded uint32 value from the underlying
// io.Reader. On read failures it returns zero.
func (r *BinReader) ReadU32LE() uint32 {
	r.ReadBytes(r.uv[:4])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(r.uv[:4])
}

// ReadU16LE reads a little-endian encoded uint16 value from the underlying
// io.Reader. On read failures it returns zero.
func (r *BinReader) ReadU16LE() uint16 {
	r.ReadBytes(r.uv[:2])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(r.uv[:2])
}

// ReadB reads a byte from the underlying io.Reader. On read failures it
// returns zero.
func (r *BinReader) ReadB() byte {
	r.ReadBytes(r.uv[:1])
	if r.Err != nil {
		return 0
	}
	return r.uv[0]
}

// ReadArray reads an array into a value which must be a pointer to a slice.
func ReadArray[Slice ~[]E, E any, P interface {
	*E
	decodable
}](r *BinReader, arr *Slice, maxSize ...int) {
	ms := MaxArraySize
	if len(maxSize) != 0 {
		ms = maxSize[0]
	}
	l := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	if l > uint64(ms) {
		r.Err = fmt.Errorf("%w (%d > %d)", ErrTooBig, l, ms)
		return
	}
	res := make(Slice, l)
	for i := range res {
		P(&res[i]).DecodeBinary(r)
		if r.Err != nil {
			return
		}
	}
	*arr = res
}

// ReadVarUint reads a variable-length-encoded integer from the
// underlying reader. Encodings that are longer than necessary are rejected.
func (r *BinReader) ReadVarUint() uint64 {
	if r.Err != nil {
		return 0
	}

	var b = r.ReadB()

	switch b {
	case 0xfd:
		v := r.ReadU16LE()
		if r.Err == nil && v < 0xfd {
			r.Err = ErrNonCanonicalVarUint
		}
		return uint64(v)
	case 0xfe:
		v := r.ReadU32LE()
		if r.Err == nil && v <= 0xFFFF {
			r.Err = ErrNonCanonicalVarUint
		}
		return uint64(v)
	case 0xff:
		v := r.ReadU64LE()
		if r.Err == nil && v <= 0xFFFFFFFF {
			r.Err = ErrNonCanonicalVarUint
		}
		return v
	}

	return uint64(b)
}

// ReadVarBytes reads the next set of bytes from the underlying reader.
// ReadVarUInt() is used to determine how large that slice is.
func (r *BinReader) ReadVarBytes(maxSize ...int) []byte {
	n := r.ReadVarUint()
	ms := MaxArraySize
	if len(maxSize) != 0 {
		ms = maxSize[0]
	}
	if n > uint64(ms) {
		r.Err = fmt.Errorf("byte-slice is too big (%d)", n)
		return nil
	}
	b := make([]byte, n)
	r.ReadBytes(b)
	return b
}

// ReadBytes copies a fixed-size buffer from the reader to the provided slice.
func (r *BinReader) ReadBytes(buf []byte) {
	if r.Err != nil {
		return
	}

	_, r.Err = io.ReadFull(r.r, buf)
}

// ReadString calls ReadVarBytes and casts the results as a string.
func (r *BinReader) ReadString(maxSize ...int) string {
	b := r.ReadVarBytes(maxSize...)
	return string(b)
}
