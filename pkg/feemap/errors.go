package feemap

import (
	"errors"
	"fmt"

	"github.com/tokenfee/feemap/pkg/token"
)

var (
	// ErrInvalidFee is wrapped by InvalidFeeError.
	ErrInvalidFee = errors.New("invalid fee")
	// ErrMissingFee is wrapped by MissingFeeError.
	ErrMissingFee = errors.New("missing fee")
	// ErrUnsortedEntries is returned when decoding a binary fee map with
	// entries that are not in strictly ascending token order.
	ErrUnsortedEntries = errors.New("fee map entries are not in strictly ascending order")
	// ErrDuplicateToken is returned when decoding a JSON fee map that lists
	// the same token more than once.
	ErrDuplicateToken = errors.New("duplicate token in fee map")
	// ErrNilFeeMap is returned on an attempt to update a nil *FeeMap.
	ErrNilFeeMap = errors.New("nil fee map")
)

// InvalidFeeError is returned for a fee map containing a zero fee. Token is the
// lowest token ID having such a fee.
type InvalidFeeError struct {
	Token token.ID
	Fee   uint64
}

// Error implements the error interface.
func (e *InvalidFeeError) Error() string {
	return fmt.Sprintf("token %s has invalid fee %d", e.Token, e.Fee)
}

// Unwrap returns ErrInvalidFee.
func (e *InvalidFeeError) Unwrap() error {
	return ErrInvalidFee
}

// MissingFeeError is returned for a fee map lacking a mandatory token.
type MissingFeeError struct {
	Token token.ID
}

// Error implements the error interface.
func (e *MissingFeeError) Error() string {
	return fmt.Sprintf("token %s is missing from the fee map", e.Token)
}

// Unwrap returns ErrMissingFee.
func (e *MissingFeeError) Unwrap() error {
	return ErrMissingFee
}
