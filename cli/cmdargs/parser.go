/*
Package cmdargs contains helper functions for positional argument handling.
*/
package cmdargs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tokenfee/feemap/pkg/token"
	"github.com/urfave/cli"
)

// FeeSeparator separates token from its fee in a positional argument.
const FeeSeparator = ":"

// ErrNoFees is returned by ParseFees for an empty argument list.
var ErrNoFees = errors.New("no fees given")

// EnsureNone returns an error if there are any positional arguments present.
// It can be used to check for them in commands that don't accept arguments.
func EnsureNone(ctx *cli.Context) *cli.ExitError {
	if ctx.Args().Present() {
		return cli.NewExitError("additional arguments given while this command expects none", 1)
	}
	return nil
}

// GetFeesFromContext parses fees given as positional arguments. It returns nil
// map if there are none.
func GetFeesFromContext(ctx *cli.Context) (map[token.ID]uint64, *cli.ExitError) {
	if !ctx.Args().Present() {
		return nil, nil
	}
	fees, err := ParseFees(ctx.Args())
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	return fees, nil
}

// ParseFees parses a list of "token:fee" pairs where token is either a
// built-in token name or a decimal token ID. The same token can't be given
// twice. Fees are not validated.
func ParseFees(args []string) (map[token.ID]uint64, error) {
	if len(args) == 0 {
		return nil, ErrNoFees
	}
	fees := make(map[token.ID]uint64, len(args))
	for _, arg := range args {
		id, fee, err := parseFee(arg)
		if err != nil {
			return nil, err
		}
		if _, ok := fees[id]; ok {
			return nil, fmt.Errorf("duplicate fee for token %s", token.Name(id))
		}
		fees[id] = fee
	}
	return fees, nil
}

func parseFee(s string) (token.ID, uint64, error) {
	name, value, ok := strings.Cut(s, FeeSeparator)
	if !ok {
		return 0, 0, fmt.Errorf("invalid fee %q: expected token%sfee", s, FeeSeparator)
	}
	id, err := parseToken(name)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid fee %q: %w", s, err)
	}
	fee, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid fee %q: %w", s, err)
	}
	return id, fee, nil
}

func parseToken(s string) (token.ID, error) {
	if t, ok := token.FromString(s); ok {
		return t.ID(), nil
	}
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown token %q", s)
	}
	return token.ID(id), nil
}
