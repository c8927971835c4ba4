// Package request implements the parameter codec carried by randomness
// requests across the attestation boundary.
//
// The wire form is UTF-8 text of comma separated KEY=VALUE pairs:
//
//	PID=0x…,MAX_VALUE=254,GLOBAL=0x…,MINT=0x…,
//
// Unknown keys and empty segments are ignored.
package request

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tos-network/feecycle/common"
)

// ErrArgParseFail is returned when request parameters are malformed or
// incomplete.
var ErrArgParseFail = errors.New("request: argument parse failure")

const (
	keyProgramID = "PID"
	keyMaxValue  = "MAX_VALUE"
	keyGlobal    = "GLOBAL"
	keyMint      = "MINT"
)

// Params are the parameters a worker needs to service a request. They only
// cross the wire in the form produced by Encode.
type Params struct {
	ProgramID common.Address // program receiving the callback
	MaxValue  uint8          // inclusive upper sampling bound
	Global    common.Address // schedule record
	Mint      common.Address // governed token
}

// Encode formats p in its wire form.
func (p *Params) Encode() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s=%s,", keyProgramID, p.ProgramID.Hex())
	fmt.Fprintf(&b, "%s=%d,", keyMaxValue, p.MaxValue)
	fmt.Fprintf(&b, "%s=%s,", keyGlobal, p.Global.Hex())
	fmt.Fprintf(&b, "%s=%s,", keyMint, p.Mint.Hex())
	return []byte(b.String())
}

// Decode parses wire-form parameters. Every field must be present and
// non-zero.
func Decode(data []byte) (*Params, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrArgParseFail)
	}
	var (
		p   Params
		err error
	)
	for _, pair := range strings.Split(string(data), ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		switch key {
		case keyProgramID:
			p.ProgramID, err = parseIdentity(key, value)
		case keyGlobal:
			p.Global, err = parseIdentity(key, value)
		case keyMint:
			p.Mint, err = parseIdentity(key, value)
		case keyMaxValue:
			var n uint64
			n, err = strconv.ParseUint(value, 10, 8)
			if err != nil {
				err = fmt.Errorf("%w: %s: %v", ErrArgParseFail, key, err)
			}
			p.MaxValue = uint8(n)
		}
		if err != nil {
			return nil, err
		}
	}
	switch {
	case p.ProgramID.IsZero():
		return nil, fmt.Errorf("%w: %s cannot be undefined", ErrArgParseFail, keyProgramID)
	case p.Global.IsZero():
		return nil, fmt.Errorf("%w: %s cannot be undefined", ErrArgParseFail, keyGlobal)
	case p.Mint.IsZero():
		return nil, fmt.Errorf("%w: %s cannot be undefined", ErrArgParseFail, keyMint)
	case p.MaxValue == 0:
		return nil, fmt.Errorf("%w: %s must be greater than 0", ErrArgParseFail, keyMaxValue)
	}
	return &p, nil
}

func parseIdentity(key, value string) (common.Address, error) {
	addr, err := common.ParseAddress(value)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %s: %v", ErrArgParseFail, key, err)
	}
	return addr, nil
}
