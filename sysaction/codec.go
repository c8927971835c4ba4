package sysaction

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidSysAction is returned when instruction data cannot be decoded.
var ErrInvalidSysAction = errors.New("invalid system action payload")

// Decode parses a SysAction from raw instruction data.
func Decode(data []byte) (*SysAction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidSysAction)
	}
	if len(data) < DiscriminatorLength {
		return nil, fmt.Errorf("%w: short discriminator (%d bytes)", ErrInvalidSysAction, len(data))
	}
	sa := &SysAction{Payload: data[DiscriminatorLength:]}
	copy(sa.Action[:], data[:DiscriminatorLength])
	return sa, nil
}

// DecodePayload unmarshals a JSON payload into dst.
func DecodePayload(sa *SysAction, dst interface{}) error {
	if len(sa.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(sa.Payload, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSysAction, err)
	}
	return nil
}

// Encode serialises a SysAction to instruction data.
func Encode(sa *SysAction) []byte {
	out := make([]byte, DiscriminatorLength+len(sa.Payload))
	copy(out, sa.Action[:])
	copy(out[DiscriminatorLength:], sa.Payload)
	return out
}

// MakeSysAction is a convenience helper that creates and encodes a SysAction
// with a JSON payload. A nil payload produces a bare discriminator.
func MakeSysAction(kind ActionKind, payload interface{}) ([]byte, error) {
	var raw []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return Encode(&SysAction{Action: kind, Payload: raw}), nil
}
