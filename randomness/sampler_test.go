package randomness

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

// fixedEntropy repeats its byte forever.
type fixedEntropy byte

func (f fixedEntropy) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(f)
	}
	return len(p), nil
}

type failingEntropy struct{}

func (failingEntropy) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestSampleDegenerate(t *testing.T) {
	s := NewSampler(failingEntropy{})
	v, err := s.Sample(9, 9)
	require.NoError(t, err)
	require.Equal(t, uint8(9), v)
}

func TestSampleFullRange(t *testing.T) {
	for b := 0; b < 256; b++ {
		v, err := NewSampler(fixedEntropy(b)).Sample(0, 255)
		require.NoError(t, err)
		require.Equal(t, uint8(b), v)
	}
}

func TestSampleReduction(t *testing.T) {
	v, err := NewSampler(fixedEntropy(200)).Sample(1, 254)
	require.NoError(t, err)
	require.Equal(t, uint8(200%254+1), v)
}

func TestSampleFailure(t *testing.T) {
	_, err := NewSampler(failingEntropy{}).Sample(1, 254)
	require.True(t, errors.Is(err, ErrSamplingFailure), "got %v", err)

	short := bytes.NewReader([]byte{1, 2})
	_, err = NewSampler(short).Sample(1, 254)
	require.True(t, errors.Is(err, ErrSamplingFailure), "got %v", err)
}

func TestSampleProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("sample stays within range", prop.ForAll(
		func(a, b, e uint8) bool {
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			v, err := NewSampler(fixedEntropy(e)).Sample(a, b)
			return err == nil && v >= lo && v <= hi
		},
		gen.UInt8(), gen.UInt8(), gen.UInt8(),
	))

	properties.Property("argument order does not matter", prop.ForAll(
		func(a, b, e uint8) bool {
			v1, err1 := NewSampler(fixedEntropy(e)).Sample(a, b)
			v2, err2 := NewSampler(fixedEntropy(e)).Sample(b, a)
			return err1 == nil && err2 == nil && v1 == v2
		},
		gen.UInt8(), gen.UInt8(), gen.UInt8(),
	))

	properties.Property("degenerate range returns min", prop.ForAll(
		func(a, e uint8) bool {
			v, err := NewSampler(fixedEntropy(e)).Sample(a, a)
			return err == nil && v == a
		},
		gen.UInt8(), gen.UInt8(),
	))

	properties.TestingRun(t)
}
