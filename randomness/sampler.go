// Package randomness draws bounded random values from an attested entropy
// source.
package randomness

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/tos-network/feecycle/metrics"
)

// ErrSamplingFailure is returned when the entropy source cannot supply bytes.
var ErrSamplingFailure = errors.New("randomness: sampling failure")

// drawSize is the number of entropy bytes consumed by one sample. Only the
// first byte is used for reduction.
const drawSize = 4

var (
	sampleMeter        = metrics.NewRegisteredCounter("randomness/samples", "Values sampled.")
	sampleFailureMeter = metrics.NewRegisteredCounter("randomness/failures", "Entropy reads that failed.")
)

// EntropySource supplies attested random bytes.
type EntropySource interface {
	io.Reader
}

// SystemEntropy reads from the host's cryptographic random generator, which
// inside an enclave is backed by the hardware source.
var SystemEntropy EntropySource = rand.Reader

// Sampler draws values uniformly from inclusive ranges.
type Sampler struct {
	src EntropySource
}

// NewSampler returns a sampler over src.
func NewSampler(src EntropySource) *Sampler {
	return &Sampler{src: src}
}

// Sample returns a value in the inclusive range between min and max. The
// bounds may be given in either order. A failed entropy read is returned as
// ErrSamplingFailure and is never replaced by a fallback value.
func (s *Sampler) Sample(min, max uint8) (uint8, error) {
	if min == max {
		return min, nil
	}
	if min > max {
		min, max = max, min
	}
	// 16 bits so that the full 0..255 range yields a window of 256.
	window := uint16(max) + 1 - uint16(min)

	var buf [drawSize]byte
	if _, err := io.ReadFull(s.src, buf[:]); err != nil {
		sampleFailureMeter.Inc()
		return 0, fmt.Errorf("%w: %v", ErrSamplingFailure, err)
	}
	sampleMeter.Inc()
	return uint8(uint16(buf[0])%window + uint16(min)), nil
}
