// Package prng builds the seeded generators used by games and agents.
// Every generator is owned by exactly one game or agent; there is no
// package-level source.
package prng

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// pcgStream is the fixed PCG increment shared by all generators, so a
// generator is fully described by its seed.
const pcgStream = 0xda3e39cb94b95bdb

// New returns a deterministic generator for the given seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, pcgStream))
}

// FromEntropy draws a fresh seed from the operating system.
func FromEntropy() uint64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms; the runtime
		// generator is still entropy-seeded.
		return rand.Uint64()
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// Resolve returns seed unchanged, or an entropy seed when seed is zero.
// Command-line flags use zero to mean "pick one for me".
func Resolve(seed uint64) uint64 {
	if seed == 0 {
		return FromEntropy()
	}
	return seed
}

// Derive draws n sub-seeds from a master generator.
// Call it before fanning work out to goroutines: the sequence only depends
// on master and n, never on scheduling.
func Derive(master uint64, n int) []uint64 {
	if n <= 0 {
		return nil
	}
	split := NewSplitter(master)
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = split.Next()
	}
	return seeds
}

// Splitter hands out sub-seeds one at a time from a master generator.
// Not safe for concurrent use.
type Splitter struct {
	rng *rand.Rand
}

// NewSplitter creates a splitter rooted at master.
func NewSplitter(master uint64) *Splitter {
	return &Splitter{rng: New(master)}
}

// Next returns the next sub-seed.
func (s *Splitter) Next() uint64 {
	return s.rng.Uint64()
}
