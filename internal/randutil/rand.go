// Package randutil derives reproducible random sources from integer seeds.
package randutil

import (
	"encoding/binary"
	"io"
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Every shuffle and bot decision in a session draws from one of these, so
// replaying a session with the same seed replays the same hands.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewFromTime seeds from the wall clock, for runs that were not given a seed.
func NewFromTime() (*rand.Rand, int64) {
	seed := time.Now().UnixNano()
	return New(seed), seed
}

// Derive returns an independent generator seeded from rng. Tables running in
// parallel each get their own so they never share a source.
func Derive(rng *rand.Rand) *rand.Rand {
	return rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
}

// Reader adapts a *rand.Rand to io.Reader so byte-oriented consumers such as
// UUID generation stay on the seeded source.
func Reader(rng *rand.Rand) io.Reader {
	return &reader{rng: rng}
}

type reader struct {
	rng *rand.Rand
}

func (r *reader) Read(p []byte) (int, error) {
	var buf [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(buf[:], r.rng.Uint64())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
