// Package handid issues sortable hand identifiers: a UUIDv7 rendered as a
// 26-character Crockford base32 string.
package handid

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded id.
const Length = 26

// Generator issues hand ids from an injected clock and byte source.
type Generator struct {
	mu    sync.Mutex
	clock quartz.Clock
	rand  io.Reader
}

// NewGenerator returns a generator. A nil clock uses the real clock and a nil
// reader uses crypto/rand.
func NewGenerator(clock quartz.Clock, r io.Reader) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if r == nil {
		r = rand.Reader
	}
	return &Generator{clock: clock, rand: r}
}

// Generate creates a hand id from the real clock and crypto/rand.
func Generate() string {
	return NewGenerator(nil, nil).Next()
}

// Next returns a new id. Ids from the same generator sort by creation time at
// millisecond resolution.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Encode(g.newUUID())
}

func (g *Generator) newUUID() uuid.UUID {
	var id uuid.UUID

	// UUIDv7 format:
	// 48-bit timestamp (milliseconds since Unix epoch)
	// 4-bit version (0111), 12 random bits
	// 2-bit variant (10), 62 random bits
	now := g.clock.Now().UnixMilli()
	id[0] = byte(now >> 40)
	id[1] = byte(now >> 32)
	id[2] = byte(now >> 24)
	id[3] = byte(now >> 16)
	id[4] = byte(now >> 8)
	id[5] = byte(now)

	if _, err := io.ReadFull(g.rand, id[6:]); err != nil {
		panic("handid: failed to read random bytes: " + err.Error())
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

// Encode renders a UUID as 26 base32 characters. The 128 bits are prefixed
// with two zero bits, so the first character is always 0-7.
func Encode(id uuid.UUID) string {
	var sb strings.Builder
	sb.Grow(Length)
	for i := 0; i < Length; i++ {
		var v byte
		for j := 0; j < 5; j++ {
			v = v<<1 | bit(id, i*5+j-2)
		}
		sb.WriteByte(alphabet[v])
	}
	return sb.String()
}

func bit(id uuid.UUID, n int) byte {
	if n < 0 {
		return 0
	}
	return (id[n/8] >> (7 - n%8)) & 1
}

// Decode parses an encoded id back into its UUID.
func Decode(s string) (uuid.UUID, error) {
	var id uuid.UUID
	if err := Validate(s); err != nil {
		return id, err
	}
	for i := 0; i < Length; i++ {
		v := byte(strings.IndexByte(alphabet, s[i]))
		for j := 0; j < 5; j++ {
			n := i*5 + j - 2
			if n < 0 || (v>>(4-j))&1 == 0 {
				continue
			}
			id[n/8] |= 1 << (7 - n%8)
		}
	}
	return id, nil
}

// Timestamp returns the creation time embedded in an id.
func Timestamp(s string) (time.Time, error) {
	id, err := Decode(s)
	if err != nil {
		return time.Time{}, err
	}
	if id.Version() != 7 {
		return time.Time{}, fmt.Errorf("hand ID is not a version 7 UUID: %s", id.Version())
	}
	var ms int64
	for _, b := range id[:6] {
		ms = ms<<8 | int64(b)
	}
	return time.UnixMilli(ms), nil
}

// Validate checks if a hand ID is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("hand ID must be exactly %d characters, got %d", Length, len(id))
	}

	if id[0] > '7' {
		return fmt.Errorf("hand ID first character must be 0-7, got %c", id[0])
	}

	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}

	return nil
}
