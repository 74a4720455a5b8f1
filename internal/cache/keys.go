package cache

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/cespare/xxhash/v2"

	"edugate/internal/core"
)

// KeySeparator joins the parts of a cache key.
const KeySeparator = ":"

// Hasher names
const (
	HashRolling = "rolling"
	HashXXHash  = "xxhash"
)

// Hasher reduces free text to a short, fixed-width key component.
type Hasher interface {
	Name() string
	Sum(text string) string
}

// RollingHasher is the 32-bit polynomial hash (h = h*31 + c over UTF-16 code
// units, signed, absolute value, base 36). It is kept byte-for-byte compatible
// with keys already written by earlier deployments. Collisions are possible.
type RollingHasher struct{}

// Name returns "rolling".
func (RollingHasher) Name() string { return HashRolling }

// Sum hashes text.
func (RollingHasher) Sum(text string) string {
	var h uint32
	for _, c := range utf16.Encode([]rune(text)) {
		h = h*31 + uint32(c)
	}
	v := int64(int32(h))
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

// XXHasher is a 64-bit xxhash digest in base 36. Better distributed than the
// rolling hash, but keys differ from those written with it.
type XXHasher struct{}

// Name returns "xxhash".
func (XXHasher) Name() string { return HashXXHash }

// Sum hashes text.
func (XXHasher) Sum(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 36)
}

// NewHasher returns the hasher registered under name; empty selects rolling.
func NewHasher(name string) (Hasher, error) {
	switch name {
	case "", HashRolling:
		return RollingHasher{}, nil
	case HashXXHash:
		return XXHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown cache hash: %s (valid: rolling, xxhash)", name)
	}
}

// Normalize lower-cases and trims s. It is the only normalization applied to key inputs.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Keyer derives deterministic cache keys.
type Keyer struct {
	hasher Hasher
}

// NewKeyer creates a Keyer. A nil hasher selects the rolling hash.
func NewKeyer(h Hasher) *Keyer {
	if h == nil {
		h = RollingHasher{}
	}
	return &Keyer{hasher: h}
}

// Structured derives "<resource>:<topic>:<grade>:<language>" from normalized fields.
// Fields are used verbatim, so distinct triples never collide.
func (k *Keyer) Structured(resource core.Resource, topic string, grade int, language string) string {
	return strings.Join([]string{
		string(resource),
		Normalize(topic),
		strconv.Itoa(grade),
		Normalize(language),
	}, KeySeparator)
}

// Text derives "<resource>:<hash(text)>[:<discriminator>...]" for free-text inputs.
func (k *Keyer) Text(resource core.Resource, text string, discriminators ...string) string {
	parts := make([]string, 0, len(discriminators)+2)
	parts = append(parts, string(resource), k.hasher.Sum(Normalize(text)))
	for _, d := range discriminators {
		parts = append(parts, Normalize(d))
	}
	return strings.Join(parts, KeySeparator)
}
