// Package cryptox holds the password digest used by the credential store.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/diner/internal/common"
	"golang.org/x/crypto/argon2"
)

// ErrMalformedDigest is returned when a stored digest cannot be parsed.
var ErrMalformedDigest = errors.New("malformed password digest")

// Digester turns a password into a one-way digest and checks passwords
// against stored digests.
type Digester interface {
	Digest(password string) (string, error)
	Verify(password, digest string) bool
}

// Argon2Params tune the argon2id key derivation.
type Argon2Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
	SaltLen   int
}

// DefaultArgon2Params are the settings for newly stored digests.
var DefaultArgon2Params = Argon2Params{Time: 1, MemoryKiB: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}

// Argon2Digester produces PHC-style strings:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// Verification reads the parameters from the digest, so digests made with
// other parameters stay valid.
type Argon2Digester struct {
	params Argon2Params
}

func NewArgon2Digester(p Argon2Params) *Argon2Digester {
	return &Argon2Digester{params: p}
}

func (d *Argon2Digester) Digest(password string) (string, error) {
	salt := common.GenerateRandByteArray(d.params.SaltLen)
	key := argon2.IDKey([]byte(password), salt, d.params.Time, d.params.MemoryKiB, d.params.Threads, d.params.KeyLen)

	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s", argon2.Version,
		d.params.MemoryKiB, d.params.Time, d.params.Threads,
		enc.EncodeToString(salt), enc.EncodeToString(key)), nil
}

func (d *Argon2Digester) Verify(password, digest string) bool {
	p, salt, want, err := parseDigest(digest)
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Threads, uint32(len(want)))
	defer common.WipeByteArray(got)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func parseDigest(digest string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrMalformedDigest
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, ErrMalformedDigest
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, ErrMalformedDigest
	}

	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, ErrMalformedDigest
	}
	key, err := enc.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrMalformedDigest
	}
	return p, salt, key, nil
}
