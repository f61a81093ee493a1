package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidHash = errors.New("invalid password hash")

// Argon2Params are embedded in every hash string, so changing them only
// affects new hashes.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var DefaultArgon2 = Argon2Params{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}

func (p Argon2Params) normalized() Argon2Params {
	if p.Time == 0 {
		p.Time = DefaultArgon2.Time
	}
	if p.Memory < 8 {
		p.Memory = DefaultArgon2.Memory
	}
	if p.Threads == 0 {
		p.Threads = DefaultArgon2.Threads
	}
	if p.KeyLen < 16 {
		p.KeyLen = DefaultArgon2.KeyLen
	}
	if p.SaltLen < 8 {
		p.SaltLen = DefaultArgon2.SaltLen
	}
	return p
}

// HashPassword returns "$argon2id$v=19$m=..,t=..,p=..$salt$hash".
func HashPassword(pw string, p Argon2Params) (string, error) {
	if pw == "" {
		return "", errors.New("password cannot be empty")
	}
	p = p.normalized()
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(pw), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// CheckPassword verifies pw against an argon2id hash, or a bcrypt hash left
// over from older accounts. Malformed hashes never match.
func CheckPassword(pw, hashed string) bool {
	if isBcrypt(hashed) {
		return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
	}
	p, salt, key, err := decodeArgon2(hashed)
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(pw), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(key, got) == 1
}

func isBcrypt(h string) bool {
	return strings.HasPrefix(h, "$2a$") || strings.HasPrefix(h, "$2b$") || strings.HasPrefix(h, "$2y$")
}

func decodeArgon2(encoded string) (Argon2Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Argon2Params{}, nil, nil, ErrInvalidHash
	}
	var p Argon2Params
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return Argon2Params{}, nil, nil, ErrInvalidHash
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return Argon2Params{}, nil, nil, ErrInvalidHash
		}
		switch k {
		case "m":
			p.Memory = uint32(n)
		case "t":
			p.Time = uint32(n)
		case "p":
			if n > 255 {
				return Argon2Params{}, nil, nil, ErrInvalidHash
			}
			p.Threads = uint8(n)
		}
	}
	if p.Memory == 0 || p.Time == 0 || p.Threads == 0 {
		return Argon2Params{}, nil, nil, ErrInvalidHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Argon2Params{}, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Argon2Params{}, nil, nil, ErrInvalidHash
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
