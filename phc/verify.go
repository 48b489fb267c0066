package phc

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// maxMemory caps the working memory of a single derivation so a
// hostile stored hash cannot OOM the server. scrypt uses roughly
// 128*N*r bytes.
const maxMemory = 128 << 20

// DerivationError reports scrypt parameters that cannot be used, such
// as a cost factor over the configured ceiling. It never escapes
// Verify; it exists for callers of Key that want the cause.
type DerivationError struct {
	Err error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("phc: key derivation failed: %v", e.Err)
}

func (e *DerivationError) Unwrap() error { return e.Err }

// Key derives a key from password using the parameters in e. The key
// length equals the length of the stored hash.
func (e *Encoded) Key(password string) ([]byte, error) {
	if mem := 128 * int64(e.N) * int64(e.R); mem > maxMemory {
		return nil, &DerivationError{Err: fmt.Errorf("parameters need %d bytes, ceiling is %d", mem, maxMemory)}
	}
	key, err := scrypt.Key([]byte(password), e.Salt, e.N, e.R, e.P, len(e.Hash))
	if err != nil {
		return nil, &DerivationError{Err: err}
	}
	return key, nil
}

// Verify reports whether password matches the encoded hash string.
// It never returns an error: a malformed hash, unusable parameters and
// a wrong password are all indistinguishable false results, so the
// caller's code path cannot leak why verification failed.
func Verify(password, encodedHash string) bool {
	e, err := Parse(encodedHash)
	if err != nil {
		return false
	}
	return VerifyEncoded(password, e)
}

// VerifyEncoded is Verify for a pre-parsed hash. A nil hash (for
// example from a failed Parse) verifies false.
func VerifyEncoded(password string, e *Encoded) bool {
	if e == nil {
		return false
	}
	derived, err := e.Key(password)
	if err != nil {
		return false
	}
	// Equal lengths are guaranteed by Key; the comparison must not
	// exit early on the first differing byte.
	return subtle.ConstantTimeCompare(derived, e.Hash) == 1
}

// Params holds the tunable inputs for Generate.
type Params struct {
	N       int
	R       int
	P       int
	SaltLen int
	KeyLen  int
}

// DefaultParams are the interactive-login scrypt parameters used when
// minting new credentials.
var DefaultParams = Params{
	N:       16384,
	R:       8,
	P:       1,
	SaltLen: 32,
	KeyLen:  32,
}

// Generate derives a new encoded hash for password with a random salt.
func Generate(password string, params Params) (string, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("phc: generating salt: %w", err)
	}
	e := &Encoded{
		Algorithm: Algorithm,
		N:         params.N,
		R:         params.R,
		P:         params.P,
		Salt:      salt,
		Hash:      make([]byte, params.KeyLen),
	}
	hash, err := e.Key(password)
	if err != nil {
		return "", err
	}
	e.Hash = hash
	return e.String(), nil
}
