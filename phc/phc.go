// Package phc implements the PHC-style encoded scrypt password hash
// format used for stored SMTP credentials:
//
//	$scrypt$n=<cost>,r=<blocksize>,p=<parallelism>$<base64 salt>$<base64 hash>
//
// Parsing and encoding are bit-exact so that hashes written by other
// implementations of the same format keep verifying.
package phc

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Algorithm is the only KDF name accepted by this package.
const Algorithm = "scrypt"

// FormatError reports a malformed encoded hash string.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("phc: invalid scrypt hash: %s", e.Reason)
}

// Encoded is a parsed password hash. It is constructed transiently by
// Parse, never mutated, and discarded after one verification.
type Encoded struct {
	Algorithm string
	N         int // CPU/memory cost factor
	R         int // block size factor
	P         int // parallelism factor
	Salt      []byte
	Hash      []byte
}

// Parse decodes an encoded hash string. The input must split into
// exactly five $-delimited fields: an empty leading field, the
// algorithm tag, the parameter list, the base64 salt and the base64
// derived hash. Any deviation returns a *FormatError.
func Parse(s string) (*Encoded, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 5 {
		return nil, &FormatError{Reason: fmt.Sprintf("expected 5 fields, got %d", len(parts))}
	}
	if parts[0] != "" {
		return nil, &FormatError{Reason: "missing leading delimiter"}
	}
	if parts[1] != Algorithm {
		return nil, &FormatError{Reason: fmt.Sprintf("unsupported algorithm %q", parts[1])}
	}

	n, r, p, err := parseParams(parts[2])
	if err != nil {
		return nil, err
	}

	salt, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, &FormatError{Reason: "salt is not valid base64"}
	}
	if len(salt) == 0 {
		return nil, &FormatError{Reason: "empty salt"}
	}

	hash, err := base64.StdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, &FormatError{Reason: "hash is not valid base64"}
	}
	if len(hash) == 0 {
		return nil, &FormatError{Reason: "empty hash"}
	}

	return &Encoded{
		Algorithm: Algorithm,
		N:         n,
		R:         r,
		P:         p,
		Salt:      salt,
		Hash:      hash,
	}, nil
}

// parseParams decodes the "n=..,r=..,p=.." field. The three keys are
// fixed strings; each must be present exactly once with a positive
// integer value.
func parseParams(field string) (n, r, p int, err error) {
	seen := make(map[string]int, 3)
	for _, pair := range strings.Split(field, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return 0, 0, 0, &FormatError{Reason: fmt.Sprintf("malformed parameter %q", pair)}
		}
		v, convErr := strconv.Atoi(value)
		if convErr != nil {
			return 0, 0, 0, &FormatError{Reason: fmt.Sprintf("parameter %s is not an integer", key)}
		}
		if v <= 0 {
			return 0, 0, 0, &FormatError{Reason: fmt.Sprintf("parameter %s must be positive", key)}
		}
		switch key {
		case "n", "r", "p":
			if _, dup := seen[key]; dup {
				return 0, 0, 0, &FormatError{Reason: fmt.Sprintf("duplicate parameter %s", key)}
			}
			seen[key] = v
		default:
			return 0, 0, 0, &FormatError{Reason: fmt.Sprintf("unknown parameter %q", key)}
		}
	}
	for _, key := range []string{"n", "r", "p"} {
		if _, ok := seen[key]; !ok {
			return 0, 0, 0, &FormatError{Reason: fmt.Sprintf("missing parameter %s", key)}
		}
	}
	return seen["n"], seen["r"], seen["p"], nil
}

// String re-encodes the hash in the stored wire format. Parameters are
// always emitted in n,r,p order with padded standard base64, matching
// the grammar byte for byte.
func (e *Encoded) String() string {
	return fmt.Sprintf("$%s$n=%d,r=%d,p=%d$%s$%s",
		e.Algorithm, e.N, e.R, e.P,
		base64.StdEncoding.EncodeToString(e.Salt),
		base64.StdEncoding.EncodeToString(e.Hash),
	)
}
