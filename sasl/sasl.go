// Package sasl decodes SASL credential submissions for SMTP AUTH
// (RFC 4954). The host server owns the wire exchange: it reads client
// lines and sends 334 continuations, then hands the collected blobs
// here to recover the identity and secret before asking the backend to
// verify them.
package sasl

import (
	"bytes"
	"encoding/base64"
	"errors"
)

var (
	// ErrCancelled is returned when the client sends "*" to abort the
	// exchange (RFC 4954 Section 4).
	ErrCancelled = errors.New("sasl: authentication cancelled")

	// ErrInvalidBase64 is returned when a client response does not
	// decode as base64.
	ErrInvalidBase64 = errors.New("sasl: invalid base64 encoding")

	// ErrInvalidFormat is returned when a decoded response does not
	// match the mechanism's expected layout.
	ErrInvalidFormat = errors.New("sasl: invalid response format")
)

// Credentials is the outcome of a completed exchange.
type Credentials struct {
	AuthorizationID  string // identity to act as (authzid), optional
	AuthenticationID string // identity being authenticated (authcid)
	Password         string
}

// Identity returns the effective identity: the authorization identity
// when the client supplied one, the authentication identity otherwise.
func (c *Credentials) Identity() string {
	if c.AuthorizationID != "" {
		return c.AuthorizationID
	}
	return c.AuthenticationID
}

func decode(response string) ([]byte, error) {
	if response == "*" {
		return nil, ErrCancelled
	}
	decoded, err := base64.StdEncoding.DecodeString(response)
	if err != nil {
		return nil, ErrInvalidBase64
	}
	return decoded, nil
}

// DecodePlain parses a PLAIN response (RFC 4616): base64 over
// authzid NUL authcid NUL password. The authentication identity must
// be non-empty.
func DecodePlain(response string) (*Credentials, error) {
	decoded, err := decode(response)
	if err != nil {
		return nil, err
	}
	parts := bytes.Split(decoded, []byte{0})
	if len(parts) != 3 {
		return nil, ErrInvalidFormat
	}
	creds := &Credentials{
		AuthorizationID:  string(parts[0]),
		AuthenticationID: string(parts[1]),
		Password:         string(parts[2]),
	}
	if creds.AuthenticationID == "" {
		return nil, ErrInvalidFormat
	}
	return creds, nil
}
