package talon

import (
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/synqronlabs/talon/phc"
	"github.com/synqronlabs/talon/store"
)

// Builder provides a fluent API for configuring a Backend.
//
//	backend, err := talon.New(credStore).
//	    Logger(logger).
//	    EnforceDomainPolicy().
//	    TrackLastUsed().
//	    Build()
type Builder struct {
	store          store.Store
	logger         *slog.Logger
	enforcePolicy  bool
	sharedSecret   bool
	trackLastUsed  bool
	maxDerivations int64
	decoyHash      string
	touchTimeout   time.Duration
}

// New starts building a backend over the given credential store. The
// store's lifecycle (open/close) belongs to the surrounding
// application; the backend only borrows the handle.
func New(s store.Store) *Builder {
	return &Builder{
		store:          s,
		logger:         slog.Default(),
		maxDerivations: int64(runtime.NumCPU()),
		touchTimeout:   5 * time.Second,
	}
}

// Logger sets the structured logger. Defaults to slog.Default().
func (b *Builder) Logger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// EnforceDomainPolicy enables the sender-domain == auth-domain check
// on mail submission. Authentication is required either way.
func (b *Builder) EnforceDomainPolicy() *Builder {
	b.enforcePolicy = true
	return b
}

// EnableSharedSecret enables the shared-secret mechanism and its
// CRAM-MD5 advertisement. Off by default since it requires the store
// to hold recoverable secrets.
func (b *Builder) EnableSharedSecret() *Builder {
	b.sharedSecret = true
	return b
}

// TrackLastUsed enables the best-effort last-used-time write after a
// successful direct-secret authentication.
func (b *Builder) TrackLastUsed() *Builder {
	b.trackLastUsed = true
	return b
}

// MaxConcurrentDerivations bounds how many scrypt derivations may run
// at once across all sessions. Defaults to the CPU count.
func (b *Builder) MaxConcurrentDerivations(n int64) *Builder {
	b.maxDerivations = n
	return b
}

// DecoyHash overrides the encoded hash used for the uniform-timing
// derivation on unknown identities. It should carry the same cost
// parameters as the deployment's real hashes.
func (b *Builder) DecoyHash(encoded string) *Builder {
	b.decoyHash = encoded
	return b
}

// TouchTimeout bounds the detached last-used write. Defaults to 5s.
func (b *Builder) TouchTimeout(d time.Duration) *Builder {
	b.touchTimeout = d
	return b
}

// Build validates the configuration and assembles the backend.
func (b *Builder) Build() (*Backend, error) {
	if b.store == nil {
		return nil, ErrNoStore
	}
	if b.maxDerivations <= 0 {
		return nil, ErrBadConcurrency
	}

	decoy := defaultDecoy()
	if b.decoyHash != "" {
		parsed, err := phc.Parse(b.decoyHash)
		if err != nil {
			return nil, ErrBadDecoyHash
		}
		decoy = parsed
	}

	auth := &Authenticator{
		store:         b.store,
		logger:        b.logger,
		sem:           semaphore.NewWeighted(b.maxDerivations),
		decoy:         decoy,
		trackLastUsed: b.trackLastUsed,
		sharedSecret:  b.sharedSecret,
		touchTimeout:  b.touchTimeout,
	}

	return &Backend{
		auth:   auth,
		policy: SenderPolicy{Enforce: b.enforcePolicy},
		logger: b.logger,
	}, nil
}
