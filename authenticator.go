package talon

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/synqronlabs/talon/phc"
	"github.com/synqronlabs/talon/store"
)

// Mechanism names advertised to clients.
const (
	MechanismPlain   = "PLAIN"
	MechanismLogin   = "LOGIN"
	MechanismCramMD5 = "CRAM-MD5"
)

// Authenticator drives the supported mechanisms to a boolean outcome
// and records the authenticated identity on the session. It keeps no
// state of its own beyond configuration; the credential store is the
// only shared resource.
//
// Every failure below the authenticator collapses into false at this
// boundary: callers never see an error, so a probing client cannot
// distinguish unknown identity, wrong password, malformed stored hash
// or a backend outage. Backend outages are still logged as such for
// the operator.
type Authenticator struct {
	store         store.Store
	logger        *slog.Logger
	sem           *semaphore.Weighted
	decoy         *phc.Encoded
	trackLastUsed bool
	sharedSecret  bool
	touchTimeout  time.Duration
}

// AuthenticateDirect checks secret against the identity's stored
// password hash. On success the session identity is set and, when
// last-used tracking is on, the credential's last-used time is updated
// best-effort. Safe default on every failure path is false.
func (a *Authenticator) AuthenticateDirect(ctx context.Context, sess *Session, identity, secret string) bool {
	return a.authenticateDirect(ctx, sess, MechanismPlain, identity, secret)
}

func (a *Authenticator) authenticateDirect(ctx context.Context, sess *Session, mechanism, identity, secret string) bool {
	rec, err := a.store.FindByIdentity(ctx, identity)
	if err != nil {
		// Backend failure, not bad credentials. Logged so the operator
		// can tell the difference; the caller cannot.
		a.logger.Error("credential lookup failed",
			slog.String("session_id", sess.ID()),
			slog.String("identity", identity),
			slog.Any("error", err),
		)
		a.deriveDecoy(ctx, secret)
		return false
	}
	if rec == nil {
		a.logger.Debug("unknown identity",
			slog.String("session_id", sess.ID()),
			slog.String("identity", identity),
		)
		// Burn a derivation so unknown identities cost the same as
		// wrong passwords.
		a.deriveDecoy(ctx, secret)
		return false
	}

	if !a.verify(ctx, secret, rec.PasswordHash) {
		a.logger.Info("authentication failed",
			slog.String("session_id", sess.ID()),
			slog.String("identity", identity),
			slog.String("mechanism", mechanism),
		)
		return false
	}

	if a.trackLastUsed {
		a.touchLastUsed(ctx, sess, rec)
	}

	sess.setAuthenticated(mechanism, identity)
	a.logger.Info("authentication successful",
		slog.String("session_id", sess.ID()),
		slog.String("identity", identity),
		slog.String("mechanism", mechanism),
	)
	return true
}

// AuthenticateShared compares response against the identity's stored
// secret and sets the session identity on match. The stored secret is
// compared directly; the host server owns whatever challenge exchange
// produced the response.
func (a *Authenticator) AuthenticateShared(ctx context.Context, sess *Session, identity, response string) bool {
	return a.authenticateShared(ctx, sess, MechanismCramMD5, identity, response)
}

func (a *Authenticator) authenticateShared(ctx context.Context, sess *Session, mechanism, identity, response string) bool {
	secret, ok, err := a.store.FindSecret(ctx, identity)
	if err != nil {
		a.logger.Error("secret lookup failed",
			slog.String("session_id", sess.ID()),
			slog.String("identity", identity),
			slog.Any("error", err),
		)
		return false
	}
	if !ok {
		a.logger.Debug("unknown identity",
			slog.String("session_id", sess.ID()),
			slog.String("identity", identity),
		)
		return false
	}

	if subtle.ConstantTimeCompare([]byte(response), []byte(secret)) != 1 {
		a.logger.Info("authentication failed",
			slog.String("session_id", sess.ID()),
			slog.String("identity", identity),
			slog.String("mechanism", mechanism),
		)
		return false
	}

	sess.setAuthenticated(mechanism, identity)
	a.logger.Info("authentication successful",
		slog.String("session_id", sess.ID()),
		slog.String("identity", identity),
		slog.String("mechanism", mechanism),
	)
	return true
}

// AuthenticateDirectAsync runs AuthenticateDirect off the caller's
// goroutine and delivers the outcome on the returned channel. The
// channel is buffered; the result is never lost if the caller reads
// late.
func (a *Authenticator) AuthenticateDirectAsync(ctx context.Context, sess *Session, identity, secret string) <-chan bool {
	ch := make(chan bool, 1)
	go func() {
		ch <- a.AuthenticateDirect(ctx, sess, identity, secret)
	}()
	return ch
}

// AuthenticateSharedAsync is the asynchronous form of
// AuthenticateShared.
func (a *Authenticator) AuthenticateSharedAsync(ctx context.Context, sess *Session, identity, response string) <-chan bool {
	ch := make(chan bool, 1)
	go func() {
		ch <- a.AuthenticateShared(ctx, sess, identity, response)
	}()
	return ch
}

// Mechanisms returns the mechanism names the host should advertise.
func (a *Authenticator) Mechanisms() []string {
	mechs := []string{MechanismPlain, MechanismLogin}
	if a.sharedSecret {
		mechs = append(mechs, MechanismCramMD5)
	}
	return mechs
}

// verify runs the scrypt check under the derivation semaphore so a
// burst of slow derivations cannot occupy every scheduler thread.
// Parsing is cheap and happens outside the semaphore.
func (a *Authenticator) verify(ctx context.Context, secret, encodedHash string) bool {
	e, err := phc.Parse(encodedHash)
	if err != nil {
		// A corrupt stored hash verifies false like any mismatch, but
		// the operator needs to know the record is bad.
		a.logger.Warn("stored hash is malformed", slog.Any("error", err))
		e = nil
	}
	if acqErr := a.sem.Acquire(ctx, 1); acqErr != nil {
		return false
	}
	defer a.sem.Release(1)
	return phc.VerifyEncoded(secret, e)
}

// deriveDecoy performs a derivation against a fixed decoy hash so the
// unknown-identity path takes comparable time to a real verification.
func (a *Authenticator) deriveDecoy(ctx context.Context, secret string) {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return
	}
	defer a.sem.Release(1)
	phc.VerifyEncoded(secret, a.decoy)
}

// touchLastUsed issues the best-effort last-used write. It runs with
// its own deadline detached from the session context so a client
// hanging up mid-command cannot strand the update, and its failure
// never demotes a successful authentication.
func (a *Authenticator) touchLastUsed(ctx context.Context, sess *Session, rec *store.Record) {
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.touchTimeout)
	defer cancel()
	if err := a.store.TouchLastUsed(tctx, rec.ID, time.Now()); err != nil {
		a.logger.Warn("last-used update failed",
			slog.String("session_id", sess.ID()),
			slog.String("identity", rec.Identity),
			slog.Any("error", err),
		)
	}
}

// defaultDecoy is the hash the decoy derivation runs against. The hash
// bytes are all zero so it can never verify; only its cost matters,
// which matches DefaultParams.
func defaultDecoy() *phc.Encoded {
	return &phc.Encoded{
		Algorithm: phc.Algorithm,
		N:         phc.DefaultParams.N,
		R:         phc.DefaultParams.R,
		P:         phc.DefaultParams.P,
		Salt:      []byte("talon.decoy.salt"),
		Hash:      make([]byte, phc.DefaultParams.KeyLen),
	}
}
