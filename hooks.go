package talon

import (
	"context"
	"log/slog"
	"strings"
)

// Backend bundles the authenticator and the sender policy behind the
// hook surface a host SMTP server consumes: capability advertisement,
// per-mechanism credential checks and the MAIL FROM gate.
type Backend struct {
	auth   *Authenticator
	policy SenderPolicy
	logger *slog.Logger
}

// Authenticator returns the backend's mechanism coordinator.
func (b *Backend) Authenticator() *Authenticator {
	return b.auth
}

// Policy returns the backend's sender policy.
func (b *Backend) Policy() SenderPolicy {
	return b.policy
}

// AdvertiseAuth returns the EHLO capability line for the enabled
// mechanisms, e.g. "AUTH PLAIN LOGIN".
func (b *Backend) AdvertiseAuth() string {
	return "AUTH " + strings.Join(b.auth.Mechanisms(), " ")
}

// CheckAuth verifies one mechanism attempt. A nil response means
// success and the host should reply 235; otherwise the returned
// response is sent verbatim. Mechanism names are matched
// case-insensitively.
func (b *Backend) CheckAuth(ctx context.Context, sess *Session, mechanism, identity, secret string) *Response {
	switch strings.ToUpper(mechanism) {
	case MechanismPlain, MechanismLogin:
		if b.auth.authenticateDirect(ctx, sess, strings.ToUpper(mechanism), identity, secret) {
			return nil
		}
		return ResponseAuthCredentialsInvalid()
	case MechanismCramMD5:
		if !b.auth.sharedSecret {
			return ResponseMechanismNotSupported()
		}
		if b.auth.authenticateShared(ctx, sess, MechanismCramMD5, identity, secret) {
			return nil
		}
		return ResponseAuthCredentialsInvalid()
	default:
		return ResponseMechanismNotSupported()
	}
}

// CheckPlainPasswd verifies a PLAIN or LOGIN credential pair against
// the stored password hash.
func (b *Backend) CheckPlainPasswd(ctx context.Context, sess *Session, user, passwd string) *Response {
	return b.CheckAuth(ctx, sess, MechanismPlain, user, passwd)
}

// CheckCramMD5Passwd verifies a shared-secret response for user.
func (b *Backend) CheckCramMD5Passwd(ctx context.Context, sess *Session, user, response string) *Response {
	return b.CheckAuth(ctx, sess, MechanismCramMD5, user, response)
}

// CheckMailFrom gates a MAIL FROM command. A nil response means the
// submission may proceed. The decision's reason goes to the log; the
// client only sees the generic SMTP message.
func (b *Backend) CheckMailFrom(sess *Session, sender string) *Response {
	decision := b.policy.AuthorizeSend(sess.Identity(), sender)
	if decision.Allowed {
		return nil
	}

	b.logger.Info("mail submission denied",
		slog.String("session_id", sess.ID()),
		slog.String("sender", sender),
		slog.String("reason", decision.Reason),
	)

	if decision.Reason == ReasonUnauthenticated {
		return ResponseAuthRequired()
	}
	return ResponseSendDenied()
}
