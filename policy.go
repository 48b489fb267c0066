package talon

import (
	"strings"

	"golang.org/x/net/idna"
)

// Deny reasons recorded on authorization decisions. The reason is for
// the operator's log; the protocol layer decides what the remote
// client gets to see.
const (
	ReasonUnauthenticated = "unauthenticated user trying to send mail"
	ReasonDomainMismatch  = "sender domain does not match auth domain"
)

// Decision is the outcome of a single mail-submission authorization.
// Produced fresh per submission, never persisted; recording it on an
// audit trail is the caller's job.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision with the given reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// SenderPolicy decides whether an authenticated identity may send mail
// as a given sender address. The zero value allows any sender as long
// as the session is authenticated.
type SenderPolicy struct {
	// Enforce enables the domain-match check. Authentication itself is
	// required regardless.
	Enforce bool
}

// AuthorizeSend evaluates the policy for one submission. identity is
// the session's authenticated identity ("" when unauthenticated) and
// sender is the declared MAIL FROM address. Evaluation order is fixed:
// authentication first, then the enforce switch, then the domain
// comparison. Pure function, no side effects.
func (p SenderPolicy) AuthorizeSend(identity, sender string) Decision {
	if identity == "" {
		return Deny(ReasonUnauthenticated)
	}
	if !p.Enforce {
		return Allow()
	}
	if domainOf(sender) != domainOf(identity) {
		return Deny(ReasonDomainMismatch)
	}
	return Allow()
}

// domainOf extracts the domain part of an address-shaped string (the
// substring after the first "@") in comparable form: lowercased and
// IDNA-normalized so that unicode and punycode spellings of the same
// domain match. A string without "@" has the empty domain.
func domainOf(addr string) string {
	_, domain, ok := strings.Cut(addr, "@")
	if !ok {
		return ""
	}
	domain = strings.ToLower(domain)
	if ascii, err := idna.Lookup.ToASCII(domain); err == nil {
		return ascii
	}
	return domain
}
