package sasl

// Challenge strings for the LOGIN mechanism, pre-encoded as base64.
const (
	LoginChallengeUsername = "VXNlcm5hbWU6" // "Username:"
	LoginChallengePassword = "UGFzc3dvcmQ6" // "Password:"
)

// Login collects credentials over the legacy two-step LOGIN mechanism.
// LOGIN has no authzid, so the authentication identity is the
// effective identity. Kept only for old client compatibility; new
// clients should use PLAIN.
type Login struct {
	username string
	haveUser bool
	creds    *Credentials
}

// NewLogin returns a collector positioned before the username step.
func NewLogin() *Login {
	return &Login{}
}

// Challenge returns the base64 prompt the server should send next.
func (l *Login) Challenge() string {
	if !l.haveUser {
		return LoginChallengeUsername
	}
	return LoginChallengePassword
}

// Respond consumes the next client line. done is true once both steps
// completed and Credentials is available.
func (l *Login) Respond(response string) (done bool, err error) {
	decoded, err := decode(response)
	if err != nil {
		return true, err
	}
	if !l.haveUser {
		l.username = string(decoded)
		l.haveUser = true
		return false, nil
	}
	l.creds = &Credentials{
		AuthenticationID: l.username,
		Password:         string(decoded),
	}
	return true, nil
}

// Credentials returns the collected credentials, or nil if the
// exchange has not completed successfully.
func (l *Login) Credentials() *Credentials {
	return l.creds
}
