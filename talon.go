// Talon authenticates SMTP sessions against stored credentials and
// decides whether an authenticated identity may send mail as a given
// sender. It is the backend behind a host server's AUTH and MAIL FROM
// hooks, not an SMTP server itself.
//
// # Setup
//
// Build a backend over a credential store using the fluent builder:
//
//	db, err := postgres.Open(ctx, dsn)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	backend, err := talon.New(postgres.New(db, store.DefaultSchema())).
//	    Logger(logger).
//	    EnforceDomainPolicy().
//	    TrackLastUsed().
//	    Build()
//
// # Hooking into a server
//
// Create one Session per connection and wire the hooks:
//
//	sess := talon.NewSession()
//
//	// EHLO: advertise the enabled mechanisms.
//	capability := backend.AdvertiseAuth() // "AUTH PLAIN LOGIN"
//
//	// AUTH: after the SASL exchange yields identity and secret.
//	if resp := backend.CheckPlainPasswd(ctx, sess, user, passwd); resp != nil {
//	    // send resp, authentication failed
//	}
//
//	// MAIL FROM: gate the submission.
//	if resp := backend.CheckMailFrom(sess, sender); resp != nil {
//	    // send resp, submission denied
//	}
//
// The sasl subpackage decodes PLAIN and LOGIN submissions for hosts
// that do not bring their own SASL layer.
//
// # Passwords
//
// Stored passwords use the PHC-style scrypt format handled by the phc
// subpackage:
//
//	$scrypt$n=16384,r=8,p=1$<base64 salt>$<base64 hash>
//
// phc.Generate mints new hashes; verification is constant-time and
// collapses every failure mode into a plain false so callers cannot
// probe for account existence.
package talon
