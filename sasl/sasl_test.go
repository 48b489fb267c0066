package sasl

import (
	"encoding/base64"
	"errors"
	"testing"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestDecodePlain(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		wantIdentity string
		wantPassword string
		wantErr      error
	}{
		{
			name:         "authcid and password",
			response:     b64("\x00alice@example.com\x00hunter2"),
			wantIdentity: "alice@example.com",
			wantPassword: "hunter2",
		},
		{
			name:         "authzid takes precedence",
			response:     b64("admin@example.com\x00alice@example.com\x00hunter2"),
			wantIdentity: "admin@example.com",
			wantPassword: "hunter2",
		},
		{
			name:     "cancelled",
			response: "*",
			wantErr:  ErrCancelled,
		},
		{
			name:     "not base64",
			response: "!!!",
			wantErr:  ErrInvalidBase64,
		},
		{
			name:     "too few fields",
			response: b64("alice\x00hunter2"),
			wantErr:  ErrInvalidFormat,
		},
		{
			name:     "too many fields",
			response: b64("a\x00b\x00c\x00d"),
			wantErr:  ErrInvalidFormat,
		},
		{
			name:     "empty authcid",
			response: b64("\x00\x00hunter2"),
			wantErr:  ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := DecodePlain(tt.response)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodePlain failed: %v", err)
			}
			if creds.Identity() != tt.wantIdentity {
				t.Errorf("Identity() = %q, want %q", creds.Identity(), tt.wantIdentity)
			}
			if creds.Password != tt.wantPassword {
				t.Errorf("Password = %q, want %q", creds.Password, tt.wantPassword)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	l := NewLogin()

	if l.Challenge() != LoginChallengeUsername {
		t.Errorf("first challenge = %q, want username prompt", l.Challenge())
	}

	done, err := l.Respond(b64("alice@example.com"))
	if err != nil {
		t.Fatalf("username step failed: %v", err)
	}
	if done {
		t.Fatal("done after username step")
	}

	if l.Challenge() != LoginChallengePassword {
		t.Errorf("second challenge = %q, want password prompt", l.Challenge())
	}

	done, err = l.Respond(b64("hunter2"))
	if err != nil {
		t.Fatalf("password step failed: %v", err)
	}
	if !done {
		t.Fatal("not done after password step")
	}

	creds := l.Credentials()
	if creds == nil {
		t.Fatal("Credentials() = nil after completed exchange")
	}
	if creds.Identity() != "alice@example.com" {
		t.Errorf("Identity() = %q", creds.Identity())
	}
	if creds.Password != "hunter2" {
		t.Errorf("Password = %q", creds.Password)
	}
}

func TestLogin_Cancelled(t *testing.T) {
	l := NewLogin()
	done, err := l.Respond("*")
	if !done || !errors.Is(err, ErrCancelled) {
		t.Errorf("Respond(*) = (%v, %v), want (true, ErrCancelled)", done, err)
	}
	if l.Credentials() != nil {
		t.Error("cancelled exchange produced credentials")
	}
}

func TestLogin_BadBase64(t *testing.T) {
	l := NewLogin()
	if _, err := l.Respond(b64("alice")); err != nil {
		t.Fatalf("username step failed: %v", err)
	}
	done, err := l.Respond("!!!")
	if !done || !errors.Is(err, ErrInvalidBase64) {
		t.Errorf("Respond(!!!) = (%v, %v), want (true, ErrInvalidBase64)", done, err)
	}
}
