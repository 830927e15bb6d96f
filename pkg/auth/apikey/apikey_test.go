package apikey

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/rhuss/bedrockgen/pkg/auth"
)

func newTestAuth(t *testing.T) *Authenticator {
	t.Helper()
	a, err := New([]Key{
		{Secret: "sk-test-key-1", Subject: "alice", Tier: "standard"},
		{Secret: "sk-test-key-2", Subject: "bob", Scopes: []string{"generate"}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func authenticate(a *Authenticator, header string) auth.AuthResult {
	r := httptest.NewRequest("POST", "/v1/generate", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	return a.Authenticate(context.Background(), r)
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		decision auth.AuthDecision
		subject  string
		tier     string
	}{
		{"valid key with tier", "Bearer sk-test-key-1", auth.Yes, "alice", "standard"},
		{"valid key falls back to default tier", "Bearer sk-test-key-2", auth.Yes, "bob", auth.DefaultTier},
		{"lowercase scheme", "bearer sk-test-key-1", auth.Yes, "alice", "standard"},
		{"unknown key", "Bearer sk-wrong-key", auth.No, "", ""},
		{"empty token", "Bearer ", auth.No, "", ""},
		{"no header", "", auth.Abstain, "", ""},
		{"basic auth", "Basic dXNlcjpwYXNz", auth.Abstain, "", ""},
	}

	a := newTestAuth(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := authenticate(a, tt.header)

			if result.Decision != tt.decision {
				t.Fatalf("Decision = %d, want %d", result.Decision, tt.decision)
			}
			if tt.decision != auth.Yes {
				if result.Identity != nil {
					t.Errorf("Identity = %+v, want nil", result.Identity)
				}
				return
			}
			if result.Identity.Subject != tt.subject {
				t.Errorf("Subject = %q, want %q", result.Identity.Subject, tt.subject)
			}
			if result.Identity.ServiceTier != tt.tier {
				t.Errorf("ServiceTier = %q, want %q", result.Identity.ServiceTier, tt.tier)
			}
		})
	}
}

func TestIdentityIsCopied(t *testing.T) {
	a := newTestAuth(t)

	first := authenticate(a, "Bearer sk-test-key-2")
	first.Identity.Subject = "mallory"
	first.Identity.Scopes[0] = "admin"

	second := authenticate(a, "Bearer sk-test-key-2")
	if second.Identity.Subject != "bob" {
		t.Errorf("Subject = %q, want bob", second.Identity.Subject)
	}
	if len(second.Identity.Scopes) != 1 || second.Identity.Scopes[0] != "generate" {
		t.Errorf("Scopes = %v, want [generate]", second.Identity.Scopes)
	}
}

func TestNewRejectsBadKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []Key
		want error
	}{
		{"empty secret", []Key{{Subject: "alice"}}, ErrEmptyKey},
		{"duplicate secret", []Key{
			{Secret: "sk-1", Subject: "alice"},
			{Secret: "sk-1", Subject: "bob"},
		}, ErrDuplicateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.keys); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := New([]Key{{Secret: "sk-1"}}); err == nil {
		t.Error("expected error for key without subject")
	}
}
