// Package apikey authenticates static bearer keys. Keys are kept only as
// SHA-256 digests and every lookup compares against all of them in
// constant time.
package apikey

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/rhuss/bedrockgen/pkg/auth"
)

var (
	// ErrEmptyKey is returned by New for a key without a secret.
	ErrEmptyKey = errors.New("apikey: empty key")

	// ErrDuplicateKey is returned by New when two entries share a secret.
	ErrDuplicateKey = errors.New("apikey: duplicate key")
)

// Key is one accepted API key and the caller it identifies.
type Key struct {
	Secret  string
	Subject string
	// Tier selects the rate limit bucket; empty means auth.DefaultTier.
	Tier   string
	Scopes []string
}

type entry struct {
	digest   [sha256.Size]byte
	identity auth.Identity
}

// Authenticator validates bearer tokens against a fixed key set.
type Authenticator struct {
	entries []entry
}

// New hashes keys and returns an authenticator for them. Every key needs a
// secret and a subject, and secrets must be unique.
func New(keys []Key) (*Authenticator, error) {
	a := &Authenticator{entries: make([]entry, 0, len(keys))}
	seen := make(map[[sha256.Size]byte]int, len(keys))

	for i, k := range keys {
		if k.Secret == "" {
			return nil, fmt.Errorf("%w at index %d", ErrEmptyKey, i)
		}
		if k.Subject == "" {
			return nil, fmt.Errorf("apikey: key at index %d has no subject", i)
		}

		digest := sha256.Sum256([]byte(k.Secret))
		if j, dup := seen[digest]; dup {
			return nil, fmt.Errorf("%w at indexes %d and %d", ErrDuplicateKey, j, i)
		}
		seen[digest] = i

		id := auth.Identity{Subject: k.Subject, ServiceTier: k.Tier}
		id.ServiceTier = id.Tier()
		if len(k.Scopes) > 0 {
			id.Scopes = append([]string(nil), k.Scopes...)
		}
		a.entries = append(a.entries, entry{digest: digest, identity: id})
	}
	return a, nil
}

// Authenticate abstains without a bearer token, accepts a known key and
// rejects any other bearer token.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	token, ok := auth.BearerToken(r)
	if !ok {
		return auth.AuthResult{Decision: auth.Abstain}
	}
	if token == "" {
		return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}

	digest := sha256.Sum256([]byte(token))
	match := -1
	for i := range a.entries {
		if subtle.ConstantTimeCompare(digest[:], a.entries[i].digest[:]) == 1 {
			match = i
		}
	}
	if match < 0 {
		return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}

	id := a.entries[match].identity
	id.Scopes = append([]string(nil), id.Scopes...)
	return auth.AuthResult{Decision: auth.Yes, Identity: &id}
}
