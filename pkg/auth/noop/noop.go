// Package noop admits every request as an anonymous caller. Each client
// address gets its own anonymous identity so that rate limits still apply
// per client when authentication is off.
package noop

import (
	"context"
	"net/http"

	"github.com/rhuss/bedrockgen/pkg/auth"
)

// Authenticator always votes Yes.
type Authenticator struct{}

func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	return auth.AuthResult{Decision: auth.Yes, Identity: auth.Anonymous(auth.ClientAddr(r))}
}
