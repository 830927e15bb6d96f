// Package auth provides pluggable authentication and rate limiting for
// the bedrockgen HTTP API.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (can't handle). A configurable default voter decides
// when all authenticators abstain.
//
// Auth is implemented as HTTP middleware, keeping it decoupled from engine
// logic. The authenticated identity is stored in the request context and
// its service tier selects the rate limit applied to the caller.
package auth
