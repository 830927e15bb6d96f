package config

import (
	"fmt"
	"net/http"

	"github.com/rhuss/bedrockgen/pkg/auth"
	"github.com/rhuss/bedrockgen/pkg/auth/apikey"
	"github.com/rhuss/bedrockgen/pkg/auth/jwt"
	"github.com/rhuss/bedrockgen/pkg/auth/noop"
)

// Chain builds the authenticator chain for the configured auth type.
func (a AuthConfig) Chain() (*auth.AuthChain, error) {
	switch a.Type {
	case "", "none":
		return &auth.AuthChain{
			Authenticators:  []auth.Authenticator{&noop.Authenticator{}},
			DefaultDecision: auth.Yes,
		}, nil

	case "apikey":
		keys := make([]apikey.Key, 0, len(a.APIKeys))
		for _, k := range a.APIKeys {
			keys = append(keys, apikey.Key{
				Secret:  k.Key,
				Subject: k.Subject,
				Tier:    k.ServiceTier,
				Scopes:  k.Scopes,
			})
		}
		authn, err := apikey.New(keys)
		if err != nil {
			return nil, err
		}
		return &auth.AuthChain{
			Authenticators:  []auth.Authenticator{authn},
			DefaultDecision: auth.No,
		}, nil

	case "jwt":
		authn, err := jwt.New(jwt.Config{
			Secret:    []byte(a.JWT.Secret),
			Issuer:    a.JWT.Issuer,
			Audience:  a.JWT.Audience,
			UserClaim: a.JWT.UserClaim,
			TierClaim: a.JWT.TierClaim,
		})
		if err != nil {
			return nil, err
		}
		return &auth.AuthChain{
			Authenticators:  []auth.Authenticator{authn},
			DefaultDecision: auth.No,
		}, nil
	}

	return nil, fmt.Errorf("unknown auth type %q", a.Type)
}

// Limiter returns the rate limiter, or nil when rate limiting is disabled.
func (r RateLimitConfig) Limiter() auth.RateLimiter {
	if !r.Enabled {
		return nil
	}

	tiers := make(map[string]auth.TierConfig, len(r.Tiers))
	for name, t := range r.Tiers {
		tiers[name] = auth.TierConfig{RequestsPerMinute: t.RequestsPerMinute, Burst: t.Burst}
	}
	return auth.NewInProcessLimiter(tiers, auth.TierConfig{
		RequestsPerMinute: r.RequestsPerMinute,
		Burst:             r.Burst,
	})
}

// Middleware returns the HTTP auth middleware, or nil when neither
// authentication nor rate limiting is configured.
func (a AuthConfig) Middleware() (func(http.Handler) http.Handler, error) {
	if (a.Type == "" || a.Type == "none") && !a.RateLimit.Enabled {
		return nil, nil
	}

	chain, err := a.Chain()
	if err != nil {
		return nil, err
	}
	return auth.Middleware(chain, a.RateLimit.Limiter(), auth.DefaultBypassEndpoints), nil
}
