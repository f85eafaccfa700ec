// Package backend maps Judge0 flavors to their endpoints and owns the
// per-session language catalog.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/gsarma/judgepad/internal/language"
)

// Endpoints is the pair of base URLs serving one flavor.
// AuthBase accepts submissions and carries the bearer credential when one is set.
// UnauthBase serves status polls and catalog reads without a credential.
type Endpoints struct {
	AuthBase   string `json:"auth_base"`
	UnauthBase string `json:"unauth_base"`
}

// Config is the static flavor table.
type Config struct {
	Endpoints  map[language.Flavor]Endpoints
	Credential string
}

// DefaultConfig points at the public Judge0 deployments.
func DefaultConfig() Config {
	return Config{
		Endpoints: map[language.Flavor]Endpoints{
			language.CE: {
				AuthBase:   "https://judge0-ce.p.sulu.sh",
				UnauthBase: "https://ce.judge0.com",
			},
			language.ExtraCE: {
				AuthBase:   "https://judge0-extra-ce.p.sulu.sh",
				UnauthBase: "https://extra-ce.judge0.com",
			},
		},
	}
}

// Registry resolves flavors to endpoints and builds the HTTP clients used
// against them. A Registry belongs to one session.
type Registry struct {
	endpoints map[language.Flavor]Endpoints
	client    *http.Client

	mu         sync.RWMutex
	credential string
}

// NewRegistry builds a Registry from cfg. Every registered flavor must have
// both base URLs.
func NewRegistry(cfg Config, client *http.Client) *Registry {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	eps := make(map[language.Flavor]Endpoints, len(language.Flavors))
	for _, f := range language.Flavors {
		ep, ok := cfg.Endpoints[f]
		if !ok || ep.AuthBase == "" || ep.UnauthBase == "" {
			panic(fmt.Sprintf("backend: endpoints for flavor %s are not configured", f))
		}
		eps[f] = Endpoints{
			AuthBase:   strings.TrimRight(ep.AuthBase, "/"),
			UnauthBase: strings.TrimRight(ep.UnauthBase, "/"),
		}
	}
	return &Registry{
		endpoints:  eps,
		client:     client,
		credential: cfg.Credential,
	}
}

// Endpoints returns the base URLs of flavor. An unregistered flavor is a
// programming error and panics.
func (r *Registry) Endpoints(flavor language.Flavor) Endpoints {
	ep, ok := r.endpoints[flavor]
	if !ok {
		panic(fmt.Sprintf("backend: unknown flavor %q", flavor))
	}
	return ep
}

// Credential returns the bearer credential, or "" when submissions go out
// unauthenticated.
func (r *Registry) Credential() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.credential
}

// SetCredential overrides the bearer credential for later submissions.
func (r *Registry) SetCredential(key string) {
	r.mu.Lock()
	r.credential = key
	r.mu.Unlock()
}

// AuthClient returns the client for AuthBase requests. With a credential set
// it wraps the base client's transport with a static bearer token source.
func (r *Registry) AuthClient(ctx context.Context) *http.Client {
	cred := r.Credential()
	if cred == "" {
		return r.client
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.client)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cred,
		TokenType:   "Bearer",
	}))
	hc.Timeout = r.client.Timeout
	return hc
}

// UnauthClient returns the client for UnauthBase requests.
func (r *Registry) UnauthClient() *http.Client {
	return r.client
}
