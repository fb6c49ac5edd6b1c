package tlsroots

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownContext is returned by Lookup for a name no context was built under.
var ErrUnknownContext = errors.New("tlsroots: unknown context")

// Context names used by the registry.
const (
	DefaultContextName         = "default"
	DefaultNoVerifyContextName = "default_no_verify"
)

type contextKey struct {
	verify bool
	// explicit is false for the argument-less defaults, which are cached
	// apart from a context built with an explicit cipher list.
	explicit   bool
	cipherList CipherList
}

func (k contextKey) name() string {
	switch {
	case !k.explicit && k.verify:
		return DefaultContextName
	case !k.explicit:
		return DefaultNoVerifyContextName
	case k.verify:
		return "client_" + string(k.cipherList)
	default:
		return "no_verify_" + string(k.cipherList)
	}
}

// Registry builds client contexts once and returns the same instance for
// the same arguments afterwards.
type Registry struct {
	newRoots func() *Pool

	mu       sync.Mutex
	contexts map[contextKey]*Context
	order    []*Context
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRootsFunc sets the constructor for each context's initial root pool.
// The default seeds every pool with the system roots.
func WithRootsFunc(fn func() *Pool) RegistryOption {
	return func(r *Registry) {
		r.newRoots = fn
	}
}

// NewRegistry creates an empty context registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		newRoots: NewPool,
		contexts: make(map[contextKey]*Context),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultContext returns the default verifying context.
func (r *Registry) DefaultContext() *Context {
	return r.get(contextKey{verify: true, cipherList: CipherPythonDefault})
}

// DefaultNoVerifyContext returns the default non-verifying context.
func (r *Registry) DefaultNoVerifyContext() *Context {
	return r.get(contextKey{verify: false, cipherList: CipherPythonDefault})
}

// ClientContext returns the verifying context for an explicit cipher list.
func (r *Registry) ClientContext(cl CipherList) *Context {
	return r.get(contextKey{verify: true, explicit: true, cipherList: cl})
}

// NoVerifyContext returns the non-verifying context for an explicit cipher list.
func (r *Registry) NoVerifyContext(cl CipherList) *Context {
	return r.get(contextKey{verify: false, explicit: true, cipherList: cl})
}

// Contexts returns every context built so far, in creation order.
func (r *Registry) Contexts() []*Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Context, len(r.order))
	copy(out, r.order)
	return out
}

// Lookup returns a context that has already been built, by name.
func (r *Registry) Lookup(name string) (*Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.order {
		if c.name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownContext, name)
}

// Resolve returns the context a name refers to, building it if needed.
// Names are "default", "default_no_verify", "client_<list>" and
// "no_verify_<list>".
func (r *Registry) Resolve(name string) (*Context, error) {
	switch name {
	case DefaultContextName:
		return r.DefaultContext(), nil
	case DefaultNoVerifyContextName:
		return r.DefaultNoVerifyContext(), nil
	}

	verify := true
	rest, ok := strings.CutPrefix(name, "client_")
	if !ok {
		verify = false
		if rest, ok = strings.CutPrefix(name, "no_verify_"); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownContext, name)
		}
	}

	cl, err := ParseCipherList(rest)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContext, name)
	}
	if verify {
		return r.ClientContext(cl), nil
	}
	return r.NoVerifyContext(cl), nil
}

func (r *Registry) get(key contextKey) *Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.contexts[key]; ok {
		return c
	}

	c := newContext(key.name(), key.verify, key.cipherList, r.newRoots())
	r.contexts[key] = c
	r.order = append(r.order, c)
	return c
}
