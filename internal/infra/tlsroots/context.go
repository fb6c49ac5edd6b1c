package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"sync"
)

// Context is a cached, mutable TLS client context.
//
// Trust material loaded into a Context is visible to every TLSConfig
// snapshot taken afterwards. A Context is safe for concurrent use.
type Context struct {
	name       string
	verify     bool
	cipherList CipherList

	mu    sync.RWMutex
	roots *Pool
	certs []tls.Certificate
}

func newContext(name string, verify bool, cl CipherList, roots *Pool) *Context {
	return &Context{
		name:       name,
		verify:     verify,
		cipherList: cl,
		roots:      roots,
	}
}

// Name returns the registry name of the context.
func (c *Context) Name() string { return c.name }

// Verify reports whether the context verifies peer certificates.
func (c *Context) Verify() bool { return c.verify }

// CipherList returns the cipher list the context was built with.
func (c *Context) CipherList() CipherList { return c.cipherList }

// LoadVerifyLocations adds every certificate in the PEM bundle caFile
// as a trusted root.
func (c *Context) LoadVerifyLocations(caFile string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.roots.AddCertFile(caFile)
	return err
}

// LoadCertChain loads a client certificate chain and private key.
// See LoadKeyPair for the meaning of an empty keyFile and a nil password.
func (c *Context) LoadCertChain(certFile, keyFile string, password []byte) error {
	cert, err := LoadKeyPair(certFile, keyFile, password)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.certs = append(c.certs, cert)
	c.mu.Unlock()
	return nil
}

// ExtraCAs returns the CA certificates loaded on top of the system roots.
func (c *Context) ExtraCAs() []*x509.Certificate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roots.Extra()
}

// Certificates returns the client certificates loaded so far.
func (c *Context) Certificates() []tls.Certificate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]tls.Certificate, len(c.certs))
	copy(out, c.certs)
	return out
}

// TLSConfig returns a fresh client configuration carrying the context's
// current trust material.
func (c *Context) TLSConfig() *tls.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cfg := &tls.Config{
		RootCAs:      c.roots.Pool().Clone(),
		Certificates: append([]tls.Certificate(nil), c.certs...),
	}
	c.cipherList.apply(cfg)

	if !c.verify {
		cfg.InsecureSkipVerify = true //nolint:gosec // non-verifying context by construction
	}
	return cfg
}
