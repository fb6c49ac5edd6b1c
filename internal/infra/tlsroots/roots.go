// Package tlsroots provides TLS certificate management.
//
// It handles loading of system certificates and extra CA bundles,
// and keeps the host's cached client contexts they are loaded into.
package tlsroots

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNoCertsFound is returned when no certificates are found in a PEM file.
	ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM file")

	// ErrInvalidPEM is returned when PEM data is invalid.
	ErrInvalidPEM = errors.New("tlsroots: invalid PEM data")
)

// Pool manages a pool of trusted root certificates.
//
// Pool is not safe for concurrent use; Context guards its own pool.
type Pool struct {
	certPool *x509.CertPool
	extra    []*x509.Certificate
}

// NewPool creates a new certificate pool with system roots.
// If system roots cannot be loaded, it creates an empty pool.
func NewPool() *Pool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		// Fall back to empty pool on systems where system certs aren't available
		pool = x509.NewCertPool()
	}
	return &Pool{certPool: pool}
}

// NewEmptyPool creates a new empty certificate pool without system roots.
func NewEmptyPool() *Pool {
	return &Pool{certPool: x509.NewCertPool()}
}

// AddCertFile adds certificates from a PEM bundle file.
// Multiple certificates in the same file are supported.
func (p *Pool) AddCertFile(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tlsroots: read cert file %s: %w", path, err)
	}

	certs, err := p.AddCertPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return certs, nil
}

// AddCertPEM adds certificates from PEM-encoded data and returns them.
// Nothing is added unless every CERTIFICATE block parses.
func (p *Pool) AddCertPEM(pemData []byte) ([]*x509.Certificate, error) {
	certs, err := parseCertsPEM(pemData)
	if err != nil {
		return nil, err
	}

	for _, cert := range certs {
		p.AddCert(cert)
	}
	return certs, nil
}

// AddCert adds a certificate directly.
func (p *Pool) AddCert(cert *x509.Certificate) {
	p.certPool.AddCert(cert)
	p.extra = append(p.extra, cert)
}

// Extra returns the certificates added on top of the initial roots.
func (p *Pool) Extra() []*x509.Certificate {
	out := make([]*x509.Certificate, len(p.extra))
	copy(out, p.extra)
	return out
}

// Pool returns the underlying x509.CertPool.
func (p *Pool) Pool() *x509.CertPool {
	return p.certPool
}

// Clone returns an independent copy of the pool.
func (p *Pool) Clone() *Pool {
	return &Pool{
		certPool: p.certPool.Clone(),
		extra:    p.Extra(),
	}
}

func parseCertsPEM(pemData []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate

	for len(pemData) > 0 {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}

		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse certificate: %w", ErrInvalidPEM, err)
		}
		certs = append(certs, cert)
	}

	if len(certs) == 0 {
		return nil, ErrNoCertsFound
	}
	return certs, nil
}
