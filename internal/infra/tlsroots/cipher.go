package tlsroots

import (
	"crypto/tls"
	"fmt"
	"strings"
)

// CipherList selects the cipher suites offered by a client context.
type CipherList string

// Known cipher lists.
const (
	CipherPythonDefault CipherList = "python_default"
	CipherIntermediate  CipherList = "intermediate"
	CipherModern        CipherList = "modern"
	CipherInsecure      CipherList = "insecure"
)

// intermediateSuites follows the Mozilla "intermediate" profile for TLS 1.2.
var intermediateSuites = []uint16{
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
}

// ParseCipherList converts a configuration string to a CipherList.
func ParseCipherList(s string) (CipherList, error) {
	switch c := CipherList(strings.ToLower(strings.TrimSpace(s))); c {
	case CipherPythonDefault, CipherIntermediate, CipherModern, CipherInsecure:
		return c, nil
	default:
		return "", fmt.Errorf("tlsroots: unknown cipher list %q", s)
	}
}

// apply sets cipher suites and protocol bounds on cfg.
func (c CipherList) apply(cfg *tls.Config) {
	cfg.MinVersion = tls.VersionTLS12

	switch c {
	case CipherIntermediate:
		cfg.CipherSuites = append([]uint16(nil), intermediateSuites...)
	case CipherModern:
		// TLS 1.3 suites are not configurable in crypto/tls.
		cfg.MinVersion = tls.VersionTLS13
	case CipherInsecure:
		var ids []uint16
		for _, s := range tls.CipherSuites() {
			ids = append(ids, s.ID)
		}
		for _, s := range tls.InsecureCipherSuites() {
			ids = append(ids, s.ID)
		}
		cfg.CipherSuites = ids
		cfg.MinVersion = tls.VersionTLS10
	}
}
