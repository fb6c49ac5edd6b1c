package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/youmark/pkcs8"
)

var (
	// ErrNoPrivateKey is returned when no private key block is found.
	ErrNoPrivateKey = errors.New("tlsroots: no private key found in PEM data")

	// ErrKeyEncrypted is returned when an encrypted key is loaded without a password.
	ErrKeyEncrypted = errors.New("tlsroots: private key is encrypted and no password was given")
)

const encryptedPKCS8Type = "ENCRYPTED PRIVATE KEY"

// LoadKeyPair reads a certificate chain and its private key.
//
// An empty keyFile means the key is stored in certFile next to the chain.
// A nil password means the key must be stored unencrypted; a password
// given for an unencrypted key is ignored.
func LoadKeyPair(certFile, keyFile string, password []byte) (tls.Certificate, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("tlsroots: read cert file %s: %w", certFile, err)
	}

	keyPEM := certPEM
	keySource := certFile
	if keyFile != "" {
		keyPEM, err = os.ReadFile(keyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("tlsroots: read key file %s: %w", keyFile, err)
		}
		keySource = keyFile
	}

	plainKeyPEM, err := decryptKeyPEM(keyPEM, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%s: %w", keySource, err)
	}

	cert, err := tls.X509KeyPair(certPEM, plainKeyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("tlsroots: load key pair %s: %w", certFile, err)
	}
	return cert, nil
}

// decryptKeyPEM finds the first private key block in data and returns it
// as unencrypted PEM.
func decryptKeyPEM(data, password []byte) ([]byte, error) {
	block := findKeyBlock(data)
	if block == nil {
		return nil, ErrNoPrivateKey
	}

	switch {
	case block.Type == encryptedPKCS8Type:
		if password == nil {
			return nil, ErrKeyEncrypted
		}
		key, err := pkcs8.ParsePKCS8PrivateKey(block.Bytes, password)
		if err != nil {
			return nil, fmt.Errorf("tlsroots: decrypt PKCS#8 key: %w", err)
		}
		der, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("tlsroots: marshal key: %w", err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil

	//nolint:staticcheck // legacy OpenSSL encryption is still found in the wild
	case x509.IsEncryptedPEMBlock(block):
		if password == nil {
			return nil, ErrKeyEncrypted
		}
		//nolint:staticcheck
		der, err := x509.DecryptPEMBlock(block, password)
		if err != nil {
			return nil, fmt.Errorf("tlsroots: decrypt PEM key: %w", err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der}), nil

	default:
		return pem.EncodeToMemory(block), nil
	}
}

func findKeyBlock(data []byte) *pem.Block {
	for len(data) > 0 {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil
		}
		if block.Type == "PRIVATE KEY" || strings.HasSuffix(block.Type, " PRIVATE KEY") {
			return block
		}
	}
	return nil
}
