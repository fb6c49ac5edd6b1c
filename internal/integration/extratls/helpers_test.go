package extratls_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/youmark/pkcs8"

	"github.com/yndnr/extratls-go/internal/infra/confloader"
)

// writeCert creates a self-signed certificate and writes it to dir/name.
// When keyName is set the key is written next to it, encrypted with
// password if one is given.
func writeCert(t *testing.T, dir, name, keyName string, password []byte) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: name},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(certFile,
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0644))

	if keyName == "" {
		return certFile, ""
	}

	var block *pem.Block
	if password != nil {
		keyDER, err := pkcs8.MarshalPrivateKey(key, password, nil)
		require.NoError(t, err)
		block = &pem.Block{Type: "ENCRYPTED PRIVATE KEY", Bytes: keyDER}
	} else {
		keyDER, err := x509.MarshalPKCS8PrivateKey(key)
		require.NoError(t, err)
		block = &pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}
	}

	keyFile = filepath.Join(dir, keyName)
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(block), 0600))
	return certFile, keyFile
}

// loadYAML returns a loader over the given YAML document.
func loadYAML(t *testing.T, content string) *confloader.Loader {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	l := confloader.NewLoader()
	require.NoError(t, l.LoadFile(path))
	return l
}
