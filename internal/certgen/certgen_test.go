package certgen

import (
	"crypto/ecdsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCA(t *testing.T) {
	ca, err := GenerateCA("Travel CA", 24*time.Hour)
	require.NoError(t, err)

	assert.True(t, ca.Cert.IsCA)
	assert.True(t, ca.Cert.BasicConstraintsValid)
	assert.Equal(t, "Travel CA", ca.Cert.Subject.CommonName)
	assert.NotZero(t, ca.Cert.KeyUsage&x509.KeyUsageCertSign)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), ca.Cert.NotAfter, time.Minute)
	assert.NoError(t, ca.Cert.CheckSignatureFrom(ca.Cert))
}

func TestGenerateServerCertificate(t *testing.T) {
	ca, err := GenerateCA("Travel CA", time.Hour)
	require.NoError(t, err)

	certPEM, keyPEM, err := GenerateServerCertificate([]string{"localhost", "127.0.0.1"}, ca, time.Hour)
	require.NoError(t, err)

	block, _ := pem.Decode(certPEM)
	require.NotNil(t, block)
	require.Equal(t, "CERTIFICATE", block.Type)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cert.Subject.CommonName)
	assert.Equal(t, []string{"localhost"}, cert.DNSNames)
	require.Len(t, cert.IPAddresses, 1)
	assert.True(t, cert.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")))
	assert.Equal(t, []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}, cert.ExtKeyUsage)
	assert.NoError(t, cert.CheckSignatureFrom(ca.Cert))

	pool := x509.NewCertPool()
	pool.AddCert(ca.Cert)
	_, err = cert.Verify(x509.VerifyOptions{DNSName: "localhost", Roots: pool})
	assert.NoError(t, err)

	_, err = tls.X509KeyPair(certPEM, keyPEM)
	assert.NoError(t, err, "certificate and key must form a usable pair")
}

func TestGenerateServerCertificate_NoHosts(t *testing.T) {
	ca, err := GenerateCA("Travel CA", time.Hour)
	require.NoError(t, err)

	_, _, err = GenerateServerCertificate(nil, ca, time.Hour)
	assert.Error(t, err)
}

func TestWriteAndLoadIssuer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	ca, err := GenerateCA("Travel CA", time.Hour)
	require.NoError(t, err)
	require.NoError(t, WriteIssuer(dir, ca))

	info, err := os.Stat(filepath.Join(dir, "ca.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadCACredentials(filepath.Join(dir, "ca.crt"), filepath.Join(dir, "ca.key"))
	require.NoError(t, err)
	assert.Equal(t, ca.Cert.Raw, loaded.Cert.Raw)

	key, ok := loaded.Key.(*ecdsa.PrivateKey)
	require.True(t, ok, "key type = %T", loaded.Key)
	assert.True(t, key.PublicKey.Equal(ca.Key.Public()))
}

func TestLoadCACredentials_Errors(t *testing.T) {
	dir := t.TempDir()
	ca, err := GenerateCA("Travel CA", time.Hour)
	require.NoError(t, err)
	require.NoError(t, WriteIssuer(dir, ca))
	caCert := filepath.Join(dir, "ca.crt")
	caKey := filepath.Join(dir, "ca.key")

	garbage := filepath.Join(dir, "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not pem"), 0o600))

	leafPEM, leafKey, err := GenerateServerCertificate([]string{"localhost"}, ca, time.Hour)
	require.NoError(t, err)
	require.NoError(t, WritePair(dir, "server", leafPEM, leafKey))

	tests := []struct {
		name      string
		cert, key string
		want      string
	}{
		{"missing cert", "/no/such/file.pem", caKey, "read ca cert"},
		{"missing key", caCert, "/no/such/key.pem", "read ca key"},
		{"bad cert", garbage, caKey, "invalid CA cert PEM"},
		{"bad key", caCert, garbage, "invalid CA key PEM"},
		{"leaf cert", filepath.Join(dir, "server.crt"), caKey, "not a CA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCACredentials(tt.cert, tt.key)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
