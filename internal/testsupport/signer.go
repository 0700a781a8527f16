package testsupport

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"trimveo/internal/signing"
)

// NewRSASigner returns a signer backed by a fresh 2048-bit key and a
// self-signed certificate.
func NewRSASigner(t testing.TB) *signing.KeySigner {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return newSigner(t, key)
}

// NewECDSASigner returns a signer backed by a fresh P-256 key.
func NewECDSASigner(t testing.TB) *signing.KeySigner {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate ecdsa key: %v", err)
	}
	return newSigner(t, key)
}

func newSigner(t testing.TB, key crypto.Signer) *signing.KeySigner {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "Test Signer", Organization: []string{"Records Office"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, key.Public(), key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse certificate: %v", err)
	}
	signer, err := signing.NewKeySigner(key, cert)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return signer
}
