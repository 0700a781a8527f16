// Package signing provides the identity used to seal packages: a private key
// and certificate chain loaded from a PKCS#12 (.pfx) file.
package signing

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"

	// Registers the hash implementations looked up by HashFor.
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"

	"golang.org/x/crypto/pkcs12"
)

// KeySigner signs with an RSA or ECDSA private key.
type KeySigner struct {
	key   crypto.Signer
	certs []*x509.Certificate
}

// NewKeySigner wraps key and its certificate chain, leaf first.
func NewKeySigner(key crypto.Signer, certs ...*x509.Certificate) (*KeySigner, error) {
	switch key.Public().(type) {
	case *rsa.PublicKey, *ecdsa.PublicKey:
	default:
		return nil, fmt.Errorf("unsupported signing key type %T", key.Public())
	}
	return &KeySigner{key: key, certs: certs}, nil
}

// LoadPFX decodes the key and certificates stored in a PKCS#12 file.
func LoadPFX(path, password string) (*KeySigner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pfx: %w", err)
	}
	blocks, err := pkcs12.ToPEM(data, password)
	if err != nil {
		return nil, fmt.Errorf("decode pfx %s: %w", path, err)
	}

	var (
		key   crypto.Signer
		certs []*x509.Certificate
	)
	for _, block := range blocks {
		switch block.Type {
		case "PRIVATE KEY":
			if key != nil {
				continue
			}
			key, err = parseKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("decode pfx %s: %w", path, err)
			}
		case "CERTIFICATE":
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("decode pfx %s: certificate: %w", path, err)
			}
			certs = append(certs, cert)
		}
	}
	if key == nil {
		return nil, fmt.Errorf("decode pfx %s: no private key", path)
	}
	return NewKeySigner(key, orderChain(key, certs)...)
}

func parseKey(der []byte) (crypto.Signer, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, errors.New("unrecognised private key encoding")
	}
	signer, ok := parsed.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("unsupported private key type %T", parsed)
	}
	return signer, nil
}

// orderChain moves the certificate matching key to the front.
func orderChain(key crypto.Signer, certs []*x509.Certificate) []*x509.Certificate {
	type equaler interface{ Equal(crypto.PublicKey) bool }
	pub, ok := key.Public().(equaler)
	if !ok {
		return certs
	}
	for i, cert := range certs {
		if pub.Equal(cert.PublicKey) {
			ordered := append([]*x509.Certificate{cert}, certs[:i]...)
			return append(ordered, certs[i+1:]...)
		}
	}
	return certs
}

// Sign hashes data with h and signs the digest. It returns the signature and
// the algorithm name recorded in signature files, such as SHA512withRSA.
func (s *KeySigner) Sign(h crypto.Hash, data []byte) ([]byte, string, error) {
	if !h.Available() {
		return nil, "", fmt.Errorf("hash %v not available", h)
	}
	hasher := h.New()
	hasher.Write(data)
	sig, err := s.key.Sign(rand.Reader, hasher.Sum(nil), h)
	if err != nil {
		return nil, "", fmt.Errorf("sign: %w", err)
	}
	return sig, AlgorithmName(h, s.key.Public()), nil
}

// Certificates returns the DER encoded chain, leaf first.
func (s *KeySigner) Certificates() [][]byte {
	out := make([][]byte, 0, len(s.certs))
	for _, cert := range s.certs {
		out = append(out, cert.Raw)
	}
	return out
}

// Subject names the signer for reports.
func (s *KeySigner) Subject() string {
	if len(s.certs) == 0 {
		return "(no certificate)"
	}
	return s.certs[0].Subject.String()
}

// Public returns the signer's public key.
func (s *KeySigner) Public() crypto.PublicKey {
	return s.key.Public()
}

// AlgorithmName renders the signature algorithm for h and pub.
func AlgorithmName(h crypto.Hash, pub crypto.PublicKey) string {
	name := strings.ReplaceAll(h.String(), "-", "")
	switch pub.(type) {
	case *ecdsa.PublicKey:
		return name + "withECDSA"
	default:
		return name + "withRSA"
	}
}

// HashFor maps a package hash algorithm name (SHA-1, SHA-256, SHA-384,
// SHA-512) to its crypto.Hash.
func HashFor(name string) (crypto.Hash, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "")) {
	case "SHA1":
		return crypto.SHA1, nil
	case "SHA256":
		return crypto.SHA256, nil
	case "SHA384":
		return crypto.SHA384, nil
	case "SHA512":
		return crypto.SHA512, nil
	default:
		return 0, fmt.Errorf("unsupported hash algorithm %q", name)
	}
}
