package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
)

// SecurityLayer builds the round tripper used to reach the game server.
type SecurityLayer interface {
	RoundTripper() (http.RoundTripper, error)
}

// New returns a TLSLayer trusting caCertFile, or a PlainLayer when caCertFile is empty.
func New(caCertFile string) SecurityLayer {
	if caCertFile == "" {
		return NewPlainLayer()
	}
	return NewTLSLayer(caCertFile)
}

// TLSLayer trusts an additional certificate authority loaded from a PEM file,
// for game servers using a private CA.
type TLSLayer struct {
	caCertFile string
}

// NewTLSLayer creates a new TLSLayer instance.
func NewTLSLayer(caCertFile string) *TLSLayer {
	return &TLSLayer{caCertFile: caCertFile}
}

// RoundTripper loads the CA file and returns a transport verifying server
// certificates against the system pool plus that CA.
func (l *TLSLayer) RoundTripper() (http.RoundTripper, error) {
	pem, err := os.ReadFile(l.caCertFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("failed to parse CA certificate %s", l.caCertFile)
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}
	return t, nil
}

// PlainLayer uses the default transport settings.
type PlainLayer struct{}

// NewPlainLayer creates a new PlainLayer instance.
func NewPlainLayer() *PlainLayer {
	return &PlainLayer{}
}

// RoundTripper returns a clone of the default transport.
func (l *PlainLayer) RoundTripper() (http.RoundTripper, error) {
	return http.DefaultTransport.(*http.Transport).Clone(), nil
}
