package health

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/dnswlt/tagsync/internal/config"
)

// TagDefsPath is the policy engine endpoint requested by RangerProber.
const TagDefsPath = "/service/tags/tagdefs"

// RangerProber succeeds if the policy engine answers a tag definitions
// request with 200 OK.
type RangerProber struct {
	endpoint string
	username string
	password string
	client   *http.Client
}

var _ Prober = (*RangerProber)(nil)

// NewRangerProber creates a RangerProber from the ranger.tagsync.dest.ranger.* properties.
// It fails only if the configured TLS files cannot be loaded.
func NewRangerProber(props config.Properties) (*RangerProber, error) {
	tlsConfig, err := tlsConfigFromProps(props)
	if err != nil {
		return nil, err
	}
	client := &http.Client{}
	if tlsConfig != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = tlsConfig
		client.Transport = transport
	}
	return &RangerProber{
		endpoint: strings.TrimSuffix(props.Get(config.PropRangerEndpoint), "/"),
		username: props.Get(config.PropRangerUsername),
		password: props.Get(config.PropRangerPassword),
		client:   client,
	}, nil
}

func tlsConfigFromProps(props config.Properties) (*tls.Config, error) {
	caFile, hasCA := props.Lookup(config.PropRangerSSLCAFile)
	certFile, hasCert := props.Lookup(config.PropRangerSSLCertFile)
	keyFile, hasKey := props.Lookup(config.PropRangerSSLKeyFile)
	insecure := props.Bool(config.PropRangerSSLInsecure)
	if !hasCA && !hasCert && !hasKey && !insecure {
		return nil, nil
	}

	cfg := &tls.Config{
		InsecureSkipVerify: insecure,
	}
	if hasCA {
		pem, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("could not read CA file: %v", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in CA file %s", caFile)
		}
		cfg.RootCAs = pool
	}
	if hasCert != hasKey {
		return nil, fmt.Errorf("%s and %s must be set together", config.PropRangerSSLCertFile, config.PropRangerSSLKeyFile)
	}
	if hasCert {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("could not load client certificate: %v", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

func (p *RangerProber) Probe(ctx context.Context) bool {
	if p.endpoint == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+TagDefsPath, nil)
	if err != nil {
		log.Printf("Invalid Ranger endpoint %q: %v", p.endpoint, err)
		return false
	}
	req.Header.Set("Accept", "application/json")
	if p.username != "" {
		req.SetBasicAuth(p.username, p.password)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		log.Printf("Ranger health probe failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
