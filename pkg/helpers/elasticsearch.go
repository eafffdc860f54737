package helpers

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

const esDialTimeout = 5 * time.Second

// NewESClient builds an Elasticsearch client for the user search index.
// Username and password may be empty when the cluster runs without auth.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: esDialTimeout}).DialContext,
		ResponseHeaderTimeout: esDialTimeout,
		MaxIdleConnsPerHost:   10,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: transport,
	})
}
