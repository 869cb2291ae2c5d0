package milvus

import (
	"context"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/yami-cli/yami/pkg/config"
)

// Dial opens a gRPC client for the resolved connection and wraps it in a
// Backend. It is the production ConnectFunc.
func Dial(ctx context.Context, conn config.Connection) (Backend, error) {
	c, err := client.NewClient(ctx, clientConfig(conn))
	if err != nil {
		return nil, Translate(err)
	}
	return &Client{c: c}, nil
}

// clientConfig maps a connection onto SDK config. An https scheme turns
// on TLS auth, an http scheme is stripped, and a token of the form
// user:password becomes credentials while anything else is an API key.
func clientConfig(conn config.Connection) client.Config {
	address := conn.URI
	cfg := client.Config{DBName: conn.Database}

	switch {
	case strings.HasPrefix(address, "https://"):
		cfg.EnableTLSAuth = true
		address = strings.TrimPrefix(address, "https://")
	case strings.HasPrefix(address, "http://"):
		address = strings.TrimPrefix(address, "http://")
	}
	cfg.Address = strings.TrimSuffix(address, "/")

	if conn.Token != "" {
		if user, pass, ok := strings.Cut(conn.Token, ":"); ok {
			cfg.Username, cfg.Password = user, pass
		} else {
			cfg.APIKey = conn.Token
		}
	}
	return cfg
}
