// Package config owns connection profiles and their resolution.
//
// A Connection describes how to reach a Milvus server. Profiles are named
// Connections persisted in a YAML store under the user's config directory
// with exactly one default pointer. Resolve merges CLI flags, a selected
// profile, environment variables, and the default profile into the single
// effective Connection used by an invocation.
package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/yami-cli/yami/pkg/consts"
	"gopkg.in/yaml.v3"
)

type (
	// Connection holds the fields needed to reach a Milvus server.
	Connection struct {
		// URI is the server address, e.g. http://localhost:19530
		URI string `yaml:"uri" json:"uri"`

		// Token is the authentication token ("user:password" or an API key)
		Token string `yaml:"token,omitempty" json:"token,omitempty"`

		// Database selects a non-default database on the server
		Database string `yaml:"database,omitempty" json:"database,omitempty"`
	}

	// File is the persisted shape of the profile store.
	File struct {
		// Default names the profile used when no other source supplies one
		Default string `yaml:"default,omitempty"`

		// Profiles maps profile names to their connections
		Profiles map[string]Connection `yaml:"profiles,omitempty"`
	}
)

// Load parses a profile store from the provided io.Reader.
//
// The data is YAML with a default pointer and a profiles mapping:
//
//	default: local
//	profiles:
//	  local:
//	    uri: http://localhost:19530
//	  prod:
//	    uri: https://milvus.example.com:19530
//	    token: root:secret
//	    database: app
func Load(r io.Reader) (*File, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return &File{}, nil
		}
		return nil, errors.Wrap(err, "failed to unmarshal profile store")
	}

	if f.Profiles == nil {
		f.Profiles = map[string]Connection{}
	}

	return &f, nil
}

// LoadFile loads a profile store from the given path. A missing file is
// not an error; it yields an empty store.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{Profiles: map[string]Connection{}}, nil
		}
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// Dir returns the yami config directory: $YAMI_CONFIG_DIR if set, else
// $XDG_CONFIG_HOME/yami, else ~/.config/yami.
func Dir(getenv func(string) string) (string, error) {
	if dir := getenv(consts.EnvConfigDir); dir != "" {
		return dir, nil
	}

	if base := getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, consts.ConfigDirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to locate home directory")
	}

	return filepath.Join(home, ".config", consts.ConfigDirName), nil
}

// MaskToken renders a token for display without revealing it. Long tokens
// keep their last four characters as a recognizability aid.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) > 8 {
		return "****" + token[len(token)-4:]
	}
	return "****"
}
