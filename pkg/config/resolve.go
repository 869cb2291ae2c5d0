package config

import (
	"github.com/sirupsen/logrus"
	"github.com/yami-cli/yami/pkg/consts"
	"github.com/yami-cli/yami/pkg/errcode"
)

// Flags carries the connection-related values parsed from the command line.
// Empty fields mean "not given".
type Flags struct {
	URI      string
	Token    string
	Database string
	Profile  string
}

// Resolve merges connection sources into one effective Connection.
//
// Precedence per field, highest wins:
//
//	CLI flags > profile named by --profile > environment > default profile
//
// Resolve is a pure merge: it reads the store but never writes it. It fails
// with NOT_FOUND when --profile names an absent profile, and with
// VALIDATION_ERROR when no source supplies a URI.
func Resolve(flags Flags, getenv func(string) string, store *Store) (Connection, error) {
	var conn Connection

	// Lowest precedence first; later sources overwrite field-wise.
	if name, def, ok, err := store.Default(); err != nil {
		return Connection{}, err
	} else if ok {
		merge(&conn, def)
		logrus.Debugf("config: applied default profile %q", name)
	}

	env := Connection{URI: getenv(consts.EnvURI), Token: getenv(consts.EnvToken)}
	if env.URI != "" || env.Token != "" {
		merge(&conn, env)
		logrus.Debug("config: applied environment variables")
	}

	if flags.Profile != "" {
		named, ok, err := store.Get(flags.Profile)
		if err != nil {
			return Connection{}, err
		}
		if !ok {
			return Connection{}, errcode.Newf(errcode.NotFound, "profile '%s' not found", flags.Profile)
		}
		merge(&conn, named)
		logrus.Debugf("config: applied profile %q", flags.Profile)
	}

	merge(&conn, Connection{URI: flags.URI, Token: flags.Token, Database: flags.Database})

	if conn.URI == "" {
		return Connection{}, errcode.New(errcode.ValidationError,
			"no Milvus URI resolved; pass --uri, set MILVUS_URI, or configure a default profile")
	}

	return conn, nil
}

// merge overwrites dst fields with non-empty src fields.
func merge(dst *Connection, src Connection) {
	if src.URI != "" {
		dst.URI = src.URI
	}
	if src.Token != "" {
		dst.Token = src.Token
	}
	if src.Database != "" {
		dst.Database = src.Database
	}
}
