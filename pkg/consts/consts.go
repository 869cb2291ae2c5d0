package consts

import "os"

const (
	// ModeConfigDir is the file mode for the yami config directory
	ModeConfigDir = os.FileMode(0o700)

	// ModeConfigFile is the file mode for the profile store (holds tokens)
	ModeConfigFile = os.FileMode(0o600)
)

const (
	// ConfigDirName is the directory under the user config root that holds yami state
	ConfigDirName = "yami"

	// ProfileFileName is the profile store file within the config directory
	ProfileFileName = "config.yaml"
)

// Environment variable names recognized by yami.
const (
	EnvURI       = "MILVUS_URI"
	EnvToken     = "MILVUS_TOKEN"
	EnvConfigDir = "YAMI_CONFIG_DIR"
	EnvMode      = "YAMI_MODE"
)
