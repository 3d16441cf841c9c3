// Package config loads worker and sync-daemon settings from a TOML/YAML file
// with environment-variable overrides, and builds the explicit remote
// credentials value every HTTP-calling component receives by construction
// rather than through a package-level variable.
package config

import (
	"os"

	"github.com/google/uuid"

	coreconfig "github.com/bevalc-intelligence/cola-engine/foundation/core/config"
	coreerror "github.com/bevalc-intelligence/cola-engine/foundation/core/error"
)

// RemoteCredentials holds everything needed to reach the remote SQL-over-REST
// endpoint. It is constructed once at process start and passed explicitly
// into every component that issues HTTP calls — never read back out of the
// environment deeper in the call stack.
type RemoteCredentials struct {
	AccountID  string
	DatabaseID string
	APIToken   string
	Endpoint   string // derived unless overridden
	RunID      string // unique per process invocation, for correlating log lines across retries
}

const (
	envAccountID  = "COLA_ACCOUNT_ID"
	envDatabaseID = "COLA_DATABASE_ID"
	envAPIToken   = "COLA_API_TOKEN"
	envEndpoint   = "COLA_ENDPOINT"
)

// LoadRemoteCredentials reads the three required environment variables. It
// fails fast with a descriptive error if any is missing rather than letting
// a nil credential silently reach an HTTP call.
func LoadRemoteCredentials() (RemoteCredentials, error) {
	creds := RemoteCredentials{
		AccountID:  os.Getenv(envAccountID),
		DatabaseID: os.Getenv(envDatabaseID),
		APIToken:   os.Getenv(envAPIToken),
		Endpoint:   os.Getenv(envEndpoint),
	}

	missing := []string{}
	if creds.AccountID == "" {
		missing = append(missing, envAccountID)
	}
	if creds.DatabaseID == "" {
		missing = append(missing, envDatabaseID)
	}
	if creds.APIToken == "" {
		missing = append(missing, envAPIToken)
	}
	if len(missing) > 0 {
		return RemoteCredentials{}, coreerror.New("missing required remote-database environment variables").
			WithCode(coreerror.CodeConfigError).
			WithOperation("config.LoadRemoteCredentials").
			WithDetail("missing", missing)
	}

	if creds.Endpoint == "" {
		creds.Endpoint = "https://api.cloudflare.com/client/v4/accounts/" + creds.AccountID + "/d1/database/" + creds.DatabaseID + "/query"
	}
	creds.RunID = uuid.NewString()

	return creds, nil
}

// Settings is the worker/sync-daemon configuration file (TOML or YAML),
// loaded through the foundation config layer.
type Settings struct {
	inner *coreconfig.Config
}

// Load reads a TOML or YAML settings file. A missing file is not an error —
// callers fall back to flag defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		return &Settings{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Settings{}, nil
	}
	cfg, err := coreconfig.LoadWithOptions(path, coreconfig.LoadOptions{
		Format:    coreconfig.FormatAuto,
		EnvPrefix: "COLA",
	})
	if err != nil {
		return nil, coreerror.Wrap(err, "failed to load settings file").
			WithCode(coreerror.CodeConfigError).
			WithOperation("config.Load").
			WithDetail("path", path)
	}
	return &Settings{inner: cfg}, nil
}

func (s *Settings) String(key, def string) string {
	if s == nil || s.inner == nil {
		return def
	}
	return s.inner.GetString(key, def)
}

func (s *Settings) Int(key string, def int) int {
	if s == nil || s.inner == nil {
		return def
	}
	return s.inner.GetInt(key, def)
}

func (s *Settings) Bool(key string, def bool) bool {
	if s == nil || s.inner == nil {
		return def
	}
	return s.inner.GetBool(key, def)
}

func (s *Settings) Duration(key string, def int64) int64 {
	if s == nil || s.inner == nil {
		return def
	}
	return int64(s.inner.GetDuration(key, 0))
}
