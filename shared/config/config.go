// Package config provides configuration management for the ClipGate daemon.
// WHY: Centralizes defaults, config-file loading, environment variable
// handling, and validation so the daemon starts from one coherent view of
// its settings instead of scattering os.Getenv calls through the codebase.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultKey is the well-known placeholder accept key.
// WHY a placeholder instead of no default: The daemon must be usable out of
// the box for local experiments, but the name itself nags operators to set
// their own key. The daemon logs a warning at startup while this value is
// in effect.
const DefaultKey = "change_on_install"

// DefaultPort is the TCP port ClipGate listens on when none is configured.
const DefaultPort = 52224

// Backend selection values accepted by Config.Backend.
// WHY strings instead of an enum here: They arrive from flags, env, and the
// config file as text anyway; shared/sink converts to its own closed type.
const (
	BackendAuto    = "auto"
	BackendNative  = "native"
	BackendCommand = "command"
	BackendStdout  = "stdout"
)

// Config holds every runtime setting for the daemon.
type Config struct {
	// Addr is the interface the listener binds to.
	// WHY default localhost: The protocol carries a static shared key and no
	// transport security, so exposure beyond the loopback interface should be
	// an explicit operator decision.
	Addr string `toml:"addr"`

	// Port is the TCP port the listener binds to.
	Port int `toml:"port"`

	// Key is the shared handshake secret senders must present.
	Key string `toml:"key"`

	// Encoding is the output charset decoded payloads are transcoded into
	// before reaching a sink (e.g. "euc-jp", "utf-8", "shift_jis").
	Encoding string `toml:"encoding"`

	// Verbose controls console output: 0 = warnings only, 1 = connection
	// summaries, 2 = full payload echo and encoding decisions.
	Verbose int `toml:"verbose"`

	// Backend pins sink selection: "auto" walks the native → command →
	// stdout chain, the other values force one mechanism.
	Backend string `toml:"backend"`
}

// Default returns a Config populated with the out-of-the-box settings.
func Default() *Config {
	return &Config{
		Addr:     "localhost",
		Port:     DefaultPort,
		Key:      DefaultKey,
		Encoding: "euc-jp",
		Verbose:  0,
		Backend:  BackendAuto,
	}
}

// DefaultPath returns the default configuration file location,
// ~/.clipgate/config.toml, or "" when the home directory is unknown.
func DefaultPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".clipgate", "config.toml")
	}
	return ""
}

// Load builds a Config from defaults, then the TOML file at path (if any),
// then CLIPGATE_* environment variables. Flag overrides are applied by the
// caller afterwards, so precedence is defaults < file < env < flags.
//
// WHY a missing file is only an error when explicit is true: The default
// config path usually does not exist and that is fine, but a path the
// operator typed on the command line must exist or they should hear about it.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
			// Default path absent: run on defaults.
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

// applyEnv overrides settings from CLIPGATE_* environment variables.
// WHY env overrides: The accept key is a secret and should not be forced
// into a config file; injecting secrets through the environment keeps them
// out of version control and shell history.
func (c *Config) applyEnv() {
	if key := os.Getenv("CLIPGATE_KEY"); key != "" {
		c.Key = key
	}
	if addr := os.Getenv("CLIPGATE_ADDR"); addr != "" {
		c.Addr = addr
	}
	if enc := os.Getenv("CLIPGATE_ENCODING"); enc != "" {
		c.Encoding = enc
	}
	if port := os.Getenv("CLIPGATE_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			c.Port = n
		}
	}
}

// Validate reports the first configuration problem found.
// WHY fail fast: A daemon started with an unusable port or empty key cannot
// do anything useful; a clear startup error beats a confusing runtime one.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range (1-65535)", c.Port)
	}
	if c.Key == "" {
		return fmt.Errorf("accept key must not be empty (set --key or CLIPGATE_KEY)")
	}
	if c.Encoding == "" {
		return fmt.Errorf("output encoding must not be empty")
	}
	switch c.Backend {
	case BackendAuto, BackendNative, BackendCommand, BackendStdout:
	default:
		return fmt.Errorf("unknown backend %q (want auto, native, command, or stdout)", c.Backend)
	}
	if c.Verbose < 0 || c.Verbose > 2 {
		return fmt.Errorf("verbose level %d is out of range (0-2)", c.Verbose)
	}
	return nil
}

// UsingDefaultKey reports whether the placeholder accept key is still in
// effect, so the daemon can warn the operator at startup.
func (c *Config) UsingDefaultKey() bool {
	return c.Key == DefaultKey
}
