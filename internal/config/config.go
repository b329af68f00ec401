// Package config resolves ARRCON's ambient settings (timing knobs, target
// connection fields) from layered sources: command-line flags, environment
// variables, the saved-hosts registry, and the <PROG>.ini defaults file.
// Flags always win; environment variables override only the ini defaults
// and are not applied when a saved host is named.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/radj307/ARRCON/internal/apperr"
	"github.com/radj307/ARRCON/internal/hosts"
)

// EnvPrefix is "ARRCON"; environment overrides are ARRCON_HOST,
// ARRCON_PORT, ARRCON_PASS.
const EnvPrefix = "ARRCON"

// AppConfig holds the non-protocol settings persisted in <PROG>.ini and
// resolved through viper's flag > env > file > default precedence.
type AppConfig struct {
	CommandDelay  time.Duration
	SelectTimeout time.Duration
	ReceiveDelay  time.Duration
	Quiet         bool
	NoColor       bool
	NoPrompt      bool
}

// DefaultAppConfig returns the default timing knobs (ReceiveDelay matches
// rcon.DefaultConfig's) plus the ambient behavior flags, all off by default.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		CommandDelay:  100 * time.Millisecond,
		SelectTimeout: 500 * time.Millisecond,
		ReceiveDelay:  10 * time.Millisecond,
	}
}

// Manager owns one loaded <PROG>.ini file and the viper instance layered
// over it. It is loaded once per process and mutated in memory before an
// explicit Save.
type Manager struct {
	mu   sync.RWMutex
	path string
	v    *viper.Viper
}

// Load reads path (an ini file) into a fresh viper instance, falling back
// to AppConfig/Target defaults for any key the file doesn't set. A missing
// file is not an error — Manager starts from defaults and Save will create
// it.
func Load(path string) (*Manager, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	def := DefaultAppConfig()
	v.SetDefault("commanddelay", def.CommandDelay.String())
	v.SetDefault("selecttimeout", def.SelectTimeout.String())
	v.SetDefault("receivedelay", def.ReceiveDelay.String())
	v.SetDefault("quiet", def.Quiet)
	v.SetDefault("nocolor", def.NoColor)
	v.SetDefault("noprompt", def.NoPrompt)
	v.SetDefault("shost", "")
	v.SetDefault("sport", "27015")
	v.SetDefault("spass", "")

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, apperr.New(apperr.FileError, "config.Load", err)
			}
		}
		log.Debug().Str("path", path).Msg("no ini config file found, using defaults")
	}

	return &Manager{path: path, v: v}, nil
}

// App returns the resolved AppConfig.
func (m *Manager) App() AppConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return AppConfig{
		CommandDelay:  m.v.GetDuration("commanddelay"),
		SelectTimeout: m.v.GetDuration("selecttimeout"),
		ReceiveDelay:  m.v.GetDuration("receivedelay"),
		Quiet:         m.v.GetBool("quiet"),
		NoColor:       m.v.GetBool("nocolor"),
		NoPrompt:      m.v.GetBool("noprompt"),
	}
}

// DefaultTarget returns the ini's default-section target (sHost/sPort/
// sPass), the bottom of the resolution chain.
func (m *Manager) DefaultTarget() hosts.Target {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return hosts.Target{
		Host:     m.v.GetString("shost"),
		Port:     m.v.GetString("sport"),
		Password: m.v.GetString("spass"),
	}
}

// TargetOverride carries the explicitly-given pieces of a CLI invocation's
// target. A nil field means "not given on the command line"; distinguishing
// nil from empty-string matters because an empty flag value should still
// win over an env var or saved host.
type TargetOverride struct {
	Host  *string
	Port  *string
	Pass  *string
	Saved string
}

// ResolveTarget layers the target's three fields: explicit flags always
// win; environment variables fill in anything a flag didn't set, but only
// against the ini defaults — a named saved host is itself an explicit
// choice and is not second-guessed by an env var meant to override
// defaults.
func (m *Manager) ResolveTarget(ov TargetOverride, reg *hosts.Registry) (hosts.Target, error) {
	target := m.DefaultTarget()

	if ov.Saved != "" {
		saved, found := reg.Resolve(ov.Saved)
		if !found {
			return hosts.Target{}, apperr.New(apperr.UsageError, "config.ResolveTarget", fmt.Errorf("no saved host named %q", ov.Saved))
		}
		target = saved
	} else {
		if v := os.Getenv(EnvPrefix + "_HOST"); v != "" {
			target.Host = v
		}
		if v := os.Getenv(EnvPrefix + "_PORT"); v != "" {
			target.Port = v
		}
		if v := os.Getenv(EnvPrefix + "_PASS"); v != "" {
			target.Password = v
		}
	}

	if ov.Host != nil {
		target.Host = *ov.Host
	}
	if ov.Port != nil {
		target.Port = *ov.Port
	}
	if ov.Pass != nil {
		target.Password = *ov.Pass
	}

	return target, nil
}

// Save writes the resolved AppConfig and default target back to path,
// overwriting any existing file. Used by --write-ini.
func (m *Manager) Save(app AppConfig, target hosts.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setAll(app, target)
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return apperr.New(apperr.FileError, "config.Save", err)
	}
	if err := m.v.WriteConfigAs(m.path); err != nil {
		return apperr.New(apperr.FileError, "config.Save", err)
	}
	return nil
}

// Merge writes any of AppConfig/target's keys that are missing from the
// file on disk, leaving existing keys untouched. Used by --update-ini.
func (m *Manager) Merge(app AppConfig, target hosts.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	onDisk := viper.New()
	onDisk.SetConfigFile(m.path)
	onDisk.SetConfigType("ini")
	hadFile := true
	if err := onDisk.ReadInConfig(); err != nil {
		hadFile = false
	}

	keys := map[string]interface{}{
		"commanddelay":  app.CommandDelay.String(),
		"selecttimeout": app.SelectTimeout.String(),
		"receivedelay":  app.ReceiveDelay.String(),
		"quiet":         app.Quiet,
		"nocolor":       app.NoColor,
		"noprompt":      app.NoPrompt,
		"shost":         target.Host,
		"sport":         target.Port,
		"spass":         target.Password,
	}
	for k, v := range keys {
		if hadFile && onDisk.IsSet(k) {
			continue
		}
		m.v.Set(k, v)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return apperr.New(apperr.FileError, "config.Merge", err)
	}
	if err := m.v.WriteConfigAs(m.path); err != nil {
		return apperr.New(apperr.FileError, "config.Merge", err)
	}
	return nil
}

func (m *Manager) setAll(app AppConfig, target hosts.Target) {
	m.v.Set("commanddelay", app.CommandDelay.String())
	m.v.Set("selecttimeout", app.SelectTimeout.String())
	m.v.Set("receivedelay", app.ReceiveDelay.String())
	m.v.Set("quiet", app.Quiet)
	m.v.Set("nocolor", app.NoColor)
	m.v.Set("noprompt", app.NoPrompt)
	m.v.Set("shost", target.Host)
	m.v.Set("sport", target.Port)
	m.v.Set("spass", target.Password)
}

// Path returns the loaded ini file's path.
func (m *Manager) Path() string {
	return m.path
}
