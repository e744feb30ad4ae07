package plugin

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/icrus-dev/irsplugin/pkg/build"
)

// Config holds all plugin configuration. Decay windows are pointers so an
// omitted key reads as "feature disabled" rather than "zero seconds" —
// zero means expire immediately and negative means hold forever.
type Config struct {
	// --- Authentication gate ---
	AuthPassword     string   `yaml:"auth_password"`      // plaintext; enables chat masking
	AuthPasswordHash string   `yaml:"auth_password_hash"` // bcrypt; takes precedence when set
	AuthMaxRetries   int      `yaml:"auth_max_retries"`
	AuthTimeoutSec   int64    `yaml:"auth_timeout_sec"`
	AuthAutoRegister bool     `yaml:"auth_auto_register"`
	AuthWhitelist    []uint64 `yaml:"auth_whitelist"`

	// --- Building decay windows (seconds) ---
	DemolishSeconds *int64 `yaml:"demolish_seconds"`
	RotateSeconds   *int64 `yaml:"rotate_seconds"`

	// --- Skin browser ---
	SkinsEnabled bool   `yaml:"skins_enabled"`
	SkinCapacity int    `yaml:"skin_capacity"`
	ItemsFile    string `yaml:"items_file"` // item definition list
	SkinsFile    string `yaml:"skins_file"` // approved skin catalog

	// --- Server give-message suppression ---
	HideGiveMessages   bool     `yaml:"hide_give_messages"`
	HideGiveForAdmins  bool     `yaml:"hide_give_for_admins"`
	HideGiveForPlayers []uint64 `yaml:"hide_give_for_players"`

	// --- Web/status server ---
	WebEnabled           bool   `yaml:"web_enabled"`
	WebHost              string `yaml:"web_host"`
	WebPort              int    `yaml:"web_port"`
	JWTSecret            string `yaml:"jwt_secret"` // auto-generated if empty
	JWTExpirySec         int    `yaml:"jwt_expiry_sec"`
	WebAdminUser         string `yaml:"web_admin_user"`
	WebAdminPasswordHash string `yaml:"web_admin_password_hash"` // bcrypt

	// --- Audit log ---
	AuditDB string `yaml:"audit_db"` // sqlite path, empty = disabled

	// --- Localization ---
	DefaultLanguage string `yaml:"default_language"`
}

// DefaultConfig returns the shipped defaults, matching the windows the
// host applies to a vanilla server (10-minute demolish and rotate).
func DefaultConfig() *Config {
	demolish := int64(600)
	rotate := int64(600)
	return &Config{
		AuthMaxRetries:    5,
		AuthTimeoutSec:    30,
		AuthAutoRegister:  true,
		DemolishSeconds:   &demolish,
		RotateSeconds:     &rotate,
		SkinsEnabled:      true,
		SkinCapacity:      42,
		HideGiveMessages:  true,
		HideGiveForAdmins: true,
		WebHost:           "127.0.0.1",
		WebPort:           8486,
		JWTExpirySec:      86400,
		DefaultLanguage:   "en",
	}
}

// LoadConfig reads a YAML config file, filling unset keys with defaults.
// A missing file writes the defaults out and returns them, so a first run
// leaves an editable config behind.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		log.Printf("plugin: wrote default config to %s", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("plugin: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("plugin: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config back out as YAML (used for whitelist
// auto-registration and first-run defaults).
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("plugin: marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("plugin: write config %s: %w", path, err)
	}
	return nil
}

// Windows maps the configured durations onto decay windows; a nil pointer
// leaves that window disabled.
func (c *Config) Windows() build.Windows {
	var w build.Windows
	if c.DemolishSeconds != nil {
		w.Demolish = build.Window{Seconds: *c.DemolishSeconds, Enabled: true}
	}
	if c.RotateSeconds != nil {
		w.Rotate = build.Window{Seconds: *c.RotateSeconds, Enabled: true}
	}
	return w
}

// AuthEnabled reports whether the password gate is configured at all.
func (c *Config) AuthEnabled() bool {
	return c.AuthPassword != "" || c.AuthPasswordHash != ""
}

// Whitelisted reports whether a user id is on the auth whitelist.
func (c *Config) Whitelisted(id uint64) bool {
	for _, w := range c.AuthWhitelist {
		if w == id {
			return true
		}
	}
	return false
}

// WatchConfig starts an fsnotify watcher on the config file and sends
// each successfully reloaded Config on ch. Parse failures keep the
// running config and log. The caller drains ch on its own event thread
// so the reload never races the tick loop.
func WatchConfig(path string, ch chan<- *Config) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("plugin: config watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("plugin: watch %s: %w", dir, err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				cfg, err := LoadConfig(path)
				if err != nil {
					log.Printf("plugin: config reload failed: %v", err)
					continue
				}
				select {
				case ch <- cfg:
					log.Printf("plugin: config reloaded from %s", path)
				default:
					log.Printf("plugin: config reload dropped, previous reload still pending")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("plugin: config watcher error: %v", err)
			}
		}
	}()

	log.Printf("plugin: watching %s for config changes", path)
	return watcher, nil
}
