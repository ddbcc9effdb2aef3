// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package config loads the bot configuration: a base JSON file, an optional
// override file merged over it, and a few environment variables on top.
package config

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/complex-gh/bantip"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	// ErrConfigExists is returned by Generate when the target file exists.
	ErrConfigExists = errors.New("config file already exists")
	// ErrInvalidSalt is returned when discordIdSeed is not 64 hex characters.
	ErrInvalidSalt = errors.New("invalid discordIdSeed")
)

// Environment variables read by Load.
const (
	EnvToken  = "BANTIP_TOKEN"
	EnvAPIURL = "BANTIP_API_URL"
	EnvLevel  = "LOG_LEVEL"
	EnvDev    = "LOG_DEV"
)

// Config is the typed configuration of the bot.
type Config struct {
	Token             string `yaml:"token"`
	BotPrefix         string `yaml:"botPrefix"`
	BotEmoji          string `yaml:"botEmoji"`
	WalletSeed        string `yaml:"walletSeed"`
	DiscordIDSeed     string `yaml:"discordIdSeed"`
	MaxPendingBananos int    `yaml:"maxPendingBananos"`
	BananodeAPIURL    string `yaml:"bananodeApiUrl"`

	Drain Drain `yaml:"drain"`
	Work  Work  `yaml:"work"`
	Log   Log   `yaml:"log"`
}

// Drain bounds one drain of pending blocks. Zero disables a bound.
type Drain struct {
	MaxIterations int           `yaml:"maxIterations"`
	Timeout       time.Duration `yaml:"timeout"`
}

// Work selects where proof of work is computed.
type Work struct {
	Remote  bool `yaml:"remote"`
	Workers int  `yaml:"workers"`
}

// Log mirrors logging.Config.
type Log struct {
	Level string `yaml:"level"`
	Dev   bool   `yaml:"dev"`
}

// LoadDefaults returns the configuration used for every key the files leave
// out.
func LoadDefaults() Config {
	return Config{
		BotPrefix:         "!ban",
		BotEmoji:          "🍌",
		MaxPendingBananos: 10,
		BananodeAPIURL:    "https://kaliumapi.appditto.com/api",
		Drain: Drain{
			MaxIterations: 100,
			Timeout:       2 * time.Minute,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads basePath, merges overridePath over it when that file exists,
// decodes the result over LoadDefaults and applies the environment. Values
// from envFiles (read with godotenv, missing files skipped) are used for
// variables the process environment does not set.
func Load(basePath, overridePath string, envFiles ...string) (*Config, error) {
	base, err := readTree(basePath)
	if err != nil {
		return nil, err
	}
	if overridePath != "" {
		override, err := readTree(overridePath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			bantip.MergeOverride(override, base)
		}
	}

	cfg, err := decode(base)
	if err != nil {
		return nil, err
	}

	env, err := readEnvFiles(envFiles)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := env[key]
		return v, ok
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readTree parses a JSON (or YAML) file into a generic tree.
func readTree(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config %s: %w", path, err)
	}
	tree := map[string]any{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	return tree, nil
}

// decode lays tree over the defaults.
func decode(tree map[string]any) (*Config, error) {
	var node yaml.Node
	if err := node.Encode(tree); err != nil {
		return nil, fmt.Errorf("could not encode config tree: %w", err)
	}
	cfg := LoadDefaults()
	if err := node.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("could not decode config: %w", err)
	}
	return &cfg, nil
}

func readEnvFiles(paths []string) (map[string]string, error) {
	env := map[string]string{}
	for _, p := range paths {
		vals, err := godotenv.Read(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("could not read env file %s: %w", p, err)
		}
		for k, v := range vals {
			if _, ok := env[k]; !ok {
				env[k] = v
			}
		}
	}
	return env, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvToken); ok && v != "" {
		c.Token = v
	}
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.BananodeAPIURL = v
	}
	if v, ok := lookup(EnvLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvDev); ok {
		c.Log.Dev = v == "1"
	}
}

// Validate checks the values the bot cannot run without.
func (c *Config) Validate() error {
	if err := checkHex32(c.DiscordIDSeed); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSalt, err)
	}
	if err := checkHex32(c.WalletSeed); err != nil {
		return fmt.Errorf("invalid walletSeed: %w", err)
	}
	if c.BotPrefix == "" {
		return errors.New("botPrefix must not be empty")
	}
	if c.BananodeAPIURL == "" {
		return errors.New("bananodeApiUrl must not be empty")
	}
	if c.MaxPendingBananos < 0 || c.Drain.MaxIterations < 0 || c.Drain.Timeout < 0 {
		return errors.New("maxPendingBananos and drain bounds must not be negative")
	}
	return nil
}

// Salt returns the identity salt as the bytes of its configured text.
func (c *Config) Salt() []byte {
	return []byte(c.DiscordIDSeed)
}

func checkHex32(s string) error {
	if len(s) != 64 {
		return fmt.Errorf("want 64 hex characters, got %d", len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return err
	}
	return nil
}

// Generate writes a new base config to path with random wallet and identity
// seeds read from rand. It never overwrites an existing file.
func Generate(path, token string, rand io.Reader) error {
	walletSeed, err := randomHex(rand)
	if err != nil {
		return err
	}
	salt, err := randomHex(rand)
	if err != nil {
		return err
	}

	defaults := LoadDefaults()
	if token == "" {
		token = "your-discord-bot-token"
	}
	out := map[string]any{
		"walletSeed":        walletSeed,
		"token":             token,
		"discordIdSeed":     salt,
		"botPrefix":         defaults.BotPrefix,
		"botEmoji":          defaults.BotEmoji,
		"maxPendingBananos": defaults.MaxPendingBananos,
		"bananodeApiUrl":    defaults.BananodeAPIURL,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode config: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err != nil {
		return fmt.Errorf("could not create config: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("could not write config: %w", err)
	}
	return f.Close()
}

func randomHex(rand io.Reader) (string, error) {
	var b [32]byte
	if _, err := io.ReadFull(rand, b[:]); err != nil {
		return "", fmt.Errorf("could not read random seed: %w", err)
	}
	return fmt.Sprintf("%X", b[:]), nil
}
