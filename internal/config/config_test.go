// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/complex-gh/bantip/internal/entropy"
	"github.com/matryer/is"
)

var (
	testWalletSeed = strings.Repeat("A1", 32)
	testSalt       = strings.Repeat("B2", 32)
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvToken, EnvAPIURL, EnvLevel, EnvDev} {
		t.Setenv(k, "")
		os.Unsetenv(k) //nolint:errcheck
	}
}

// TestLoad_BaseOnly fills missing keys from the defaults.
func TestLoad_BaseOnly(t *testing.T) {
	is := is.New(t)
	clearEnv(t)

	dir := t.TempDir()
	base := writeFile(t, dir, "config.json", `{"token":"tok","walletSeed":"`+testWalletSeed+`","discordIdSeed":"`+testSalt+`"}`)

	cfg, err := Load(base, filepath.Join(dir, "missing.json"))
	is.NoErr(err)
	is.Equal(cfg.Token, "tok")
	is.Equal(cfg.BotPrefix, "!ban")
	is.Equal(cfg.MaxPendingBananos, 10)
	is.Equal(cfg.Drain.MaxIterations, 100)
	is.Equal(cfg.Drain.Timeout, 2*time.Minute)
	is.Equal(string(cfg.Salt()), testSalt)
}

// TestLoad_Override merges nested override keys and keeps the rest of base.
func TestLoad_Override(t *testing.T) {
	is := is.New(t)
	clearEnv(t)

	dir := t.TempDir()
	base := writeFile(t, dir, "config.json", `{
  "token": "base-token",
  "botPrefix": "!b",
  "walletSeed": "`+testWalletSeed+`",
  "discordIdSeed": "`+testSalt+`",
  "drain": {"maxIterations": 5, "timeout": "30s"},
  "work": {"remote": false, "workers": 2}
}`)
	override := writeFile(t, dir, "override.json", `{"token":"secret-token","drain":{"timeout":"1m"},"work":{"remote":true}}`)

	cfg, err := Load(base, override)
	is.NoErr(err)
	is.Equal(cfg.Token, "secret-token")
	is.Equal(cfg.BotPrefix, "!b")
	is.Equal(cfg.Drain.MaxIterations, 5)
	is.Equal(cfg.Drain.Timeout, time.Minute)
	is.True(cfg.Work.Remote)
	is.Equal(cfg.Work.Workers, 2)
}

// TestLoad_Env lets the process environment win over env files and files.
func TestLoad_Env(t *testing.T) {
	is := is.New(t)
	clearEnv(t)

	dir := t.TempDir()
	base := writeFile(t, dir, "config.json", `{"token":"file","walletSeed":"`+testWalletSeed+`","discordIdSeed":"`+testSalt+`"}`)
	envFile := writeFile(t, dir, ".env", "BANTIP_TOKEN=from-dotenv\nBANTIP_API_URL=http://localhost:7072\nLOG_DEV=1\n")

	cfg, err := Load(base, "", envFile, filepath.Join(dir, "nope.env"))
	is.NoErr(err)
	is.Equal(cfg.Token, "from-dotenv")
	is.Equal(cfg.BananodeAPIURL, "http://localhost:7072")
	is.True(cfg.Log.Dev)

	t.Setenv(EnvToken, "from-process")
	cfg, err = Load(base, "", envFile)
	is.NoErr(err)
	is.Equal(cfg.Token, "from-process")
}

// TestLoad_Invalid reports bad seeds, bad files and bad values.
func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cases := map[string]string{
		"short salt":     `{"walletSeed":"` + testWalletSeed + `","discordIdSeed":"abc"}`,
		"non hex salt":   `{"walletSeed":"` + testWalletSeed + `","discordIdSeed":"` + strings.Repeat("zz", 32) + `"}`,
		"missing wallet": `{"discordIdSeed":"` + testSalt + `"}`,
		"bad timeout":    `{"walletSeed":"` + testWalletSeed + `","discordIdSeed":"` + testSalt + `","drain":{"timeout":"soon"}}`,
		"empty prefix":   `{"walletSeed":"` + testWalletSeed + `","discordIdSeed":"` + testSalt + `","botPrefix":""}`,
		"not json":       `{"walletSeed": [`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			p := writeFile(t, dir, strings.ReplaceAll(name, " ", "_")+".json", content)
			_, err := Load(p, "")
			is.True(err != nil)
		})
	}

	t.Run("salt sentinel", func(t *testing.T) {
		is := is.New(t)
		p := writeFile(t, dir, "salt.json", `{"walletSeed":"`+testWalletSeed+`","discordIdSeed":"abc"}`)
		_, err := Load(p, "")
		is.True(errors.Is(err, ErrInvalidSalt))
	})

	t.Run("missing base", func(t *testing.T) {
		is := is.New(t)
		_, err := Load(filepath.Join(dir, "absent.json"), "")
		is.True(errors.Is(err, os.ErrNotExist))
	})
}

// TestGenerate writes a loadable config once and refuses to overwrite it.
func TestGenerate(t *testing.T) {
	is := is.New(t)
	clearEnv(t)

	p := filepath.Join(t.TempDir(), "config.json")
	is.NoErr(Generate(p, "", entropy.NewRatchet([]byte("generate"))))

	data, err := os.ReadFile(p)
	is.NoErr(err)
	var raw map[string]any
	is.NoErr(json.Unmarshal(data, &raw))
	is.Equal(raw["token"], "your-discord-bot-token")
	is.Equal(len(raw["walletSeed"].(string)), 64)
	is.True(raw["walletSeed"] != raw["discordIdSeed"])
	is.Equal(strings.ToUpper(raw["walletSeed"].(string)), raw["walletSeed"])

	cfg, err := Load(p, "")
	is.NoErr(err)
	is.Equal(cfg.WalletSeed, raw["walletSeed"])

	err = Generate(p, "tok", entropy.NewRatchet([]byte("again")))
	is.True(errors.Is(err, ErrConfigExists))

	again, err := os.ReadFile(p)
	is.NoErr(err)
	is.Equal(string(again), string(data))
}
