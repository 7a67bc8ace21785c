package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Email = "reader@example.com"
	cfg.Password = "secret"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing password",
			mutate:  func(cfg *Config) { cfg.Password = "" },
			wantErr: "password",
		},
		{
			name:    "empty friends url",
			mutate:  func(cfg *Config) { cfg.FriendsURL = "" },
			wantErr: "friends URL",
		},
		{
			name:    "sign-in url without host",
			mutate:  func(cfg *Config) { cfg.SignInURL = "http://" },
			wantErr: "sign-in URL",
		},
		{
			name:    "shelf url without placeholder",
			mutate:  func(cfg *Config) { cfg.ShelfURL = "https://www.goodreads.com/review/list/1" },
			wantErr: "{id}",
		},
		{
			name:    "unknown format",
			mutate:  func(cfg *Config) { cfg.Format = "xlsx" },
			wantErr: "output format",
		},
		{
			name:    "zero max pages",
			mutate:  func(cfg *Config) { cfg.MaxPages = 0 },
			wantErr: "max pages",
		},
		{
			name:    "negative wait",
			mutate:  func(cfg *Config) { cfg.Wait = -time.Second },
			wantErr: "wait",
		},
		{
			name:    "negative cache",
			mutate:  func(cfg *Config) { cfg.CacheSize = -1 },
			wantErr: "cache",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigNeedsCredentials(t *testing.T) {
	require.Error(t, DefaultConfig().Validate())
	require.NoError(t, validConfig().Validate())
}

func TestShelfLink(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "https://www.goodreads.com/review/list/100?shelf=read", cfg.ShelfLink("100"))

	cfg.Shelf = "to read"
	require.Equal(t, "https://www.goodreads.com/review/list/7?shelf=to+read", cfg.ShelfLink("7"))
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grshelves.yaml")
	data := `
shelf: favorites
format: parquet
wait: 5s
max_pages: 3
selectors:
  user_link: a.friendLink
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, Load(path, cfg))
	require.Equal(t, "favorites", cfg.Shelf)
	require.Equal(t, "parquet", cfg.Format)
	require.Equal(t, 5*time.Second, cfg.Wait)
	require.Equal(t, 3, cfg.MaxPages)
	require.Equal(t, "a.friendLink", cfg.Selectors.UserLink)
	require.Equal(t, "#booksBody", cfg.Selectors.ShelfBody)
	require.Equal(t, "https://www.goodreads.com/friend", cfg.FriendsURL)
}

func TestLoadMissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "nope.yaml"), DefaultConfig())
	require.ErrorContains(t, err, "read config")
}
