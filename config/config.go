// Package config loads runtime settings from the environment, with an
// optional env-style file for development setups.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"

	"cinelog/models"
)

// Settings holds everything the server needs to run.
type Settings struct {
	ListenAddr   string
	DatabasePath string
	CachePath    string
	AvatarPath   string
	LogPath      string

	TMDBAPIKey      string
	TMDBBearerToken string

	AuthSecret    string
	AdminUsername string

	// Dev-only seed passwords; when empty, random passwords are generated
	// and logged once at startup.
	SeedPasswords map[string]string
}

// Defaults used when the corresponding environment variable is unset.
const (
	defaultListenAddr   = ":8080"
	defaultDatabasePath = "data/cinelog.db"
	defaultCachePath    = "data/httpcache"
	defaultAvatarPath   = "data/avatars"
)

// Load reads settings from an optional env file followed by the process
// environment; real environment variables win over file entries.
func Load(fs afero.Fs, envFile string) (*Settings, error) {
	fileVars := map[string]string{}
	if envFile != "" {
		var err error
		fileVars, err = readEnvFile(fs, envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
	}

	get := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		if v, ok := fileVars[key]; ok && v != "" {
			return v
		}
		return fallback
	}

	s := &Settings{
		ListenAddr:      get("LISTEN_ADDR", defaultListenAddr),
		DatabasePath:    get("DATABASE_PATH", defaultDatabasePath),
		CachePath:       get("CACHE_PATH", defaultCachePath),
		AvatarPath:      get("AVATAR_PATH", defaultAvatarPath),
		LogPath:         get("LOG_PATH", ""),
		TMDBAPIKey:      get("TMDB_API_KEY", ""),
		TMDBBearerToken: get("TMDB_BEARER_TOKEN", ""),
		AuthSecret:      get("AUTH_SECRET", ""),
		AdminUsername:   get("ADMIN_USERNAME", models.DefaultAdminUsername),
		SeedPasswords:   map[string]string{},
	}

	if p := get("SEED_ADMIN_PASSWORD", ""); p != "" {
		s.SeedPasswords[s.AdminUsername] = p
	}
	if p := get("SEED_CARRIE_PASSWORD", ""); p != "" {
		s.SeedPasswords["Carrie"] = p
	}

	return s, nil
}

// readEnvFile parses simple KEY=VALUE lines; blank lines and #-comments are
// skipped. Missing files are not an error.
func readEnvFile(fs afero.Fs, path string) (map[string]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	defer f.Close()

	vars := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		vars[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return vars, scanner.Err()
}
