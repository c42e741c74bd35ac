package client

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/cloo-solutions/cravings/internal/recommend"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envBackendURL     = "CRAVINGS_BACKEND_URL"
	envBackendTimeout = "CRAVINGS_BACKEND_TIMEOUT"

	defaultTimeout = 60 * time.Second
)

// Source names where a setting came from.
type Source string

const (
	SourceFlag         Source = "flag"
	SourceEnv          Source = "env"
	SourceGlobalConfig Source = "global_config"
	SourceDefault      Source = "default"
)

// BackendSettings is the resolved recommendation service location.
type BackendSettings struct {
	URL     string        `json:"url"`
	Timeout time.Duration `json:"timeout"`
	Source  Source        `json:"source"`
}

// ResolveBackend applies the cascade flag -> env -> global config -> default.
// cmd may be nil, in which case flags are skipped.
func ResolveBackend(cmd *cobra.Command) (BackendSettings, error) {
	_ = godotenv.Load()

	settings := BackendSettings{Timeout: defaultTimeout}

	if cmd != nil {
		if v, err := cmd.Flags().GetString("api-url"); err == nil && v != "" {
			settings.URL, settings.Source = v, SourceFlag
		}
	}
	if settings.URL == "" {
		if v := os.Getenv(envBackendURL); v != "" {
			settings.URL, settings.Source = v, SourceEnv
		}
	}
	if v := os.Getenv(envBackendTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return settings, fmt.Errorf("invalid %s: %w", envBackendTimeout, err)
		}
		settings.Timeout = d
	}

	globalConfig, err := LoadGlobalConfig()
	if err != nil {
		return settings, err
	}
	if globalConfig != nil {
		if settings.URL == "" && globalConfig.BackendURL != "" {
			settings.URL, settings.Source = globalConfig.BackendURL, SourceGlobalConfig
		}
		if os.Getenv(envBackendTimeout) == "" && globalConfig.Timeout > 0 {
			settings.Timeout = time.Duration(globalConfig.Timeout)
		}
	}

	if settings.URL == "" {
		settings.URL, settings.Source = recommend.DefaultBaseURL, SourceDefault
	}

	if cmd != nil {
		if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
			d, _ := cmd.Flags().GetDuration("timeout")
			settings.Timeout = d
		}
	}

	if err := validateBackendURL(settings.URL); err != nil {
		return settings, err
	}
	return settings, nil
}

func validateBackendURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid backend url %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend url %q: expected http(s)://host", raw)
	}
	return nil
}

func newRecommendClient(cmd *cobra.Command) (*recommend.Client, error) {
	settings, err := ResolveBackend(cmd)
	if err != nil {
		return nil, err
	}
	return recommend.NewClient(settings.URL, settings.Timeout), nil
}
