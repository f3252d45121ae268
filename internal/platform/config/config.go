package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Profile selects the cycle cadence. Production samples every 10
// minutes with a one-hour focus lookback; debug compresses both so a
// full window plays out in minutes.
type Profile string

const (
	ProfileProduction Profile = "production"
	ProfileDebug      Profile = "debug"
)

type Config struct {
	Profile              Profile
	CycleInterval        time.Duration
	FocusLookback        time.Duration
	IdleThreshold        time.Duration
	EnableScreenshots    bool
	EnableScreenshotBlur bool
	DataDir              string
	DBPath               string
	RulesPath            string
	ProviderBinary       string
}

// Load reads worklens.yaml from dataDir, falling back to defaults for
// any missing key. A missing file is not an error.
func Load(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}

	v := viper.New()
	v.SetConfigName("worklens")
	v.SetConfigType("yaml")
	v.AddConfigPath(dataDir)

	v.SetDefault("profile", string(ProfileProduction))
	v.SetDefault("idle_threshold_minutes", 5)
	v.SetDefault("screenshots.enabled", true)
	v.SetDefault("screenshots.blur", false)
	v.SetDefault("provider.binary", "worklens-provider")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	profile := Profile(v.GetString("profile"))
	interval, lookback, err := profileTimings(profile)
	if err != nil {
		return Config{}, err
	}
	threshold := v.GetInt("idle_threshold_minutes")
	if threshold <= 0 {
		return Config{}, fmt.Errorf("idle_threshold_minutes must be positive, got %d", threshold)
	}

	return Config{
		Profile:              profile,
		CycleInterval:        interval,
		FocusLookback:        lookback,
		IdleThreshold:        time.Duration(threshold) * time.Minute,
		EnableScreenshots:    v.GetBool("screenshots.enabled"),
		EnableScreenshotBlur: v.GetBool("screenshots.blur"),
		DataDir:              dataDir,
		DBPath:               filepath.Join(dataDir, "worklens.db"),
		RulesPath:            filepath.Join(dataDir, "rules.yaml"),
		ProviderBinary:       v.GetString("provider.binary"),
	}, nil
}

// WithProfile re-derives the cycle timings for an explicit profile,
// overriding whatever the config file selected.
func (c Config) WithProfile(profile Profile) (Config, error) {
	interval, lookback, err := profileTimings(profile)
	if err != nil {
		return Config{}, err
	}
	c.Profile = profile
	c.CycleInterval = interval
	c.FocusLookback = lookback
	return c, nil
}

func profileTimings(profile Profile) (interval, lookback time.Duration, err error) {
	switch profile {
	case ProfileProduction:
		return 10 * time.Minute, time.Hour, nil
	case ProfileDebug:
		return time.Minute, 6 * time.Minute, nil
	default:
		return 0, 0, fmt.Errorf("unknown profile %q", profile)
	}
}
