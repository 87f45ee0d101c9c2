// Package config loads goapgit configuration from TOML files via viper.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/daisuke19891023/goapgit/internal/models"
)

// DefaultFileName is the repository-local config file goapgit looks for.
const DefaultFileName = ".goapgit.toml"

// Config is the validated top-level configuration.
type Config struct {
	Goal              models.GoalSpec
	StrategyRules     []models.StrategyRule
	EnableRerere      bool
	ConflictStyle     string
	AllowForcePush    bool
	DryRun            bool
	MaxTestRuntimeSec int
}

// Default returns the configuration used when no config file exists.
// Dry-run defaults to true so an unconfigured run never mutates the
// repository.
func Default() Config {
	return Config{
		Goal:              models.DefaultGoal(),
		EnableRerere:      true,
		ConflictStyle:     "zdiff3",
		AllowForcePush:    false,
		DryRun:            true,
		MaxTestRuntimeSec: 600,
	}
}

// Load reads a TOML config file. A missing file is not an error; the
// defaults are returned instead.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("GOAPGIT")
	v.AutomaticEnv()

	v.SetDefault("goal.mode", string(models.GoalRebaseToUpstream))
	v.SetDefault("goal.tests_must_pass", false)
	v.SetDefault("goal.push_with_lease", false)
	v.SetDefault("strategy.enable_rerere", true)
	v.SetDefault("strategy.conflict_style", "zdiff3")
	v.SetDefault("safety.allow_force_push", false)
	v.SetDefault("safety.dry_run", true)
	v.SetDefault("safety.max_test_runtime_sec", 600)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	mode := v.GetString("goal.mode")
	if !models.ValidGoalMode(mode) {
		return Config{}, fmt.Errorf("config %s: unknown goal mode %q", path, mode)
	}

	var rules []models.StrategyRule
	if err := v.UnmarshalKey("strategy.rules", &rules); err != nil {
		return Config{}, fmt.Errorf("config %s: invalid strategy rules: %w", path, err)
	}
	for _, rule := range rules {
		if rule.Pattern == "" || rule.Resolution == "" {
			return Config{}, fmt.Errorf("config %s: strategy rules need pattern and resolution", path)
		}
	}

	return Config{
		Goal: models.GoalSpec{
			Mode:          models.GoalMode(mode),
			TestsMustPass: v.GetBool("goal.tests_must_pass"),
			PushWithLease: v.GetBool("goal.push_with_lease"),
		},
		StrategyRules:     rules,
		EnableRerere:      v.GetBool("strategy.enable_rerere"),
		ConflictStyle:     v.GetString("strategy.conflict_style"),
		AllowForcePush:    v.GetBool("safety.allow_force_push"),
		DryRun:            v.GetBool("safety.dry_run"),
		MaxTestRuntimeSec: v.GetInt("safety.max_test_runtime_sec"),
	}, nil
}
