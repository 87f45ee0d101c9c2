package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/daisuke19891023/goapgit/internal/config"
	"github.com/daisuke19891023/goapgit/internal/gitx"
	"github.com/daisuke19891023/goapgit/internal/logging"
	"github.com/daisuke19891023/goapgit/internal/observe"
	"github.com/daisuke19891023/goapgit/internal/output"
	"github.com/daisuke19891023/goapgit/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	log       *zap.Logger
	cfg       config.Config
	dataStore store.Store

	repoPath string
	cfgFile  string
	verbose  bool
	dryRun   bool
	jsonLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "goapgit",
	Short: "Goal-driven git repository remediation",
	Long: `goapgit observes a git repository, plans a bounded sequence of
remediation actions (backup, stash, conflict resolution, rebase
recovery), and executes them while re-observing after every step.
When the repository diverges from expectations it replans instead of
pressing on.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().StringVarP(&repoPath, "repo", "R", ".", "Path to the git repository")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default <repo>/"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Record git commands without executing them")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON instead of console output")
}

func initConfig() {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: resolve repo path: %v\n", err)
		os.Exit(1)
	}
	repoPath = abs

	path := cfgFile
	if path == "" {
		path = filepath.Join(repoPath, config.DefaultFileName)
	}
	cfg, err = config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	viper.SetEnvPrefix("GOAPGIT")
	viper.AutomaticEnv()

	home, _ := os.UserHomeDir()
	defaultStateDir := filepath.Join(home, ".config", "goapgit")
	viper.SetDefault("db_path", filepath.Join(defaultStateDir, "goapgit.db"))
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = effectiveDryRun()

	log = logging.New(logging.Options{JSON: jsonLogs, Verbose: verbose})
}

// effectiveDryRun prefers the flag when given, otherwise the config
// value. The config default keeps unconfigured runs read-only.
func effectiveDryRun() bool {
	if rootCmd.PersistentFlags().Changed("dry-run") {
		return dryRun
	}
	return cfg.DryRun
}

// newFacade builds the git facade all commands share.
func newFacade() *gitx.Facade {
	return gitx.New(repoPath, log, gitx.WithDryRun(effectiveDryRun()))
}

// newReadFacade ignores the dry-run setting; read-only commands must
// see the real repository.
func newReadFacade() *gitx.Facade {
	return gitx.New(repoPath, log)
}

func newObserver() *observe.Observer {
	return observe.NewObserver(newReadFacade())
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}
