package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/carescope/internal/auth"
	"github.com/abhisek/carescope/internal/config"
	"github.com/abhisek/carescope/internal/explain"
	"github.com/abhisek/carescope/internal/llm"
	"github.com/abhisek/carescope/internal/predict"
	"github.com/abhisek/carescope/internal/store"
	"github.com/spf13/cobra"
)

// env is everything a command needs to talk to the services.
type env struct {
	cfg     config.Config
	store   *store.Store
	session *auth.Session
	predict *predict.Client
}

// loadConfig reads --config (or the default file) and the environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db (highest priority),
// then CARESCOPE_DB or the config file, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore opens the local database only.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// openEnv opens the store and builds the service clients. The caller
// closes it.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	client := auth.NewClient(cfg.Endpoints.Auth, cfg.Timeout)
	return &env{
		cfg:     cfg,
		store:   st,
		session: auth.NewSession(client, st.CredentialRepo()),
		predict: predict.New(cfg.Endpoints, cfg.Timeout, predict.WithHistory(st.AssessmentRepo())),
	}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// restore loads the saved session. Failure to reach the account service is
// reported and otherwise ignored.
func (e *env) restore(cmd *cobra.Command) bool {
	ctx, cancel := timeoutContext(cmd, 10*time.Second)
	defer cancel()
	ok, err := e.session.Restore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not confirm saved session: %v\n", err)
	}
	return ok
}

// explainer builds the explanation service. A missing LLM configuration is
// not an error: the service then returns fixed fallback text.
func (e *env) explainer(cmd *cobra.Command) *explain.Service {
	provider, err := llm.NewProviderFromEnv(cmd.Context(), e.store.EventRepo())
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		}
		fmt.Fprintln(os.Stderr, "AI explanations will be unavailable.")
		return explain.New(nil, 0)
	}
	return explain.New(provider, llm.ConfigFromEnv().Temperature)
}
