// Package web parses web service flags and launches the service.
package web

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	identitysqlite "github.com/louisbranch/modelhub/internal/core/identity/sqlite"
	entrypoint "github.com/louisbranch/modelhub/internal/platform/cmd"
	"github.com/louisbranch/modelhub/internal/platform/sessiontoken"
	webservice "github.com/louisbranch/modelhub/internal/services/web"
)

// Config holds web command configuration.
type Config struct {
	HTTPAddr        string `env:"MODELHUB_WEB_HTTP_ADDR" envDefault:"localhost:8080"`
	DBPath          string `env:"MODELHUB_WEB_DB_PATH" envDefault:"data/modelhub.db"`
	SearchScript    string `env:"MODELHUB_WEB_SEARCH_SCRIPT"`
	ShowDiagnostics bool   `env:"MODELHUB_WEB_SHOW_DIAGNOSTICS" envDefault:"false"`
	SeedDemoUsers   bool   `env:"MODELHUB_WEB_SEED_DEMO_USERS" envDefault:"true"`
	// IssueToken prints a session token for this principal and exits.
	IssueToken string
}

var demoUsers = map[string]string{
	"u1": "",
	"u2": "Jane Doe",
}

func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite identity store path")
	fs.StringVar(&cfg.SearchScript, "search-script", cfg.SearchScript, "Lua search capability script")
	fs.BoolVar(&cfg.ShowDiagnostics, "show-diagnostics", cfg.ShowDiagnostics, "Show raw errors on the error page")
	fs.BoolVar(&cfg.SeedDemoUsers, "seed-demo-users", cfg.SeedDemoUsers, "Insert demo users into the identity store")
	fs.StringVar(&cfg.IssueToken, "issue-token", cfg.IssueToken, "Print a session token for a principal id and exit")
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfigFromArgs(&cfg, fs, args, bindFlags); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IssueToken writes a signed session token for cfg.IssueToken to out.
func IssueToken(cfg Config, out io.Writer) error {
	sessionCfg, err := sessiontoken.LoadConfigFromEnv()
	if err != nil {
		return err
	}
	token, err := sessiontoken.NewManager(sessionCfg).Issue(cfg.IssueToken)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

// Run starts the web service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWeb, func(ctx context.Context) error {
		return serve(ctx, cfg)
	})
}

func serve(ctx context.Context, cfg Config) error {
	sessionCfg, err := sessiontoken.LoadConfigFromEnv()
	if err != nil {
		return err
	}
	sessions := sessiontoken.NewManager(sessionCfg)
	if !sessions.Enabled() {
		log.Printf("session secret not set; all callers are anonymous")
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	server, err := webservice.NewServer(ctx, webservice.Config{
		HTTPAddr:        cfg.HTTPAddr,
		SearchScript:    cfg.SearchScript,
		ShowDiagnostics: cfg.ShowDiagnostics,
		IdentityStore:   store,
		Sessions:        sessions,
		Logger:          log.Default(),
	})
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}
	defer server.Close()

	log.Printf("web listening addr=%s", server.Addr())
	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve web: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg Config) (*identitysqlite.Store, error) {
	path := strings.TrimSpace(cfg.DBPath)
	if path == "" {
		return nil, errors.New("db path is required")
	}
	if path != identitysqlite.MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	store, err := identitysqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open identity store: %w", err)
	}
	if cfg.SeedDemoUsers {
		for id, name := range demoUsers {
			if err := store.PutUser(ctx, id, name); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("seed demo users: %w", err)
			}
		}
	}
	return store, nil
}
