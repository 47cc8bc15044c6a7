// Package cli implements the legalai command-line client.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/legalai/core/internal/client"
	pkgredis "github.com/legalai/core/internal/pkg/redis"
	"github.com/legalai/core/internal/transcache"
)

const (
	envServer  = "LEGALAI_SERVER"
	envBackend = "LEGALAI_CACHE_BACKEND"
)

// globals are the flags shared by every command.
type globals struct {
	server   string
	backend  string
	cacheDir string
	redisURL string
	verbose  bool

	logger  *zap.Logger
	closers []io.Closer
}

// NewRootCmd builds the legalai command tree.
func NewRootCmd(version string) *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "legalai",
		Short: "Analyze and translate legal documents with a LegalAI server",
		Long: `legalai talks to a LegalAI server to summarize PDF legal documents,
translate text or PDFs, and explain selected passages.

Text translations are cached locally for 24 hours (50 entries at most).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			g.logger = zap.NewNop()
			if g.verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				g.logger = l
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			g.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.server, "server", envOr(envServer, client.DefaultBaseURL), "LegalAI server base URL")
	pf.StringVar(&g.backend, "cache-backend", envOr(envBackend, "file"), "translation cache storage: file, sqlite, redis or memory")
	pf.StringVar(&g.cacheDir, "cache-dir", "", "translation cache directory (default: user cache dir)")
	pf.StringVar(&g.redisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL for --cache-backend redis")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log cache and request details to stderr")

	root.AddCommand(
		newAnalyzeCmd(g),
		newTranslateCmd(g),
		newAssistCmd(g),
		newCacheCmd(g),
		newVersionCmd(version),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(version string) int {
	root := NewRootCmd(version)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (g *globals) close() {
	for i := len(g.closers) - 1; i >= 0; i-- {
		_ = g.closers[i].Close()
	}
	g.closers = nil
	if g.logger != nil {
		_ = g.logger.Sync()
	}
}

func (g *globals) resolveCacheDir() (string, error) {
	if g.cacheDir != "" {
		return g.cacheDir, nil
	}
	dir, err := gap.NewScope(gap.User, "legalai").CacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return dir, nil
}

func (g *globals) openStorage() (transcache.Storage, error) {
	switch strings.ToLower(g.backend) {
	case "memory":
		return transcache.NewMemoryStorage(0), nil
	case "file", "":
		dir, err := g.resolveCacheDir()
		if err != nil {
			return nil, err
		}
		return transcache.NewFileStorage(dir)
	case "sqlite":
		dir, err := g.resolveCacheDir()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		s, err := transcache.NewSQLiteStorage(filepath.Join(dir, "cache.db"))
		if err != nil {
			return nil, err
		}
		g.closers = append(g.closers, s)
		return s, nil
	case "redis":
		if g.redisURL == "" {
			return nil, fmt.Errorf("--redis-url is required for the redis cache backend")
		}
		rc, err := pkgredis.Connect(g.redisURL)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		g.closers = append(g.closers, rc)
		return transcache.NewRedisStorage(rc, ""), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", g.backend)
	}
}

func (g *globals) openCache() (*transcache.Cache, error) {
	store, err := g.openStorage()
	if err != nil {
		return nil, err
	}
	return transcache.New(store, transcache.WithLogger(g.logger)), nil
}

func (g *globals) newClient(cache *transcache.Cache) *client.Client {
	opts := []client.Option{client.WithLogger(g.logger)}
	if cache != nil {
		opts = append(opts, client.WithTranslationCache(cache))
	}
	return client.New(g.server, opts...)
}
