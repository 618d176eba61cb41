package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/bloops-games/wordmix/internal/buildinfo"
	"github.com/bloops-games/wordmix/internal/cache"
	"github.com/bloops-games/wordmix/internal/database"
	resultdb "github.com/bloops-games/wordmix/internal/database/result/database"
	"github.com/bloops-games/wordmix/internal/database/result/model"
	"github.com/bloops-games/wordmix/internal/lobby"
	"github.com/bloops-games/wordmix/internal/logging"
	"github.com/bloops-games/wordmix/internal/server"
	"github.com/bloops-games/wordmix/internal/shutdown"
	"github.com/bloops-games/wordmix/internal/words"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/sync/errgroup"
)

var version string

type Config struct {
	Debug bool `envconfig:"WORDMIX_DEBUG" default:"false"`

	// Port of the HTTP and websocket endpoints
	Port string `envconfig:"WORDMIX_PORT" default:"8765"`

	// Number of players kept in the stats cache
	CacheSize int `envconfig:"WORDMIX_CACHE_SIZE" default:"1024"`

	Server server.Config
	Lobby  lobby.Config
	Words  words.Config
	DB     database.Config
}

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(os.Stdout, buildinfo.GreetingCLI, buildinfo.ProjectName, version, buildinfo.GithubURL)

	ctx, done := shutdown.New()
	defer done()

	_ = godotenv.Load()
	config := Config{}
	if err := envconfig.Process("", &config); err != nil {
		logging.DefaultLogger().Fatalf("processing the config: %v", err)
	}

	logger := logging.NewLogger(config.Debug)
	ctx = logging.WithLogger(ctx, logger)

	if err := realMain(ctx, config); err != nil {
		logger.Fatalf("main.realMain: %v", err)
	}
}

func realMain(ctx context.Context, config Config) error {
	logger := logging.FromContext(ctx).Named("main.realMain")

	pool, err := words.Load(config.Words)
	if err != nil {
		return fmt.Errorf("load words: %w", err)
	}
	logger.Infof("word pool %s with %d words, %d skipped", pool.Language(), pool.Len(), pool.Skipped())

	db, err := database.New(ctx, &config.DB)
	if err != nil {
		return fmt.Errorf("new database: %w", err)
	}

	defer db.Close(ctx)

	statsCache, err := cache.NewARC[string, []model.Result](config.CacheSize)
	if err != nil {
		return fmt.Errorf("can not create arc cache: %w", err)
	}
	results := resultdb.New(db, statsCache)

	srv, err := server.New(config.Port)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	manager := lobby.NewManager(pool, &config.Lobby, results)
	router := server.NewRouter(ctx, &config.Server, manager, results)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ServeHTTP(ctx, &http.Server{Handler: router}); err != nil {
			return fmt.Errorf("srv.ServeHTTP: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return manager.Run(ctx)
	})

	return g.Wait()
}
