package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bloops-games/wordmix/internal/buildinfo"
	"github.com/bloops-games/wordmix/internal/client"
	"github.com/bloops-games/wordmix/internal/console"
	"github.com/bloops-games/wordmix/internal/database"
	savedb "github.com/bloops-games/wordmix/internal/database/save/database"
	"github.com/bloops-games/wordmix/internal/logging"
	"github.com/bloops-games/wordmix/internal/shutdown"
	"github.com/bloops-games/wordmix/internal/solo"
	"github.com/bloops-games/wordmix/internal/words"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var version string

const usage = `usage:
  wordmix-cli solo [-level N] [-seed N] [-nosave]
  wordmix-cli online -name NAME [-addr URL] [-room ID] [-mode duel|coop] [-level N] [-seed N]
`

type Config struct {
	Debug bool `envconfig:"WORDMIX_DEBUG" default:"false"`
	Words words.Config
	DB    database.Config
}

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(os.Stdout, buildinfo.GreetingCLI, buildinfo.ProjectName, version, buildinfo.GithubURL)

	if len(os.Args) < 2 {
		_, _ = fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, done := shutdown.New()
	defer done()

	_ = godotenv.Load()
	config := Config{}
	if err := envconfig.Process("", &config); err != nil {
		logging.DefaultLogger().Fatalf("processing the config: %v", err)
	}

	logger := logging.NewLogger(config.Debug)
	ctx = logging.WithLogger(ctx, logger)

	var err error
	switch os.Args[1] {
	case "solo":
		err = runSolo(ctx, config, os.Args[2:])
	case "online":
		err = runOnline(ctx, os.Args[2:])
	default:
		_, _ = fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatalf("main.%s: %v", os.Args[1], err)
	}
}

// seedFlag returns nil for negative values so that a random seed is used.
func seedFlag(v int64) *int64 {
	if v < 0 {
		return nil
	}
	return &v
}

func runSolo(ctx context.Context, config Config, args []string) error {
	fs := flag.NewFlagSet("solo", flag.ExitOnError)
	lvl := fs.Int("level", 1, "level to start at")
	seed := fs.Int64("seed", -1, "grid seed, negative for random")
	nosave := fs.Bool("nosave", false, "disable save slots")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	pool, err := words.Load(config.Words)
	if err != nil {
		return fmt.Errorf("load words: %w", err)
	}

	var saves console.SaveStore
	if !*nosave {
		db, err := database.New(ctx, &config.DB)
		if err != nil {
			return fmt.Errorf("new database: %w", err)
		}

		defer db.Close(ctx)
		saves = savedb.New(db)
	}

	game := console.NewSolo(solo.New(pool, nil), saves, os.Stdout, nil)
	return game.Run(ctx, console.SoloConfig{Level: *lvl, Seed: seedFlag(*seed)}, os.Stdin)
}

func runOnline(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("online", flag.ExitOnError)
	addr := fs.String("addr", "ws://localhost:8765/ws", "server websocket url")
	name := fs.String("name", "", "player name")
	roomID := fs.String("room", "", "room to join, empty to create one")
	mode := fs.String("mode", "duel", "duel or coop when creating")
	lvl := fs.Int("level", 1, "level when creating")
	seed := fs.Int64("seed", -1, "grid seed when creating, negative for random")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if *name == "" {
		return fmt.Errorf("-name is required")
	}

	c, err := client.Dial(ctx, *addr)
	if err != nil {
		return fmt.Errorf("client.Dial: %w", err)
	}

	defer c.Close()

	return console.RunOnline(ctx, c, console.OnlineConfig{
		Name:   *name,
		RoomID: *roomID,
		Mode:   *mode,
		Level:  *lvl,
		Seed:   seedFlag(*seed),
	}, os.Stdin, os.Stdout)
}
