package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"chunkwise/internal/cli"
	"chunkwise/internal/constants"
	"chunkwise/internal/engine"
	"chunkwise/internal/keyring"
	"chunkwise/internal/logger"
	"chunkwise/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database file path, or a postgres:// connection string." type:"path" default:"~/.config/chunkwise/chunkwise.db"`
	Debug   bool   `help:"Enable debug logging."`

	Init   cli.InitCmd   `cmd:"" help:"Initialize chunkwise storage."`
	Tui    cli.TuiCmd    `cmd:"" help:"Launch the interactive day dashboard." default:"1"`
	Doctor cli.DoctorCmd `cmd:"" help:"Check storage and data health."`
	Sweep  cli.SweepCmd  `cmd:"" help:"Expire stale day plans."`
	Area   struct {
		Add    cli.AreaAddCmd    `cmd:"" help:"Add a life area."`
		List   cli.AreaListCmd   `cmd:"" help:"List areas."`
		Edit   cli.AreaEditCmd   `cmd:"" help:"Edit an area."`
		Rm     cli.AreaDeleteCmd `cmd:"" help:"Delete an area and everything under it."`
		Health cli.AreaHealthCmd `cmd:"" help:"Show an area's health details."`
	} `cmd:"" help:"Manage life areas."`
	Intention struct {
		Add     cli.IntentionAddCmd     `cmd:"" help:"Add an intention to an area."`
		List    cli.IntentionListCmd    `cmd:"" help:"List an area's intentions."`
		Edit    cli.IntentionEditCmd    `cmd:"" help:"Edit an intention."`
		Rm      cli.IntentionDeleteCmd  `cmd:"" help:"Delete an intention and its chunks."`
		Reorder cli.IntentionReorderCmd `cmd:"" help:"Reorder an area's intentions."`
	} `cmd:"" help:"Manage intentions."`
	Chunk struct {
		Add     cli.ChunkAddCmd     `cmd:"" help:"Add a chunk to an intention."`
		List    cli.ChunkListCmd    `cmd:"" help:"List an intention's chunks."`
		Ready   cli.ChunkReadyCmd   `cmd:"" help:"Show the ready pool."`
		Edit    cli.ChunkEditCmd    `cmd:"" help:"Edit a chunk."`
		Rm      cli.ChunkDeleteCmd  `cmd:"" help:"Delete a chunk."`
		Split   cli.ChunkSplitCmd   `cmd:"" help:"Split a chunk into smaller chunks."`
		Lineage cli.ChunkLineageCmd `cmd:"" help:"Show a chunk's split history."`
		Extract cli.ChunkExtractCmd `cmd:"" help:"Extract chunks from free text."`
	} `cmd:"" help:"Manage chunks."`
	Plan struct {
		New      cli.PlanNewCmd      `cmd:"" help:"Create a day plan."`
		Show     cli.PlanShowCmd     `cmd:"" help:"Show a day plan."`
		List     cli.PlanListCmd     `cmd:"" help:"List recent day plans."`
		Edit     cli.PlanEditCmd     `cmd:"" help:"Edit a draft plan."`
		Finalize cli.PlanFinalizeCmd `cmd:"" help:"Finalize a draft plan."`
		Complete cli.PlanCompleteCmd `cmd:"" help:"Complete an active plan with a review."`
		Rm       cli.PlanDeleteCmd   `cmd:"" help:"Delete a day plan."`
		Dup      cli.PlanDupCmd      `cmd:"" help:"Duplicate a plan's unfinished work to another date."`
		Suggest  cli.PlanSuggestCmd  `cmd:"" help:"Suggest items for a day plan."`
		Stats    cli.PlanStatsCmd    `cmd:"" help:"Show stats for today's active plan."`
	} `cmd:"" help:"Manage day plans."`
	Item struct {
		Add     cli.ItemAddCmd     `cmd:"" help:"Schedule a chunk into a plan."`
		Rm      cli.ItemRemoveCmd  `cmd:"" help:"Remove an item from a plan."`
		Start   cli.ItemStartCmd   `cmd:"" help:"Start working on an item."`
		Pause   cli.ItemPauseCmd   `cmd:"" help:"Pause an in-progress item."`
		Done    cli.ItemDoneCmd    `cmd:"" help:"Complete an item."`
		Skip    cli.ItemSkipCmd    `cmd:"" help:"Skip a pending item."`
		Move    cli.ItemMoveCmd    `cmd:"" help:"Mark an item as moved to another day."`
		Reorder cli.ItemReorderCmd `cmd:"" help:"Reorder a plan's items."`
	} `cmd:"" help:"Manage day plan items."`
	Db struct {
		SetConnection   cli.ConfigSetConnectionCmd   `cmd:"" help:"Store a Postgres connection string in the system keyring."`
		ClearConnection cli.ConfigClearConnectionCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage database configuration."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Personal planning companion: areas, intentions, chunks, day plans"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	store, configDir, err := resolveStore(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	// Everything except init and keyring management needs an opened store.
	switch ctx.Command() {
	case "init", "db set-connection", "db clear-connection":
	default:
		if err := store.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\nRun '%s init' first.\n", err, constants.AppName)
			os.Exit(1)
		}
		defer store.Close()
	}

	owner := os.Getenv(constants.EnvOwner)
	if owner == "" {
		owner = "default"
	}

	appCtx := &cli.Context{
		Store:  store,
		Engine: engine.New(store),
		Owner:  owner,
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveStore picks the backing store. Postgres wins when a connection
// string is given on the command line, in the environment, or in the
// keyring; otherwise the config path is a SQLite database file.
func resolveStore(config string) (storage.Provider, string, error) {
	home, _ := os.UserHomeDir()
	defaultDir := filepath.Join(home, ".config", constants.AppName)

	if isPostgres(config) {
		if err := storage.ValidateConnString(config); err != nil {
			return nil, "", err
		}
		return storage.NewPostgresStore(config), defaultDir, nil
	}

	if connStr := os.Getenv(constants.EnvDBConnection); connStr != "" {
		if err := storage.ValidateConnString(connStr); err != nil {
			return nil, "", fmt.Errorf("%s: %w", constants.EnvDBConnection, err)
		}
		return storage.NewPostgresStore(connStr), defaultDir, nil
	}

	if connStr, err := keyring.GetConnectionString(); err == nil && connStr != "" {
		if err := storage.ValidateConnString(connStr); err != nil {
			return nil, "", fmt.Errorf("keyring connection string: %w", err)
		}
		return storage.NewPostgresStore(connStr), defaultDir, nil
	}

	return storage.NewSQLiteStore(config), filepath.Dir(config), nil
}

func isPostgres(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}
