//go:build windows

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simsetgo/pkg/config"
	"simsetgo/pkg/engine"
	"simsetgo/pkg/logging"
	"simsetgo/pkg/profile"
	"simsetgo/pkg/sim"
	"simsetgo/pkg/sim/mocksim"
	"simsetgo/pkg/sim/simconnect"
	"simsetgo/pkg/simvar"
	"simsetgo/pkg/version"
)

var (
	configPath  = flag.String("config", "configs/simsetgo.yaml", "Path to config file")
	initConfig  = flag.Bool("init-config", false, "Generate default config file and exit")
	profileName = flag.String("profile", "", "Profile name in the database")
	profileFile = flag.String("file", "", "Profile YAML file")
	simProvider = flag.String("sim", "", "Simulator provider override (simconnect, mock)")
	itemName    = flag.String("item", "", "Single variable name for apply")
	itemValue   = flag.String("value", "", "Value for -item")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: simsetgo [flags] [command]

Commands:
  apply     Apply a profile (or a single -item) to the simulator (default)
  list      List stored profiles
  save      Save a profile YAML file (-file) into the database
  export    Export a stored profile (-profile) to a YAML file (-file)
  import    Import a profile YAML file (-file) into the database
  delete    Delete a stored profile (-profile)

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	if err := run(context.Background(), flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("SimSetGo started", "version", version.Version, "command", command)

	registry := simvar.NewRegistry()
	if cfg.Definitions != "" {
		if err := registry.LoadExtra(cfg.Definitions); err != nil {
			return fmt.Errorf("failed to load variable definitions: %w", err)
		}
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	switch command {
	case "", "apply":
		return runApply(ctx, cfg, registry, store)
	case "list":
		return runList(ctx, store)
	case "save", "import":
		return runImport(ctx, store, command)
	case "export":
		return runExport(ctx, store)
	case "delete":
		return runDelete(ctx, store)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func openStore(cfg *config.Config) (*profile.SQLiteStore, error) {
	db, err := profile.InitDB(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile database: %w", err)
	}
	return profile.NewSQLiteStore(db), nil
}

func buildEngine(cfg *config.Config, registry *simvar.Registry) (*engine.Engine, error) {
	provider := cfg.Sim.Provider
	if *simProvider != "" {
		provider = *simProvider
	}

	var sessions func() sim.Session
	switch provider {
	case "simconnect":
		sessions = func() sim.Session {
			return simconnect.NewClient(cfg.Sim.AppName, cfg.Sim.DLLPath)
		}
	case "mock":
		mock := mocksim.NewClient()
		sessions = func() sim.Session { return mock }
	default:
		return nil, fmt.Errorf("unknown sim provider %q", provider)
	}

	return engine.New(engine.Options{
		Registry:     registry,
		ClientEvents: engine.NewClientEventRegistry(),
		Sessions:     sessions,
		SettleDelay:  time.Duration(cfg.Engine.SettleDelay),
	}), nil
}

func runApply(ctx context.Context, cfg *config.Config, registry *simvar.Registry, store profile.Store) error {
	eng, err := buildEngine(cfg, registry)
	if err != nil {
		return err
	}

	var (
		result engine.Result
		label  string
	)

	switch {
	case *itemName != "":
		label = *itemName
		result, err = eng.ApplyOne(ctx, engine.Item{Name: *itemName, Value: *itemValue})
	case *profileFile != "":
		p, ferr := profile.ImportFile(*profileFile)
		if ferr != nil {
			return ferr
		}
		label = p.Name
		result, err = eng.Apply(ctx, p.Items)
	case *profileName != "":
		p, serr := store.GetProfile(ctx, *profileName)
		if serr != nil {
			return serr
		}
		label = p.Name
		result, err = eng.Apply(ctx, p.Items)
	default:
		return fmt.Errorf("apply requires -profile, -file or -item")
	}
	if err != nil {
		return err
	}

	fmt.Printf("Applied %q: %d item(s) written\n", label, result.Applied)
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	return nil
}

func runList(ctx context.Context, store profile.Store) error {
	profiles, err := store.ListProfiles(ctx)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Println("No profiles stored")
		return nil
	}
	for _, p := range profiles {
		fmt.Printf("%-30s %-20s %d item(s)  updated %s\n",
			p.Name, p.Aircraft, len(p.Items), p.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runImport(ctx context.Context, store profile.Store, command string) error {
	if *profileFile == "" {
		return fmt.Errorf("%s requires -file", command)
	}
	p, err := profile.ImportFile(*profileFile)
	if err != nil {
		return err
	}
	// "save" stores under the -profile name, "import" keeps the file's name.
	if command == "save" && *profileName != "" {
		p.Name = *profileName
	}
	if err := store.SaveProfile(ctx, p); err != nil {
		return err
	}
	fmt.Printf("Profile %q saved (%d items)\n", p.Name, len(p.Items))
	return nil
}

func runExport(ctx context.Context, store profile.Store) error {
	if *profileName == "" || *profileFile == "" {
		return fmt.Errorf("export requires -profile and -file")
	}
	p, err := store.GetProfile(ctx, *profileName)
	if err != nil {
		return err
	}
	if err := profile.ExportFile(p, *profileFile); err != nil {
		return err
	}
	fmt.Printf("Profile %q exported to %s\n", p.Name, *profileFile)
	return nil
}

func runDelete(ctx context.Context, store profile.Store) error {
	if *profileName == "" {
		return fmt.Errorf("delete requires -profile")
	}
	if err := store.DeleteProfile(ctx, *profileName); err != nil {
		return err
	}
	fmt.Printf("Profile %q deleted\n", *profileName)
	return nil
}
