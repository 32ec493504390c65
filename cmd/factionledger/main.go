// Command factionledger tracks a tabletop campaign faction's resources,
// controlled hexes, and turn timeline, persisted as a single JSON document.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/hexhaven/factionledger/internal/api"
	"github.com/hexhaven/factionledger/internal/config"
	"github.com/hexhaven/factionledger/internal/faction"
	"github.com/hexhaven/factionledger/internal/persistence"
	"github.com/hexhaven/factionledger/internal/seed"
	"github.com/hexhaven/factionledger/internal/store"
	"github.com/hexhaven/factionledger/internal/upkeep"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfgPath := flag.String("config", "factionledger.yaml", "config file path")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "show":
		err = runShow(args[1:])
	case "upkeep":
		err = runUpkeep(cfg, args[1:])
	case "save":
		err = runSave(cfg, args[1:])
	case "seed":
		err = runSeed(cfg, args[1:])
	case "lint":
		err = runLint(args[1:])
	case "serve":
		err = runServe(cfg, args[1:])
	case "archive":
		err = runArchive(cfg, args[1:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: factionledger [-config file] <command> [args]

commands:
  show <document>              print a faction summary
  upkeep [-table csv] <doc>    print per-hex and total structure upkeep
  save <document>              normalize and re-save a document (+ archive)
  seed [-hexes n] [-seed n] [-name s]
                               generate a demo campaign document
  lint <document>              check a document against the canonical schema
  serve [-port n] <document>   run the local read-only viewer
  archive list|restore|prune   manage the snapshot archive`)
}

func runShow(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: show <document>")
	}
	f, err := persistence.LoadDocument(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", title(f.Name))
	fmt.Printf("coffers: food %d, wood %d, stone %d, ore %d, silver %d, gold %d\n",
		f.Coffers.Food, f.Coffers.Wood, f.Coffers.Stone, f.Coffers.Ore, f.Coffers.Silver, f.Coffers.Gold)

	fmt.Printf("\nhexes (%s):\n", humanize.Comma(int64(len(f.Hexes))))
	for _, h := range f.Hexes {
		line := fmt.Sprintf("  %-10s %-4s %-13s %s", h.ID, h.Coords, h.Terrain, h.Name)
		if h.Structures != "" {
			line += " [" + h.Structures + "]"
		}
		fmt.Println(line)
	}

	fmt.Printf("\nevents (%s):\n", humanize.Comma(int64(len(f.Events))))
	for _, e := range f.Events {
		fmt.Printf("  %-10s %s  %s (%s)\n", e.ID, e.Date, e.Name, e.Type)
		for _, b := range e.ActiveBuilds() {
			loc := "none"
			if h := f.HexByID(b.HexID); h != nil {
				loc = h.Name
			}
			fmt.Printf("    build %s on %s\n", b.Structure, loc)
		}
		for _, m := range e.ActiveMovements() {
			fmt.Printf("    move %s: %s -> %s\n", m.Assets, m.From, m.To)
		}
		if !e.Action.IsZero() {
			outcome := e.Action.Outcome
			if outcome == faction.OutcomeUnknown {
				outcome = "unresolved"
			}
			fmt.Printf("    action %s vs %s (%s)\n", e.Action.Type, e.Action.Target, outcome)
		}
	}

	fmt.Printf("\nseason gains (%s):\n", humanize.Comma(int64(len(f.SeasonGains))))
	for _, g := range f.SeasonGains {
		fmt.Printf("  %-10s %s year %d: food %+d, wood %+d, stone %+d, ore %+d, silver %+d, gold %+d\n",
			g.ID, g.Season, g.Year, g.Food, g.Wood, g.Stone, g.Ore, g.Silver, g.Gold)
	}
	return nil
}

func runUpkeep(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("upkeep", flag.ExitOnError)
	tablePath := fs.String("table", cfg.UpkeepTable, "upkeep table CSV")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: upkeep [-table csv] <document>")
	}

	f, err := persistence.LoadDocument(fs.Arg(0))
	if err != nil {
		return err
	}
	table := loadTable(*tablePath)

	var total upkeep.Cost
	for _, h := range f.Hexes {
		c := upkeep.Calc(h, table)
		total = total.Add(c)
		if c == (upkeep.Cost{}) {
			continue
		}
		fmt.Printf("%-10s %-20s food %d, wood %d, stone %d, gold %d\n", h.ID, h.Name, c.Food, c.Wood, c.Stone, c.Gold)
	}
	fmt.Printf("%-10s %-20s food %d, wood %d, stone %d, gold %d\n", "total", "", total.Food, total.Wood, total.Stone, total.Gold)
	return nil
}

func runSave(cfg config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: save <document>")
	}

	st := store.New()
	st.OnDirtyChange(func(dirty bool) {
		slog.Debug("unsaved changes", "dirty", dirty)
	})

	f, err := persistence.LoadDocument(args[0])
	if err != nil {
		return err
	}
	st.Replace(f)

	path, err := persistence.SaveDocument(cfg.DocumentDir, st.Snapshot())
	if err != nil {
		return err
	}
	st.MarkSaved()

	arch, err := persistence.OpenArchive(cfg.ArchivePath)
	if err != nil {
		// The document is already on disk; a broken archive should not
		// fail the save.
		slog.Warn("archive unavailable", "error", err)
		fmt.Println(path)
		return nil
	}
	defer arch.Close()
	if _, err := arch.Append(st.Snapshot()); err != nil {
		slog.Warn("archive append failed", "error", err)
	}

	fmt.Println(path)
	return nil
}

func runSeed(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	hexes := fs.Int("hexes", 12, "hex count")
	seedVal := fs.Int64("seed", 0, "generation seed (0 = random)")
	name := fs.String("name", "", "faction name")
	fs.Parse(args)

	f := seed.Campaign(seed.Options{Name: *name, Hexes: *hexes, Seed: *seedVal})
	path, err := persistence.SaveDocument(cfg.DocumentDir, f)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func runLint(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: lint <document>")
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], faction.ErrMalformedDocument)
	}
	fmt.Println(faction.LintSummary(faction.Lint(raw)))
	return nil
}

func runServe(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", cfg.ViewerPort, "viewer port")
	tablePath := fs.String("table", cfg.UpkeepTable, "upkeep table CSV")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: serve [-port n] [-table csv] <document>")
	}

	st := store.New()
	f, err := persistence.LoadDocument(fs.Arg(0))
	if err != nil {
		return err
	}
	st.Replace(f)

	srv := &api.Server{
		Store: st,
		Table: loadTable(*tablePath),
		Port:  *port,
	}
	srv.Start()

	fmt.Printf("viewer: http://localhost:%d/api/v1/status (Ctrl+C to stop)\n", *port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
	return nil
}

func runArchive(cfg config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: archive list|restore <id>|prune [-keep n]")
	}

	arch, err := persistence.OpenArchive(cfg.ArchivePath)
	if err != nil {
		return err
	}
	defer arch.Close()

	switch args[0] {
	case "list":
		entries, err := arch.List()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%6d  %s  %-24s %s\n", e.ID, e.SavedAt, e.Faction, humanize.Bytes(uint64(e.RawBytes)))
		}
		return nil

	case "restore":
		if len(args) != 2 {
			return fmt.Errorf("usage: archive restore <id>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("snapshot id %q: %w", args[1], err)
		}
		f, err := arch.Restore(id)
		if err != nil {
			return err
		}
		path, err := persistence.SaveDocument(cfg.DocumentDir, f)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "prune":
		fs := flag.NewFlagSet("prune", flag.ExitOnError)
		keep := fs.Int("keep", cfg.ArchiveKeep, "snapshots to keep per faction")
		fs.Parse(args[1:])
		n, err := arch.Prune(*keep)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d snapshot(s)\n", n)
		return nil

	default:
		return fmt.Errorf("unknown archive subcommand %q", args[0])
	}
}

// loadTable reads the upkeep CSV, degrading to an empty table when the
// file is absent or unreadable. Upkeep then displays as zero.
func loadTable(path string) upkeep.Table {
	fh, err := os.Open(path)
	if err != nil {
		slog.Warn("upkeep table unavailable, upkeep will read zero", "path", path, "error", err)
		return upkeep.Table{}
	}
	defer fh.Close()
	return upkeep.LoadTable(fh)
}

func title(name string) string {
	if name == "" {
		return "(unnamed faction)"
	}
	return name
}
