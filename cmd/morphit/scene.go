package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/poiesic/morphit/core"
	"github.com/poiesic/morphit/scene"
	"github.com/urfave/cli/v2"
)

func sceneInitCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	manifest := scene.DefaultManifest(db.Lexicon(), cfg.Bridge.MaleTarget, cfg.Bridge.FemaleTarget)
	if path := c.String("manifest"); path != "" {
		manifest, err = scene.LoadManifest(path, db.Lexicon())
		if err != nil {
			return err
		}
	}

	sc, err := db.OpenScene(c.Context)
	if err != nil {
		return err
	}
	if err := sc.Seed(c.Context, manifest, c.Bool("force")); err != nil {
		return fmt.Errorf("failed to seed scene: %w", err)
	}

	for _, entry := range manifest.Characters {
		fmt.Fprintf(c.App.Writer, "%s: %d parameters\n", entry.Name, len(entry.Parameters))
	}
	fmt.Fprintf(c.App.ErrWriter, "Seeded %d characters into %s\n", len(manifest.Characters), cfg.Bridge.Database)
	return nil
}

func sceneShowCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sc, err := db.OpenScene(c.Context)
	if err != nil {
		return err
	}

	characters := sc.Characters()
	if name := c.Args().First(); name != "" {
		ch, ok := sc.Get(name)
		if !ok {
			return fmt.Errorf("%w: %s", scene.ErrObjectNotFound, name)
		}
		characters = []*scene.Character{ch}
	}
	if len(characters) == 0 {
		fmt.Fprintln(c.App.ErrWriter, "The scene is empty. Run 'morphit scene init' first.")
		return nil
	}

	for i, ch := range characters {
		if i > 0 {
			fmt.Fprintln(c.App.Writer)
		}
		printCharacter(c.App.Writer, ch, c.Bool("all"))
	}
	return nil
}

func printCharacter(w io.Writer, ch *scene.Character, all bool) {
	values := core.ParameterSet(ch.Snapshot())
	if !all {
		values = ch.Active()
	}
	fmt.Fprintf(w, "%s (%d parameters, %d active)\n", ch.Name(), len(ch.Parameters()), len(ch.Active()))
	for _, name := range values.Names() {
		fmt.Fprintf(w, "  %-40s %.2f\n", name, values[name])
	}
}

func historyCommand(c *cli.Context) error {
	limit := c.Int("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	generations, err := db.GenerationRepository().GetRecentGenerations(c.Context, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(generations)
	}
	if len(generations) == 0 {
		fmt.Fprintln(c.App.ErrWriter, "No requests processed yet.")
		return nil
	}
	for _, gen := range generations {
		printGeneration(c.App.Writer, gen)
	}
	return nil
}

func printGeneration(w io.Writer, gen *core.Generation) {
	target := gen.Target
	if target == "" {
		target = "-"
	}
	fmt.Fprintf(w, "%s  %-9s %-10s %q\n",
		gen.Timestamp.Local().Format(time.DateTime), gen.Status, target, gen.Prompt)
	if len(gen.Applied) > 0 {
		fmt.Fprintf(w, "    applied: %s\n", strings.Join(core.ParameterSet(gen.Applied).Names(), ", "))
	}
	if len(gen.Missing) > 0 {
		fmt.Fprintf(w, "    missing: %s\n", strings.Join(gen.Missing, ", "))
	}
	if gen.Status == core.StatusError && gen.Message != "" {
		fmt.Fprintf(w, "    %s\n", gen.Message)
	}
}
