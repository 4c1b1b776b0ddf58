package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/morphit/core"
	"github.com/poiesic/morphit/mapper"
	"github.com/urfave/cli/v2"
)

var errNoPrompt = errors.New("a prompt argument or --file is required")

// analysisOutput is the --json form of one analysis.
type analysisOutput struct {
	Prompt     string            `json:"prompt"`
	Category   string            `json:"category"`
	Detected   bool              `json:"category_detected"`
	Gender     core.Gender       `json:"gender"`
	Parameters core.ParameterSet `json:"parameters"`
}

func analyzeCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	lex, err := loadLexicon(cfg)
	if err != nil {
		return err
	}
	m, err := mapper.New(mapper.WithLexicon(lex))
	if err != nil {
		return fmt.Errorf("failed to create mapper: %w", err)
	}

	prompts, err := readPrompts(c)
	if err != nil {
		return err
	}
	if len(prompts) == 0 {
		return errNoPrompt
	}

	workers := c.Int("workers")
	if workers <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}

	var progress *progressTracker
	if c.String("file") != "" && !c.Bool("quiet") {
		progress = newProgressTracker(c.App.ErrWriter, len(prompts), c.Int("report-interval"))
	}

	analyses, err := analyzeAll(m, prompts, workers, progress)
	if err != nil {
		return err
	}
	return printAnalyses(c.App.Writer, analyses, c.Bool("json"))
}

// readPrompts returns the prompt arguments joined into one prompt, or one
// prompt per non-blank line of --file ("-" reads stdin).
func readPrompts(c *cli.Context) ([]string, error) {
	path := c.String("file")
	if path == "" {
		prompt := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
		if prompt == "" {
			return nil, nil
		}
		return []string{prompt}, nil
	}
	if c.Args().Present() {
		return nil, fmt.Errorf("a prompt argument cannot be combined with --file")
	}

	var r io.Reader
	if path == "-" {
		r = c.App.Reader
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open prompts: %w", err)
		}
		defer f.Close()
		r = f
	}
	return scanPrompts(r)
}

func scanPrompts(r io.Reader) ([]string, error) {
	var prompts []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		prompts = append(prompts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read prompts: %w", err)
	}
	return prompts, nil
}

// analyzeAll inspects prompts on a worker pool. Results keep input order.
func analyzeAll(m *mapper.Mapper, prompts []string, workers int, progress *progressTracker) ([]*mapper.Analysis, error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	if progress != nil {
		progress.Start()
		defer progress.Finish()
	}

	results := make([]*mapper.Analysis, len(prompts))
	var wg sync.WaitGroup
	for i, prompt := range prompts {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			results[i] = m.Inspect(prompt)
			if progress != nil {
				progress.Increment(1)
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("failed to submit prompt %d: %w", i+1, err)
		}
	}
	wg.Wait()

	return results, nil
}

func printAnalyses(w io.Writer, analyses []*mapper.Analysis, asJSON bool) error {
	if asJSON {
		out := make([]analysisOutput, len(analyses))
		for i, a := range analyses {
			out[i] = analysisOutput{
				Prompt:     a.Prompt,
				Category:   a.Category,
				Detected:   a.CategoryDetected,
				Gender:     a.Gender,
				Parameters: a.Parameters,
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(out) == 1 {
			return enc.Encode(out[0])
		}
		return enc.Encode(out)
	}

	for i, a := range analyses {
		if i > 0 {
			fmt.Fprintln(w)
		}
		category := a.Category
		if !a.CategoryDetected {
			category += " (default)"
		}
		fmt.Fprintf(w, "prompt:   %s\n", a.Prompt)
		fmt.Fprintf(w, "category: %s\n", category)
		fmt.Fprintf(w, "gender:   %s\n", a.Gender)
		if len(a.Parameters) == 0 {
			fmt.Fprintln(w, "  (no parameters)")
			continue
		}
		for _, name := range a.Parameters.Names() {
			fmt.Fprintf(w, "  %-40s %.2f\n", name, a.Parameters[name])
		}
	}
	return nil
}
