package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathblocks/internal/analytics"
	"github.com/abhisek/mathblocks/internal/challenge"
	"github.com/abhisek/mathblocks/internal/content"
	"github.com/abhisek/mathblocks/internal/llm"
	"github.com/abhisek/mathblocks/internal/logging"
	"github.com/abhisek/mathblocks/internal/playbox"
	"github.com/abhisek/mathblocks/internal/questiongen"
	"github.com/abhisek/mathblocks/internal/store"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Check and author model content tables",
}

var contentValidateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Load and validate content tables",
	Long:  "Validates the YAML tables in dir, or the built-in tables merged with the configured override directory.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			lib content.Library
			err error
		)
		if len(args) == 1 {
			lib, err = content.LoadDir(args[0])
		} else {
			settings, serr := loadSettings(cmd)
			if serr != nil {
				return serr
			}
			lib, err = content.Load(settings.ContentDir)
		}
		if err != nil {
			return err
		}
		if len(lib) == 0 {
			fmt.Println("No content tables found.")
			return nil
		}

		fmt.Printf("%-16s  %-8s  %5s  %9s  %s\n", "Model", "Version", "Steps", "Questions", "Source")
		fmt.Println(strings.Repeat("─", 64))
		for _, model := range lib.Models() {
			p := lib[model]
			fmt.Printf("%-16s  %-8s  %5d  %9d  %s\n",
				truncate(model, 16), p.Version, len(p.Training.Steps), len(p.Questions), p.Source)
		}
		fmt.Println("\nAll tables valid.")
		return nil
	},
}

var contentGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft challenge questions with an LLM",
	Long: `Drafts challenge questions for one model and writes the model's table,
with the new questions appended, to the content override directory.

The provider is read from MATHBLOCKS_LLM_PROVIDER, MATHBLOCKS_LLM_API_KEY and
MATHBLOCKS_LLM_MODEL, or from the first of GEMINI_API_KEY, OPENAI_API_KEY,
ANTHROPIC_API_KEY and OPENROUTER_API_KEY that is set. MATHBLOCKS_LLM_RPM
caps requests per minute.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		model, _ := cmd.Flags().GetString("model")
		count, _ := cmd.Flags().GetInt("count")
		kind, _ := cmd.Flags().GetString("kind")
		out, _ := cmd.Flags().GetString("out")
		if count <= 0 {
			return fmt.Errorf("--count must be positive")
		}
		switch challenge.Kind(kind) {
		case challenge.KindBuild, challenge.KindEquation:
		default:
			return fmt.Errorf("--kind %q: want build or equation", kind)
		}

		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		log := logging.Console(settings.LogLevel)
		if out == "" {
			out = settings.ContentDir
		}

		lib, err := content.Load(settings.ContentDir)
		if err != nil {
			return fmt.Errorf("load content: %w", err)
		}
		pack, ok := lib[model]
		if !ok {
			return fmt.Errorf("unknown model %q (have %s)", model, strings.Join(lib.Models(), ", "))
		}
		if kind == string(challenge.KindEquation) && !playbox.FromPack(pack).Equation {
			return fmt.Errorf("model %q has no equation slots", model)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		events := analytics.NewLogger(s.EventRepo(), log).For(nil, model)

		ctx := cmd.Context()
		start := time.Now()
		cfg := llm.ConfigFromEnv()
		provider, err := llm.New(ctx, cfg, log, events)
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		in := questiongen.Input{
			Layout: pack.Layout,
			Kind:   challenge.Kind(kind),
		}
		for _, q := range pack.Questions {
			in.Used = append(in.Used, q.Expected.String())
		}

		fmt.Fprintf(os.Stderr, "Generating %d questions for %s with %s...\n", count, model, provider.ModelID())
		res, err := questiongen.New(provider, questiongen.DefaultConfig()).GenerateN(ctx, in, count)
		if err != nil && len(res.Questions) == 0 {
			return err
		}
		if err != nil {
			log.Warn().Err(err).Int("kept", len(res.Questions)).Msg("generation stopped early")
		}
		for _, r := range res.Rejected {
			log.Debug().Err(r).Msg("draft rejected")
		}

		path, err := writePack(out, pack, res.Questions)
		if err != nil {
			return err
		}
		fmt.Printf("Kept %d of %d questions (%d drafts rejected).\n", len(res.Questions), count, len(res.Rejected))
		fmt.Printf("Wrote %s\n", path)
		printRunCost(ctx, s.EventRepo(), start)
		return nil
	},
}

// writePack writes pack with extra questions appended to dir/<model>.yaml.
func writePack(dir string, pack *content.Pack, extra []challenge.Question) (string, error) {
	p := *pack
	p.Questions = append(append([]challenge.Question(nil), pack.Questions...), extra...)
	data, err := content.Marshal(&p)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", p.Model, err)
	}
	if _, err := content.Parse(p.Model+".yaml", data); err != nil {
		return "", fmt.Errorf("generated table is invalid: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create content dir: %w", err)
	}
	path := filepath.Join(dir, p.Model+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// printRunCost reports the LLM calls recorded since start.
func printRunCost(ctx context.Context, repo store.EventRepo, start time.Time) {
	events, err := repo.Query(ctx, store.QueryOpts{Name: analytics.LLMRequestEvent, From: start})
	if err != nil || len(events) == 0 {
		return
	}
	calls := make([]analytics.LLMCall, 0, len(events))
	for _, e := range events {
		calls = append(calls, analytics.DecodeLLMCall(e))
	}
	for _, u := range analytics.SummarizeLLM(calls) {
		cost := formatCost(u.CostUSD)
		if u.Unpriced > 0 {
			if c := llm.LookupCost(u.Model); c == nil {
				cost = "unknown"
			}
		}
		fmt.Printf("%s: %d calls, %d in / %d out tokens, cost %s\n",
			u.Model, u.Calls, u.InputTokens, u.OutputTokens, cost)
	}
}

func init() {
	contentGenerateCmd.Flags().StringP("model", "m", "place-value", "Model to generate questions for")
	contentGenerateCmd.Flags().IntP("count", "c", 10, "Number of questions to draft")
	contentGenerateCmd.Flags().String("kind", string(challenge.KindBuild), "Question kind: build or equation")
	contentGenerateCmd.Flags().StringP("out", "o", "", "Output directory (defaults to the content override dir)")

	contentCmd.AddCommand(contentValidateCmd)
	contentCmd.AddCommand(contentGenerateCmd)
}
