package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathblocks/internal/content"
	"github.com/abhisek/mathblocks/internal/store"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the local analytics event log",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		name, _ := cmd.Flags().GetString("name")
		unsynced, _ := cmd.Flags().GetBool("unsynced")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().Query(context.Background(), store.QueryOpts{
			Limit:        limit,
			Name:         name,
			UnsyncedOnly: unsynced,
			Newest:       true,
		})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No events found.")
			return nil
		}

		fmt.Printf("%-6s  %-19s  %-20s  %-14s  %-12s  %s\n",
			"Seq", "Timestamp", "Name", "Model", "Learner", "Payload")
		fmt.Println(strings.Repeat("─", 110))
		for _, e := range events {
			fmt.Printf("%-6d  %-19s  %-20s  %-14s  %-12s  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Name, 20),
				truncate(e.Model, 14),
				truncate(e.Learner, 12),
				truncate(payloadString(e.Payload), 40),
			)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show event counts and best challenge scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := context.Background()

		counts, err := s.EventRepo().CountByName(ctx)
		if err != nil {
			return fmt.Errorf("count events: %w", err)
		}
		fmt.Println("Events")
		fmt.Println(strings.Repeat("─", 40))
		if len(counts) == 0 {
			fmt.Println("No events recorded yet.")
		}
		total := 0
		for _, c := range counts {
			fmt.Printf("%-30s  %8d\n", truncate(c.Name, 30), c.Count)
			total += c.Count
		}
		if len(counts) > 0 {
			fmt.Println(strings.Repeat("─", 40))
			fmt.Printf("%-30s  %8d\n", "TOTAL", total)
		}

		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		lib, err := content.Load(settings.ContentDir)
		if err != nil {
			return fmt.Errorf("load content: %w", err)
		}

		fmt.Println()
		fmt.Println("Best Challenge Scores")
		fmt.Println(strings.Repeat("─", 60))
		fmt.Printf("%-20s  %6s  %8s  %8s  %s\n", "Model", "Score", "Answered", "Correct", "Learner")
		fmt.Println(strings.Repeat("─", 60))
		for _, model := range lib.Models() {
			best, err := s.ChallengeRepo().Best(ctx, model)
			if err != nil {
				return fmt.Errorf("best score for %s: %w", model, err)
			}
			if best == nil {
				fmt.Printf("%-20s  %6s\n", truncate(model, 20), "-")
				continue
			}
			fmt.Printf("%-20s  %6d  %8d  %8d  %s\n",
				truncate(model, 20), best.Score, best.Answered, best.Correct, best.Learner)
		}
		return nil
	},
}

func payloadString(p map[string]any) string {
	if len(p) == 0 {
		return ""
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "?"
	}
	return string(b)
}

func init() {
	eventsListCmd.Flags().IntP("limit", "n", 50, "Number of events to show")
	eventsListCmd.Flags().String("name", "", "Only events with this name (e.g. challenge_answer)")
	eventsListCmd.Flags().Bool("unsynced", false, "Only events not yet sent to the sync endpoint")

	eventsCmd.AddCommand(eventsListCmd)
}
