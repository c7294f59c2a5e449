package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathblocks/internal/analytics"
	"github.com/abhisek/mathblocks/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM requests made while authoring content",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		calls, err := loadLLMCalls(cmd, limit)
		if err != nil {
			return err
		}
		if len(calls) == 0 {
			fmt.Println("No LLM requests found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-20s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 106))

		for _, c := range calls {
			if purpose != "" && c.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !c.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-20s  %-28s  %-6d  %-6d  %-7d  %s\n",
				c.ID,
				c.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(c.Purpose, 20),
				truncate(c.Model, 28),
				c.InputTokens,
				c.OutputTokens,
				c.LatencyMs,
				ok,
			)
			if c.Error != "" {
				fmt.Printf("       %s\n", truncate(c.Error, 96))
			}
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		calls, err := loadLLMCalls(cmd, 0)
		if err != nil {
			return err
		}
		if len(calls) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		fmt.Println("Estimated Cost (USD)")
		fmt.Println(strings.Repeat("─", 80))
		fmt.Printf("%-32s  %6s  %6s  %10s  %10s  %8s\n",
			"Model", "Calls", "Failed", "Input", "Output", "Cost")
		fmt.Println(strings.Repeat("─", 80))

		var totalCalls, totalIn, totalOut int
		var totalCost float64
		var unknownModels []string
		for _, u := range analytics.SummarizeLLM(calls) {
			cost := formatCost(u.CostUSD)
			if u.Unpriced > 0 {
				unknownModels = append(unknownModels, u.Model)
				if u.CostUSD == 0 {
					cost = "?"
				}
			}
			fmt.Printf("%-32s  %6d  %6d  %10d  %10d  %8s\n",
				truncate(u.Model, 32), u.Calls, u.Failures, u.InputTokens, u.OutputTokens, cost)
			totalCalls += u.Calls
			totalIn += u.InputTokens
			totalOut += u.OutputTokens
			totalCost += u.CostUSD
		}

		fmt.Println(strings.Repeat("─", 80))
		label := "TOTAL"
		if len(unknownModels) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Printf("%-32s  %6d  %6s  %10d  %10d  %8s\n",
			label, totalCalls, "", totalIn, totalOut, formatCost(totalCost))

		if len(unknownModels) > 0 {
			fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unknownModels, ", "))
		}
		return nil
	},
}

// loadLLMCalls reads llm_request events, newest first.
func loadLLMCalls(cmd *cobra.Command, limit int) ([]analytics.LLMCall, error) {
	s, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	events, err := s.EventRepo().Query(context.Background(), store.QueryOpts{
		Name:   analytics.LLMRequestEvent,
		Limit:  limit,
		Newest: true,
	})
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	calls := make([]analytics.LLMCall, 0, len(events))
	for _, e := range events {
		calls = append(calls, analytics.DecodeLLMCall(e))
	}
	return calls, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. question-generation)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
