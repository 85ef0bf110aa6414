package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM usage",
}

var llmUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show total LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		u, err := st.LLMUsage(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if u.Requests == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}
		fmt.Fprintf(out, "Requests:  %d (%d failed)\n", u.Requests, u.Failed)
		fmt.Fprintf(out, "Tokens:    %d in / %d out\n", u.InputTokens, u.OutputTokens)
		fmt.Fprintf(out, "Cost:      %s (estimated)\n", formatCost(u.CostUSD))
		return nil
	},
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmCmd.AddCommand(llmUsageCmd)
}
