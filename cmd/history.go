package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/abhisek/timedquiz/internal/store"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived sessions, or show one session's attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		out := cmd.OutOrStdout()
		if id, _ := cmd.Flags().GetString("session"); id != "" {
			return showSession(cmd, st, out, id)
		}

		limit, _ := cmd.Flags().GetInt("limit")
		sessions, err := st.RecentSessions(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions archived yet.")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SESSION\tSTARTED\tDURATION\tOUTCOME\tQUESTIONS\tTITLE")
		for _, s := range sessions {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
				s.SessionID,
				s.StartedAt.Local().Format("2006-01-02 15:04"),
				s.EndedAt.Sub(s.StartedAt).Round(time.Second),
				s.Outcome,
				s.TotalQuestions,
				truncate(s.Title, 40),
			)
		}
		return tw.Flush()
	},
}

func showSession(cmd *cobra.Command, st *store.Store, out io.Writer, id string) error {
	ctx := cmd.Context()
	s, err := st.Session(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("session %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("query session: %w", err)
	}
	attempts, err := st.SessionAttempts(ctx, id)
	if err != nil {
		return fmt.Errorf("query attempts: %w", err)
	}
	phases, err := st.SessionPhases(ctx, id)
	if err != nil {
		return fmt.Errorf("query phases: %w", err)
	}

	fmt.Fprintf(out, "Session:   %s\n", s.SessionID)
	fmt.Fprintf(out, "Bank:      %s\n", s.Bank)
	if s.Title != "" {
		fmt.Fprintf(out, "Title:     %s\n", s.Title)
	}
	fmt.Fprintf(out, "Started:   %s\n", s.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Duration:  %s\n", s.EndedAt.Sub(s.StartedAt).Round(time.Second))
	fmt.Fprintf(out, "Outcome:   %s\n", s.Outcome)
	if s.Error != "" {
		fmt.Fprintf(out, "Error:     %s\n", s.Error)
	}

	sep := strings.Repeat("─", 72)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Phases")
	fmt.Fprintln(out, sep)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PHASE\tATTEMPTED\tCORRECT\tINCORRECT\tSKIPPED\tTIME")
	for _, p := range phases {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n",
			p.Phase, p.Attempted, p.Correct, p.Incorrect, p.Skipped, p.TimeSpent.Round(time.Second))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Attempts")
	fmt.Fprintln(out, sep)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tQUESTION\tKIND\tTRY\tRESULT\tRESPONSE\tEXPECTED\tTIME")
	for i, a := range attempts {
		result := "-"
		if a.Kind == "response" {
			result = "✗"
			if a.Correct {
				result = "✓"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			i+1, a.QuestionID, a.Kind, a.AttemptNumber, result,
			truncate(a.Response, 24), truncate(a.Expected, 24), a.TimeSpent.Round(100*time.Millisecond))
	}
	return tw.Flush()
}

func init() {
	historyCmd.Flags().StringP("session", "s", "", "Show the attempts of one session")
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to list")
}
