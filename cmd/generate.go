package cmd

import (
	"errors"
	"fmt"

	"github.com/abhisek/timedquiz/internal/bank"
	"github.com/abhisek/timedquiz/internal/llm"
	"github.com/abhisek/timedquiz/internal/questiongen"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a question bank with an LLM",
	Long: "generate asks the configured LLM provider for questions on a topic, validates " +
		"them and writes a bank file. The provider is picked from TIMEDQUIZ_LLM_PROVIDER or " +
		"whichever API key is set (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY).",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		flags := cmd.Flags()

		in := questiongen.Input{}
		in.Topic, _ = flags.GetString("topic")
		in.Title, _ = flags.GetString("title")
		in.Count, _ = flags.GetInt("count")
		in.Audience, _ = flags.GetString("audience")
		in.Instructions, _ = flags.GetString("instructions")
		format, _ := flags.GetString("format")
		switch bank.Format(format) {
		case "", bank.FormatFreeText, bank.FormatMultipleChoice:
			in.Format = bank.Format(format)
		default:
			return fmt.Errorf("unknown format %q (want free_text or multiple_choice)", format)
		}
		in.Settings.MaxAttempts, _ = flags.GetInt("attempts")
		in.Settings.AttemptSeconds, _ = flags.GetInt("attempt-seconds")
		in.Settings.ReviewSeconds, _ = flags.GetInt("review-seconds")
		out, _ := flags.GetString("output")

		cfg := llm.ConfigFromEnv()
		if p, _ := flags.GetString("provider"); p != "" {
			cfg.Provider = p
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		provider, err := llm.NewProvider(ctx, cfg, st, logger)
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Generating %d questions on %q with %s...\n", in.Count, in.Topic, provider.ModelID())
		gen := questiongen.New(provider, questiongen.DefaultConfig(), logger)
		b, genErr := gen.Generate(ctx, in)
		if genErr != nil && !errors.Is(genErr, questiongen.ErrShortBank) {
			return genErr
		}
		if len(b.Questions) == 0 {
			return genErr
		}

		if err := bank.Save(out, b); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d questions to %s\n", len(b.Questions), out)
		if genErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", genErr)
		}
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringP("topic", "t", "", "Subject of the questions")
	f.IntP("count", "c", 10, "Number of questions")
	f.String("title", "", "Bank title (default: the topic)")
	f.String("audience", "", "Who the questions are for, e.g. \"grade 5\"")
	f.String("format", "", "Restrict to free_text or multiple_choice")
	f.String("instructions", "", "Extra instructions for the model")
	f.String("provider", "", "LLM provider: anthropic, openai, gemini, openrouter (overrides TIMEDQUIZ_LLM_PROVIDER)")
	f.Int("attempts", 0, "max_attempts setting written into the bank")
	f.Int("attempt-seconds", 0, "attempt_seconds setting written into the bank")
	f.Int("review-seconds", 0, "review_seconds setting written into the bank")
	f.StringP("output", "o", "bank.yaml", "Output file; .json writes JSON, anything else YAML")
	_ = generateCmd.MarkFlagRequired("topic")
}
