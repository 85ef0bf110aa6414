package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/timedquiz/internal/app"
	"github.com/abhisek/timedquiz/internal/archive"
	"github.com/abhisek/timedquiz/internal/bank"
	"github.com/abhisek/timedquiz/internal/screens/quiz"
	"github.com/abhisek/timedquiz/internal/session"
	"github.com/spf13/cobra"
)

// Session defaults for banks that leave settings out.
const (
	defaultMaxAttempts     = 3
	defaultAttemptDuration = 10 * time.Minute
	defaultReviewDuration  = 5 * time.Minute
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run a timed session over a question bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("bank")
		b, err := bank.Load(path)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		cfg, info := sessionConfig(cmd, b)
		rec := archive.NewRecorder[bank.Question, string](bank.QuestionID)
		cfg.ResponseLogger = rec.ResponseLogger(func(q bank.Question, r string) {
			logger.Debug("response submitted", "question", q.ID, "response", r)
		})

		m, err := session.New(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		runErr := make(chan error, 1)
		go func() { runErr <- m.Run(ctx) }()

		// The archive write must outlive the cancellation that ends the run.
		archived := make(chan error, 1)
		go func() {
			archived <- archive.Watch(context.WithoutCancel(ctx), m, rec, st, archive.Options[string]{
				Bank:   path,
				Title:  info.Title,
				Logger: logger,
			})
		}()

		tuiErr := app.Run(ctx, quiz.New(ctx, m, info))
		cancel()

		sessErr := <-runErr
		if err := <-archived; err != nil {
			return err
		}
		if tuiErr != nil {
			return tuiErr
		}
		if sessErr != nil && !errors.Is(sessErr, context.Canceled) {
			return fmt.Errorf("session %s: %w", m.ID(), sessErr)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session %s saved. See it with: timedquiz history --session %s\n", m.ID(), m.ID())
		return nil
	},
}

// sessionConfig resolves each setting from flag, then bank, then default.
func sessionConfig(cmd *cobra.Command, b *bank.Bank) (session.Config[bank.Question, string], quiz.Info) {
	flags := cmd.Flags()

	attempts := b.Settings.MaxAttempts
	if flags.Changed("attempts") || attempts == 0 {
		attempts, _ = flags.GetInt("attempts")
	}
	attemptDur := b.Settings.AttemptDuration()
	if flags.Changed("attempt-time") || attemptDur == 0 {
		attemptDur, _ = flags.GetDuration("attempt-time")
	}
	reviewDur := b.Settings.ReviewDuration()
	if flags.Changed("review-time") || reviewDur == 0 {
		reviewDur, _ = flags.GetDuration("review-time")
	}
	delay, _ := flags.GetDuration("feedback-delay")

	title := b.Title
	if title == "" {
		title = b.Topic
	}

	cfg := session.Config[bank.Question, string]{
		Questions:              b.Questions,
		Grader:                 bank.Grade,
		QuestionID:             bank.QuestionID,
		MaxAttemptsPerQuestion: attempts,
		AttemptDuration:        attemptDur,
		ReviewDuration:         reviewDur,
		DelayBetweenAttempts:   delay,
		Logger:                 logger,
	}
	info := quiz.Info{
		Title:           title,
		Questions:       b.Questions,
		AttemptDuration: attemptDur,
		ReviewDuration:  reviewDur,
	}
	return cfg, info
}

func init() {
	playCmd.Flags().StringP("bank", "b", "", "Question bank file (.yaml, .yml or .json)")
	playCmd.Flags().Int("attempts", defaultMaxAttempts, "Maximum answers per question (overrides the bank)")
	playCmd.Flags().Duration("attempt-time", defaultAttemptDuration, "Time budget for answering (overrides the bank)")
	playCmd.Flags().Duration("review-time", defaultReviewDuration, "Time budget for review (overrides the bank)")
	playCmd.Flags().Duration("feedback-delay", session.DefaultDelayBetweenAttempts, "How long grading feedback stays on screen")
	_ = playCmd.MarkFlagRequired("bank")
}
