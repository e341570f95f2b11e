package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recite/internal/domain"
	"recite/internal/i18n"
	"recite/internal/relay"
	"recite/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Flags holds the options shared by every subcommand
type Flags struct {
	Owner   string
	Backend string
}

// NewFlags returns flags with their defaults
func NewFlags() *Flags {
	return &Flags{}
}

// App is what a command runs against
type App struct {
	Vocabulary   *service.VocabularyService
	Translator   *i18n.Translator
	Logger       *zap.Logger
	DefaultQuery domain.Query

	// Relay connects to the background translation process on demand
	Relay func(ctx context.Context) (*relay.Relay, error)
	Close func() error
}

// Opener builds the App for one command invocation
type Opener func(ctx context.Context, flags *Flags) (*App, error)

// CreateRootCommand creates the root command with all subcommands attached
func CreateRootCommand(flags *Flags, open Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "recite",
		Short: "Vocabulary review from the command line",
		Long: `recite manages the words under spaced-repetition review.

Words added here share storage with the bot; a word becomes due
24 hours after it was added or last reviewed, and is dropped after
five successful reviews.

Examples:
  recite add serendipity "n. 意外发现"   # Put a word under review
  recite review                         # Show a word that is due
  recite remember serendipity           # Count a successful review
  recite translate --to zh-CN hello     # Translate via the background process`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.Owner, "owner", "", "vocabulary namespace (empty uses the shared list)")
	rootCmd.PersistentFlags().StringVar(&flags.Backend, "backend", "", "storage backend override: memory, sqlite, postgres or redis")

	rootCmd.AddCommand(
		newAddCommand(flags, open),
		newRemoveCommand(flags, open),
		newRememberCommand(flags, open),
		newForgetCommand(flags, open),
		newReviewCommand(flags, open),
		newListCommand(flags, open),
		newStatsCommand(flags, open),
		newTranslateCommand(flags, open),
		newMigrateCommand(flags, open),
	)

	return rootCmd
}

// run opens the app, runs fn and releases the app again
func run(flags *Flags, open Opener, fn func(cmd *cobra.Command, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := open(cmd.Context(), flags)
		if err != nil {
			return err
		}
		if app.Close != nil {
			defer func() {
				if err := app.Close(); err != nil {
					app.Logger.Warn("Failed to close storage", zap.Error(err))
				}
			}()
		}
		return fn(cmd, app, args)
	}
}

func newAddCommand(flags *Flags, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "add <term> [translation...]",
		Short: "Put a word under review",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(flags, open, func(cmd *cobra.Command, app *App, args []string) error {
			outcome, err := app.Vocabulary.AddWord(cmd.Context(), args[0], args[1:])
			fmt.Fprintln(cmd.OutOrStdout(), outcomeLabel(app.Translator, outcome))
			if err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
				return err
			}
			return nil
		}),
	}
}

func newRemoveCommand(flags *Flags, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <term>",
		Short: "Drop a word from review",
		Args:  cobra.ExactArgs(1),
		RunE: run(flags, open, func(cmd *cobra.Command, app *App, args []string) error {
			if _, err := app.Vocabulary.RemoveWord(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", domain.OutcomeRemoved, args[0])
			return nil
		}),
	}
}

func newRememberCommand(flags *Flags, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "remember <term>",
		Short: "Count a successful review",
		Args:  cobra.ExactArgs(1),
		RunE: run(flags, open, func(cmd *cobra.Command, app *App, args []string) error {
			outcome, err := app.Vocabulary.MarkRemembered(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("remember %q: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), outcomeLabel(app.Translator, outcome))
			return nil
		}),
	}
}

func newForgetCommand(flags *Flags, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <term>",
		Short: "Restart the review interval of a word",
		Args:  cobra.ExactArgs(1),
		RunE: run(flags, open, func(cmd *cobra.Command, app *App, args []string) error {
			outcome, err := app.Vocabulary.MarkForgotten(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("forget %q: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), outcomeLabel(app.Translator, outcome))
			return nil
		}),
	}
}

func newReviewCommand(flags *Flags, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Show a random word that is due for review",
		Args:  cobra.NoArgs,
		RunE: run(flags, open, func(cmd *cobra.Command, app *App, args []string) error {
			candidate, err := app.Vocabulary.NextReview(cmd.Context())
			if err != nil {
				return err
			}
			if candidate == nil {
				fmt.Fprintln(cmd.OutOrStdout(), app.Translator.T(i18n.ReviewNothing))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.Translator.TWith(i18n.ReviewRevealed, map[string]any{
				"Term": candidate.Term,
				"Dict": strings.Join(candidate.Translations, "\n"),
			}))
			return nil
		}),
	}
}

func newListCommand(flags *Flags, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every word under review",
		Args:  cobra.NoArgs,
		RunE: run(flags, open, func(cmd *cobra.Command, app *App, args []string) error {
			v, err := app.Vocabulary.List(cmd.Context())
			if err != nil {
				return err
			}
			now := app.Vocabulary.Now()
			for _, e := range v.Entries() {
				fmt.Fprintln(cmd.OutOrStdout(), formatEntry(e, now))
			}
			return nil
		}),
	}
}

func newStatsCommand(flags *Flags, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize review progress",
		Args:  cobra.NoArgs,
		RunE: run(flags, open, func(cmd *cobra.Command, app *App, args []string) error {
			summary, err := service.NewStatsService(app.Vocabulary, app.Logger).Summary(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.Translator.TWith(i18n.StatsSummary, map[string]any{
				"Total": summary.Total,
				"Due":   summary.Due,
			}))
			for count, n := range summary.ByProgress {
				fmt.Fprintf(cmd.OutOrStdout(), "%d/%d %d\n", count, domain.MaxSuccessCount, n)
			}
			return nil
		}),
	}
}

func newTranslateCommand(flags *Flags, open Opener) *cobra.Command {
	var from, to, api string

	cmd := &cobra.Command{
		Use:   "translate <text...>",
		Short: "Translate text through the background process",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(flags, open, func(cmd *cobra.Command, app *App, args []string) error {
			q := app.DefaultQuery
			q.Text = strings.Join(args, " ")
			if from != "" {
				q.From = from
			}
			if to != "" {
				q.To = to
			}
			if api != "" {
				q.API = api
			}

			r, err := app.Relay(cmd.Context())
			if err != nil {
				return fmt.Errorf("connect to background process: %w", err)
			}

			result := r.Fetch(cmd.Context(), q)
			if result == nil {
				return errors.New(app.Translator.T(i18n.ErrorDisconnected))
			}
			if result.Error != "" {
				return errors.New(result.Error)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatResult(q.Text, result))
			return nil
		}),
	}

	cmd.Flags().StringVar(&from, "from", "", "source language (default from config)")
	cmd.Flags().StringVar(&to, "to", "", "target language (default from config)")
	cmd.Flags().StringVar(&api, "api", "", "translation engine: YouDao, Google, GoogleCN or BaiDu")
	return cmd
}

func newMigrateCommand(flags *Flags, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the storage schema",
		Args:  cobra.NoArgs,
		// Opening the storage applies pending migrations
		RunE: run(flags, open, func(cmd *cobra.Command, app *App, args []string) error {
			app.Logger.Info("Storage schema is up to date")
			return nil
		}),
	}
}

func outcomeLabel(tr *i18n.Translator, outcome domain.Outcome) string {
	switch outcome {
	case domain.OutcomeAdded:
		return tr.T(i18n.LabelAdded)
	case domain.OutcomeAlreadyExists:
		return tr.T(i18n.LabelAlreadyExists)
	case domain.OutcomeRemembered:
		return tr.T(i18n.ReviewRemembered)
	case domain.OutcomeForgotten:
		return tr.T(i18n.ReviewForgot)
	case domain.OutcomeLearned:
		return tr.T(i18n.ReviewLearned)
	default:
		return tr.T(i18n.LabelFailed)
	}
}

func formatEntry(e domain.Entry, now time.Time) string {
	mark := " "
	if e.IsDue(now) {
		mark = "*"
	}
	line := fmt.Sprintf("%s %s [%d/%d]", mark, e.Term, e.SuccessCount, domain.MaxSuccessCount)
	if len(e.Translations) > 0 {
		line += "  " + strings.Join(e.Translations, "; ")
	}
	return line
}

func formatResult(text string, r *domain.Result) string {
	var b strings.Builder
	b.WriteString(text)
	if r.Phonetic != "" {
		b.WriteString(" " + r.Phonetic)
	}
	for _, line := range r.Result {
		b.WriteString("\n" + line)
	}
	for _, line := range r.Dict {
		b.WriteString("\n" + line)
	}
	return b.String()
}
