package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"microlearn/internal/bootstrap"
	learningdto "microlearn/internal/modules/learning/dto"
	"microlearn/internal/platform/config"
	"microlearn/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	dataDir   string
	ephemeral bool
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "microlearn",
		Short:         "Microlearning progress tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "data directory (default: data_dir from config, else .)")
	root.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "keep all state in memory for this run")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error")

	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newModulesCmd(opts))
	root.AddCommand(newProgressCmd(opts))
	root.AddCommand(newReaderCmd(opts))
	root.AddCommand(newSessionCmd(opts))
	root.AddCommand(newAccountCmd(opts))
	root.AddCommand(newReindexCmd(opts))
	return root
}

// withApp builds the app for one command and always closes it, so the
// snapshot is flushed even when fn fails.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, app *bootstrap.App) error) (err error) {
	cfg, err := config.Load(opts.dataDir)
	if err != nil {
		return err
	}
	level := opts.logLevel
	if level == "" {
		level = os.Getenv("MICROLEARN_LOG_LEVEL")
	}
	if level == "" {
		level = "warn"
	}
	log, err := logger.New(cfg.Env, level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := bootstrap.New(ctx, cfg, log, opts.ephemeral)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if closeErr := app.Close(closeCtx); closeErr != nil {
			log.Warn("close app", zap.Error(closeErr))
			if err == nil {
				err = closeErr
			}
		}
	}()
	return fn(ctx, app)
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the microlearn terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				return bootstrap.RunTUI(ctx, app)
			})
		},
	}
}

func newModulesCmd(opts *rootOptions) *cobra.Command {
	modules := &cobra.Command{Use: "modules", Short: "Browse the module catalog"}

	var query, category, difficulty string
	list := &cobra.Command{
		Use:   "list",
		Short: "List modules, optionally filtered",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				items, err := app.LearningCLI.ListModules(ctx, query, category, difficulty)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no modules")
					return nil
				}
				for _, m := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%dmin\t%d%%\t%s\n", m.ID, m.Title, m.Category, m.Difficulty, m.Duration, m.Progress, m.State)
				}
				return nil
			})
		},
	}
	list.Flags().StringVar(&query, "query", "", "search title and description")
	list.Flags().StringVar(&category, "category", "", "category filter (all for none)")
	list.Flags().StringVar(&difficulty, "difficulty", "", "difficulty filter: beginner|intermediate|advanced|all")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show module details and its progress record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				m, err := app.LearningCLI.GetModule(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "id: %s\ntitle: %s\ndescription: %s\ncategory: %s\ndifficulty: %s\nduration: %dmin\nprogress: %d%%\nstate: %s\nitems: %d\n",
					m.ID, m.Title, m.Description, m.Category, m.Difficulty, m.Duration, m.Progress, m.State, m.ContentCount)
				for i, item := range m.Content {
					_, _ = fmt.Fprintf(out, "  [%d] %s\n", i, item.Type)
				}
				if m.Record != nil {
					_, _ = fmt.Fprintf(out, "time spent: %dmin\nquiz scores: %v\n", m.Record.TimeSpent, m.Record.QuizScores)
					if m.Record.CompletedAt != nil {
						_, _ = fmt.Fprintf(out, "completed at: %s\n", m.Record.CompletedAt.Format(time.RFC3339))
					}
				}
				return nil
			})
		},
	}

	var clearCurrent bool
	current := &cobra.Command{
		Use:   "current [id]",
		Short: "Show, set or clear the module being worked on",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				if clearCurrent {
					if err := app.LearningCLI.ClearCurrentModule(ctx); err != nil {
						return err
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "current module cleared")
					return nil
				}
				var (
					m   learningdto.ModuleOutput
					err error
				)
				if len(args) == 1 {
					m, err = app.LearningCLI.SetCurrentModule(ctx, args[0])
				} else {
					m, err = app.LearningCLI.CurrentModule(ctx)
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "current: %s %s (%d%%)\n", m.ID, m.Title, m.Progress)
				return nil
			})
		},
	}
	current.Flags().BoolVar(&clearCurrent, "clear", false, "forget the current module")

	modules.AddCommand(list, show, current)
	return modules
}

func newProgressCmd(opts *rootOptions) *cobra.Command {
	progress := &cobra.Command{Use: "progress", Short: "Record and inspect learning progress"}

	update := &cobra.Command{
		Use:   "update <id> <percent>",
		Short: "Set a module's progress (0..100, larger values clamp to 100)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value int
			if _, err := fmt.Sscanf(args[1], "%d", &value); err != nil {
				return fmt.Errorf("progress must be an integer: %q", args[1])
			}
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.LearningCLI.UpdateProgress(ctx, args[0], value)
				if err != nil {
					return err
				}
				printProgress(cmd, "updated", out.ModuleID, out.Progress, out.Completed, out.CatalogHit)
				return nil
			})
		},
	}

	complete := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a module completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.LearningCLI.CompleteModule(ctx, args[0])
				if err != nil {
					return err
				}
				printProgress(cmd, "completed", out.ModuleID, out.Progress, out.Completed, out.CatalogHit)
				return nil
			})
		},
	}

	quiz := &cobra.Command{
		Use:   "quiz <id> <score>",
		Short: "Record a quiz score for a module",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var score int
			if _, err := fmt.Sscanf(args[1], "%d", &score); err != nil {
				return fmt.Errorf("score must be an integer: %q", args[1])
			}
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.LearningCLI.RecordQuizScore(ctx, args[0], score)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "quiz recorded: %s scores=%v\n", out.ModuleID, out.QuizScores)
				return nil
			})
		},
	}

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Show completion counts, aggregate progress and categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.LearningCLI.Summary(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "completed: %d/%d\naggregate: %.1f%%\nlearning time: %dmin\n", s.Completed, s.Total, s.Aggregate, s.CompletedMinutes)
				for _, c := range s.Categories {
					_, _ = fmt.Fprintf(out, "  %s\t%d/%d\t%d%%\n", c.Category, c.Completed, c.Total, c.Percent)
				}
				if len(s.Recent) > 0 {
					_, _ = fmt.Fprintln(out, "recent:")
					for _, m := range s.Recent {
						_, _ = fmt.Fprintf(out, "  %s\t%s\t%d%%\n", m.ID, m.Title, m.Progress)
					}
				}
				return nil
			})
		},
	}

	ledger := &cobra.Command{
		Use:   "ledger",
		Short: "List every progress record, including ids outside the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				records, err := app.LearningCLI.ListProgress(ctx)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no progress recorded")
					return nil
				}
				for _, r := range records {
					completedAt := "-"
					if r.CompletedAt != nil {
						completedAt = r.CompletedAt.Format(time.RFC3339)
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d%%\t%dmin\tquiz=%v\tcompleted_at=%s\tcatalog=%t\n", r.ModuleID, r.Progress, r.TimeSpent, r.QuizScores, completedAt, r.CatalogHit)
				}
				return nil
			})
		},
	}

	overall := &cobra.Command{
		Use:   "overall",
		Short: "Print the mean progress across the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				value, err := app.LearningCLI.AggregateProgress(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%.1f%%\n", value)
				return nil
			})
		},
	}

	progress.AddCommand(update, complete, quiz, summary, ledger, overall)
	return progress
}

func printProgress(cmd *cobra.Command, verb, moduleID string, progress int, completed, catalogHit bool) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s progress=%d%% completed=%t\n", verb, moduleID, progress, completed)
	if !catalogHit {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s is not in the catalog; only the ledger was updated\n", moduleID)
	}
}

func newReaderCmd(opts *rootOptions) *cobra.Command {
	reader := &cobra.Command{Use: "reader", Short: "Walk through module content"}

	var index int
	var external bool
	open := &cobra.Command{
		Use:   "open <id>",
		Short: "Show one content item of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ReaderCLI.Open(ctx, args[0], index, external)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "module=%s title=%q item=%d/%d type=%s progress=%d%%\n", out.ModuleID, out.Title, out.Index+1, out.Total, out.ItemType, out.Progress)
				if out.ExternalTarget != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "target=%s launched=%t\n", out.ExternalTarget, out.ExternalLaunched)
				}
				if strings.TrimSpace(out.Content) != "" {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Content)
				}
				return nil
			})
		},
	}
	open.Flags().IntVar(&index, "item", 0, "content item index (0-based)")
	open.Flags().BoolVar(&external, "external", false, "launch the item's link when it has one")

	var advanceIndex int
	advance := &cobra.Command{
		Use:   "advance <id>",
		Short: "Mark a content item finished and move progress forward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ReaderCLI.Advance(ctx, args[0], advanceIndex)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "module=%s progress=%d%% completed=%t\n", out.ModuleID, out.Progress, out.Completed)
				if out.Finished {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "module finished")
				} else {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "next item: %d\n", out.NextIndex)
				}
				return nil
			})
		},
	}
	advance.Flags().IntVar(&advanceIndex, "item", 0, "finished content item index (0-based)")

	reader.AddCommand(open, advance)
	return reader
}

func newSessionCmd(opts *rootOptions) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Study session lifecycle"}

	var moduleID, goal string
	start := &cobra.Command{
		Use:   "start --module <id>",
		Short: "Start a study session on a module",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(moduleID) == "" {
				return fmt.Errorf("--module is required")
			}
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Start(ctx, moduleID, goal)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session started: %s module=%s (%s) at=%s\n", out.SessionID, out.ModuleID, out.ModuleTitle, out.StartedAt.Format(time.RFC3339))
				return nil
			})
		},
	}
	start.Flags().StringVar(&moduleID, "module", "", "module id")
	start.Flags().StringVar(&goal, "goal", "", "study goal")

	var outcome, sessionID string
	var delta int
	end := &cobra.Command{
		Use:   "end --outcome <text> --delta-progress <value>",
		Short: "End the active session and apply a progress delta",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(outcome) == "" {
				return fmt.Errorf("--outcome is required")
			}
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.End(ctx, sessionID, outcome, delta)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session ended: %s module=%s duration=%dmin delta=%d before=%d after=%d note=%s\n", out.SessionID, out.ModuleID, out.DurationMin, out.DeltaProgress, out.ProgressBefore, out.ProgressAfter, out.Path)
				return nil
			})
		},
	}
	end.Flags().StringVar(&sessionID, "session-id", "", "optional session id (defaults to active session)")
	end.Flags().StringVar(&outcome, "outcome", "", "session outcome")
	end.Flags().IntVar(&delta, "delta-progress", 0, "progress points to add (result clamps at 100)")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.GetActive(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "active session: %s module=%s (%s) since=%s goal=%q\n", out.SessionID, out.ModuleID, out.ModuleTitle, out.StartedAt.Format(time.RFC3339), out.Goal)
				return nil
			})
		},
	}

	var historyModule string
	history := &cobra.Command{
		Use:   "history",
		Short: "List finished sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				items, err := app.SessionCLI.History(ctx, historyModule)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions recorded")
					return nil
				}
				for _, item := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%dmin\t%d->%d\t%s\n", item.StartedAt.Format(time.RFC3339), item.ModuleID, item.ModuleTitle, item.DurationMin, item.ProgressBefore, item.ProgressAfter, item.Outcome)
				}
				return nil
			})
		},
	}
	history.Flags().StringVar(&historyModule, "module", "", "only sessions for this module id")

	session.AddCommand(start, end, status, history)
	return session
}

func newAccountCmd(opts *rootOptions) *cobra.Command {
	account := &cobra.Command{Use: "account", Short: "Demo account (no real authentication)"}

	var email, password string
	login := &cobra.Command{
		Use:   "login --email <email>",
		Short: "Sign in as the demo user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				user, err := app.AccountCLI.Login(ctx, email, password)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged in: %s <%s> role=%s\n", user.Name, user.Email, user.Role)
				return nil
			})
		},
	}
	login.Flags().StringVar(&email, "email", "", "email")
	login.Flags().StringVar(&password, "password", "", "password (not checked)")

	var name, regEmail, regPassword, role, language string
	register := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				user, err := app.AccountCLI.Register(ctx, name, regEmail, regPassword, role, language)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered: %s (%s) <%s> role=%s language=%s\n", user.Name, user.ID, user.Email, user.Role, user.PreferredLanguage)
				return nil
			})
		},
	}
	register.Flags().StringVar(&name, "name", "", "display name")
	register.Flags().StringVar(&regEmail, "email", "", "email")
	register.Flags().StringVar(&regPassword, "password", "", "password (not checked)")
	register.Flags().StringVar(&role, "role", "", "role: learner|practitioner|supervisor")
	register.Flags().StringVar(&language, "language", "", "preferred language")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.AccountCLI.Logout(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "logged out")
				return nil
			})
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				user, err := app.AccountCLI.WhoAmI(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> role=%s language=%s\n", user.Name, user.Email, user.Role, user.PreferredLanguage)
				return nil
			})
		},
	}

	account.AddCommand(login, register, logout, whoami)
	return account
}

func newReindexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the progress projection from the ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.LearningCLI.Reindex(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reindex completed: %d records\n", out.Records)
				return nil
			})
		},
	}
}
