package bootstrap

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	accountinadapter "microlearn/internal/modules/account/adapter/in"
	accountoutadapter "microlearn/internal/modules/account/adapter/out"
	accountservice "microlearn/internal/modules/account/service"
	accountusecase "microlearn/internal/modules/account/usecase"
	learninginadapter "microlearn/internal/modules/learning/adapter/in"
	learningoutadapter "microlearn/internal/modules/learning/adapter/out"
	learningout "microlearn/internal/modules/learning/port/out"
	learningservice "microlearn/internal/modules/learning/service"
	learningusecase "microlearn/internal/modules/learning/usecase"
	readerinadapter "microlearn/internal/modules/reader/adapter/in"
	readeroutadapter "microlearn/internal/modules/reader/adapter/out"
	readerservice "microlearn/internal/modules/reader/service"
	readerusecase "microlearn/internal/modules/reader/usecase"
	sessioninadapter "microlearn/internal/modules/session/adapter/in"
	sessionoutadapter "microlearn/internal/modules/session/adapter/out"
	sessionout "microlearn/internal/modules/session/port/out"
	sessionservice "microlearn/internal/modules/session/service"
	sessionusecase "microlearn/internal/modules/session/usecase"
	"microlearn/internal/platform/clock"
	"microlearn/internal/platform/config"
	"microlearn/internal/platform/id"
	"microlearn/internal/platform/tx"
	uiapp "microlearn/internal/ui/app"
)

type App struct {
	LearningCLI learninginadapter.CLIHandler
	ReaderCLI   readerinadapter.CLIHandler
	ReaderTUI   readerinadapter.TUIHandler
	SessionCLI  sessioninadapter.CLIHandler
	AccountCLI  accountinadapter.CLIHandler

	learning  *learningservice.LearningService
	projector learningout.ProgressProjector
	log       *zap.Logger
}

// New wires every module for one process. With ephemeral set nothing is read
// from or written to the data dir.
func New(ctx context.Context, cfg config.Config, log *zap.Logger, ephemeral bool) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	clk := clock.SystemClock{}
	ids := id.UUID{}
	persist := cfg.Persist && !ephemeral

	catalogSource := learningoutadapter.NewBuiltinCatalog()
	if cfg.CatalogPath != "" {
		catalogSource = learningoutadapter.NewYAMLCatalog(cfg.CatalogPath)
	}
	catalog, err := catalogSource.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	store, err := learningservice.NewProgressStore(clk, catalog)
	if err != nil {
		return nil, fmt.Errorf("new progress store: %w", err)
	}

	var snapshots learningout.SnapshotStore
	if persist {
		snapshots = learningoutadapter.NewVaultSnapshotStore(cfg.SnapshotPath())
	}
	projector, err := newProjector(ctx, cfg, ephemeral)
	if err != nil {
		return nil, err
	}

	learningSvc := learningservice.NewLearningService(store, snapshots, projector, tx.NewSerial(), log.Named("learning"), cfg.StrictModuleIDs)
	if err := learningSvc.Load(ctx); err != nil {
		closeProjector(projector)
		return nil, fmt.Errorf("load progress snapshot: %w", err)
	}
	learningUC := learningusecase.NewInteractor(learningSvc)

	var (
		noteStore   sessionout.SessionStore
		activeStore sessionout.ActiveSessionStore
	)
	if persist {
		noteStore = sessionoutadapter.NewVaultSessionStore(cfg.DataDir)
		activeStore = sessionoutadapter.NewFileActiveSessionStore(cfg.StateDir())
	} else {
		noteStore = sessionoutadapter.NewDiscardSessionStore()
		activeStore = sessionoutadapter.NewMemoryActiveSessionStore()
	}
	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewSessionService(clk, ids, noteStore),
		learningUC,
		activeStore,
	)

	readerUC := readerusecase.NewInteractor(readerservice.NewReaderService(
		readeroutadapter.NewLearningProgressAdapter(learningUC),
		readeroutadapter.NewLearningModuleAdapter(learningUC),
		readeroutadapter.NewOSExternalLauncher(),
	))

	userStore := accountoutadapter.NewMemoryUserStore()
	if persist {
		userStore = accountoutadapter.NewFileUserStore(cfg.StateDir())
	}
	accountUC := accountusecase.NewInteractor(accountservice.NewAccountService(clk, ids, log.Named("account")), userStore)

	log.Debug("app wired",
		zap.String("data_dir", cfg.DataDir),
		zap.Bool("persist", persist),
		zap.String("projector", projectorDriver(cfg, ephemeral)),
		zap.Int("modules", len(catalog)),
	)

	return &App{
		LearningCLI: learninginadapter.NewCLIHandler(learningUC),
		ReaderCLI:   readerinadapter.NewCLIHandler(readerUC),
		ReaderTUI:   readerinadapter.NewTUIHandler(readerUC),
		SessionCLI:  sessioninadapter.NewCLIHandler(sessionUC),
		AccountCLI:  accountinadapter.NewCLIHandler(accountUC),
		learning:    learningSvc,
		projector:   projector,
		log:         log,
	}, nil
}

// Close flushes the progress snapshot and releases the projection database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.learning != nil {
		if err := a.learning.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush snapshot: %w", err))
		}
	}
	if a.projector != nil {
		if err := a.projector.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close projector: %w", err))
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return errors.Join(errs...)
}

func RunTUI(ctx context.Context, app *App) error {
	model := uiapp.NewModel(ctx, app.LearningCLI, app.SessionCLI, app.ReaderTUI)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func newProjector(ctx context.Context, cfg config.Config, ephemeral bool) (learningout.ProgressProjector, error) {
	switch projectorDriver(cfg, ephemeral) {
	case config.DriverSQLite:
		projector, err := learningoutadapter.NewSQLiteProgressProjector(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("new sqlite projector: %w", err)
		}
		return projector, nil
	case config.DriverPostgres:
		projector, err := learningoutadapter.NewPostgresProgressProjector(ctx, cfg.Projector.PostgresURL, learningoutadapter.PoolConfig{
			MaxConns:        cfg.Projector.MaxConns,
			MaxConnLifetime: cfg.Projector.MaxConnLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("new postgres projector: %w", err)
		}
		return projector, nil
	default:
		return nil, nil
	}
}

func projectorDriver(cfg config.Config, ephemeral bool) string {
	if ephemeral {
		return config.DriverNone
	}
	return cfg.Projector.Driver
}

func closeProjector(projector learningout.ProgressProjector) {
	if projector != nil {
		_ = projector.Close()
	}
}
