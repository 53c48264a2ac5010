package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/learnerbot/internal/cli"
	"github.com/alexanderramin/learnerbot/internal/config"
	"github.com/alexanderramin/learnerbot/internal/db"
	"github.com/alexanderramin/learnerbot/internal/domain"
	"github.com/alexanderramin/learnerbot/internal/llm"
	"github.com/alexanderramin/learnerbot/internal/logging"
	"github.com/alexanderramin/learnerbot/internal/repository"
	"github.com/alexanderramin/learnerbot/internal/scheduler"
	"github.com/alexanderramin/learnerbot/internal/service"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, _, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	progress, err := service.NewProgressService(store, logger)
	if err != nil {
		return fmt.Errorf("building progress service: %w", err)
	}
	if err := progress.Load(ctx); err != nil {
		// A corrupt record starts fresh; anything else is fatal.
		if !errors.Is(err, service.ErrCorruptRecord) && !errors.Is(err, domain.ErrInvariant) {
			return fmt.Errorf("loading progress: %w", err)
		}
		logger.Warn("progress record unreadable, starting fresh", zap.Error(err))
	}

	var observer llm.Observer = llm.NoopObserver{}
	if cfg.LLM.LogCalls {
		observer = llm.NewLogObserver(logger)
	}
	completer, err := llm.NewCompleter(cfg.LLMSettings(), observer)
	if err != nil {
		return fmt.Errorf("building completion client: %w", err)
	}
	switch {
	case !completer.Configured():
		logger.Info("no completion API key set, replies will be canned")
	case !llm.Reachable(ctx, completer):
		logger.Warn("completion endpoint not reachable, replies will fall back until it is",
			zap.String("endpoint", cfg.LLMSettings().Endpoint))
	}

	chat := service.NewChatService(completer, progress, logger,
		service.WithContextPolicy(service.ContextPolicy{
			MaxTurns: cfg.Context.MaxTurns,
			MaxChars: cfg.Context.MaxChars,
		}),
		service.WithUseCaseObserver(service.NewLogUseCaseObserver(logger.Named("usecase"))),
	)

	if cfg.AutosaveInterval > 0 {
		saver := scheduler.NewAutoSaver(progress, cfg.AutosaveInterval, logger)
		if err := saver.Start(); err != nil {
			return fmt.Errorf("starting autosave: %w", err)
		}
		defer saver.Stop()
	}

	app := &cli.App{
		Chat:     chat,
		Progress: progress,
		Config:   cfg,
		Logger:   logger,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// openStore builds the key-value store for the configured backend. The
// returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (repository.KVStore, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return repository.NewMemoryKVStore(), func() {}, nil

	case config.BackendRedis:
		r := cfg.Storage.Redis
		client, err := repository.DialRedis(ctx, r.Addr, r.Password, r.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return repository.NewRedisKVStore(client, r.Prefix), func() { _ = client.Close() }, nil

	default:
		database, err := db.OpenDB(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return repository.NewSQLiteKVStore(database), func() { _ = database.Close() }, nil
	}
}
