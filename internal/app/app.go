package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/api"
	"github.com/Freeeeeet/slot_swapper/internal/config"
	"github.com/Freeeeeet/slot_swapper/internal/controller"
	"github.com/Freeeeeet/slot_swapper/internal/repository"
	"github.com/Freeeeeet/slot_swapper/internal/repository/base"
	"github.com/Freeeeeet/slot_swapper/internal/repository/memory"
	"github.com/Freeeeeet/slot_swapper/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

// App holds the storage and the service graph shared by every surface.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	newBot func(token string, opts ...bot.Option) (*bot.Bot, error)

	Users *service.UserService
	Slots *service.SlotService
	Swaps *service.SwapService
}

// New opens the configured storage and builds the services on top of it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger, newBot: bot.New}

	var stores service.Stores
	switch cfg.Storage {
	case config.StorageMemory:
		store := memory.NewStore()
		stores = service.Stores{
			Tx:           store,
			Slots:        store.Slots(),
			SwapRequests: store.SwapRequests(),
			Users:        store.Users(),
		}
		logger.Warn("Using in-memory storage, data is lost on restart")

	case config.StoragePostgres:
		pool, err := OpenPool(ctx, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		a.pool = pool

		if cfg.AutoMigrate {
			if err := a.Migrate(ctx); err != nil {
				pool.Close()
				return nil, err
			}
		}

		db := base.NewRepository(pool, cfg.TxMaxRetries)
		stores = service.Stores{
			Tx:           db,
			Slots:        repository.NewSlotRepository(db),
			SwapRequests: repository.NewSwapRequestRepository(db),
			Users:        repository.NewUserRepository(db),
		}

	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}

	a.Users = service.NewUserService(stores, logger)
	a.Slots = service.NewSlotService(stores, logger)
	a.Swaps = service.NewSwapService(stores, logger)
	return a, nil
}

// OpenPool connects to Postgres and checks the connection.
func OpenPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Migrate applies pending migrations. It is a no-op for in-memory storage.
func (a *App) Migrate(ctx context.Context) error {
	if a.pool == nil {
		return nil
	}

	migrator, err := NewMigrator(a.pool, a.logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Up(ctx)
}

// Run serves the HTTP API and the Telegram bot until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if !a.cfg.HTTPEnabled() && !a.cfg.BotEnabled() {
		return errors.New("nothing to run: set HTTP_ADDR or TELEGRAM_TOKEN")
	}

	if a.cfg.HTTPEnabled() && a.cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to serve the HTTP API")
	}

	// Бот создаётся до запуска горутин: при ошибке нечего останавливать
	var botController *controller.BotController
	if a.cfg.BotEnabled() {
		b, err := a.newBot(a.cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
		botController = controller.NewBotController(b, a.Users, a.Slots, a.Swaps, a.cfg.BotLocation(), a.logger)
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.cfg.HTTPEnabled() {
		server := &http.Server{
			Addr: a.cfg.HTTPAddr,
			Handler: api.NewServer(api.Options{
				Users:          a.Users,
				Slots:          a.Slots,
				Swaps:          a.Swaps,
				JWTSecret:      []byte(a.cfg.JWTSecret),
				AllowedOrigins: a.cfg.CORSAllowedOrigins,
				WriteRate:      rate.Limit(a.cfg.APIWriteRPS),
				WriteBurst:     a.cfg.APIWriteBurst,
				Logger:         a.logger,
			}).Handler(),
			ReadTimeout:       7 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       120 * time.Second,
			ReadHeaderTimeout: 2 * time.Second,
		}

		g.Go(func() error {
			a.logger.Info("HTTP API listening", zap.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve http: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown http: %w", err)
			}
			a.logger.Info("HTTP API stopped")
			return nil
		})
	}

	if botController != nil {
		if err := botController.RegisterHandlers(ctx); err != nil {
			// Меню команд не критично для работы бота
			a.logger.Warn("Failed to register bot command menu", zap.Error(err))
		}

		g.Go(func() error {
			botController.Start(ctx)
			return nil
		})
	}

	return g.Wait()
}

// Close releases the database pool.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
