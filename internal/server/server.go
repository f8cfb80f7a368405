package server

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/eskrenkovic/slotbot/internal/config"
	"github.com/eskrenkovic/slotbot/internal/modules/core"
	"github.com/eskrenkovic/slotbot/internal/modules/notification"
	"github.com/eskrenkovic/slotbot/internal/modules/player"
	playerqueries "github.com/eskrenkovic/slotbot/internal/modules/player/queries"
	"github.com/eskrenkovic/slotbot/internal/modules/roster"
	rosterqueries "github.com/eskrenkovic/slotbot/internal/modules/roster/queries"
	"github.com/eskrenkovic/slotbot/internal/modules/telegram"

	"github.com/eskrenkovic/migrate-go"
	"github.com/go-chi/chi"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const webhookPath = "/telegram/webhook"

type Server interface {
	Start() error
	Stop() error
}

var _ Server = &BotServer{}

// BotServer acts as the composition root for the application. Backends
// are picked from configuration: postgres or memory for storage, asynq or
// timers for scheduling, Telegram or the log for delivery.
type BotServer struct {
	config config.Config
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	server    *http.Server
	db        *sql.DB
	redis     *redis.Client
	scheduler notification.Scheduler
	notifier  *roster.Notifier
	bot       *telegram.Bot

	wg sync.WaitGroup
}

func NewBotServer(config config.Config) (Server, error) {
	baseCtx, cancel := context.WithCancel(context.Background())

	s := &BotServer{
		config: config,
		logger: config.Logger,
		ctx:    baseCtx,
		cancel: cancel,
	}

	if err := s.init(); err != nil {
		cancel()
		_ = s.closeBackends()
		return nil, err
	}

	return s, nil
}

func (s *BotServer) init() error {
	var (
		rosters roster.Store
		players player.Store
		sender  notification.Sender
	)

	if s.config.DatabaseURL != "" {
		db, err := sql.Open("postgres", s.config.DatabaseURL)
		if err != nil {
			return err
		}
		s.db = db

		if err := migrate.Run(s.ctx, db, s.config.MigrationsPath); err != nil {
			return err
		}

		rosters = roster.NewPostgresStore(db)
		players = player.NewPostgresStore(db)
	} else {
		s.logger.Warn("DATABASE_URL not set, using in-memory stores")
		rosters = roster.NewMemoryStore()
		players = player.NewMemoryStore()
	}

	settings := roster.NewSettings(s.config.Roster)

	if s.config.RedisURL != "" {
		rdb, err := notification.NewRedisClient(s.ctx, s.config.RedisURL)
		if err != nil {
			return err
		}
		s.redis = rdb
		s.scheduler = notification.NewAsynqScheduler(rdb, s.logger)
	} else {
		s.logger.Warn("REDIS_URL not set, pending notifications will not survive restarts")
		s.scheduler = notification.NewTimerScheduler(s.logger, notification.WithClock(settings.Time))
	}

	if s.config.Telegram.Token != "" {
		api, err := telegram.NewBotAPI(s.config.Telegram.Token)
		if err != nil {
			return err
		}
		s.bot = telegram.NewBot(api, settings, s.logger)
		sender = telegram.NewSender(api, s.logger)
	} else {
		s.logger.Warn("TELEGRAM_TOKEN not set, messages go to the log")
		sender = &notification.LogSender{Logger: s.logger}
	}

	notifier, err := RegisterModules(Modules{
		Rosters:   rosters,
		Players:   players,
		Scheduler: s.scheduler,
		Sender:    sender,
		Settings:  settings,
		Access:    s.config.Roster,
		Logger:    s.logger,
	})
	if err != nil {
		return err
	}
	s.notifier = notifier

	s.server = &http.Server{
		Addr:    net.JoinHostPort("", strconv.Itoa(s.config.Port)),
		Handler: s.routes(),
	}

	return nil
}

func (s *BotServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		adapt(baseContextMiddleware(s.ctx, s.logger)),
		adapt(core.CorrelationIDHTTPMiddleware),
	)

	r.Get("/healthz", s.handleHealth)

	r.Get("/chats/{chatID}/rosters", rosterqueries.HandleListRosters)
	r.Get("/chats/{chatID}/status", rosterqueries.HandleRenderStatus)

	r.Get("/players/{userID}", playerqueries.HandleGetPlayer)

	if s.bot != nil && s.config.Telegram.WebhookURL != "" {
		r.Post(webhookPath, s.bot.WebhookHandler)
	}

	return r
}

func (s *BotServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			core.WriteCommandError(w, r, core.NewCommandError(503, err))
			return
		}
	}

	if s.redis != nil {
		if err := s.redis.Ping(r.Context()).Err(); err != nil {
			core.WriteCommandError(w, r, core.NewCommandError(503, err))
			return
		}
	}

	core.WriteResponse(w, r, http.StatusOK, map[string]string{"status": "ok"}, core.WithHeader("Cache-Control", "no-store"))
}

// Start runs the scheduler, the chat transport and the HTTP server. It
// blocks until the HTTP server stops.
func (s *BotServer) Start() error {
	if err := s.scheduler.Start(s.ctx, s.notifier.Deliver); err != nil {
		return err
	}

	if s.bot != nil {
		if s.config.Telegram.WebhookURL != "" {
			if err := s.bot.SetWebhook(s.config.Telegram.WebhookURL); err != nil {
				return err
			}
		} else {
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.bot.Poll(s.ctx)
			}()
		}
	}

	s.logger.Info("http server listening", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *BotServer) Stop() error {
	s.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.server.Shutdown(shutdownCtx)

	s.wg.Wait()
	if s.bot != nil {
		s.bot.Wait()
	}

	if stopErr := s.scheduler.Stop(); stopErr != nil && err == nil {
		err = stopErr
	}

	if closeErr := s.closeBackends(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

func (s *BotServer) closeBackends() error {
	var err error

	if s.redis != nil {
		err = s.redis.Close()
	}

	if s.db != nil {
		if closeErr := s.db.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}

	return err
}
