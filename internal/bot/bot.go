package bot

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/valpere/govorun/api"
	"github.com/valpere/govorun/internal/config"
	"github.com/valpere/govorun/internal/database"
	"github.com/valpere/govorun/internal/handlers/commands"
	"github.com/valpere/govorun/internal/middleware"
	"github.com/valpere/govorun/internal/services"
	"github.com/valpere/govorun/pkg/metrics"
)

type Bot struct {
	bot        *gotgbot.Bot
	updater    *ext.Updater
	dispatcher *ext.Dispatcher
	config     *config.Config
	logger     zerolog.Logger
	services   *services.Services
	server     *http.Server
	metrics    *metrics.Metrics
}

func New(cfg *config.Config) (*Bot, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().
		Timestamp().
		Str("component", "bot").
		Logger()

	metricsCollector := metrics.New()

	db, err := database.Connect(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rdb, err := database.ConnectRedis(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	svcs := services.New(db, rdb, cfg, &logger, metricsCollector)

	botInstance, err := gotgbot.NewBot(cfg.Bot.Token, &gotgbot.BotOpts{
		BotClient: &gotgbot.BaseBotClient{
			Client: http.Client{Timeout: 30 * time.Second},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{})
	updater := ext.NewUpdater(dispatcher, &ext.UpdaterOpts{})

	govorunBot := &Bot{
		bot:        botInstance,
		updater:    updater,
		dispatcher: dispatcher,
		config:     cfg,
		logger:     logger,
		services:   svcs,
		metrics:    metricsCollector,
	}

	govorunBot.setupHandlers()
	govorunBot.setupHTTPServer()

	return govorunBot, nil
}

func (b *Bot) setupHandlers() {
	// Middleware group runs before command dispatch
	rateLimiter := middleware.NewUserRateLimiter(rate.Every(time.Second), 5)
	b.dispatcher.AddHandlerToGroup(handlers.NewMessage(func(msg *gotgbot.Message) bool { return true },
		middleware.Logging(b.logger)), -4)
	b.dispatcher.AddHandlerToGroup(handlers.NewMessage(func(msg *gotgbot.Message) bool { return true },
		middleware.RateLimit(rateLimiter)), -3)
	b.dispatcher.AddHandlerToGroup(handlers.NewMessage(func(msg *gotgbot.Message) bool { return true },
		middleware.Auth(b.services.User)), -2)
	b.dispatcher.AddHandlerToGroup(handlers.NewMessage(func(msg *gotgbot.Message) bool { return true },
		middleware.Metrics(b.metrics)), -1)

	cmdHandler := commands.New(b.services, &b.logger)

	// Basic commands
	b.dispatcher.AddHandler(handlers.NewCommand("start", cmdHandler.Start))
	b.dispatcher.AddHandler(handlers.NewCommand("help", cmdHandler.Help))
	b.dispatcher.AddHandler(handlers.NewCommand("stats", cmdHandler.Stats))
	b.dispatcher.AddHandler(handlers.NewCommand("history", cmdHandler.History))
	b.dispatcher.AddHandler(handlers.NewCommand("version", cmdHandler.Version))

	// Audio messages carry attachment metadata into the archive
	b.dispatcher.AddHandler(handlers.NewMessage(func(msg *gotgbot.Message) bool {
		return msg.Audio != nil
	}, cmdHandler.HandleAudioMessage))

	// Plain text messages
	b.dispatcher.AddHandler(handlers.NewMessage(func(msg *gotgbot.Message) bool {
		return msg.Text != "" && !strings.HasPrefix(msg.Text, "/")
	}, cmdHandler.HandleTextMessage))

	// Unknown command handler (messages starting with / that aren't registered)
	b.dispatcher.AddHandler(handlers.NewMessage(func(msg *gotgbot.Message) bool {
		return msg.Text != "" && strings.HasPrefix(msg.Text, "/")
	}, cmdHandler.UnknownCommand))
}

func (b *Bot) setupHTTPServer() {
	router := api.NewRouter(b.bot, b.dispatcher, b.metrics, b.logger)

	b.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", b.config.Bot.WebhookPort),
		Handler: router,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	go func() {
		b.logger.Info().Int("port", b.config.Bot.WebhookPort).Msg("Starting HTTP server")
		if err := b.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			b.logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	if b.config.Bot.WebhookURL != "" {
		_, err := b.bot.SetWebhook(b.config.Bot.WebhookURL, nil)
		if err != nil {
			return fmt.Errorf("failed to set webhook: %w", err)
		}
		b.logger.Info().Str("url", b.config.Bot.WebhookURL).Msg("Webhook registered, updates served over HTTP")
		<-ctx.Done()
		return nil
	}

	err := b.updater.StartPolling(b.bot, &ext.PollingOpts{
		DropPendingUpdates: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	b.logger.Info().Str("username", b.bot.User.Username).Msg("Bot started polling")
	b.updater.Idle()
	return nil
}

func (b *Bot) Stop() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := b.server.Shutdown(shutdownCtx); err != nil {
		b.logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	if b.config.Bot.WebhookURL == "" {
		return b.updater.Stop()
	}
	return nil
}
