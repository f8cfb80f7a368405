package telegram

import (
	"context"
	"net/http"
	"sync"

	"github.com/eskrenkovic/slotbot/internal/modules/core"
	"github.com/eskrenkovic/slotbot/internal/modules/roster"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// botAPI is the part of the Bot API client the transport uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

var _ botAPI = (*tgbotapi.BotAPI)(nil)

func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

// Bot turns Telegram updates into roster commands and queries. Every
// update is handled on its own goroutine.
type Bot struct {
	api      botAPI
	settings roster.Settings
	logger   *zap.Logger
	inflight sync.WaitGroup
}

func NewBot(api botAPI, settings roster.Settings, logger *zap.Logger) *Bot {
	return &Bot{
		api:      api,
		settings: settings,
		logger:   logger,
	}
}

// Poll reads updates with long polling until ctx is done, then waits
// for in-flight updates to finish.
func (b *Bot) Poll(ctx context.Context) {
	config := tgbotapi.NewUpdate(0)
	config.Timeout = 60

	updates := b.api.GetUpdatesChan(config)
	b.logger.Info("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.inflight.Wait()
			b.logger.Info("telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				b.inflight.Wait()
				return
			}
			b.dispatch(ctx, update)
		}
	}
}

// SetWebhook registers url with Telegram so updates arrive over HTTP.
func (b *Bot) SetWebhook(url string) error {
	webhook, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return err
	}

	if _, err := b.api.Request(webhook); err != nil {
		return err
	}

	b.logger.Info("telegram webhook registered", zap.String("url", url))
	return nil
}

func (b *Bot) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	b.dispatch(r.Context(), *update)
	core.WriteOK(w, r, nil)
}

// Wait blocks until every dispatched update is handled.
func (b *Bot) Wait() {
	b.inflight.Wait()
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	ctx = context.WithoutCancel(ctx)
	ctx = core.WithCorrelationID(ctx, "")
	ctx = core.WithLogger(ctx, b.logger)

	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("update handler panicked",
					zap.Int("update_id", update.UpdateID),
					zap.Any("panic", r))
			}
		}()

		b.HandleUpdate(ctx, update)
	}()
}
