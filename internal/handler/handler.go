package handler

import (
	"context"
	"strconv"
	"sync"

	"recite/internal/i18n"
	"recite/internal/middleware"
	"recite/internal/service"
	"recite/internal/widget"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// WidgetFactory builds the widget of a new owner
type WidgetFactory func(owner string) *widget.Widget

// Handler manages all bot interactions
type Handler struct {
	ctx        context.Context
	bot        *tele.Bot
	vocabulary *service.VocabularyService
	translator *i18n.Translator
	newWidget  WidgetFactory
	logger     *zap.Logger

	// One widget per chat owner
	widgets   map[string]*widget.Widget
	widgetMux sync.Mutex
}

// NewHandler creates a new handler instance
func NewHandler(
	ctx context.Context,
	bot *tele.Bot,
	vocabulary *service.VocabularyService,
	translator *i18n.Translator,
	newWidget WidgetFactory,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		ctx:        ctx,
		bot:        bot,
		vocabulary: vocabulary,
		translator: translator,
		newWidget:  newWidget,
		logger:     logger,
		widgets:    make(map[string]*widget.Widget),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	h.bot.Use(middleware.Session(h.WidgetFor, h.logger))

	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/review", h.handleReview)
	h.bot.Handle("/stats", h.handleStats)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// WidgetFor returns the owner's widget, creating it on first use
func (h *Handler) WidgetFor(owner string) *widget.Widget {
	h.widgetMux.Lock()
	defer h.widgetMux.Unlock()

	w, exists := h.widgets[owner]
	if !exists {
		w = h.newWidget(owner)
		h.widgets[owner] = w
		h.logger.Info("Widget created", zap.String("owner", owner))
	}
	return w
}

func (h *Handler) widget(c tele.Context) *widget.Widget {
	if w, ok := middleware.WidgetFrom(c); ok {
		return w
	}
	return h.WidgetFor(ownerOf(c))
}

func ownerOf(c tele.Context) string {
	return strconv.FormatInt(c.Sender().ID, 10)
}

// Callback button identifiers
const (
	uniqueAdd        = "add"
	uniqueSwap       = "swap"
	uniqueReview     = "review"
	uniqueShow       = "show"
	uniqueRemembered = "remembered"
	uniqueForgot     = "forgot"
	uniqueStats      = "stats"
	uniqueMainMenu   = "main_menu"
)

func (h *Handler) button(unique, messageID string) tele.Btn {
	return tele.Btn{Unique: unique, Text: h.translator.T(messageID)}
}

// mainMenuMarkup returns the main menu keyboard
func (h *Handler) mainMenuMarkup(reviewEnabled bool) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	rows := []tele.Row{}
	if reviewEnabled {
		rows = append(rows, menu.Row(h.button(uniqueReview, i18n.MenuReview)))
	}
	rows = append(rows, menu.Row(h.button(uniqueStats, i18n.MenuStats)))
	menu.Inline(rows...)
	return menu
}

func (h *Handler) backMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(tele.Btn{Unique: uniqueMainMenu, Text: "🏠"}))
	return menu
}
