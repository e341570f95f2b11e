package handler

import (
	"recite/internal/i18n"
	"recite/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	h.logger.Info("User started bot",
		zap.Int64("user_id", c.Sender().ID),
		zap.String("username", c.Sender().Username),
	)

	w := h.widget(c)
	text := h.translator.T(i18n.MenuTitle)
	markup := h.mainMenuMarkup(w.ReviewEnabled())

	if c.Callback() != nil {
		return h.editOrSend(c, text, markup)
	}
	return c.Send(text, markup)
}

// handleStats shows review progress
func (h *Handler) handleStats(c tele.Context) error {
	owner := ownerOf(c)
	stats := service.NewStatsService(h.vocabulary.ForOwner(owner), h.logger)

	summary, err := stats.Summary(h.ctx)
	if err != nil {
		h.logger.Error("Failed to compute stats", zap.String("owner", owner), zap.Error(err))
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{Text: h.translator.T(i18n.GenericError)})
		}
		return c.Send(h.translator.T(i18n.GenericError))
	}

	text := renderSummary(h.translator, summary)
	if c.Callback() != nil {
		return h.editOrSend(c, text, h.backMarkup())
	}
	return c.Send(text, h.backMarkup())
}
