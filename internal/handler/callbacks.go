package handler

import (
	"strings"
	"unicode"

	"recite/internal/domain"
	"recite/internal/i18n"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context) error {
	if err == nil {
		return nil
	}

	// If message is not modified, it was already edited by another callback
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", c.Sender().ID),
			zap.String("callback_id", c.Callback().ID),
		)
		_ = c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", c.Sender().ID),
		zap.String("callback_id", c.Callback().ID),
	)
	// Always acknowledge callback before sending new message
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// editOrSend edits the callback's message, falling back to a new message
func (h *Handler) editOrSend(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if err := c.Edit(text, markup); err != nil {
		if handleErr := h.handleEditError(err, c); handleErr == nil {
			return nil
		}
		return c.Send(text, markup)
	}
	return c.Respond()
}

// handleCallback handles ALL callback queries
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	unique := callback.Unique
	if unique == "" {
		// Unique did not come through, fall back to the raw data
		unique, _, _ = strings.Cut(cleanCallbackData(callback.Data), "|")
	}

	h.logger.Debug("Processing callback",
		zap.String("unique", unique),
		zap.String("id", callback.ID),
		zap.Int64("user_id", c.Sender().ID),
	)

	switch unique {
	case uniqueAdd:
		return h.handleAdd(c)
	case uniqueSwap:
		return h.handleSwap(c)
	case uniqueReview:
		return h.handleReview(c)
	case uniqueShow:
		return h.handleShow(c)
	case uniqueRemembered:
		return h.handleAnswer(c, true)
	case uniqueForgot:
		return h.handleAnswer(c, false)
	case uniqueStats:
		return h.handleStats(c)
	case uniqueMainMenu:
		return h.handleStart(c)
	}

	h.logger.Warn("Unhandled callback", zap.String("unique", unique))
	return c.Respond()
}

// handleAdd puts the last translated text under review
func (h *Handler) handleAdd(c tele.Context) error {
	w := h.widget(c)
	state := w.State()
	if state.Result == nil || state.Result.Error != "" || state.ResultText == "" {
		return c.Respond(&tele.CallbackResponse{Text: h.translator.T(i18n.LabelFailed)})
	}

	// the result may be older than the current query text
	outcome, label := w.AddWord(h.ctx, state.ResultText, reviewTranslations(state.Result))
	h.logger.Info("Add word requested",
		zap.Int64("user_id", c.Sender().ID),
		zap.String("term", state.ResultText),
		zap.Stringer("outcome", outcome),
	)
	return c.Respond(&tele.CallbackResponse{Text: label})
}

// handleReview shows the word currently due for review
func (h *Handler) handleReview(c tele.Context) error {
	w := h.widget(c)
	if !w.ReviewEnabled() {
		return h.handleStart(c)
	}

	w.LoadReview(h.ctx)
	state := w.State()

	if state.Review == "" {
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{
				Text:      h.translator.T(i18n.ReviewNothing),
				ShowAlert: true,
			})
		}
		return c.Send(h.translator.T(i18n.ReviewNothing))
	}

	text := h.translator.TWith(i18n.ReviewPrompt, map[string]any{"Term": state.Review})
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(h.button(uniqueShow, i18n.ReviewShow)),
		markup.Row(h.button(uniqueRemembered, i18n.ReviewRemembered), h.button(uniqueForgot, i18n.ReviewForgot)),
		markup.Row(tele.Btn{Unique: uniqueMainMenu, Text: "🏠"}),
	)

	if c.Callback() != nil {
		return h.editOrSend(c, text, markup)
	}
	return c.Send(text, markup)
}

// handleShow reveals the translations of the word under review
func (h *Handler) handleShow(c tele.Context) error {
	w := h.widget(c)
	w.ContinueReview()
	state := w.State()

	if state.Review == "" {
		return h.handleReview(c)
	}

	text := h.translator.TWith(i18n.ReviewRevealed, map[string]any{
		"Term": state.Review,
		"Dict": strings.Join(state.ReviewDict, "\n"),
	})
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(h.button(uniqueRemembered, i18n.ReviewRemembered), h.button(uniqueForgot, i18n.ReviewForgot)),
		markup.Row(tele.Btn{Unique: uniqueMainMenu, Text: "🏠"}),
	)
	return h.editOrSend(c, text, markup)
}

// handleAnswer records the review answer and moves on to the next word
func (h *Handler) handleAnswer(c tele.Context, remembered bool) error {
	w := h.widget(c)

	var outcome domain.Outcome
	if remembered {
		outcome = w.RememberWord(h.ctx)
	} else {
		outcome = w.ForgotWord(h.ctx)
	}

	h.logger.Info("Review answered",
		zap.Int64("user_id", c.Sender().ID),
		zap.Stringer("outcome", outcome),
	)

	if outcome == domain.OutcomeLearned {
		if err := c.Send(h.translator.T(i18n.ReviewLearned)); err != nil {
			h.logger.Warn("Failed to send learned notice", zap.Error(err))
		}
	}
	return h.showNextReview(c)
}

// showNextReview renders the review already loaded by the widget
func (h *Handler) showNextReview(c tele.Context) error {
	state := h.widget(c).State()
	if state.Review == "" {
		return h.editOrSend(c, h.translator.T(i18n.ReviewNothing), h.backMarkup())
	}
	return h.handleReview(c)
}
