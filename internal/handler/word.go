package handler

import (
	"fmt"
	"strings"

	"recite/internal/domain"
	"recite/internal/i18n"
	"recite/internal/widget"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleText translates any text message
func (h *Handler) handleText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	w := h.widget(c)
	w.SetText(text)
	fetched := w.SafeTranslate(h.ctx) != nil

	state := w.State()
	if !fetched {
		h.logger.Debug("No translation result", zap.Int64("user_id", c.Sender().ID))
		if !disconnected(state) {
			return c.Send(h.translator.T(i18n.GenericError))
		}
		return c.Send(renderResult(state))
	}

	h.logger.Info("Text translated",
		zap.Int64("user_id", c.Sender().ID),
		zap.String("api", state.Query.API),
		zap.Bool("error", state.Result.Error != ""),
	)

	return c.Send(renderResult(state), h.resultMarkup(w, state))
}

func (h *Handler) resultMarkup(w *widget.Widget, state widget.State) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	row := markup.Row(tele.Btn{Unique: uniqueSwap, Text: "⇄"})
	if w.ReviewEnabled() && state.Result.Error == "" {
		row = append(row, h.button(uniqueAdd, i18n.LabelMemorize))
	}
	markup.Inline(row)
	return markup
}

// handleSwap exchanges source and target language and translates again
func (h *Handler) handleSwap(c tele.Context) error {
	w := h.widget(c)
	w.ExchangeLocale()
	fetched := w.SafeTranslate(h.ctx) != nil

	state := w.State()
	if !fetched {
		if disconnected(state) {
			return h.editOrSend(c, renderResult(state), h.backMarkup())
		}
		return c.Respond(&tele.CallbackResponse{Text: h.translator.T(i18n.GenericError)})
	}
	return h.editOrSend(c, renderResult(state), h.resultMarkup(w, state))
}

// disconnected reports whether the state carries the disconnect error
// rather than a result fetched for some earlier text
func disconnected(state widget.State) bool {
	return state.Result != nil && state.Result.Error != "" && state.ResultText == ""
}

// renderResult formats a translation result as a chat message
func renderResult(state widget.State) string {
	r := state.Result
	if r.Error != "" {
		return "⚠️ " + r.Error
	}

	var b strings.Builder
	b.WriteString("📝 " + state.ResultText)
	if r.Phonetic != "" {
		b.WriteString(" " + r.Phonetic)
	}
	b.WriteString("\n")

	if len(r.Result) > 0 {
		b.WriteString("\n" + strings.Join(r.Result, "\n") + "\n")
	}
	if len(r.Dict) > 0 {
		b.WriteString("\n" + strings.Join(r.Dict, "\n") + "\n")
	}
	if state.APIName != "" {
		b.WriteString("\n— " + state.APIName)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderSummary formats review statistics
func renderSummary(tr *i18n.Translator, s domain.Summary) string {
	text := tr.TWith(i18n.StatsSummary, map[string]any{"Total": s.Total, "Due": s.Due})
	if s.Total == 0 {
		return text
	}

	var b strings.Builder
	b.WriteString(text + "\n")
	for count, n := range s.ByProgress {
		b.WriteString(fmt.Sprintf("\n%s %d", progressBar(count), n))
	}
	return b.String()
}

func progressBar(successCount int) string {
	return strings.Repeat("●", successCount) + strings.Repeat("○", domain.MaxSuccessCount-successCount)
}

// reviewTranslations picks what to memorize from a result
func reviewTranslations(r *domain.Result) []string {
	if len(r.Dict) > 0 {
		return r.Dict
	}
	return r.Result
}
