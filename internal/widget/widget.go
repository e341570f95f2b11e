// Package widget holds the state and actions of the translation panel.
//
// A Widget is what a host renders: it owns the current query, the last
// translation result and the word offered for review, and exposes the user
// actions as methods. Review support is switched on per widget with
// Options.ReviewEnabled.
package widget

import (
	"context"
	"errors"
	"strings"
	"sync"

	"recite/internal/domain"
	"recite/internal/i18n"
	"recite/internal/locale"
	"recite/internal/relay"
	"recite/internal/service"

	"go.uber.org/zap"
)

// Options configures a widget
type Options struct {
	ReviewEnabled bool
	DefaultQuery  domain.Query
}

// State is a snapshot of everything a host renders
type State struct {
	Locales    []locale.Locale
	Query      domain.Query
	Result     *domain.Result
	ResultText string // text Result was fetched for; empty for disconnect errors
	APIName    string
	Review     string
	ReviewDict []string
	ShowDict   bool
}

// Widget is the translation panel with optional spaced-repetition review
type Widget struct {
	opts       Options
	relay      *relay.Relay
	vocabulary *service.VocabularyService
	translator *i18n.Translator
	logger     *zap.Logger

	mu         sync.Mutex
	query      domain.Query
	result     *domain.Result
	resultText string
	review     string
	reviewDict []string
	showDict   bool
}

// New creates a widget and subscribes to the relay's disconnect notification
func New(
	opts Options,
	r *relay.Relay,
	vocabulary *service.VocabularyService,
	translator *i18n.Translator,
	logger *zap.Logger,
) *Widget {
	w := &Widget{
		opts:       opts,
		relay:      r,
		vocabulary: vocabulary,
		translator: translator,
		logger:     logger,
		query:      opts.DefaultQuery,
	}

	r.Channel().OnDisconnect(func() {
		w.mu.Lock()
		w.result = &domain.Result{Error: translator.T(i18n.ErrorDisconnected)}
		w.resultText = ""
		w.mu.Unlock()
	})
	return w
}

// ReviewEnabled reports whether the review actions are active
func (w *Widget) ReviewEnabled() bool {
	return w.opts.ReviewEnabled
}

// Init loads the first review candidate
func (w *Widget) Init(ctx context.Context) {
	w.LoadReview(ctx)
}

// State returns a snapshot of the widget state
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	return State{
		Locales:    locale.TranslateLocales(),
		Query:      w.query,
		Result:     w.result,
		ResultText: w.resultText,
		APIName:    locale.APIName(w.translator, w.query.API),
		Review:     w.review,
		ReviewDict: append([]string(nil), w.reviewDict...),
		ShowDict:   w.showDict,
	}
}

// SetQuery replaces the current query
func (w *Widget) SetQuery(q domain.Query) {
	w.mu.Lock()
	w.query = q
	w.mu.Unlock()
}

// SetText replaces the text of the current query
func (w *Widget) SetText(text string) {
	w.mu.Lock()
	w.query.Text = text
	w.mu.Unlock()
}

// SafeTranslate translates only when the query has text
func (w *Widget) SafeTranslate(ctx context.Context) *domain.Result {
	w.mu.Lock()
	text := strings.TrimSpace(w.query.Text)
	w.mu.Unlock()

	if text == "" {
		return nil
	}
	return w.Translate(ctx)
}

// Translate fetches the result of the current query.
// The state keeps the previous result when nothing comes back.
func (w *Widget) Translate(ctx context.Context) *domain.Result {
	w.mu.Lock()
	q := w.query
	w.mu.Unlock()

	result := w.relay.Fetch(ctx, q)
	if result == nil {
		return nil
	}

	w.mu.Lock()
	w.result = result
	w.resultText = q.Text
	w.mu.Unlock()
	return result
}

// ExchangeLocale swaps source and target language
func (w *Widget) ExchangeLocale() {
	w.mu.Lock()
	w.query.From, w.query.To = w.query.To, w.query.From
	w.mu.Unlock()
}

// OpenOptions opens the settings page
func (w *Widget) OpenOptions(ctx context.Context) {
	w.relay.OpenOptions(ctx)
}

// Copy puts texts on the clipboard and returns the feedback label
func (w *Widget) Copy(ctx context.Context, texts ...string) string {
	w.relay.Copy(ctx, texts...)
	return w.translator.T(i18n.LabelCopied)
}

// Play speaks texts with the current query's api
func (w *Widget) Play(ctx context.Context, texts []string, lang string) {
	w.mu.Lock()
	api := w.query.API
	w.mu.Unlock()

	w.relay.Play(ctx, texts, api, lang)
}

// AddWord puts term under review and returns the outcome with its label
func (w *Widget) AddWord(ctx context.Context, term string, dict []string) (domain.Outcome, string) {
	outcome, err := w.vocabulary.AddWord(ctx, term, dict)
	if err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
		w.logger.Warn("Add word failed", zap.String("term", term), zap.Error(err))
	}

	switch outcome {
	case domain.OutcomeAdded:
		w.LoadReview(ctx)
		return outcome, w.translator.T(i18n.LabelAdded)
	case domain.OutcomeAlreadyExists:
		return outcome, w.translator.T(i18n.LabelAlreadyExists)
	default:
		return domain.OutcomeFailed, w.translator.T(i18n.LabelFailed)
	}
}

// RemoveWord drops term from review
func (w *Widget) RemoveWord(ctx context.Context, term string) domain.Outcome {
	outcome, err := w.vocabulary.RemoveWord(ctx, term)
	if err != nil {
		w.logger.Warn("Remove word failed", zap.String("term", term), zap.Error(err))
	}
	w.LoadReview(ctx)
	return outcome
}

// LoadReview picks the next word to review; storage errors keep the current one
func (w *Widget) LoadReview(ctx context.Context) {
	if !w.opts.ReviewEnabled {
		return
	}

	candidate, err := w.vocabulary.NextReview(ctx)
	if err != nil {
		w.logger.Debug("Failed to load review", zap.Error(err))
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if candidate == nil {
		w.review = ""
		w.reviewDict = nil
		return
	}
	w.review = candidate.Term
	w.reviewDict = candidate.Translations
}

// RememberWord counts a successful review of the current word
func (w *Widget) RememberWord(ctx context.Context) domain.Outcome {
	return w.answer(ctx, w.vocabulary.MarkRemembered)
}

// ForgotWord restarts the review interval of the current word
func (w *Widget) ForgotWord(ctx context.Context) domain.Outcome {
	return w.answer(ctx, w.vocabulary.MarkForgotten)
}

// ContinueReview reveals the translations of the current word
func (w *Widget) ContinueReview() {
	if !w.opts.ReviewEnabled {
		return
	}
	w.mu.Lock()
	w.showDict = true
	w.mu.Unlock()
}

func (w *Widget) answer(ctx context.Context, mark func(context.Context, string) (domain.Outcome, error)) domain.Outcome {
	if !w.opts.ReviewEnabled {
		return domain.OutcomeFailed
	}

	w.mu.Lock()
	w.showDict = false
	term := w.review
	w.mu.Unlock()

	if term == "" {
		return domain.OutcomeFailed
	}

	outcome, err := mark(ctx, term)
	if err != nil {
		w.logger.Warn("Review answer failed", zap.String("term", term), zap.Error(err))
	}
	w.LoadReview(ctx)
	return outcome
}
