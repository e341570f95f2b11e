package relay

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"recite/internal/domain"
	"recite/internal/i18n"

	"go.uber.org/zap"
)

// Events understood by the background process
const (
	EventTranslate   = "get translate result"
	EventOpenOptions = "open options"
	EventCopy        = "copy"
	EventPlay        = "play"
)

// ErrDisconnected is returned by a Channel whose background process went away
var ErrDisconnected = errors.New("relay: disconnected")

// Channel is the request/response link to the background process
type Channel interface {
	Send(ctx context.Context, event string, payload any, expectReply bool) (json.RawMessage, error)
	Disconnected() bool
	// OnDisconnect registers fn to run once when the channel disconnects
	OnDisconnect(fn func())
}

// PlayRequest asks the background process to speak text
type PlayRequest struct {
	Text string `json:"text"`
	API  string `json:"api"`
	From string `json:"from,omitempty"`
}

// reply is the raw shape of a translation reply
type reply struct {
	Code     string   `json:"code"`
	Error    string   `json:"error"`
	Phonetic []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"phonetic"`
	Dict   []string `json:"dict"`
	Result []string `json:"result"`
	Link   string   `json:"link"`
}

var codeMessages = map[string]string{
	domain.CodeNetworkError:    i18n.ErrorNetwork,
	domain.CodeAPIServerError:  i18n.ErrorAPIServer,
	domain.CodeUnsupportedLang: i18n.ErrorUnsupportedLang,
}

// Relay forwards requests to the background process and normalizes replies
type Relay struct {
	channel    Channel
	translator *i18n.Translator
	timeout    time.Duration
	logger     *zap.Logger
}

// New creates a relay; a zero timeout leaves requests unbounded
func New(channel Channel, translator *i18n.Translator, timeout time.Duration, logger *zap.Logger) *Relay {
	return &Relay{
		channel:    channel,
		translator: translator,
		timeout:    timeout,
		logger:     logger,
	}
}

// Channel returns the underlying channel
func (r *Relay) Channel() Channel {
	return r.channel
}

// Fetch asks for the translation of q.
// It returns nil when there is nothing to show: the channel is disconnected,
// the request failed, or the reply could not be decoded.
func (r *Relay) Fetch(ctx context.Context, q domain.Query) *domain.Result {
	if r.channel.Disconnected() {
		return nil
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	raw, err := r.channel.Send(ctx, EventTranslate, q, true)
	if err != nil {
		// Only happens when the background process goes away mid-request
		r.logger.Debug("Translate request dropped", zap.String("api", q.API), zap.Error(err))
		return nil
	}

	result, err := r.normalize(raw)
	if err != nil {
		r.logger.Debug("Undecodable translate reply", zap.String("api", q.API), zap.Error(err))
		return nil
	}
	return result
}

func (r *Relay) normalize(raw json.RawMessage) (*domain.Result, error) {
	var rep reply
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil, err
	}

	if rep.Code != "" {
		return &domain.Result{Error: r.ErrorMessage(rep.Code, rep.Error)}, nil
	}

	result := &domain.Result{
		Dict:   rep.Dict,
		Result: rep.Result,
		Link:   rep.Link,
	}
	if len(rep.Phonetic) > 0 {
		result.Phonetic = "/" + rep.Phonetic[0].Value + "/"
	}
	return result, nil
}

// ErrorMessage renders a backend error code with its raw detail appended
func (r *Relay) ErrorMessage(code, detail string) string {
	id, ok := codeMessages[code]
	if !ok {
		id = code
	}
	return r.translator.T(id) + detail
}

// OpenOptions asks the background process to open the settings page
func (r *Relay) OpenOptions(ctx context.Context) {
	r.fire(ctx, EventOpenOptions, nil)
}

// Copy puts texts, one per line, on the clipboard
func (r *Relay) Copy(ctx context.Context, texts ...string) {
	r.fire(ctx, EventCopy, strings.Join(texts, "\n"))
}

// Play speaks texts, one per line, using api
func (r *Relay) Play(ctx context.Context, texts []string, api, lang string) {
	r.fire(ctx, EventPlay, PlayRequest{
		Text: strings.Join(texts, "\n"),
		API:  api,
		From: lang,
	})
}

func (r *Relay) fire(ctx context.Context, event string, payload any) {
	if _, err := r.channel.Send(ctx, event, payload, false); err != nil {
		r.logger.Warn("Failed to send event", zap.String("event", event), zap.Error(err))
	}
}
