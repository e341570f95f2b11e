package handler

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"recite/internal/domain"
	"recite/internal/i18n"
	"recite/internal/relay"
	"recite/internal/repository/memory"
	"recite/internal/service"
	"recite/internal/testutil"
	"recite/internal/widget"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

// fakeContext records what a handler sends; unused tele.Context methods panic
type fakeContext struct {
	tele.Context

	sender    *tele.User
	text      string
	callback  *tele.Callback
	sent      []any
	edited    []any
	responses []string
}

func (c *fakeContext) Sender() *tele.User        { return c.sender }
func (c *fakeContext) Text() string              { return c.text }
func (c *fakeContext) Callback() *tele.Callback  { return c.callback }
func (c *fakeContext) Get(key string) any        { return nil }
func (c *fakeContext) Set(key string, value any) {}

func (c *fakeContext) Send(what any, opts ...any) error {
	c.sent = append(c.sent, what)
	return nil
}

func (c *fakeContext) Edit(what any, opts ...any) error {
	c.edited = append(c.edited, what)
	return nil
}

func (c *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	text := ""
	if len(resp) > 0 && resp[0] != nil {
		text = resp[0].Text
	}
	c.responses = append(c.responses, text)
	return nil
}

func newMessage(text string) *fakeContext {
	return &fakeContext{sender: &tele.User{ID: 7}, text: text}
}

func newCallback(unique, data string) *fakeContext {
	return &fakeContext{sender: &tele.User{ID: 7}, callback: &tele.Callback{ID: "cb", Unique: unique, Data: data}}
}

func newTestHandler(t *testing.T, channel *testutil.MockChannel, store *memory.Store) *Handler {
	t.Helper()

	tr, err := i18n.New("en")
	require.NoError(t, err)

	logger := testutil.NewTestLogger()
	r := relay.New(channel, tr, 0, logger)
	vocabulary := service.NewVocabularyService(store, service.NewReviewSelector(rand.NewPCG(1, 2)), logger).
		WithClock(testutil.FixedClock(testNow))

	newWidget := func(owner string) *widget.Widget {
		w := widget.New(widget.Options{
			ReviewEnabled: true,
			DefaultQuery:  domain.Query{From: "auto", To: "zh-CN", API: "Google"},
		}, r, vocabulary.ForOwner(owner), tr, logger)
		w.Init(context.Background())
		return w
	}
	return NewHandler(context.Background(), nil, vocabulary, tr, newWidget, logger)
}

func queryText(text string) any {
	return mock.MatchedBy(func(q domain.Query) bool { return q.Text == text })
}

func TestHandleText_FailedFetchDoesNotReusePreviousResult(t *testing.T) {
	store := memory.NewStore()
	channel := new(testutil.MockChannel)
	channel.On("Disconnected").Return(false)
	channel.On("Send", mock.Anything, relay.EventTranslate, queryText("cat"), true).Return(`{"dict":["n. cat-sense"]}`, nil)
	channel.On("Send", mock.Anything, relay.EventTranslate, queryText("dog"), true).Return(nil, context.DeadlineExceeded)
	h := newTestHandler(t, channel, store)

	first := newMessage("cat")
	require.NoError(t, h.handleText(first))
	require.Len(t, first.sent, 1)
	assert.Contains(t, first.sent[0], "📝 cat")
	assert.Contains(t, first.sent[0], "n. cat-sense")

	second := newMessage("dog")
	require.NoError(t, h.handleText(second))
	assert.Equal(t, []any{"An error occurred. Please try again later."}, second.sent)

	// Memorize still refers to the word the result was fetched for
	add := newCallback(uniqueAdd, "")
	require.NoError(t, h.handleCallback(add))
	assert.Equal(t, []string{"Added"}, add.responses)

	v := testutil.LoadVocabulary(t, store, "7/"+domain.StorageKey)
	assert.False(t, v.Has("dog"))
	e, ok := v.Get("cat")
	require.True(t, ok)
	assert.Equal(t, []string{"n. cat-sense"}, e.Translations)
}

func TestHandleText_Disconnected(t *testing.T) {
	channel := new(testutil.MockChannel)
	channel.On("Disconnected").Return(true)
	h := newTestHandler(t, channel, memory.NewStore())

	// create the widget before the background process goes away
	h.WidgetFor("7")
	channel.FireDisconnect()

	msg := newMessage("cat")
	require.NoError(t, h.handleText(msg))
	assert.Equal(t, []any{"⚠️ Lost connection to the translation engine, please reload the page or restart the browser and try again."}, msg.sent)
	channel.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleAdd_ErrorResult(t *testing.T) {
	store := memory.NewStore()
	channel := new(testutil.MockChannel)
	channel.On("Disconnected").Return(false)
	channel.On("Send", mock.Anything, relay.EventTranslate, queryText("cat"), true).Return(`{"code":"NETWORK_ERROR"}`, nil)
	h := newTestHandler(t, channel, store)

	msg := newMessage("cat")
	require.NoError(t, h.handleText(msg))
	assert.Equal(t, []any{"⚠️ Network error, please check your network settings."}, msg.sent)

	add := newCallback(uniqueAdd, "")
	require.NoError(t, h.handleCallback(add))
	assert.Equal(t, []string{"Something went wrong!"}, add.responses)
	assert.Equal(t, 0, testutil.LoadVocabulary(t, store, "7/"+domain.StorageKey).Len())
}
