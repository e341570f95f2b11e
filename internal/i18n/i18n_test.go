package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslator_T(t *testing.T) {
	tests := []struct {
		name      string
		lang      string
		messageID string
		expected  string
	}{
		{name: "english network error", lang: "en", messageID: ErrorNetwork, expected: "Network error, please check your network settings."},
		{name: "chinese network error", lang: "zh-CN", messageID: ErrorNetwork, expected: "网络错误，请检查你的网络设置。"},
		{name: "chinese label", lang: "zh-CN", messageID: LabelAlreadyExists, expected: "已在背诵列表中"},
		{name: "unknown language falls back to english", lang: "fr", messageID: LabelAdded, expected: "Added"},
		{name: "unknown message renders its id", lang: "en", messageID: "NO_SUCH_CODE", expected: "NO_SUCH_CODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(tt.lang)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tr.T(tt.messageID))
		})
	}
}

func TestTranslator_TWith(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	msg := tr.TWith(StatsSummary, map[string]any{"Total": 3, "Due": 1})
	assert.Equal(t, "📊 Words: 3\nDue for review: 1", msg)
}

func TestNew_InvalidLanguage(t *testing.T) {
	tr, err := New("not a language tag!")
	assert.Error(t, err)
	assert.Nil(t, tr)
}

func TestBundles_HaveSameMessages(t *testing.T) {
	en, err := New("en")
	require.NoError(t, err)
	zh, err := New("zh-CN")
	require.NoError(t, err)

	ids := []string{
		ErrorNetwork, ErrorAPIServer, ErrorUnsupportedLang, ErrorDisconnected,
		LabelMemorize, LabelAdded, LabelAlreadyExists, LabelFailed, LabelCopied,
		APIYouDao, APIGoogle, APIGoogleCN, APIBaiDu,
		MenuTitle, MenuReview, MenuStats, ReviewNothing, ReviewShow,
		ReviewRemembered, ReviewForgot, ReviewLearned, GenericError,
	}
	for _, id := range ids {
		assert.NotEqual(t, id, en.T(id), "missing english message %s", id)
		assert.NotEqual(t, id, zh.T(id), "missing chinese message %s", id)
	}
}
