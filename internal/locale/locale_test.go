package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recite/internal/i18n"
)

func TestTranslateLocales(t *testing.T) {
	ids := make([]string, 0)
	for _, l := range TranslateLocales() {
		ids = append(ids, l.ID)
	}

	assert.Contains(t, ids, "zh-CN")
	assert.Contains(t, ids, "zh-TW")
	assert.Contains(t, ids, "zh-HK")
	assert.Contains(t, ids, "en")
	assert.NotContains(t, ids, "en-US")
	assert.NotContains(t, ids, "pt-BR")

	for _, id := range ids {
		assert.True(t, Valid(id), "locale %s must be a valid tag", id)
	}
}

func TestTranslateLocales_BuiltOnce(t *testing.T) {
	first := TranslateLocales()
	second := TranslateLocales()
	require.NotEmpty(t, first)
	assert.Same(t, &first[0], &second[0])
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("ja"))
	assert.True(t, IsSupported("zh-HK"))
	assert.False(t, IsSupported("en-GB"))
	assert.False(t, IsSupported("xx"))
}

func TestAPIName(t *testing.T) {
	tr, err := i18n.New("zh-CN")
	require.NoError(t, err)

	tests := []struct {
		api      string
		expected string
	}{
		{api: "YouDao", expected: "有道翻译"},
		{api: "Google", expected: "谷歌翻译"},
		{api: "GoogleCN", expected: "谷歌翻译（国内）"},
		{api: "BaiDu", expected: "百度翻译"},
		{api: "Bing", expected: ""},
		{api: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.api, func(t *testing.T) {
			assert.Equal(t, tt.expected, APIName(tr, tt.api))
		})
	}
}
