package i18n

import (
	"embed"
	"fmt"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

// Message IDs
const (
	ErrorNetwork         = "ErrorNetwork"
	ErrorAPIServer       = "ErrorAPIServer"
	ErrorUnsupportedLang = "ErrorUnsupportedLang"
	ErrorDisconnected    = "ErrorDisconnected"

	LabelMemorize      = "LabelMemorize"
	LabelAdded         = "LabelAdded"
	LabelAlreadyExists = "LabelAlreadyExists"
	LabelFailed        = "LabelFailed"
	LabelCopied        = "LabelCopied"

	APIYouDao   = "APIYouDao"
	APIGoogle   = "APIGoogle"
	APIGoogleCN = "APIGoogleCN"
	APIBaiDu    = "APIBaiDu"

	MenuTitle        = "MenuTitle"
	MenuReview       = "MenuReview"
	MenuStats        = "MenuStats"
	ReviewNothing    = "ReviewNothing"
	ReviewPrompt     = "ReviewPrompt"
	ReviewRevealed   = "ReviewRevealed"
	ReviewShow       = "ReviewShow"
	ReviewRemembered = "ReviewRemembered"
	ReviewForgot     = "ReviewForgot"
	ReviewLearned    = "ReviewLearned"
	StatsSummary     = "StatsSummary"
	GenericError     = "GenericError"
)

// Languages lists the bundled message files
var Languages = []string{"en", "zh-CN"}

// Translator renders user-facing messages in one language
type Translator struct {
	localizer *goi18n.Localizer
	lang      string
}

// NewBundle loads every embedded message file
func NewBundle() (*goi18n.Bundle, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, lang := range Languages {
		path := fmt.Sprintf("locales/messages.%s.toml", lang)
		if _, err := bundle.LoadMessageFileFS(localeFS, path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return bundle, nil
}

// New creates a translator for lang, falling back to English
func New(lang string) (*Translator, error) {
	if _, err := language.Parse(lang); err != nil {
		return nil, fmt.Errorf("invalid language %q: %w", lang, err)
	}

	bundle, err := NewBundle()
	if err != nil {
		return nil, err
	}

	return &Translator{
		localizer: goi18n.NewLocalizer(bundle, lang),
		lang:      lang,
	}, nil
}

// Lang returns the configured language
func (t *Translator) Lang() string {
	return t.lang
}

// T renders messageID; unknown IDs render as themselves
func (t *Translator) T(messageID string) string {
	return t.TWith(messageID, nil)
}

// TWith renders messageID with template data
func (t *Translator) TWith(messageID string, data map[string]any) string {
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:      messageID,
		DefaultMessage: &goi18n.Message{ID: messageID, Other: messageID},
		TemplateData:   data,
	})
	if msg == "" && err != nil {
		return messageID
	}
	return msg
}
