package domain

// Query is a translation request
type Query struct {
	Text string `json:"text"`
	From string `json:"from"`
	To   string `json:"to"`
	API  string `json:"api"`
}

// Result is a normalized translation reply
type Result struct {
	Error    string   `json:"error,omitempty"`
	Phonetic string   `json:"phonetic,omitempty"`
	Dict     []string `json:"dict,omitempty"`
	Result   []string `json:"result,omitempty"`
	Link     string   `json:"link,omitempty"`
}

// Error codes reported by the translation backend
const (
	CodeNetworkError    = "NETWORK_ERROR"
	CodeAPIServerError  = "API_SERVER_ERROR"
	CodeUnsupportedLang = "UNSUPPORTED_LANG"
)
