package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Vocabulary is an insertion-ordered set of entries keyed by term
type Vocabulary struct {
	entries []Entry
	index   map[string]int
}

// NewVocabulary creates an empty vocabulary
func NewVocabulary() *Vocabulary {
	return &Vocabulary{index: make(map[string]int)}
}

// Len returns the number of entries
func (v *Vocabulary) Len() int {
	return len(v.entries)
}

// Has reports whether term is present
func (v *Vocabulary) Has(term string) bool {
	_, ok := v.index[term]
	return ok
}

// Get returns the entry for term
func (v *Vocabulary) Get(term string) (Entry, bool) {
	i, ok := v.index[term]
	if !ok {
		return Entry{}, false
	}
	return v.entries[i], true
}

// Set inserts the entry or replaces an existing one in place
func (v *Vocabulary) Set(e Entry) {
	if i, ok := v.index[e.Term]; ok {
		v.entries[i] = e
		return
	}
	v.index[e.Term] = len(v.entries)
	v.entries = append(v.entries, e)
}

// Delete removes term, returning false if it was absent
func (v *Vocabulary) Delete(term string) bool {
	i, ok := v.index[term]
	if !ok {
		return false
	}
	v.entries = append(v.entries[:i], v.entries[i+1:]...)
	delete(v.index, term)
	for j := i; j < len(v.entries); j++ {
		v.index[v.entries[j].Term] = j
	}
	return true
}

// Entries returns a copy of all entries in insertion order
func (v *Vocabulary) Entries() []Entry {
	out := make([]Entry, len(v.entries))
	copy(out, v.entries)
	return out
}

// Terms returns all terms in insertion order
func (v *Vocabulary) Terms() []string {
	terms := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		terms = append(terms, e.Term)
	}
	return terms
}

// Due returns the entries eligible for review at now
func (v *Vocabulary) Due(now time.Time) []Entry {
	var due []Entry
	for _, e := range v.entries {
		if e.IsDue(now) {
			due = append(due, e)
		}
	}
	return due
}

// storedEntry is the persisted shape of an entry value
type storedEntry struct {
	Dict  []string  `json:"dict"`
	Time  time.Time `json:"time"`
	Times int       `json:"times"`
}

// MarshalJSON encodes the vocabulary as an array of [term, value] pairs
func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	pairs := make([][2]any, 0, len(v.entries))
	for _, e := range v.entries {
		dict := e.Translations
		if dict == nil {
			dict = []string{}
		}
		pairs = append(pairs, [2]any{e.Term, storedEntry{Dict: dict, Time: e.AddedAt, Times: e.SuccessCount}})
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON decodes an array of [term, value] pairs; later duplicates win
func (v *Vocabulary) UnmarshalJSON(data []byte) error {
	var pairs []json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("decode vocabulary: %w", err)
	}

	decoded := NewVocabulary()
	for i, raw := range pairs {
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil {
			return fmt.Errorf("decode vocabulary pair %d: %w", i, err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("decode vocabulary pair %d: expected 2 elements, got %d", i, len(pair))
		}

		var term string
		if err := json.Unmarshal(pair[0], &term); err != nil {
			return fmt.Errorf("decode vocabulary term %d: %w", i, err)
		}
		var value storedEntry
		if err := json.Unmarshal(pair[1], &value); err != nil {
			return fmt.Errorf("decode vocabulary entry %q: %w", term, err)
		}

		decoded.Set(Entry{
			Term:         term,
			Translations: value.Dict,
			AddedAt:      value.Time,
			SuccessCount: value.Times,
		})
	}

	*v = *decoded
	return nil
}

// ParseVocabulary decodes a stored value; an empty value is an empty vocabulary
func ParseVocabulary(stored string) (*Vocabulary, error) {
	v := NewVocabulary()
	data := bytes.TrimSpace([]byte(stored))
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return v, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Encode returns the stored representation of the vocabulary
func (v *Vocabulary) Encode() (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode vocabulary: %w", err)
	}
	return string(data), nil
}
