package domain

import "time"

const (
	// StorageKey is the storage key holding the whole vocabulary
	StorageKey = "dictionaries"

	// MaxSuccessCount is the number of successful reviews after which a word is learned
	MaxSuccessCount = 5

	// ReviewInterval is how long a word rests before it becomes reviewable again
	ReviewInterval = 24 * time.Hour
)

// Entry represents a word under review
type Entry struct {
	Term         string
	Translations []string
	AddedAt      time.Time // last add or "forgot" action
	SuccessCount int
}

// DueAt returns the moment after which the entry is eligible for review
func (e Entry) DueAt() time.Time {
	return e.AddedAt.Add(ReviewInterval)
}

// IsDue reports whether the entry is eligible for review at now
func (e Entry) IsDue(now time.Time) bool {
	return now.Sub(e.AddedAt) > ReviewInterval
}

// ReviewCandidate is the word currently offered for review
type ReviewCandidate struct {
	Term         string
	Translations []string
}

// Summary holds review statistics of a vocabulary
type Summary struct {
	Total      int
	Due        int
	ByProgress [MaxSuccessCount]int
}
