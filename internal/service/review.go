package service

import (
	"math/rand/v2"
	"sync"
	"time"

	"recite/internal/domain"
)

// ReviewSelector picks the next word to review
type ReviewSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewReviewSelector creates a selector; a nil source is seeded randomly
func NewReviewSelector(src rand.Source) *ReviewSelector {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &ReviewSelector{rng: rand.New(src)}
}

// Select returns a uniformly random entry that is due at now, or nil
func (r *ReviewSelector) Select(v *domain.Vocabulary, now time.Time) *domain.ReviewCandidate {
	due := v.Due(now)
	if len(due) == 0 {
		return nil
	}

	r.mu.Lock()
	i := r.rng.IntN(len(due))
	r.mu.Unlock()

	picked := due[i]
	return &domain.ReviewCandidate{
		Term:         picked.Term,
		Translations: append([]string(nil), picked.Translations...),
	}
}
