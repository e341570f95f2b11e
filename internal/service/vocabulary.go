package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recite/internal/domain"
	"recite/internal/repository"

	"go.uber.org/zap"
)

// VocabularyService handles the words under review.
// Every mutation is a single atomic read-modify-write of the whole vocabulary.
type VocabularyService struct {
	store    repository.KeyValueStore
	selector *ReviewSelector
	logger   *zap.Logger
	key      string
	now      func() time.Time
}

// NewVocabularyService creates a new vocabulary service
func NewVocabularyService(store repository.KeyValueStore, selector *ReviewSelector, logger *zap.Logger) *VocabularyService {
	return &VocabularyService{
		store:    store,
		selector: selector,
		logger:   logger,
		key:      domain.StorageKey,
		now:      time.Now,
	}
}

// WithClock returns a copy of the service using now as its clock
func (s *VocabularyService) WithClock(now func() time.Time) *VocabularyService {
	c := *s
	c.now = now
	return &c
}

// ForOwner returns a copy of the service storing its vocabulary under owner's namespace
func (s *VocabularyService) ForOwner(owner string) *VocabularyService {
	c := *s
	c.key = owner + "/" + domain.StorageKey
	c.logger = s.logger.With(zap.String("owner", owner))
	return &c
}

// Key returns the storage key of the vocabulary
func (s *VocabularyService) Key() string {
	return s.key
}

// Now reports the service clock
func (s *VocabularyService) Now() time.Time {
	return s.now()
}

// AddWord adds term unless it is already under review
func (s *VocabularyService) AddWord(ctx context.Context, term string, translations []string) (domain.Outcome, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return domain.OutcomeFailed, domain.ErrEmptyTerm
	}

	err := s.mutate(ctx, func(v *domain.Vocabulary) error {
		if v.Has(term) {
			return domain.ErrAlreadyExists
		}
		v.Set(domain.Entry{
			Term:         term,
			Translations: append([]string{}, translations...),
			AddedAt:      s.now(),
		})
		return nil
	})

	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		s.logger.Info("Word already under review", zap.String("term", term))
		return domain.OutcomeAlreadyExists, err
	case err != nil:
		s.logger.Error("Failed to add word", zap.String("term", term), zap.Error(err))
		return domain.OutcomeFailed, err
	}

	s.logger.Info("Word added", zap.String("term", term), zap.Int("translations", len(translations)))
	return domain.OutcomeAdded, nil
}

// RemoveWord removes term; removing an absent term is not an error
func (s *VocabularyService) RemoveWord(ctx context.Context, term string) (domain.Outcome, error) {
	var removed bool
	err := s.mutate(ctx, func(v *domain.Vocabulary) error {
		removed = v.Delete(term)
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to remove word", zap.String("term", term), zap.Error(err))
		return domain.OutcomeFailed, err
	}

	s.logger.Info("Word removed", zap.String("term", term), zap.Bool("was_present", removed))
	return domain.OutcomeRemoved, nil
}

// MarkRemembered counts a successful review; the word is dropped once learned
func (s *VocabularyService) MarkRemembered(ctx context.Context, term string) (domain.Outcome, error) {
	outcome := domain.OutcomeRemembered
	err := s.mutate(ctx, func(v *domain.Vocabulary) error {
		e, ok := v.Get(term)
		if !ok {
			return domain.ErrNotFound
		}

		e.SuccessCount++
		if e.SuccessCount >= domain.MaxSuccessCount {
			v.Delete(term)
			outcome = domain.OutcomeLearned
			return nil
		}

		e.AddedAt = s.now()
		v.Set(e)
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to mark word remembered", zap.String("term", term), zap.Error(err))
		return domain.OutcomeFailed, err
	}

	s.logger.Info("Word remembered", zap.String("term", term), zap.Stringer("outcome", outcome))
	return outcome, nil
}

// MarkForgotten restarts the review interval of term without touching its count
func (s *VocabularyService) MarkForgotten(ctx context.Context, term string) (domain.Outcome, error) {
	err := s.mutate(ctx, func(v *domain.Vocabulary) error {
		e, ok := v.Get(term)
		if !ok {
			return domain.ErrNotFound
		}
		e.AddedAt = s.now()
		v.Set(e)
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to mark word forgotten", zap.String("term", term), zap.Error(err))
		return domain.OutcomeFailed, err
	}

	s.logger.Info("Word forgotten", zap.String("term", term))
	return domain.OutcomeForgotten, nil
}

// List returns a snapshot of the vocabulary
func (s *VocabularyService) List(ctx context.Context) (*domain.Vocabulary, error) {
	values, err := s.store.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	v, err := domain.ParseVocabulary(values[s.key])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return v, nil
}

// NextReview returns a random word due for review, or nil when none is due
func (s *VocabularyService) NextReview(ctx context.Context) (*domain.ReviewCandidate, error) {
	v, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.selector.Select(v, s.now()), nil
}

// mutate applies fn to the stored vocabulary in one atomic update.
// Domain errors from fn are returned as is; everything else is a storage failure.
func (s *VocabularyService) mutate(ctx context.Context, fn func(v *domain.Vocabulary) error) error {
	err := s.store.Update(ctx, s.key, func(current string, found bool) (string, error) {
		v, err := domain.ParseVocabulary(current)
		if err != nil {
			return "", err
		}
		if err := fn(v); err != nil {
			return "", err
		}
		return v.Encode()
	})
	if err == nil || errors.Is(err, domain.ErrAlreadyExists) || errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}
