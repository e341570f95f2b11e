package service

import (
	"context"

	"recite/internal/domain"

	"go.uber.org/zap"
)

// StatsService reports review progress
type StatsService struct {
	vocabulary *VocabularyService
	logger     *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(vocabulary *VocabularyService, logger *zap.Logger) *StatsService {
	return &StatsService{
		vocabulary: vocabulary,
		logger:     logger,
	}
}

// Summary counts all words, the ones due now, and words per success count
func (s *StatsService) Summary(ctx context.Context) (domain.Summary, error) {
	v, err := s.vocabulary.List(ctx)
	if err != nil {
		s.logger.Error("Failed to load vocabulary for stats", zap.Error(err))
		return domain.Summary{}, err
	}

	now := s.vocabulary.now()
	summary := domain.Summary{Total: v.Len()}
	for _, e := range v.Entries() {
		if e.IsDue(now) {
			summary.Due++
		}
		if e.SuccessCount >= 0 && e.SuccessCount < domain.MaxSuccessCount {
			summary.ByProgress[e.SuccessCount]++
		}
	}

	s.logger.Info("Vocabulary summary computed",
		zap.String("key", s.vocabulary.Key()),
		zap.Int("total", summary.Total),
		zap.Int("due", summary.Due),
	)
	return summary, nil
}
