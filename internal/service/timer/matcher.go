package timer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/timerkit/countdown-api/internal/model"
)

// Specificity tiers for targeting matches. A narrower match always
// beats a broader one, regardless of priority.
const (
	specificityProduct    = 3
	specificityCollection = 2
	specificityAll        = 1
)

// servingStatuses are the persisted statuses worth re-checking at read
// time. Draft and expired timers can never serve, so they are filtered
// server-side before any time window is recomputed.
var servingStatuses = []model.TimerStatus{
	model.TimerStatusActive,
	model.TimerStatusScheduled,
}

type match struct {
	timer       *model.Timer
	specificity int
}

// FindMatching selects at most one timer to serve for the given
// catalog context. Matches are ranked by specificity, then priority,
// then creation time, all descending; the stable sort makes selection
// deterministic even when all three keys tie. A nil timer with a nil
// error means no timer matched, which is a normal outcome.
func (s *Service) FindMatching(ctx context.Context, shop, productID, collectionID string) (*model.Timer, error) {
	if s.cache != nil {
		key := resolutionKey(shop, productID, collectionID)
		if cached, ok := s.cache.Get(key); ok {
			return cached.(*model.Timer), nil
		}
	}

	candidates, err := s.repo.FindByShopAndStatuses(ctx, shop, servingStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate timers: %w", err)
	}

	now := s.clock.Now()
	matches := make([]match, 0, len(candidates))
	for _, t := range candidates {
		if !IsActive(t, now) {
			continue
		}
		score := specificity(t, productID, collectionID)
		if score == 0 {
			continue
		}
		matches = append(matches, match{timer: t, specificity: score})
	}

	if len(matches) == 0 {
		return nil, nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.specificity != b.specificity {
			return a.specificity > b.specificity
		}
		if a.timer.Priority != b.timer.Priority {
			return a.timer.Priority > b.timer.Priority
		}
		return a.timer.CreatedAt.After(b.timer.CreatedAt)
	})

	winner := matches[0].timer
	if len(matches) > 1 {
		s.logDiscarded(shop, winner, matches[1:])
	}

	if s.cache != nil {
		s.cache.Set(resolutionKey(shop, productID, collectionID), winner, s.cacheTTL)
	}
	return winner, nil
}

// specificity scores how narrowly a timer's targeting covers the
// requested context, or 0 when it does not cover it at all.
func specificity(t *model.Timer, productID, collectionID string) int {
	switch {
	case t.TargetsProduct(productID):
		return specificityProduct
	case t.TargetsCollection(collectionID):
		return specificityCollection
	case t.TargetType == model.TargetTypeAll:
		return specificityAll
	}
	return 0
}

func (s *Service) logDiscarded(shop string, winner *model.Timer, losers []match) {
	names := make([]string, 0, len(losers))
	for _, m := range losers {
		names = append(names, m.timer.Name)
	}
	s.logger.Info("multiple timers matched, conflict resolved",
		"shop", shop,
		"selected", winner.Name,
		"selected_priority", winner.Priority,
		"discarded", strings.Join(names, ", "),
	)
}

func resolutionKey(shop, productID, collectionID string) string {
	return shop + "|" + productID + "|" + collectionID
}
