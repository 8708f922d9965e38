package linkage

import (
	"log"

	"catlink/models"
)

// PatternStore persists the learned per-retailer linkage profiles.
// *repository.PatternRepository satisfies it; tests use an in-memory fake.
type PatternStore interface {
	GetPattern(retailer string) (*models.RetailerURLPattern, error)
	SavePattern(p *models.RetailerURLPattern) error
}

// Learner maintains per-retailer statistics on URL stability and on which
// linkage method has worked best, so the engine can skip exact-match tiers on
// retailers known to reissue URLs. Learning is telemetry: every failure here
// is logged and swallowed, and never affects the linkage result itself.
type Learner struct {
	store PatternStore
}

// NewLearner creates a learner over a pattern store
func NewLearner(store PatternStore) *Learner {
	return &Learner{store: store}
}

// RecordLinkingAttempt folds one linkage outcome into the retailer's profile.
// Counters accumulate monotonically; the stability score is recomputed fresh
// as 1 - changes/samples each time. Method adoption is greedy best-so-far: a
// successful attempt whose confidence beats the stored threshold replaces
// both the method and the threshold.
func (l *Learner) RecordLinkingAttempt(retailer, method string, success bool, confidence float64, urlChanged bool) {
	p, err := l.store.GetPattern(retailer)
	if err != nil {
		log.Printf("Failed to read pattern for %s: %v", retailer, err)
		return
	}

	if p == nil {
		p = &models.RetailerURLPattern{
			Retailer:                 retailer,
			DedupConfidenceThreshold: DefaultMinConfidence,
		}
	}

	p.SampleSize++
	if urlChanged {
		p.URLChangesDetected++
	}
	p.URLStabilityScore = 1.0 - float64(p.URLChangesDetected)/float64(p.SampleSize)

	if success && confidence > p.DedupConfidenceThreshold {
		p.BestDedupMethod = method
		p.DedupConfidenceThreshold = confidence
	} else if success && p.BestDedupMethod == "" {
		p.BestDedupMethod = method
	}

	if err := l.store.SavePattern(p); err != nil {
		log.Printf("Failed to save pattern for %s: %v", retailer, err)
	}
}

// BestDedupMethod returns the retailer's learned method, threshold, and URL
// stability. ok is false when the retailer has no profile yet or the store
// read failed.
func (l *Learner) BestDedupMethod(retailer string) (method string, threshold, stability float64, ok bool) {
	p, err := l.store.GetPattern(retailer)
	if err != nil {
		log.Printf("Failed to read pattern for %s: %v", retailer, err)
		return "", 0, 0, false
	}
	if p == nil || p.BestDedupMethod == "" {
		return "", 0, 0, false
	}
	return p.BestDedupMethod, p.DedupConfidenceThreshold, p.URLStabilityScore, true
}

// PrefersFuzzy reports whether the retailer's URLs are unstable enough that
// the engine should skip the URL-based tiers entirely
func (l *Learner) PrefersFuzzy(retailer string) bool {
	p, err := l.store.GetPattern(retailer)
	if err != nil {
		log.Printf("Failed to read pattern for %s: %v", retailer, err)
		return false
	}
	if p == nil || p.SampleSize == 0 {
		return false
	}
	return p.URLStabilityScore < LowStabilityCutoff || p.BestDedupMethod == MethodFuzzyTitlePrice
}
