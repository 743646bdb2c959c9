package sampler

import (
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/emrzvv/rcg/internal/model"
)

// RetryPolicy reruns a sample that hit the proposal ceiling with a ceiling
// Growth times larger, at most Retries times. Other errors are not retried.
type RetryPolicy struct {
	Retries int
	Growth  float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Retries: 0, Growth: 4}
}

// SampleWithRetry is Sample under a RetryPolicy. The stream keeps advancing
// across attempts, so a fixed seed still reproduces the final batch.
// Proposals in the returned batch include the failed attempts.
func (s *Sampler) SampleWithRetry(n int, src rand.Source, policy RetryPolicy, logger *slog.Logger) (Batch, error) {
	if policy.Retries <= 0 {
		return s.Sample(n, src)
	}
	growth := policy.Growth
	if growth <= 1 {
		growth = DefaultRetryPolicy().Growth
	}
	cur := s
	spent := 0
	attempt := func() (Batch, error) {
		b, err := cur.Sample(n, src)
		spent += b.Proposals
		if err == nil {
			b.Proposals = spent
			return b, nil
		}
		if !errors.Is(err, model.ErrSamplingExhausted) {
			return Batch{}, backoff.Permanent(err)
		}
		set := cur.settings
		next := math.Min(float64(set.MaxProposals)*growth, math.MaxInt32)
		set.MaxProposals = int(next)
		grown, werr := cur.WithSettings(set)
		if werr != nil {
			return Batch{}, backoff.Permanent(werr)
		}
		cur = grown
		return Batch{}, err
	}
	notify := func(err error, _ time.Duration) {
		if logger != nil {
			logger.Warn("sampling exhausted, retrying with a larger proposal ceiling",
				"max_proposals", cur.settings.MaxProposals, "err", err)
		}
	}
	b := backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(policy.Retries))
	return backoff.RetryNotifyWithData(attempt, b, notify)
}
