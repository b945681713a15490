package recommend

import (
	"context"
	"time"

	"github.com/glbaguni/newsdigest/internal/domain"
	"github.com/glbaguni/newsdigest/internal/feedfetch"
)

// FeedSampler supplies candidate FeedEntries for recommendation
// scoring, decoupling the Recommender from the concrete Feed
// Registry/Fetcher wiring so it can be tested against a fake.
type FeedSampler interface {
	// Sample returns up to perSource entries from each configured
	// source, honoring deadline. Fetch failures on individual sources
	// are swallowed (the same non-fatal-outcome discipline as C2) —
	// Sample never fails outright just because some sources are down.
	Sample(ctx context.Context, deadline time.Duration, perSource int) ([]domain.FeedEntry, error)
}

// registrySampler adapts a Feed Registry + Feed Fetcher pair into a
// FeedSampler, mirroring the orchestrator's own C1→C2 fan-out but
// bounded per-source instead of exhaustive.
type registrySampler struct {
	registry Registry
	fetcher  Fetcher
}

// Registry is the subset of internal/registry.Registry the sampler needs.
type Registry interface {
	List() []domain.FeedSource
}

// Fetcher is the subset of internal/feedfetch.Fetcher the sampler needs.
type Fetcher interface {
	Fetch(ctx context.Context, source domain.FeedSource, deadline time.Duration) ([]domain.FeedEntry, feedfetch.Result)
}

// NewRegistrySampler builds a FeedSampler backed by a live registry and
// fetcher.
func NewRegistrySampler(registry Registry, fetcher Fetcher) FeedSampler {
	return &registrySampler{registry: registry, fetcher: fetcher}
}

func (s *registrySampler) Sample(ctx context.Context, deadline time.Duration, perSource int) ([]domain.FeedEntry, error) {
	var out []domain.FeedEntry
	for _, source := range s.registry.List() {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		entries, result := s.fetcher.Fetch(ctx, source, deadline)
		if result.Outcome != feedfetch.OutcomeOK {
			continue
		}
		if len(entries) > perSource {
			entries = entries[:perSource]
		}
		out = append(out, entries...)
	}
	return out, nil
}
