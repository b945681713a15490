// Package registry implements the Feed Registry (C1): a static,
// read-only-after-load mapping from source to feed URL, tagged by
// category, loaded once at process start from an embedded YAML asset.
package registry

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/glbaguni/newsdigest/internal/domain"
)

//go:embed feeds.yaml
var defaultFeeds embed.FS

// ConfigError is returned by Load when the registry fails an integrity
// check — currently, missing at least one feed for a supported category.
type ConfigError struct {
	Category domain.Category
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("registry: no feed configured for category %q", e.Category)
}

var supportedCategories = []domain.Category{
	domain.CategoryGeneral,
	domain.CategoryIT,
	domain.CategoryEconomy,
	domain.CategoryBroadcast,
	domain.CategoryPolitics,
	domain.CategorySociety,
	domain.CategoryCulture,
	domain.CategoryInternational,
	domain.CategoryEntertainment,
	domain.CategorySports,
	domain.CategoryGovernment,
}

type feedsFile struct {
	Sources []struct {
		Name     string                 `yaml:"name"`
		Category domain.Category    `yaml:"category"`
		RSSURL   string                 `yaml:"rss_url"`
	} `yaml:"sources"`
}

// Registry is the curated, read-only table of feed sources.
type Registry struct {
	byURL      map[string]domain.FeedSource
	byCategory map[domain.Category][]domain.FeedSource
}

// Load reads and validates the embedded default feed table.
func Load() (*Registry, error) {
	data, err := defaultFeeds.ReadFile("feeds.yaml")
	if err != nil {
		return nil, fmt.Errorf("registry: read embedded feeds: %w", err)
	}
	return LoadFS(data)
}

// LoadFS builds a Registry from raw YAML bytes, allowing callers to supply
// their own feed table (e.g. read from an operator-provided fs.FS) while
// reusing the same validation Load applies.
func LoadFS(data []byte) (*Registry, error) {
	var parsed feedsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("registry: parse feeds: %w", err)
	}

	r := &Registry{
		byURL:      make(map[string]domain.FeedSource),
		byCategory: make(map[domain.Category][]domain.FeedSource),
	}
	for _, s := range parsed.Sources {
		if s.RSSURL == "" {
			continue
		}
		// Duplicate rss_url entries collapse to the first seen.
		if _, exists := r.byURL[s.RSSURL]; exists {
			continue
		}
		fs := domain.FeedSource{Name: s.Name, Category: s.Category, RSSURL: s.RSSURL}
		r.byURL[s.RSSURL] = fs
		r.byCategory[s.Category] = append(r.byCategory[s.Category], fs)
	}

	for _, cat := range supportedCategories {
		if len(r.byCategory[cat]) == 0 {
			return nil, &ConfigError{Category: cat}
		}
	}

	return r, nil
}

// List returns every configured feed source, sorted by RSSURL for a
// deterministic iteration order.
func (r *Registry) List() []domain.FeedSource {
	out := make([]domain.FeedSource, 0, len(r.byURL))
	for _, fs := range r.byURL {
		out = append(out, fs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RSSURL < out[j].RSSURL })
	return out
}

// ByCategory returns the feed sources tagged with the given category.
func (r *Registry) ByCategory(category domain.Category) []domain.FeedSource {
	src := r.byCategory[category]
	out := make([]domain.FeedSource, len(src))
	copy(out, src)
	return out
}

// Categories returns the set of categories with at least one configured feed.
func (r *Registry) Categories() []domain.Category {
	out := make([]domain.Category, 0, len(r.byCategory))
	for cat := range r.byCategory {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
