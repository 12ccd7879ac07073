package dataforseo

import (
	"context"
	"hash/fnv"

	"seoflow/internal/textutil"
)

// Fake is an in-memory Service for dry-run mode and tests. Metrics are
// derived deterministically from the keyword text so reruns see identical
// data.
type Fake struct {
	// Metrics overrides the derived metrics when set.
	Metrics map[string]KeywordMetrics
	// Positions overrides derived rankings when set.
	Positions map[string]int
	Err       error
}

// NewFake constructs a fake with derived-only data.
func NewFake() *Fake {
	return &Fake{}
}

// SearchVolume implements Service.
func (f *Fake) SearchVolume(ctx context.Context, keywords []string) ([]KeywordMetrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	metrics := make([]KeywordMetrics, 0, len(keywords))
	for _, keyword := range keywords {
		if m, ok := f.Metrics[keyword]; ok {
			metrics = append(metrics, m)
			continue
		}
		seed := hashKeyword(keyword)
		metrics = append(metrics, KeywordMetrics{
			Keyword:      keyword,
			SearchVolume: 100 + int(seed%4900),
			Competition:  float64(seed%100) / 100,
			CPC:          float64(seed%500) / 100,
		})
	}
	return metrics, nil
}

// Rankings implements Service.
func (f *Fake) Rankings(ctx context.Context, domain string, keywords []string) ([]Ranking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	rankings := make([]Ranking, 0, len(keywords))
	for _, keyword := range keywords {
		position, ok := f.Positions[keyword]
		if !ok {
			position = 1 + int(hashKeyword(keyword)%50)
		}
		if position <= 0 {
			continue
		}
		rankings = append(rankings, Ranking{
			Keyword:  keyword,
			Position: position,
			URL:      "https://" + normalizeDomain(domain) + "/" + textutil.Slugify(keyword),
		})
	}
	return rankings, nil
}

func hashKeyword(keyword string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(keyword))
	return h.Sum32()
}
