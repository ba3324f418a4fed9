package scrape

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the package.
var metrics struct {
	FetchRequests  atomic.Int64
	FetchErrors    atomic.Int64
	OEmbedRequests atomic.Int64
	APIRequests    atomic.Int64
	ScrapeRequests atomic.Int64
	FeedPages      atomic.Int64
	SearchPages    atomic.Int64
}

func incrFetch()      { metrics.FetchRequests.Add(1) }
func incrFetchError() { metrics.FetchErrors.Add(1) }

func incrStrategy(s Strategy) {
	switch s {
	case StrategyOEmbed:
		metrics.OEmbedRequests.Add(1)
	case StrategyAPI:
		metrics.APIRequests.Add(1)
	case StrategyScrape:
		metrics.ScrapeRequests.Add(1)
	}
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"fetch_requests":  metrics.FetchRequests.Load(),
		"fetch_errors":    metrics.FetchErrors.Load(),
		"oembed_requests": metrics.OEmbedRequests.Load(),
		"api_requests":    metrics.APIRequests.Load(),
		"scrape_requests": metrics.ScrapeRequests.Load(),
		"feed_pages":      metrics.FeedPages.Load(),
		"search_pages":    metrics.SearchPages.Load(),
	}
}

// FormatMetrics renders the counters as simple "name value" lines.
func FormatMetrics() string {
	snap := GetMetrics()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s %d\n", name, snap[name])
	}
	return b.String()
}
