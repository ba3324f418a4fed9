// Package suites holds the built-in provider suites. Each suite implements
// the scrape.Suite capability contract for one video host; the core planner
// and iterators in internal/scrape drive them.
package suites

import "vidscrape/internal/scrape"

// RegisterAll registers every built-in suite, in the order lookups should
// try them.
func RegisterAll(r *scrape.Registry) {
	r.Register(NewYouTube())
	r.Register(NewVimeo())
}
