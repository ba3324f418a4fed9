package scrape

import (
	"context"
	"fmt"
	"log/slog"
)

// strategyCombos enumerates every non-empty subset of the three strategies
// in priority order: fewer calls first, earlier strategies first within a
// tier. Selection tie-breaks depend on this exact ordering; keep the
// literal list.
var strategyCombos = [][]Strategy{
	{StrategyOEmbed},
	{StrategyAPI},
	{StrategyScrape},
	{StrategyOEmbed, StrategyAPI},
	{StrategyOEmbed, StrategyScrape},
	{StrategyAPI, StrategyScrape},
	{StrategyOEmbed, StrategyAPI, StrategyScrape},
}

// LoadVideo populates the video's missing fields with the smallest strategy
// combination its suite offers. Idempotent: a video that has already been
// loaded, or has no missing fields, triggers no network calls. On error the
// video keeps whatever was merged before the failing step and stays
// unloaded; callers retry the whole load, never resume.
func (c *Client) LoadVideo(ctx context.Context, v *Video) error {
	if v.loaded {
		return nil
	}
	if err := c.resolveMissingFields(ctx, v); err != nil {
		return err
	}
	v.loaded = true
	return nil
}

// ResolveMissingFields runs one resolution cycle without touching the
// loaded flag. Exposed for callers that want to top up a partially
// populated record (e.g. one materialized from a feed entry).
func (c *Client) ResolveMissingFields(ctx context.Context, v *Video) error {
	return c.resolveMissingFields(ctx, v)
}

func (c *Client) resolveMissingFields(ctx context.Context, v *Video) error {
	missing := v.missingFieldSet()
	if len(missing) == 0 {
		return nil
	}

	// Bucket each combination by how many fields would still be missing
	// after running it. An exact fit executes immediately: the combo order
	// guarantees it is the cheapest one with full coverage. Within a
	// bucket the first combination seen stays first.
	buckets := make(map[int][][]Strategy)
	for _, combo := range strategyCombos {
		covered := FieldSet{}
		for _, s := range combo {
			covered = covered.Union(coverage(v.suite, s))
		}
		remaining := 0
		for f := range missing {
			if !covered.Contains(f) {
				remaining++
			}
		}
		if remaining == 0 {
			return c.runStrategies(ctx, v, combo)
		}
		if remaining < len(missing) {
			buckets[remaining] = append(buckets[remaining], combo)
		}
	}

	// No combination supplies everything. Get as close as possible with as
	// few calls as possible: smallest remaining-count bucket, earliest
	// combination within it. If nothing improves on doing nothing, the
	// leftover fields are unfillable by this suite and stay unset.
	for remaining := 1; remaining < len(missing); remaining++ {
		if combos, ok := buckets[remaining]; ok {
			return c.runStrategies(ctx, v, combos[0])
		}
	}
	slog.Debug("no strategy improves on missing fields",
		slog.String("suite", v.suite.Name()),
		slog.Int("missing", len(missing)),
	)
	return nil
}

// runStrategies executes a combination in order: build the fetch url, fetch,
// parse, merge. Merging is first-writer-wins, so a strategy never clobbers
// fields set by an earlier strategy in the same combination. The first
// failure aborts the whole resolution; earlier merges stay in place.
func (c *Client) runStrategies(ctx context.Context, v *Video, combo []Strategy) error {
	for _, s := range combo {
		fetchURL, err := strategyURL(v.suite, s, v)
		if err != nil {
			return fmt.Errorf("%s: %s url: %w", v.suite.Name(), s, err)
		}
		slog.Debug("running strategy",
			slog.String("suite", v.suite.Name()),
			slog.String("strategy", string(s)),
			slog.String("url", fetchURL),
		)
		incrStrategy(s)
		body, err := c.Get(ctx, fetchURL, nil)
		if err != nil {
			return err
		}
		data, err := strategyParse(v.suite, s, body)
		if err != nil {
			return &ParseError{Suite: v.suite.Name(), What: string(s), Err: err}
		}
		if err := v.apply(data); err != nil {
			return &ParseError{Suite: v.suite.Name(), What: string(s), Err: err}
		}
	}
	return nil
}
