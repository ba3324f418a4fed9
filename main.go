// vidscrape — video metadata aggregation CLI.
//
// Hydrates a single video, walks a provider feed, or runs a provider
// search, printing one JSON object per video on stdout.
//
//	vidscrape [flags] video <url>
//	vidscrape [flags] feed <url>
//	vidscrape [flags] search <suite> <query>
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"vidscrape/internal/scrape"
	"vidscrape/internal/scrape/suites"
)

var (
	flagFields  = flag.String("fields", "", "comma-separated fields to fetch (default: all)")
	flagMax     = flag.Int("max", 0, "maximum videos to emit from a feed or search (0 = no cap)")
	flagCrawl   = flag.Bool("crawl", false, "continue onto subsequent feed/search pages")
	flagOrder   = flag.String("order", "", "search ordering: relevant, latest, popular")
	flagTimeout = flag.Duration("timeout", 10*time.Second, "per-fetch timeout")
	flagRPS     = flag.Float64("rps", 2, "outgoing requests per second (0 = unthrottled)")
	flagVerbose = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *flagVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(flag.Args()); err != nil {
		slog.Error("vidscrape failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: vidscrape [flags] video <url> | feed <url> | search <suite> <query>")
	}

	client := scrape.NewClient(scrape.Config{
		FetchTimeout:      *flagTimeout,
		RequestsPerSecond: *flagRPS,
	})
	registry := scrape.NewRegistry()
	suites.RegisterAll(registry)

	apiKeys := map[string]string{}
	if key := os.Getenv("YOUTUBE_API_KEY"); key != "" {
		apiKeys["youtube"] = key
	}

	ctx := context.Background()

	switch args[0] {
	case "video":
		return runVideo(ctx, client, registry, args[1], apiKeys)
	case "feed":
		return runFeed(ctx, registry, client, args[1], apiKeys)
	case "search":
		if len(args) < 3 {
			return fmt.Errorf("usage: vidscrape search <suite> <query>")
		}
		return runSearch(ctx, registry, client, args[1], strings.Join(args[2:], " "), apiKeys)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runVideo(ctx context.Context, client *scrape.Client, registry *scrape.Registry, url string, apiKeys map[string]string) error {
	video, err := registry.Video(url, parseFields(), apiKeys)
	if err != nil {
		return err
	}
	if err := client.LoadVideo(ctx, video); err != nil {
		return err
	}
	return printVideo(video)
}

func runFeed(ctx context.Context, registry *scrape.Registry, client *scrape.Client, url string, apiKeys map[string]string) error {
	feed, err := registry.Feed(client, url, scrape.FeedOptions{
		Fields:     parseFields(),
		Crawl:      *flagCrawl,
		MaxResults: *flagMax,
		APIKeys:    apiKeys,
	})
	if err != nil {
		return err
	}
	if err := drain(ctx, feed.Next); err != nil {
		return err
	}
	slog.Info("feed done",
		slog.String("title", feed.Meta.Title),
		slog.Int("videos", feed.EmittedCount()),
	)
	return nil
}

func runSearch(ctx context.Context, registry *scrape.Registry, client *scrape.Client, suiteName, query string, apiKeys map[string]string) error {
	var suite scrape.Suite
	for _, s := range registry.Suites() {
		if s.Name() == suiteName {
			suite = s
			break
		}
	}
	if suite == nil {
		return fmt.Errorf("unknown suite %q", suiteName)
	}
	search, err := scrape.NewSearch(client, suite, query, scrape.SearchOptions{
		OrderBy:    *flagOrder,
		Fields:     parseFields(),
		Crawl:      *flagCrawl,
		MaxResults: *flagMax,
		APIKeys:    apiKeys,
	})
	if err != nil {
		return err
	}
	if err := drain(ctx, search.Next); err != nil {
		return err
	}
	slog.Info("search done",
		slog.Int("videos", search.EmittedCount()),
		slog.Int("total_results", search.Meta.TotalResults),
	)
	return nil
}

func drain(ctx context.Context, next func(context.Context) (*scrape.Video, error)) error {
	for {
		video, err := next(ctx)
		if errors.Is(err, scrape.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := printVideo(video); err != nil {
			return err
		}
	}
}

func parseFields() []scrape.Field {
	if *flagFields == "" {
		return nil
	}
	var fields []scrape.Field
	for _, name := range strings.Split(*flagFields, ",") {
		fields = append(fields, scrape.Field(strings.TrimSpace(name)))
	}
	return fields
}

// printVideo emits only the fields that were actually populated.
func printVideo(v *scrape.Video) error {
	out := map[string]any{"url": v.URL, "suite": v.Suite().Name()}
	for _, f := range v.Fields {
		if !v.IsSet(f) {
			continue
		}
		switch f {
		case scrape.FieldTitle:
			out[string(f)] = v.Title
		case scrape.FieldDescription:
			out[string(f)] = v.Description
		case scrape.FieldPublishDatetime:
			out[string(f)] = v.PublishDatetime
		case scrape.FieldFileURL:
			out[string(f)] = v.FileURL
		case scrape.FieldFileURLIsFlaky:
			out[string(f)] = v.FileURLIsFlaky
		case scrape.FieldFlashEnclosureURL:
			out[string(f)] = v.FlashEnclosureURL
		case scrape.FieldIsEmbeddable:
			out[string(f)] = v.IsEmbeddable
		case scrape.FieldEmbedCode:
			out[string(f)] = v.EmbedCode
		case scrape.FieldThumbnailURL:
			out[string(f)] = v.ThumbnailURL
		case scrape.FieldUser:
			out[string(f)] = v.User
		case scrape.FieldUserURL:
			out[string(f)] = v.UserURL
		case scrape.FieldTags:
			out[string(f)] = v.Tags
		case scrape.FieldLink:
			out[string(f)] = v.Link
		}
	}
	line, err := json.Marshal(out)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}
