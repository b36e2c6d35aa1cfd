package briefing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/amberorigin46/news-ai-auto/internal/ai"
	"github.com/amberorigin46/news-ai-auto/internal/cache"
	"github.com/amberorigin46/news-ai-auto/internal/retry"
)

// DefaultSourceTitle labels a citation the service returned without a title.
const DefaultSourceTitle = "관련 출처"

var tracer = otel.Tracer("github.com/amberorigin46/news-ai-auto/internal/briefing")

// Briefing is the result of one fetch cycle. Articles are whatever the
// service returned: possibly fewer than requested, unordered, or empty.
type Briefing struct {
	Articles []cache.Article
	Sources  []cache.GroundingSource

	FromCache bool
	FetchedAt time.Time
}

// FetcherOpts holds the collaborators of a Fetcher. Generator and Store are
// required; the rest default.
type FetcherOpts struct {
	Generator ai.Generator
	Store     cache.Store
	Language  string
	Retry     retry.Config
	Sleeper   retry.Sleeper
	Now       func() time.Time
	NewID     func() string
	Logger    *zerolog.Logger
}

type Fetcher struct {
	gen      ai.Generator
	store    cache.Store
	retrier  *retry.Retrier
	language string
	now      func() time.Time
	newID    func() string
	log      zerolog.Logger
}

func NewFetcher(opts FetcherOpts) *Fetcher {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "briefing").Logger()
	}
	if opts.Retry == (retry.Config{}) {
		opts.Retry = retry.DefaultConfig
	}
	if opts.Language == "" {
		opts.Language = "한국어"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return "article-" + uuid.NewString() }
	}

	return &Fetcher{
		gen:      opts.Generator,
		store:    opts.Store,
		retrier:  retry.NewRetrier(opts.Retry, ai.IsQuotaError, opts.Sleeper, log),
		language: opts.Language,
		now:      opts.Now,
		newID:    opts.NewID,
		log:      log,
	}
}

// FetchBriefing returns the cached briefing while it is fresh, otherwise asks
// the service for one article per category. A forced refresh skips the cache
// read but still overwrites the slot on success.
func (f *Fetcher) FetchBriefing(ctx context.Context, categories []string, forceRefresh bool) (*Briefing, error) {
	ctx, span := tracer.Start(ctx, "briefing.Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.Int("briefing.categories", len(categories)),
		attribute.Bool("briefing.force_refresh", forceRefresh),
	)

	if !forceRefresh {
		if snap, ok := f.store.Read(ctx); ok && f.store.IsFresh(*snap) {
			f.log.Debug().Time("captured", snap.Time()).Msg("using cached briefing")
			span.SetAttributes(attribute.Bool("briefing.cache_hit", true))
			return &Briefing{
				Articles:  snap.Articles,
				Sources:   snap.Sources,
				FromCache: true,
				FetchedAt: snap.Time(),
			}, nil
		}
	}
	span.SetAttributes(attribute.Bool("briefing.cache_hit", false))

	req := ai.Request{
		Prompt:   buildPrompt(categories, f.language),
		Schema:   articleSchema,
		Grounded: true,
	}

	var resp *ai.Response
	err := f.retrier.Do(ctx, func(ctx context.Context) error {
		r, err := f.gen.Generate(ctx, req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fetching briefing: %w", err)
	}

	now := f.now()
	articles := f.toArticles(resp.Text, now)
	sources := toSources(resp.Citations)

	f.store.Write(ctx, cache.Snapshot{
		Articles:  articles,
		Sources:   sources,
		Timestamp: now.UnixMilli(),
	})

	span.SetAttributes(attribute.Int("briefing.articles", len(articles)))
	return &Briefing{Articles: articles, Sources: sources, FetchedAt: now}, nil
}

type rawArticle struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Summary  []string `json:"summary"`
	Source   string   `json:"source"`
	URL      string   `json:"url"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

// parseArticles decodes the response text. Empty text is an empty list.
func parseArticles(text string) ([]rawArticle, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	var items []rawArticle
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (f *Fetcher) toArticles(text string, now time.Time) []cache.Article {
	items, err := parseArticles(text)
	if err != nil {
		f.log.Warn().Err(err).Int("bytes", len(text)).Msg("briefing response is not the declared JSON shape, using empty list")
		return []cache.Article{}
	}

	stamp := CaptureTime(now)
	articles := make([]cache.Article, 0, len(items))
	for _, it := range items {
		articles = append(articles, cache.Article{
			ID:        f.newID(),
			Category:  it.Category,
			Title:     it.Title,
			Summary:   it.Summary,
			Source:    it.Source,
			URL:       it.URL,
			ImageURL:  it.ImageURL,
			Timestamp: stamp,
		})
	}
	return articles
}

func toSources(citations []ai.Citation) []cache.GroundingSource {
	sources := make([]cache.GroundingSource, 0, len(citations))
	for _, c := range citations {
		title := c.Title
		if title == "" {
			title = DefaultSourceTitle
		}
		sources = append(sources, cache.GroundingSource{Title: title, URI: c.URI})
	}
	return sources
}

// CaptureTime formats t the way a Korean locale prints a wall-clock time,
// e.g. "오후 3:04:05".
func CaptureTime(t time.Time) string {
	period := "오전"
	if t.Hour() >= 12 {
		period = "오후"
	}
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%s %d:%02d:%02d", period, h, t.Minute(), t.Second())
}
