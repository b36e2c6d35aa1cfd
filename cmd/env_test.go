package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amberorigin46/news-ai-auto/internal/ai"
	"github.com/amberorigin46/news-ai-auto/internal/briefing"
	"github.com/amberorigin46/news-ai-auto/internal/cache"
	"github.com/amberorigin46/news-ai-auto/internal/config"
)

// scriptedGenerator answers each call with the next response text.
type scriptedGenerator struct {
	texts []string
	calls int
}

func (g *scriptedGenerator) Generate(_ context.Context, _ ai.Request) (*ai.Response, error) {
	text := g.texts[min(g.calls, len(g.texts)-1)]
	g.calls++
	return &ai.Response{Text: text}, nil
}

func newCheckedFetcher(gen ai.Generator) categoryCheckedFetcher {
	store := cache.NewMemory(cache.Options{TTL: 10 * time.Minute})
	return categoryCheckedFetcher{inner: briefing.NewFetcher(briefing.FetcherOpts{
		Generator: gen,
		Store:     store,
	})}
}

const (
	newsText = `[
	  {"title":"금리","category":"경제","summary":["x"],"source":"s","url":"https://e.example/1"},
	  {"title":"칩","category":"테크","summary":["x"],"source":"s","url":"https://e.example/2"}
	]`
	sportsText = `[
	  {"title":"결승","category":"스포츠","summary":["x"],"source":"s","url":"https://e.example/3"},
	  {"title":"탐사선","category":"과학","summary":["x"],"source":"s","url":"https://e.example/4"}
	]`
)

func TestCheckedFetcherRefetchesForOtherCategories(t *testing.T) {
	gen := &scriptedGenerator{texts: []string{newsText, sportsText}}
	f := newCheckedFetcher(gen)
	ctx := context.Background()

	_, err := f.FetchBriefing(ctx, []string{"경제", "테크"}, false)
	require.NoError(t, err)

	b, err := f.FetchBriefing(ctx, []string{"스포츠", "과학"}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
	assert.False(t, b.FromCache)
	for _, a := range briefing.Reconcile([]string{"스포츠", "과학"}, b.Articles) {
		assert.False(t, a.Error, a.Category)
	}
}

func TestCheckedFetcherKeepsMatchingCache(t *testing.T) {
	gen := &scriptedGenerator{texts: []string{newsText}}
	f := newCheckedFetcher(gen)
	ctx := context.Background()

	_, err := f.FetchBriefing(ctx, []string{"경제", "테크"}, false)
	require.NoError(t, err)

	// A partial match still counts as the same briefing.
	b, err := f.FetchBriefing(ctx, []string{"경제", "정치"}, false)
	require.NoError(t, err)
	assert.True(t, b.FromCache)
	assert.Equal(t, 1, gen.calls)
}

func TestOverridesConfig(t *testing.T) {
	cfg := &config.Config{Categories: []string{"경제", "테크"}}

	assert.False(t, overridesConfig([]string{"경제", "테크"}, cfg))
	assert.True(t, overridesConfig([]string{"스포츠"}, cfg))
	assert.False(t, overridesConfig([]string{"테크", "경제"}, cfg))
	assert.True(t, overridesConfig([]string{"경제"}, cfg))
}
