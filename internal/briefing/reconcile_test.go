package briefing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amberorigin46/news-ai-auto/internal/cache"
)

func TestReconcileFillsMissingCategory(t *testing.T) {
	articles := []cache.Article{
		{ID: "1", Category: "경제", Title: "economy"},
		{ID: "2", Category: "정치", Title: "politics"},
	}

	got := Reconcile([]string{"경제", "테크", "정치"}, articles)
	require.Len(t, got, 3)

	assert.Equal(t, "1", got[0].ID)
	assert.False(t, got[0].Error)

	assert.Equal(t, "테크", got[1].Category)
	assert.True(t, got[1].Error)
	assert.Equal(t, "fail-테크", got[1].ID)
	assert.Equal(t, MissingTitle, got[1].Title)

	assert.Equal(t, "2", got[2].ID)
	assert.False(t, got[2].Error)
}

func TestReconcileKeepsRequestOrder(t *testing.T) {
	articles := []cache.Article{
		{ID: "p", Category: "정치"},
		{ID: "e", Category: "경제"},
	}
	got := Reconcile([]string{"경제", "정치"}, articles)
	assert.Equal(t, "e", got[0].ID)
	assert.Equal(t, "p", got[1].ID)
}

func TestReconcileSubstringMatch(t *testing.T) {
	articles := []cache.Article{{ID: "g", Category: "글로벌 이슈 (국제)"}}
	got := Reconcile([]string{"글로벌 이슈"}, articles)
	require.Len(t, got, 1)
	assert.Equal(t, "g", got[0].ID)
	assert.False(t, got[0].Error)
}

func TestReconcilePrefersExactMatch(t *testing.T) {
	articles := []cache.Article{
		{ID: "wide", Category: "글로벌 이슈"},
		{ID: "exact", Category: "이슈"},
	}
	got := Reconcile([]string{"이슈"}, articles)
	assert.Equal(t, "exact", got[0].ID)
}

func TestReconcileAmbiguousSubstring(t *testing.T) {
	// Without an exact "이슈" article, the broader label is borrowed.
	articles := []cache.Article{{ID: "wide", Category: "글로벌 이슈"}}
	got := Reconcile([]string{"이슈", "글로벌 이슈"}, articles)
	assert.Equal(t, "wide", got[0].ID)
	assert.Equal(t, "wide", got[1].ID)
}

func TestReconcileEmpty(t *testing.T) {
	got := Reconcile([]string{"경제", "테크"}, nil)
	require.Len(t, got, 2)
	for _, a := range got {
		assert.True(t, a.Error)
	}
	assert.Empty(t, Reconcile(nil, []cache.Article{{Category: "경제"}}))
}

func TestFailedAll(t *testing.T) {
	got := FailedAll([]string{"경제", "테크"})
	require.Len(t, got, 2)
	for i, cat := range []string{"경제", "테크"} {
		assert.Equal(t, cat, got[i].Category)
		assert.Equal(t, ConnectErrorTitle, got[i].Title)
		assert.True(t, got[i].Error)
	}
}
