package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amberorigin46/news-ai-auto/internal/briefing"
	"github.com/amberorigin46/news-ai-auto/internal/cache"
	"github.com/amberorigin46/news-ai-auto/internal/config"
)

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{3 * time.Hour, "3h"},
		{50 * time.Hour, "2d"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		b    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.b); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.b, got, tt.want)
		}
	}
}

func TestResolveCategories(t *testing.T) {
	cfg := &config.Config{Categories: []string{"경제", "테크"}}

	got, err := resolveCategories("", cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"경제", "테크"}, got)

	got, err = resolveCategories(" 정치 , 사회", cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"정치", "사회"}, got)

	_, err = resolveCategories("정치,정치", cfg)
	assert.Error(t, err)
	_, err = resolveCategories(" , ", cfg)
	assert.Error(t, err)
}

var sampleBriefing = &briefing.Briefing{
	Articles: []cache.Article{
		{ID: "1", Category: "경제", Title: "금리 동결", Summary: []string{"a", "b"}, Source: "연합뉴스", URL: "https://e.example/1"},
	},
	Sources:   []cache.GroundingSource{{Title: "BBC", URI: "https://bbc.example"}},
	FromCache: true,
	FetchedAt: time.Date(2026, 3, 1, 15, 4, 5, 0, time.Local),
}

func TestWriteBriefingText(t *testing.T) {
	var buf bytes.Buffer
	writeBriefingText(&buf, []string{"경제", "테크"}, sampleBriefing)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "PULSE 브리핑 · cached · 오후 3:04:05\n"))
	assert.Contains(t, out, "[경제] 금리 동결\n  연합뉴스 · https://e.example/1\n  • a\n  • b\n")
	assert.Contains(t, out, "[테크] "+briefing.MissingTitle+"\n")
	assert.Contains(t, out, "출처 (1)\n  - BBC  https://bbc.example\n")
}

func TestWriteBriefingJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBriefingJSON(&buf, []string{"경제", "테크"}, sampleBriefing))

	var got struct {
		FromCache bool            `json:"fromCache"`
		Articles  []cache.Article `json:"articles"`
		Sources   []cache.GroundingSource
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.True(t, got.FromCache)
	require.Len(t, got.Articles, 2)
	assert.Equal(t, "1", got.Articles[0].ID)
	assert.True(t, got.Articles[1].Error)
	assert.Equal(t, sampleBriefing.Sources, got.Sources)
}

func TestWriteStats(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	writeStats(&buf, "/tmp/pulse.db", cache.Stats{Key: cache.DefaultKey, Size: 4096}, false, now)
	assert.Contains(t, buf.String(), "Key: pulse_news_cache_v2\n")
	assert.Contains(t, buf.String(), "Size: 4.0 KB\n")
	assert.Contains(t, buf.String(), "Briefing: none\n")

	buf.Reset()
	writeStats(&buf, "/tmp/pulse.db", cache.Stats{
		Key:      cache.DefaultKey,
		Present:  true,
		Captured: now.Add(-3 * time.Minute),
		Articles: 6,
		Sources:  9,
	}, true, now)
	assert.Contains(t, buf.String(), "Briefing: 6 article(s), 9 source(s)\n")
	assert.Contains(t, buf.String(), "Captured: 3m ago (fresh)\n")
}
