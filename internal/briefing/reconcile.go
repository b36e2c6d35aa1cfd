package briefing

import (
	"strings"

	"github.com/amberorigin46/news-ai-auto/internal/cache"
)

const (
	MissingTitle      = "데이터를 가져올 수 없습니다"
	ConnectErrorTitle = "연결 오류 발생"
)

// Reconcile returns exactly one article per requested category, in request
// order. An exact category match wins; otherwise the first article whose
// category contains the requested label is used. Categories with no match get
// an Error placeholder.
//
// The substring fallback is ambiguous when one label contains another
// (e.g. "이슈" and "글로벌 이슈"); it is kept as-is.
func Reconcile(categories []string, articles []cache.Article) []cache.Article {
	out := make([]cache.Article, 0, len(categories))
	for _, cat := range categories {
		if a, ok := match(cat, articles); ok {
			out = append(out, a)
			continue
		}
		out = append(out, placeholder(cat, MissingTitle))
	}
	return out
}

// FailedAll is the view shown when the fetch itself failed.
func FailedAll(categories []string) []cache.Article {
	out := make([]cache.Article, 0, len(categories))
	for _, cat := range categories {
		out = append(out, placeholder(cat, ConnectErrorTitle))
	}
	return out
}

func match(category string, articles []cache.Article) (cache.Article, bool) {
	for _, a := range articles {
		if a.Category == category {
			return a, true
		}
	}
	for _, a := range articles {
		if strings.Contains(a.Category, category) {
			return a, true
		}
	}
	return cache.Article{}, false
}

func placeholder(category, title string) cache.Article {
	return cache.Article{
		ID:       "fail-" + category,
		Category: category,
		Title:    title,
		Error:    true,
	}
}
