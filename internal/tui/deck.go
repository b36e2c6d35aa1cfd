package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/amberorigin46/news-ai-auto/internal/cache"
)

var weekdays = [...]string{"일", "월", "화", "수", "목", "금", "토"}

func renderHeader(now time.Time, width int) string {
	title := headerStyle.Render("PULSE")
	date := headerDateStyle.Render(fmt.Sprintf("%d년 %d월 %d일 (%s)", now.Year(), int(now.Month()), now.Day(), weekdays[now.Weekday()]))

	gap := width - lipgloss.Width(title) - lipgloss.Width(date) - 1
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + date
}

// renderDeck draws one tab per card. Revealed cards are marked, failed ones
// use the error style.
func renderDeck(cards []cache.Article, flipped map[int]bool, cursor int, width int) string {
	if len(cards) == 0 {
		return "  " + cardMetaStyle.Render("요청한 카테고리가 없습니다")
	}

	tabs := make([]string, 0, len(cards))
	for i, c := range cards {
		label := fmt.Sprintf("%d %s", i+1, c.Category)
		if flipped[i] {
			label += " ✓"
		}
		switch {
		case i == cursor:
			tabs = append(tabs, tabActiveStyle.Render(label))
		case c.Error:
			tabs = append(tabs, tabErrorStyle.Render(label))
		default:
			tabs = append(tabs, tabInactiveStyle.Render(label))
		}
	}

	row := " " + strings.Join(tabs, " ")
	if lipgloss.Width(row) > width && width > 0 {
		// Too many tabs: show a window around the cursor.
		return " " + tabWindow(tabs, cursor, width-1)
	}
	return row
}

func tabWindow(tabs []string, cursor, width int) string {
	lo, hi := cursor, cursor+1
	used := lipgloss.Width(tabs[cursor])
	for {
		grew := false
		if hi < len(tabs) && used+1+lipgloss.Width(tabs[hi]) <= width {
			used += 1 + lipgloss.Width(tabs[hi])
			hi++
			grew = true
		}
		if lo > 0 && used+1+lipgloss.Width(tabs[lo-1]) <= width {
			lo--
			used += 1 + lipgloss.Width(tabs[lo])
			grew = true
		}
		if !grew {
			break
		}
	}
	return strings.Join(tabs[lo:hi], " ")
}

func cardWidth(width int) int {
	w := width - 6
	if w > 90 {
		w = 90
	}
	if w < 30 {
		w = 30
	}
	return w
}

// renderCard shows the covered side until the card is flipped.
func renderCard(c cache.Article, revealed bool, width int) string {
	w := cardWidth(width)

	var box string
	switch {
	case c.Error:
		body := []string{
			cardMetaStyle.Render(c.Category),
			errorTextStyle.Render(c.Title),
			"",
			cardMetaStyle.Render("r 키로 다시 시도하세요"),
		}
		box = cardErrorStyle.Width(w).Render(strings.Join(body, "\n"))
	case !revealed:
		body := []string{
			cardTitleStyle.Render(c.Category),
			"",
			cardMetaStyle.Render("enter 키로 카드를 뒤집으세요"),
		}
		box = cardBackStyle.Width(w).Render(strings.Join(body, "\n"))
	default:
		box = cardFrontStyle.Width(w).Render(cardFront(c, w-2))
	}

	lines := strings.Split(box, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

func cardFront(c cache.Article, inner int) string {
	var body []string

	meta := cardSourceStyle.Render(c.Source)
	if c.Timestamp != "" {
		meta += cardMetaStyle.Render(" · " + c.Timestamp)
	}
	body = append(body, cardMetaStyle.Render(c.Category)+cardMetaStyle.Render("  ·  ")+meta)
	body = append(body, cardTitleStyle.Render(wrapText(c.Title, inner)))
	body = append(body, "")

	for _, s := range c.Summary {
		wrapped := strings.Split(wrapText(s, inner-2), "\n")
		for i, l := range wrapped {
			prefix := "• "
			if i > 0 {
				prefix = "  "
			}
			body = append(body, cardBodyStyle.Render(prefix+l))
		}
	}

	if c.URL != "" {
		body = append(body, "")
		body = append(body, cardLinkStyle.Render(truncateStr(c.URL, inner)))
	}
	if c.ImageURL != "" {
		body = append(body, cardLinkStyle.Render(truncateStr("이미지: "+c.ImageURL, inner)))
	}
	return strings.Join(body, "\n")
}

// renderSources lists the search citations backing the whole briefing.
func renderSources(sources []cache.GroundingSource, width int) string {
	const shown = 5
	lines := []string{"  " + cardMetaStyle.Render(fmt.Sprintf("출처 %d", len(sources)))}
	for i, s := range sources {
		if i == shown {
			lines = append(lines, "  "+cardMetaStyle.Render(fmt.Sprintf("  외 %d개", len(sources)-shown)))
			break
		}
		line := truncateStr(s.Title+"  "+s.URI, width-6)
		lines = append(lines, "  "+cardLinkStyle.Render("  "+line))
	}
	return strings.Join(lines, "\n")
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// wrapText breaks on spaces using display width, so wide Hangul cells count
// twice.
func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if lipgloss.Width(line)+1+lipgloss.Width(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
