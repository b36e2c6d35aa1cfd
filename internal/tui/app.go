package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amberorigin46/news-ai-auto/internal/briefing"
	"github.com/amberorigin46/news-ai-auto/internal/browser"
	"github.com/amberorigin46/news-ai-auto/internal/cache"
)

// state is the caller-visible fetch lifecycle.
type state int

const (
	stateIdle state = iota
	stateLoading
	stateSuccess
	stateError
)

func (s state) String() string {
	switch s {
	case stateLoading:
		return "loading"
	case stateSuccess:
		return "success"
	case stateError:
		return "error"
	default:
		return "idle"
	}
}

// BriefingFetcher is satisfied by *briefing.Fetcher.
type BriefingFetcher interface {
	FetchBriefing(ctx context.Context, categories []string, forceRefresh bool) (*briefing.Briefing, error)
}

type App struct {
	fetcher    BriefingFetcher
	categories []string
	open       func(string) error
	forceFirst bool

	state     state
	cards     []cache.Article
	sources   []cache.GroundingSource
	flipped   map[int]bool
	cursor    int
	fromCache bool
	fetchedAt time.Time
	err       error

	spinner spinner.Model
	width   int
	height  int
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Fetcher      BriefingFetcher
	Categories   []string
	ForceRefresh bool
}

func NewApp(opts RunOpts) *App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	return &App{
		fetcher:    opts.Fetcher,
		categories: opts.Categories,
		open:       browser.Open,
		forceFirst: opts.ForceRefresh,
		flipped:    map[int]bool{},
		spinner:    sp,
	}
}

func (a *App) Init() tea.Cmd {
	return a.startFetch(a.forceFirst)
}

// startFetch enters the loading state. Cache hits resolve on the first
// message, so the spinner only shows for real network calls.
func (a *App) startFetch(force bool) tea.Cmd {
	a.state = stateLoading
	a.err = nil

	f := a.fetcher
	categories := a.categories
	fetch := func() tea.Msg {
		b, err := f.FetchBriefing(context.Background(), categories, force)
		if err != nil {
			return briefingErrMsg{err: err}
		}
		return briefingLoadedMsg{briefing: b}
	}
	return tea.Batch(fetch, a.spinner.Tick)
}

func (a *App) openCmd(url string) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case briefingLoadedMsg:
		a.state = stateSuccess
		a.cards = briefing.Reconcile(a.categories, msg.briefing.Articles)
		a.sources = msg.briefing.Sources
		a.fromCache = msg.briefing.FromCache
		a.fetchedAt = msg.briefing.FetchedAt
		a.resetDeck()
		return a, nil

	case briefingErrMsg:
		a.state = stateError
		a.err = msg.err
		a.cards = briefing.FailedAll(a.categories)
		a.sources = nil
		a.resetDeck()
		return a, nil

	case openErrMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.state == stateLoading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) resetDeck() {
	a.flipped = map[int]bool{}
	if a.cursor >= len(a.cards) {
		a.cursor = 0
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return a, tea.Quit
	}

	if a.state == stateLoading {
		return a, nil
	}

	switch msg.String() {
	case "l", "right", "n":
		if a.cursor < len(a.cards)-1 {
			a.cursor++
		}
		return a, nil
	case "h", "left", "p":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "enter", " ":
		if a.cursor < len(a.cards) {
			a.flipped[a.cursor] = !a.flipped[a.cursor]
		}
		return a, nil
	case "a":
		for i := range a.cards {
			a.flipped[i] = true
		}
		return a, nil
	case "o":
		if a.cursor < len(a.cards) {
			c := a.cards[a.cursor]
			if !c.Error && c.URL != "" {
				return a, a.openCmd(c.URL)
			}
		}
		return a, nil
	case "r":
		return a, a.startFetch(true)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '1')
		if idx < len(a.cards) {
			a.cursor = idx
		}
		return a, nil
	}
	return a, nil
}

func (a *App) withBottomBar(content string, hints string) string {
	if a.height <= 0 {
		return content
	}
	bar := renderBottomBar(a.statusText(), hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) statusText() string {
	switch a.state {
	case stateSuccess:
		label := "live"
		if a.fromCache {
			label = "cached"
		}
		return label + " · " + briefing.CaptureTime(a.fetchedAt)
	case stateError:
		return "error"
	default:
		return a.state.String()
	}
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  pulse")
	}

	header := renderHeader(time.Now(), a.width)

	if a.state == stateLoading || a.state == stateIdle {
		body := "\n\n  " + a.spinner.View() + " " + cardBodyStyle.Render("브리핑을 불러오는 중...")
		return a.withBottomBar(header+body, "q quit")
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(renderDeck(a.cards, a.flipped, a.cursor, a.width))
	b.WriteString("\n\n")
	if a.cursor < len(a.cards) {
		b.WriteString(renderCard(a.cards[a.cursor], a.flipped[a.cursor], a.width))
	}
	if a.err != nil {
		b.WriteString("\n\n  " + errorTextStyle.Render(truncateStr(a.err.Error(), a.width-4)))
	}
	if len(a.sources) > 0 {
		b.WriteString("\n\n" + renderSources(a.sources, a.width))
	}

	return a.withBottomBar(b.String(), "←/→ move  enter flip  a all  o open  r refresh  q quit")
}

func Run(opts RunOpts) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
