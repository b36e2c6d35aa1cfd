package tui

import "github.com/amberorigin46/news-ai-auto/internal/briefing"

type briefingLoadedMsg struct {
	briefing *briefing.Briefing
}

type briefingErrMsg struct {
	err error
}

type openErrMsg struct {
	err error
}
