package cache

import "time"

// Article is one briefing item. ImageURL was added after the first cache
// schema generation; bump DefaultKey whenever this shape changes.
type Article struct {
	ID        string   `json:"id"`
	Category  string   `json:"category"`
	Title     string   `json:"title"`
	Summary   []string `json:"summary"`
	Source    string   `json:"source"`
	URL       string   `json:"url"`
	ImageURL  string   `json:"imageUrl,omitempty"`
	Timestamp string   `json:"timestamp"`

	// Error marks a placeholder synthesized by the caller for a category the
	// service did not cover.
	Error bool `json:"error,omitempty"`
}

// GroundingSource is a citation the service attributes its answer to.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Snapshot is the single cached result of the last successful fetch.
type Snapshot struct {
	Articles  []Article         `json:"articles"`
	Sources   []GroundingSource `json:"sources"`
	Timestamp int64             `json:"timestamp"` // epoch milliseconds
}

// Time returns the capture instant.
func (s Snapshot) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Stats describes the stored slot for the `cache stats` command.
type Stats struct {
	Key      string
	Present  bool
	Captured time.Time
	Articles int
	Sources  int
	Size     int64
}
