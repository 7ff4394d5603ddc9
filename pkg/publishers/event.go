package publishers

import (
	"time"

	"github.com/costadelinmigrante/news-importer/internal/domain"
)

// Event is the payload published downstream when a news draft is created
// from an imported article.
type Event struct {
	Draft      domain.NewsDraft `json:"draft"`
	SourceURL  string           `json:"source_url,omitempty"`
	ImportedAt time.Time        `json:"imported_at"`
}

// NewEvent constructs an Event for the given draft.
func NewEvent(draft domain.NewsDraft) Event {
	return Event{
		Draft:      draft,
		SourceURL:  draft.SourceURL,
		ImportedAt: time.Now().UTC(),
	}
}
