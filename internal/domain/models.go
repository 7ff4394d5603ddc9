package domain

// Domain contains core models shared across the import pipeline and the API.

import "time"

// ExtractedArticle is the import preview handed back to the back-office
// editor. Title and Content are never empty; the pipeline substitutes
// sentinel placeholders when extraction found nothing usable.
type ExtractedArticle struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Image         string `json:"image,omitempty"`
	SourceURL     string `json:"sourceUrl"`
	Author        string `json:"author"`
	PublishedDate string `json:"publishedDate"`
}

// PageSummary is one entry of the batch fetch endpoint response. Error is
// set when the URL could not be fetched or parsed; the other fields stay
// empty in that case.
type PageSummary struct {
	URL           string `json:"url"`
	Title         string `json:"title,omitempty"`
	Text          string `json:"text,omitempty"`
	Description   string `json:"description,omitempty"`
	Image         string `json:"image,omitempty"`
	Author        string `json:"author,omitempty"`
	PublishedTime string `json:"publishedTime,omitempty"`
	Error         string `json:"error,omitempty"`
}

// NewsDraft is a stored back-office draft created from an imported article.
type NewsDraft struct {
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Content       string    `json:"content"`
	FeaturedImage string    `json:"featured_image,omitempty"`
	Category      string    `json:"category"`
	Tags          []string  `json:"tags"`
	SourceURL     string    `json:"source_url,omitempty"`
	IsPublished   bool      `json:"is_published"`
	CreatedAt     time.Time `json:"created_at"`
}
