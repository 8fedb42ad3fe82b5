// Package domain contains core models shared by the crawler and the sinks.
package domain

import "time"

const (
	TypeTopic      = "topic"
	TypeDiscussion = "discussion"

	// ScrapedAtLayout is the wall-clock layout stamped on every record.
	ScrapedAtLayout = "2006-01-02 15:04:05"
)

// Source is one community page to fetch.
type Source struct {
	ID  string `json:"id" yaml:"id"`
	URL string `json:"url" yaml:"url"`
}

// Topic is a heading judged relevant by keyword filtering.
type Topic struct {
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Discussion is a link pointing at a threaded conversation.
type Discussion struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// Record aggregates everything extracted from one source.
type Record struct {
	SubredditName string       `json:"subreddit_name"`
	URL           string       `json:"url"`
	Title         string       `json:"title"`
	ScrapedAt     string       `json:"scraped_at"`
	Topics        []Topic      `json:"topics"`
	Discussions   []Discussion `json:"discussions"`
}

// NewRecord assembles a record, stamping it with the given time.
func NewRecord(src Source, title string, topics []Topic, discussions []Discussion, at time.Time) Record {
	if topics == nil {
		topics = []Topic{}
	}
	if discussions == nil {
		discussions = []Discussion{}
	}
	return Record{
		SubredditName: src.ID,
		URL:           src.URL,
		Title:         title,
		ScrapedAt:     at.Format(ScrapedAtLayout),
		Topics:        topics,
		Discussions:   discussions,
	}
}

// ResultSet is the ordered collection of records produced by one run.
type ResultSet []Record

// Empty reports whether no source produced a record.
func (rs ResultSet) Empty() bool { return len(rs) == 0 }

// Totals sums topic and discussion counts across every record.
func (rs ResultSet) Totals() (topics, discussions int) {
	for _, r := range rs {
		topics += len(r.Topics)
		discussions += len(r.Discussions)
	}
	return topics, discussions
}
