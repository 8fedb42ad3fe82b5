package crawler

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Adda-Baaj/thread-digest/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

const (
	// NoTitle replaces a missing or empty <title>.
	NoTitle = "No title"

	DefaultDiscussionMarker = "/comments/"

	defaultMinTopicRunes    = 4
	defaultMinLinkTextRunes = 2
	defaultMaxTitleRunes    = 100
	defaultEllipsis         = "..."
)

// ExtractorOptions configures filtering. Zero values fall back to defaults,
// except Keywords: with no keywords no heading qualifies as a topic.
type ExtractorOptions struct {
	Keywords         []string
	DiscussionMarker string
	MinTopicRunes    int
	MinLinkTextRunes int
	MaxTitleRunes    int
	Ellipsis         string
}

// Extraction is the per-page output of the extractor.
type Extraction struct {
	Title       string
	Topics      []domain.Topic
	Discussions []domain.Discussion
}

// Extractor pulls the title, keyword-matching headings and discussion links out of HTML.
type Extractor struct {
	keywords []string
	opts     ExtractorOptions
}

// NewExtractor builds an Extractor; keywords are case-folded once here.
func NewExtractor(opts ExtractorOptions) *Extractor {
	if strings.TrimSpace(opts.DiscussionMarker) == "" {
		opts.DiscussionMarker = DefaultDiscussionMarker
	}
	if opts.MinTopicRunes <= 0 {
		opts.MinTopicRunes = defaultMinTopicRunes
	}
	if opts.MinLinkTextRunes <= 0 {
		opts.MinLinkTextRunes = defaultMinLinkTextRunes
	}
	if opts.MaxTitleRunes <= 0 {
		opts.MaxTitleRunes = defaultMaxTitleRunes
	}
	if opts.Ellipsis == "" {
		opts.Ellipsis = defaultEllipsis
	}

	keywords := make([]string, 0, len(opts.Keywords))
	for _, k := range opts.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	return &Extractor{keywords: keywords, opts: opts}
}

// Extract parses body and returns the page's extraction.
func (e *Extractor) Extract(body []byte) (Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Extraction{}, fmt.Errorf("parse html: %w", err)
	}

	return Extraction{
		Title:       pageTitle(doc),
		Topics:      e.topics(doc),
		Discussions: e.discussions(doc),
	}, nil
}

func pageTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return NoTitle
}

func (e *Extractor) topics(doc *goquery.Document) []domain.Topic {
	topics := []domain.Topic{}
	doc.Find("h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(text) < e.opts.MinTopicRunes {
			return
		}
		if !e.matchesKeyword(text) {
			return
		}
		topics = append(topics, domain.Topic{Title: text, Type: domain.TypeTopic})
	})
	return topics
}

// matchesKeyword is substring containment on case-folded text, so "AI" also
// matches inside "maintain".
func (e *Extractor) matchesKeyword(text string) bool {
	folded := strings.ToLower(text)
	for _, k := range e.keywords {
		if strings.Contains(folded, k) {
			return true
		}
	}
	return false
}

func (e *Extractor) discussions(doc *goquery.Document) []domain.Discussion {
	discussions := []domain.Discussion{}
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" || !strings.Contains(href, e.opts.DiscussionMarker) {
			return
		}
		text := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(text) < e.opts.MinLinkTextRunes {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		discussions = append(discussions, domain.Discussion{
			Title: truncateRunes(text, e.opts.MaxTitleRunes, e.opts.Ellipsis),
			URL:   href,
			Type:  domain.TypeDiscussion,
		})
	})
	return discussions
}

func truncateRunes(s string, limit int, ellipsis string) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + ellipsis
}
