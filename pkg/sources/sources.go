// Package sources holds the ordered list of pages a run visits.
package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adda-Baaj/thread-digest/internal/domain"
	"gopkg.in/yaml.v3"
)

var defaultSources = []domain.Source{
	{ID: "cscareerquestions", URL: "https://www.reddit.com/r/cscareerquestions"},
	{ID: "programming", URL: "https://www.reddit.com/r/programming"},
	{ID: "coding", URL: "https://www.reddit.com/r/coding"},
}

// Default returns a copy of the built-in source list in declared order.
func Default() []domain.Source {
	out := make([]domain.Source, len(defaultSources))
	copy(out, defaultSources)
	return out
}

// FromURLs builds sources from locators, deriving each ID from the trailing path segment.
func FromURLs(urls ...string) ([]domain.Source, error) {
	out := make([]domain.Source, 0, len(urls))
	for i, raw := range urls {
		src, err := sanitizeSource(domain.Source{URL: raw})
		if err != nil {
			return nil, fmt.Errorf("source[%d]: %w", i, err)
		}
		out = append(out, src)
	}
	return out, nil
}

// IDFromURL returns the last non-empty path segment of rawURL.
func IDFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" {
		return "", fmt.Errorf("url %q has no path segment to name the source", rawURL)
	}
	return last, nil
}

type fileFormat struct {
	Sources []domain.Source `json:"sources" yaml:"sources"`
}

// Load reads the source list from a YAML or JSON file. An empty path yields Default().
func Load(path string) ([]domain.Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	parsed, err := parseSources(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	seen := make(map[string]struct{}, len(parsed.Sources))
	out := make([]domain.Source, 0, len(parsed.Sources))
	for i, s := range parsed.Sources {
		src, err := sanitizeSource(s)
		if err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, dup := seen[src.ID]; dup {
			return nil, fmt.Errorf("duplicate source id %q", src.ID)
		}
		seen[src.ID] = struct{}{}
		out = append(out, src)
	}
	return out, nil
}

func parseSources(data []byte, ext string) (fileFormat, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var f fileFormat
		if err := d.fn(data, &f); err == nil {
			return f, nil
		}
	}

	return fileFormat{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

func sanitizeSource(s domain.Source) (domain.Source, error) {
	s.URL = strings.TrimSpace(s.URL)
	s.ID = strings.TrimSpace(s.ID)
	if s.URL == "" {
		return domain.Source{}, errors.New("url is required")
	}
	parsed, err := url.Parse(s.URL)
	if err != nil {
		return domain.Source{}, fmt.Errorf("parse url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return domain.Source{}, fmt.Errorf("url %q must be http or https", s.URL)
	}
	id, err := IDFromURL(s.URL)
	if err != nil {
		return domain.Source{}, err
	}
	// The id always names the url's trailing segment; an explicit one may only restate it.
	if s.ID != "" && s.ID != id {
		return domain.Source{}, fmt.Errorf("id %q does not match url segment %q", s.ID, id)
	}
	s.ID = id
	return s, nil
}
