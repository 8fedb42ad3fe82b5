package sinks

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/Adda-Baaj/thread-digest/internal/domain"
)

// CSVHeader is the fixed column layout of the tabular output.
var CSVHeader = []string{"Subreddit", "Type", "Title", "URL", "Scraped_at"}

// fileSink encodes the result set into memory, then overwrites path in one write.
type fileSink struct {
	id     string
	typ    string
	path   string
	encode func(io.Writer, domain.ResultSet) error
	log    Logger
}

func newJSONFileSink(_ context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.File == nil || cfg.File.Path == "" {
		return nil, fmt.Errorf("sink %q missing file configuration", cfg.ID)
	}
	escape := cfg.File.EscapeNonASCII == nil || *cfg.File.EscapeNonASCII
	return &fileSink{
		id:   cfg.ID,
		typ:  TypeJSON,
		path: cfg.File.Path,
		encode: func(w io.Writer, rs domain.ResultSet) error {
			return EncodeJSON(w, rs, escape)
		},
		log: ensureLogger(log),
	}, nil
}

func newCSVFileSink(_ context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.File == nil || cfg.File.Path == "" {
		return nil, fmt.Errorf("sink %q missing file configuration", cfg.ID)
	}
	crlf := cfg.File.CRLF == nil || *cfg.File.CRLF
	return &fileSink{
		id:   cfg.ID,
		typ:  TypeCSV,
		path: cfg.File.Path,
		encode: func(w io.Writer, rs domain.ResultSet) error {
			return EncodeCSV(w, rs, crlf)
		},
		log: ensureLogger(log),
	}, nil
}

func (f *fileSink) ID() string     { return f.id }
func (f *fileSink) Type() string   { return f.typ }
func (f *fileSink) Target() string { return f.path }

// Write overwrites the target file. Missing parent directories are created.
func (f *fileSink) Write(ctx context.Context, rs domain.ResultSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := f.encode(&buf, rs); err != nil {
		return fmt.Errorf("encode %s: %w", f.typ, err)
	}

	if dir := filepath.Dir(f.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(f.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}

	f.log.DebugObj("file sink written", "file_sink", map[string]any{
		"sink_id": f.id,
		"path":    f.path,
		"bytes":   buf.Len(),
	})
	return nil
}

// EncodeJSON writes rs as an indented JSON array. HTML characters are never
// escaped; with escapeNonASCII every rune above U+007F becomes a \uXXXX
// escape (surrogate pairs beyond the BMP), otherwise UTF-8 passes through.
func EncodeJSON(w io.Writer, rs domain.ResultSet, escapeNonASCII bool) error {
	if rs == nil {
		rs = domain.ResultSet{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rs); err != nil {
		return err
	}

	out := buf.Bytes()
	if escapeNonASCII {
		out = asciiEscape(out)
	}
	_, err := w.Write(out)
	return err
}

// asciiEscape rewrites non-ASCII runes in encoded JSON. Such runes only occur
// inside string literals, so escaping them keeps the document equivalent.
func asciiEscape(in []byte) []byte {
	out := make([]byte, 0, len(in))
	for len(in) > 0 {
		r, size := utf8.DecodeRune(in)
		in = in[size:]
		switch {
		case r < utf8.RuneSelf:
			out = append(out, byte(r))
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			out = fmt.Appendf(out, `\u%04x\u%04x`, hi, lo)
		default:
			out = fmt.Appendf(out, `\u%04x`, r)
		}
	}
	return out
}

// EncodeCSV flattens rs into rows: per record, topics (empty URL) then discussions.
func EncodeCSV(w io.Writer, rs domain.ResultSet, crlf bool) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = crlf

	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, row := range Rows(rs) {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Rows returns the data rows of the tabular output, without the header.
func Rows(rs domain.ResultSet) [][]string {
	var rows [][]string
	for _, rec := range rs {
		for _, t := range rec.Topics {
			rows = append(rows, []string{rec.SubredditName, t.Type, t.Title, "", rec.ScrapedAt})
		}
		for _, d := range rec.Discussions {
			rows = append(rows, []string{rec.SubredditName, d.Type, d.Title, d.URL, rec.ScrapedAt})
		}
	}
	return rows
}
