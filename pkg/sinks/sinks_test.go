package sinks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSinksFile(t *testing.T, name, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoadRegistryEnabledFilter(t *testing.T) {
	path := writeSinksFile(t, "sinks.yaml", `
sinks:
  - id: json
    type: json
    file:
      path: out/topics.json
  - id: hook
    type: http
    enabled: false
    http:
      url: https://example.com/hook
  - id: csv
    type: CSV
    enabled: true
    file:
      path: out/topics.csv
      crlf: false
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "json" || enabled[1].ID != "csv" {
		t.Fatalf("expected json and csv enabled in order, got %#v", enabled)
	}
	if enabled[1].Type != TypeCSV || enabled[1].File.CRLF == nil || *enabled[1].File.CRLF {
		t.Fatalf("csv entry not normalized: %#v", enabled[1].File)
	}
	if esc := enabled[0].File.EscapeNonASCII; esc == nil || !*esc {
		t.Fatalf("escape_non_ascii should default to true")
	}
	if crlf := enabled[0].File.CRLF; crlf == nil || !*crlf {
		t.Fatalf("crlf should default to true")
	}

	all := reg.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	hook := all[1]
	if hook.ID != "hook" || hook.EnabledValue() {
		t.Fatalf("expected disabled hook entry, got %#v", hook)
	}
	if hook.HTTP.Method != "POST" || hook.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("http defaults not applied: %#v", hook.HTTP)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeSinksFile(t, "sinks.json", `{"sinks":[{"id":"q","type":"sqs","sqs":{"uri":"https://sqs.example.com/q","region":"us-east-1"}}]}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	all := reg.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(all))
	}
	if cfg := all[0]; cfg.ID != "q" || cfg.SQS.QueueURL != "https://sqs.example.com/q" {
		t.Fatalf("unexpected sqs entry %#v", cfg)
	}
}

func TestLoadRegistryErrors(t *testing.T) {
	cases := map[string]string{
		"empty":     "sinks: []\n",
		"duplicate": "sinks:\n  - {id: a, type: json, file: {path: a.json}}\n  - {id: a, type: csv, file: {path: a.csv}}\n",
		"no path":   "sinks:\n  - {id: a, type: json}\n",
		"no region": "sinks:\n  - {id: a, type: sns, sns: {topic_arn: arn}}\n",
		"no topic":  "sinks:\n  - {id: a, type: pubsub, pubsub: {project_id: p}}\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadRegistry(writeSinksFile(t, "sinks.yaml", raw)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	if _, err := LoadRegistry(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidateSinkConfigRejectsMissingHTTP(t *testing.T) {
	err := validateSinkConfig(SinkConfig{ID: "h1", Type: TypeHTTP})
	if err == nil || !strings.Contains(err.Error(), "http config required") {
		t.Fatalf("expected validation error for missing http block, got %v", err)
	}
}

func TestDefaultConfigs(t *testing.T) {
	cfgs := DefaultConfigs("a.json", "a.csv", false, true)
	if len(cfgs) != 2 {
		t.Fatalf("expected 2 default sinks, got %d", len(cfgs))
	}
	if cfgs[0].Type != TypeJSON || cfgs[0].File.Path != "a.json" || *cfgs[0].File.EscapeNonASCII {
		t.Fatalf("unexpected json default %#v", cfgs[0].File)
	}
	if cfgs[1].Type != TypeCSV || cfgs[1].File.Path != "a.csv" || !*cfgs[1].File.CRLF {
		t.Fatalf("unexpected csv default %#v", cfgs[1].File)
	}
	for _, cfg := range cfgs {
		if err := validateSinkConfig(cfg); err != nil {
			t.Fatalf("default %q invalid: %v", cfg.ID, err)
		}
	}
}
