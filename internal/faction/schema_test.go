package faction

import (
	"encoding/json"
	"strings"
	"testing"
)

func parse(t *testing.T, body string) any {
	t.Helper()
	var raw any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return raw
}

func TestLintCleanDocument(t *testing.T) {
	f, err := Normalize(map[string]any{
		"factionName": "Thornwall Compact",
		"hexes": []any{
			map[string]any{"id": "hex_1", "name": "Heartfield"},
		},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if msgs := Lint(parse(t, string(b))); len(msgs) != 0 {
		t.Fatalf("normalized document should lint clean, got %v", msgs)
	}
}

func TestLintFlagsDeviations(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string // Substring expected in at least one message.
	}{
		{
			"negative coffers",
			`{"coffers": {"food": -5}}`,
			"/coffers/food",
		},
		{
			"hex missing id",
			`{"hexes": [{"name": "No ID"}]}`,
			"/hexes/0",
		},
		{
			"bad outcome",
			`{"events": [{"id": "event_1", "offensiveAction": {"outcome": "maybe"}}]}`,
			"outcome",
		},
		{
			"bad season",
			`{"seasonGains": [{"id": "gain_1", "season": "Monsoon"}]}`,
			"season",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			msgs := Lint(parse(t, c.body))
			if len(msgs) == 0 {
				t.Fatal("expected deviations, got none")
			}
			for _, m := range msgs {
				if strings.Contains(m, c.want) {
					return
				}
			}
			t.Fatalf("no message mentions %q: %v", c.want, msgs)
		})
	}
}

func TestLintIsAdvisoryOnly(t *testing.T) {
	// Everything Lint flags below the root must still normalize.
	raw := parse(t, `{"coffers": {"food": -5}, "hexes": [{"name": "No ID"}]}`)
	if msgs := Lint(raw); len(msgs) == 0 {
		t.Fatal("expected deviations")
	}
	if _, err := Normalize(raw); err != nil {
		t.Fatalf("lint deviations must not block normalize: %v", err)
	}
}

func TestLintSummary(t *testing.T) {
	if got := LintSummary(nil); !strings.Contains(got, "matches") {
		t.Fatalf("clean summary = %q", got)
	}
	got := LintSummary([]string{"/a: bad", "/b: worse"})
	if !strings.Contains(got, "2 deviation(s)") || !strings.Contains(got, "/b: worse") {
		t.Fatalf("summary = %q", got)
	}
}
