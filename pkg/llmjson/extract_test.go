package llmjson

import (
	"errors"
	"testing"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		reply string
		want  string
	}{
		{name: "plain", reply: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", reply: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "think", reply: "<think>{not json}</think>\n{\"a\":\"}\"}", want: `{"a":"}"}`},
		{name: "prose", reply: `Sure! Here it is: {"a":{"b":[1,2]}} hope that helps`, want: `{"a":{"b":[1,2]}}`},
		{name: "array", reply: `result: [1, 2]`, want: `[1, 2]`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Extract(tc.reply)
			if err != nil {
				t.Fatalf("Extract error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Extract = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := Extract("no braces at all"); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
	if _, err := Extract(`{"a": 1`); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON for truncated object, got %v", err)
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	type reply struct {
		Summary string `json:"summary"`
	}
	got, err := Decode[reply]("ok:\n{\"summary\":\"nice\"}")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got.Summary != "nice" {
		t.Fatalf("unexpected summary %q", got.Summary)
	}
}
