package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestRunReportsCompleteCatalogs(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-json"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	var rep report
	if err := json.Unmarshal(out.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.BaseLocale != "en-US" || len(rep.Locales) < 2 {
		t.Fatalf("report = %+v", rep)
	}
	for _, locale := range rep.Locales {
		if locale.Completion != 100 {
			t.Fatalf("%s completion = %v, missing %v", locale.Locale, locale.Completion, locale.MissingKeys)
		}
	}
}

func TestRunMarkdown(t *testing.T) {
	var out bytes.Buffer
	if err := run(nil, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "| `pt-BR` |") {
		t.Fatalf("markdown = %q", out.String())
	}
}

func TestDifference(t *testing.T) {
	got := difference([]string{"b", "a", "c"}, []string{"c"})
	if strings.Join(got, ",") != "a,b" {
		t.Fatalf("difference = %v", got)
	}
}

func TestNamespaces(t *testing.T) {
	got := namespaces([]string{"errors.a", "errors.b", "narration.x"}, []string{"errors.b"})
	if len(got) != 2 {
		t.Fatalf("namespaces = %+v", got)
	}
	if got[0].Namespace != "errors" || got[0].Translated != 1 || got[0].Completion != 50 {
		t.Fatalf("errors namespace = %+v", got[0])
	}
	if got[1].Namespace != "narration" || got[1].Completion != 100 {
		t.Fatalf("narration namespace = %+v", got[1])
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		num, den int
		want     float64
	}{
		{0, 0, 100},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{3, 3, 100},
	}
	for _, tc := range tests {
		if got := percent(tc.num, tc.den); got != tc.want {
			t.Fatalf("percent(%d,%d) = %v, want %v", tc.num, tc.den, got, tc.want)
		}
	}
}
