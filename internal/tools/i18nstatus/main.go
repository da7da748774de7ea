// Package main reports translation coverage of the embedded catalogs and
// fails when a locale is missing base keys.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/louisbranch/battlegrid/internal/platform/i18n/catalog"
)

type report struct {
	BaseLocale string         `json:"base_locale"`
	Locales    []localeStatus `json:"locales"`
}

type localeStatus struct {
	Locale      string            `json:"locale"`
	Translated  int               `json:"translated"`
	Completion  float64           `json:"completion"`
	Namespaces  []namespaceStatus `json:"namespaces"`
	MissingKeys []string          `json:"missing_keys"`
	ExtraKeys   []string          `json:"extra_keys"`
}

type namespaceStatus struct {
	Namespace  string  `json:"namespace"`
	BaseKeys   int     `json:"base_keys"`
	Translated int     `json:"translated"`
	Completion float64 `json:"completion"`
}

var errIncomplete = errors.New("catalogs are incomplete")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("i18nstatus", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print the report as JSON")
	strict := fs.Bool("strict", true, "fail when a locale misses base keys")
	if err := fs.Parse(args); err != nil {
		return err
	}

	bundle, err := catalog.LoadEmbedded()
	if err != nil {
		return fmt.Errorf("load catalogs: %w", err)
	}
	rep := buildReport(bundle)

	if *asJSON {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		if err != nil {
			return err
		}
	} else if _, err := io.WriteString(out, markdown(rep)); err != nil {
		return err
	}

	if *strict {
		for _, locale := range rep.Locales {
			if len(locale.MissingKeys) > 0 {
				return fmt.Errorf("%w: %s misses %d keys", errIncomplete, locale.Locale, len(locale.MissingKeys))
			}
		}
	}
	return nil
}

func buildReport(bundle *catalog.Bundle) report {
	baseKeys := bundle.Keys(catalog.BaseLocale)
	rep := report{BaseLocale: catalog.BaseLocale}
	for _, locale := range bundle.Locales() {
		keys := bundle.Keys(locale)
		missing := difference(baseKeys, keys)
		translated := len(baseKeys) - len(missing)
		rep.Locales = append(rep.Locales, localeStatus{
			Locale:      locale,
			Translated:  translated,
			Completion:  percent(translated, len(baseKeys)),
			Namespaces:  namespaces(baseKeys, missing),
			MissingKeys: missing,
			ExtraKeys:   difference(keys, baseKeys),
		})
	}
	return rep
}

// namespaces groups base keys by their first dotted segment.
func namespaces(baseKeys, missing []string) []namespaceStatus {
	absent := make(map[string]bool, len(missing))
	for _, key := range missing {
		absent[key] = true
	}
	byName := map[string]*namespaceStatus{}
	for _, key := range baseKeys {
		name, _, _ := strings.Cut(key, ".")
		ns, ok := byName[name]
		if !ok {
			ns = &namespaceStatus{Namespace: name}
			byName[name] = ns
		}
		ns.BaseKeys++
		if !absent[key] {
			ns.Translated++
		}
	}
	out := make([]namespaceStatus, 0, len(byName))
	for _, ns := range byName {
		ns.Completion = percent(ns.Translated, ns.BaseKeys)
		out = append(out, *ns)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Namespace < out[j].Namespace })
	return out
}

func markdown(rep report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Translation status\n\nBase locale: `%s`.\n\n", rep.BaseLocale)
	b.WriteString("| Locale | Translated | Missing | Extra | Completion |\n")
	b.WriteString("| --- | ---: | ---: | ---: | ---: |\n")
	for _, locale := range rep.Locales {
		fmt.Fprintf(&b, "| `%s` | %d | %d | %d | %.1f%% |\n",
			locale.Locale, locale.Translated, len(locale.MissingKeys), len(locale.ExtraKeys), locale.Completion)
	}
	for _, locale := range rep.Locales {
		if len(locale.MissingKeys) == 0 && len(locale.ExtraKeys) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## `%s`\n\n", locale.Locale)
		for _, key := range locale.MissingKeys {
			fmt.Fprintf(&b, "- missing `%s`\n", key)
		}
		for _, key := range locale.ExtraKeys {
			fmt.Fprintf(&b, "- extra `%s`\n", key)
		}
	}
	return b.String()
}

// difference returns the sorted keys of a that are not in b.
func difference(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, key := range b {
		seen[key] = struct{}{}
	}
	out := []string{}
	for _, key := range a {
		if _, ok := seen[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func percent(numerator, denominator int) float64 {
	if denominator <= 0 {
		return 100
	}
	return math.Round(float64(numerator)*1000/float64(denominator)) / 10
}
