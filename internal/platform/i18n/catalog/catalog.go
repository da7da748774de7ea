// Package catalog loads the embedded translation files and registers them with
// golang.org/x/text/message.
//
// Files live under locales/<locale>/<namespace>.yaml and use a small quoted
// subset of YAML:
//
//	locale: "pt-BR"
//	namespace: "narration"
//	messages:
//	  "attack.hit": "%[1]s acerta %[2]s"
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseLocale is the canonical source locale.
const BaseLocale = "en-US"

//go:embed locales/*/*.yaml
var embedded embed.FS

// Bundle holds every message keyed by locale then key.
type Bundle struct {
	locales map[string]map[string]string
}

var defaultBundle = mustLoadAndRegister()

// Default returns the embedded bundle, already registered with x/text.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads the catalog files compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embedded)
}

// LoadFromFS loads every locales/*/*.yaml file in fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{locales: map[string]map[string]string{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		if err := b.add(p, data); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}
	}
	if !b.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return b, nil
}

func (b *Bundle) add(filePath string, data []byte) error {
	locale, namespace, messages, err := parse(data)
	if err != nil {
		return err
	}
	if want := path.Base(path.Dir(filePath)); locale != want {
		return fmt.Errorf("locale %q must match directory %q", locale, want)
	}
	if want := strings.TrimSuffix(path.Base(filePath), ".yaml"); namespace != want {
		return fmt.Errorf("namespace %q must match file name %q", namespace, want)
	}

	dst, ok := b.locales[locale]
	if !ok {
		dst = map[string]string{}
		b.locales[locale] = dst
	}
	for key, value := range messages {
		qualified := namespace + "." + key
		if _, dup := dst[qualified]; dup {
			return fmt.Errorf("duplicate key %q", qualified)
		}
		dst[qualified] = value
	}
	return nil
}

// Register installs every message with message.SetString under its locale
// tag and the locale's base language, so "pt" resolves to "pt-BR".
func (b *Bundle) Register() error {
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		tags := []language.Tag{tag}
		if base, conf := tag.Base(); conf != language.No {
			if baseTag, err := language.Parse(base.String()); err == nil && baseTag != tag {
				tags = append(tags, baseTag)
			}
		}
		for key, value := range b.locales[locale] {
			for _, t := range tags {
				if err := message.SetString(t, key, value); err != nil {
					return fmt.Errorf("register %s %q: %w", locale, key, err)
				}
			}
		}
	}
	return nil
}

// Match returns the supported locale closest to requested, falling back to
// BaseLocale for empty or unparseable input.
func (b *Bundle) Match(requested string) string {
	requested = strings.TrimSpace(requested)
	if b.HasLocale(requested) {
		return requested
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return BaseLocale
	}

	locales := []string{BaseLocale}
	for _, locale := range b.Locales() {
		if locale != BaseLocale {
			locales = append(locales, locale)
		}
	}
	supported := make([]language.Tag, 0, len(locales))
	for _, locale := range locales {
		supported = append(supported, language.MustParse(locale))
	}
	_, index, confidence := language.NewMatcher(supported).Match(tag)
	if confidence == language.No {
		return BaseLocale
	}
	return locales[index]
}

// HasLocale reports whether locale has any messages.
func (b *Bundle) HasLocale(locale string) bool {
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Locales returns the loaded locales, sorted.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Message returns the message stored under namespace-qualified key, falling
// back to BaseLocale.
func (b *Bundle) Message(locale, key string) (string, bool) {
	if value, ok := b.locales[strings.TrimSpace(locale)][key]; ok {
		return value, true
	}
	value, ok := b.locales[BaseLocale][key]
	return value, ok
}

// Keys returns the sorted keys of one locale.
func (b *Bundle) Keys(locale string) []string {
	messages := b.locales[strings.TrimSpace(locale)]
	out := make([]string, 0, len(messages))
	for key := range messages {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func mustLoadAndRegister() *Bundle {
	b, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := b.Register(); err != nil {
		panic(err)
	}
	return b
}

func parse(data []byte) (locale, namespace string, messages map[string]string, err error) {
	messages = map[string]string{}
	inMessages := false
	for n, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch {
		case !inMessages && strings.HasPrefix(line, "locale:"):
			locale, err = strconv.Unquote(strings.TrimSpace(strings.TrimPrefix(line, "locale:")))
		case !inMessages && strings.HasPrefix(line, "namespace:"):
			namespace, err = strconv.Unquote(strings.TrimSpace(strings.TrimPrefix(line, "namespace:")))
		case line == "messages:":
			inMessages = true
		case inMessages:
			var key, value string
			key, value, err = parseEntry(line)
			if err == nil {
				if strings.TrimSpace(key) == "" {
					err = fmt.Errorf("blank key")
				}
				messages[key] = value
			}
		default:
			err = fmt.Errorf("unexpected line")
		}
		if err != nil {
			return "", "", nil, fmt.Errorf("line %d: %w", n+1, err)
		}
	}
	switch {
	case locale == "":
		return "", "", nil, fmt.Errorf("missing locale")
	case namespace == "":
		return "", "", nil, fmt.Errorf("missing namespace")
	case len(messages) == 0:
		return "", "", nil, fmt.Errorf("missing messages")
	}
	return locale, namespace, messages, nil
}

func parseEntry(line string) (string, string, error) {
	keyToken, err := strconv.QuotedPrefix(line)
	if err != nil {
		return "", "", fmt.Errorf("quoted key: %w", err)
	}
	key, _ := strconv.Unquote(keyToken)
	rest, ok := strings.CutPrefix(strings.TrimSpace(line[len(keyToken):]), ":")
	if !ok {
		return "", "", fmt.Errorf("missing ':' separator")
	}
	value, err := strconv.Unquote(strings.TrimSpace(rest))
	if err != nil {
		return "", "", fmt.Errorf("quoted value: %w", err)
	}
	return key, value, nil
}
