// Package catalog loads the embedded message catalogs of the appraisal
// commands and registers them with x/text/message.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every catalog key must exist in.
const BaseLocale = "en-US"

// file is one locales/<locale>/<namespace>.yaml document.
type file struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Bundle holds messages by locale, then namespace, then key. Keys are unique
// within a locale across namespaces.
type Bundle struct {
	messages map[string]map[string]map[string]string
	locales  []string
	matcher  language.Matcher
}

//go:embed locales/*/*.yaml
var embedded embed.FS

var defaultBundle = mustLoadDefault()

// Default returns the embedded bundle, already registered with x/text.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads the catalogs embedded in this package.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embedded)
}

// LoadFromFS loads every locales/*/*.yaml file of fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	slices.Sort(paths)

	b := &Bundle{messages: map[string]map[string]map[string]string{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.add(p, f); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}
	}
	if _, ok := b.messages[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}

	// The base locale leads so that unmatched tags resolve to it.
	b.locales = []string{BaseLocale}
	for _, locale := range slices.Sorted(maps.Keys(b.messages)) {
		if locale != BaseLocale {
			b.locales = append(b.locales, locale)
		}
	}
	tags := make([]language.Tag, len(b.locales))
	for i, locale := range b.locales {
		tags[i] = language.Make(locale)
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// add merges f, read from path p, into b. The locale and namespace declared
// in the document must match its path.
func (b *Bundle) add(p string, f file) error {
	locale := strings.TrimSpace(f.Locale)
	namespace := strings.TrimSpace(f.Namespace)
	switch {
	case locale == "" || namespace == "":
		return fmt.Errorf("locale and namespace are required")
	case locale != path.Base(path.Dir(p)):
		return fmt.Errorf("locale %q does not match its directory", locale)
	case namespace != strings.TrimSuffix(path.Base(p), path.Ext(p)):
		return fmt.Errorf("namespace %q does not match its filename", namespace)
	case len(f.Messages) == 0:
		return fmt.Errorf("messages are required")
	}

	namespaces, ok := b.messages[locale]
	if !ok {
		namespaces = map[string]map[string]string{}
		b.messages[locale] = namespaces
	}
	if _, ok := namespaces[namespace]; ok {
		return fmt.Errorf("namespace %q already defined for %s", namespace, locale)
	}

	msgs := make(map[string]string, len(f.Messages))
	for key, value := range f.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("message key cannot be blank")
		}
		for _, other := range namespaces {
			if _, dup := other[key]; dup {
				return fmt.Errorf("duplicate key %q in %s", key, locale)
			}
		}
		msgs[key] = value
	}
	namespaces[namespace] = msgs
	return nil
}

// Register installs every message with x/text/message under its locale tag
// and, for regional locales, under the bare language too.
func (b *Bundle) Register() error {
	for _, locale := range b.locales {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		tags := []language.Tag{tag}
		if base, conf := tag.Base(); conf != language.No {
			if bare := language.Make(base.String()); bare != tag {
				tags = append(tags, bare)
			}
		}
		for _, msgs := range b.messages[locale] {
			for key, value := range msgs {
				for _, t := range tags {
					if err := message.SetString(t, key, value); err != nil {
						return fmt.Errorf("register %s %q: %w", locale, key, err)
					}
				}
			}
		}
	}
	return nil
}

// Locales returns the loaded locales, base locale first.
func (b *Bundle) Locales() []string {
	return slices.Clone(b.locales)
}

// Match returns the loaded locale closest to tag, or BaseLocale when none is
// close.
func (b *Bundle) Match(tag language.Tag) string {
	_, index, confidence := b.matcher.Match(tag)
	if confidence == language.No {
		return BaseLocale
	}
	return b.locales[index]
}

// Namespace returns a copy of the namespace messages of locale, or nil.
func (b *Bundle) Namespace(locale, namespace string) map[string]string {
	return maps.Clone(b.messages[strings.TrimSpace(locale)][strings.TrimSpace(namespace)])
}

// NamespaceWithFallback resolves locale against the bundle and returns the
// namespace messages of the matched locale, falling back to BaseLocale.
func (b *Bundle) NamespaceWithFallback(locale, namespace string) (string, map[string]string) {
	resolved := BaseLocale
	if tag, err := language.Parse(strings.TrimSpace(locale)); err == nil {
		resolved = b.Match(tag)
	}
	if msgs := b.Namespace(resolved, namespace); len(msgs) > 0 {
		return resolved, msgs
	}
	return BaseLocale, b.Namespace(BaseLocale, namespace)
}

// Printer returns an x/text printer for locale, falling back to the base
// locale when the tag cannot be parsed.
func Printer(locale string) *message.Printer {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.MustParse(BaseLocale)
	}
	return message.NewPrinter(tag)
}

func mustLoadDefault() *Bundle {
	b, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := b.Register(); err != nil {
		panic(err)
	}
	return b
}
