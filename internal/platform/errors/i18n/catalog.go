// Package i18n renders localized user-facing error messages.
package i18n

import (
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/appraisal/internal/platform/i18n/catalog"
)

// Code is an error code string; the errors package owns the typed values.
type Code = string

const namespace = "errors"

// Catalog holds the parsed error templates of one locale.
type Catalog struct {
	locale    string
	raw       map[Code]string
	templates map[Code]*template.Template
}

var (
	mu    sync.Mutex
	cache = map[string]*Catalog{}
)

// GetCatalog returns the catalog for locale, falling back to the base locale
// when the locale has no error messages.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}

	mu.Lock()
	defer mu.Unlock()
	if c, ok := cache[requested]; ok {
		return c
	}
	resolved, messages := i18ncatalog.Default().NamespaceWithFallback(requested, namespace)
	c, ok := cache[resolved]
	if !ok {
		c = NewCatalog(resolved, messages)
		cache[resolved] = c
	}
	cache[requested] = c
	return c
}

// NewCatalog parses messages for locale. Templates that fail to parse render
// their raw text.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	c := &Catalog{
		locale:    locale,
		raw:       make(map[Code]string, len(messages)),
		templates: make(map[Code]*template.Template, len(messages)),
	}
	for code, text := range messages {
		c.raw[code] = text
		if tmpl, err := template.New(code).Parse(text); err == nil {
			c.templates[code] = tmpl
		}
	}
	return c
}

// Locale returns the locale the catalog resolved to.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code with metadata. Unknown codes render as
// the code itself.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	text, ok := c.raw[code]
	if !ok {
		return code
	}
	tmpl, ok := c.templates[code]
	if !ok {
		return text
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, metadata); err != nil {
		return text
	}
	return b.String()
}
