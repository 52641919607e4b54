package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/language"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	if got := bundle.Locales(); len(got) != 2 || got[0] != BaseLocale || got[1] != "pt-BR" {
		t.Fatalf("locales = %v, want [en-US pt-BR]", got)
	}
	if got := len(bundle.Namespace("en-US", "report")); got == 0 {
		t.Fatalf("expected en-US report namespace messages")
	}
}

func TestLoadFromFSRejectsDuplicateKeysAcrossNamespaces(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/errors.yaml"), `locale: "en-US"
namespace: "errors"
messages:
  "a.key": "a"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/report.yaml"), `locale: "en-US"
namespace: "report"
messages:
  "a.key": "b"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestLoadFromFSRejectsMismatchedNamespace(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/errors.yaml"), `locale: "en-US"
namespace: "report"
messages:
  "a.key": "a"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected namespace mismatch error")
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/pt-BR/errors.yaml"), `locale: "pt-BR"
namespace: "errors"
messages:
  "a.key": "a"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected missing base locale error")
	}
}

func TestNamespaceWithFallback(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	tests := map[string]string{
		"fr-FR":     "en-US",
		"pt":        "pt-BR",
		"pt-BR":     "pt-BR",
		"not a tag": "en-US",
	}
	for locale, want := range tests {
		resolved, messages := bundle.NamespaceWithFallback(locale, "errors")
		if resolved != want {
			t.Fatalf("resolved %q = %q, want %q", locale, resolved, want)
		}
		if len(messages) == 0 {
			t.Fatalf("expected errors namespace messages for %q", locale)
		}
	}
}

func TestMatch(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	if got := bundle.Match(language.BrazilianPortuguese); got != "pt-BR" {
		t.Fatalf("match pt-BR = %q", got)
	}
	if got := bundle.Match(language.Japanese); got != BaseLocale {
		t.Fatalf("match ja = %q, want %s", got, BaseLocale)
	}
}

func TestPrinterFormatsRegisteredMessages(t *testing.T) {
	_ = Default()
	got := Printer("en-US").Sprintf("report.final_price", 1234.5)
	if got != "Final price: 1,234.50" {
		t.Fatalf("message = %q, want Final price: 1,234.50", got)
	}
	if got := Printer("not a locale").Sprintf("report.title"); got != "Property Valuation Report" {
		t.Fatalf("fallback message = %q", got)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
}
