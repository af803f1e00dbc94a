//go:build !integration

package i18n

import (
	"testing"
	"testing/fstest"
)

func TestTranslator(t *testing.T) {
	translator, err := newTranslatorFromBytes([]byte("greeting: bonjour\nhello_user: \"bonjour, %s\""))
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	t.Run("should translate a simple key", func(t *testing.T) {
		if got := translator.T("greeting"); got != "bonjour" {
			t.Errorf("wanted 'bonjour', got '%s'", got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		if got := translator.T("nonexistent_key"); got != "nonexistent_key" {
			t.Errorf("wanted 'nonexistent_key', got '%s'", got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		if got := translator.T("hello_user", "alice"); got != "bonjour, alice" {
			t.Errorf("wanted 'bonjour, alice', got '%s'", got)
		}
	})
}

func TestNewTranslator_FromFS(t *testing.T) {
	fsys := fstest.MapFS{"locales/fr.yaml": {Data: []byte("hello_world: bonjour, monde")}}
	tr, err := NewTranslator(fsys, "fr")
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}
	if tr.T("hello_world") != "bonjour, monde" || tr.Lang() != "fr" {
		t.Errorf("unexpected translator %+v", tr)
	}
	if _, err := NewTranslator(fsys, "de"); err == nil {
		t.Error("expected error for missing locale")
	}
}

func TestLoad_EmbeddedEnglish(t *testing.T) {
	tr, err := Load("xx")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for key, want := range map[string]string{
		"hello_world":         "hello, world",
		"err_username_taken":  "Username already exists",
		"err_bad_credentials": "Invalid username or password",
	} {
		if got := tr.T(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if got := tr.T("hello_user", "bob"); got != "hello, bob" {
		t.Errorf("hello_user = %q", got)
	}
}
