package publicid

import (
	"strings"
	"testing"
)

func TestNewSlugDerivesFromName(t *testing.T) {
	s, err := NewSlug("Chá de Casa Nova!")
	if err != nil {
		t.Fatalf("new slug: %v", err)
	}
	if !strings.HasPrefix(s, "cha-de-casa-nova-") {
		t.Fatalf("unexpected slug base: %q", s)
	}
	parts := strings.Split(s, "-")
	if suffix := parts[len(parts)-1]; len(suffix) != slugSuffixLen {
		t.Fatalf("expected %d-char suffix, got %q", slugSuffixLen, suffix)
	}
}

func TestNewSlugHandlesUnsluggableName(t *testing.T) {
	s, err := NewSlug("!!!")
	if err != nil {
		t.Fatalf("new slug: %v", err)
	}
	if !strings.HasPrefix(s, fallbackSlugTag+"-") {
		t.Fatalf("expected fallback slug base, got %q", s)
	}
}

func TestNewSlugIsUniquePerCall(t *testing.T) {
	a, err := NewSlug("Casamento")
	if err != nil {
		t.Fatalf("new slug: %v", err)
	}
	b, err := NewSlug("Casamento")
	if err != nil {
		t.Fatalf("new slug: %v", err)
	}
	if a == b {
		t.Fatalf("slugs for identical names should differ: %q", a)
	}
}

func TestNewListHashIsShortUppercase(t *testing.T) {
	h, err := NewListHash()
	if err != nil {
		t.Fatalf("new list hash: %v", err)
	}
	if len(h) != listHashLen {
		t.Fatalf("expected %d chars, got %q", listHashLen, h)
	}
	if h != strings.ToUpper(h) {
		t.Fatalf("expected uppercase hash, got %q", h)
	}
}

func TestNewGlobalHashLength(t *testing.T) {
	h, err := NewGlobalHash()
	if err != nil {
		t.Fatalf("new global hash: %v", err)
	}
	if len(h) != globalHashLen {
		t.Fatalf("expected %d chars, got %q", globalHashLen, h)
	}
}
