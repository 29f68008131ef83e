package core

import (
	"strings"
	"testing"
	"time"
)

func TestIDFromKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		wantSame bool
	}{
		{
			name:     "same key produces same ID",
			key:      "example.com/story",
			wantSame: true,
		},
		{
			name:     "empty string",
			key:      "",
			wantSame: true,
		},
		{
			name:     "long key",
			key:      "news.example.com/2026/08/23/a-very-long-article-slug-that-keeps-going",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromKey(tt.key)
			id2 := IDFromKey(tt.key)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromKey() produced different IDs for same key: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromKey_Different(t *testing.T) {
	id1 := IDFromKey("example.com/one")
	id2 := IDFromKey("example.com/two")

	if id1 == id2 {
		t.Errorf("IDFromKey() produced same ID for different keys")
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain https url",
			raw:  "https://Example.com/Story",
			want: "example.com/story",
		},
		{
			name: "trailing slash stripped",
			raw:  "https://example.com/story/",
			want: "example.com/story",
		},
		{
			name: "query dropped",
			raw:  "https://example.com/story?utm_source=feed&ref=x",
			want: "example.com/story",
		},
		{
			name: "fragment dropped",
			raw:  "https://example.com/story#section-2",
			want: "example.com/story",
		},
		{
			name: "scheme collapsed",
			raw:  "http://example.com/story",
			want: "example.com/story",
		},
		{
			name: "bare host",
			raw:  "https://example.com/",
			want: "example.com",
		},
		{
			name: "surrounding whitespace",
			raw:  "  https://example.com/story  ",
			want: "example.com/story",
		},
		{
			name: "not a url",
			raw:  "Not A URL",
			want: "not a url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeKey(tt.raw)
			if err != nil {
				t.Fatalf("NormalizeKey(%q) returned error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeKey_Empty(t *testing.T) {
	if _, err := NormalizeKey("   "); err == nil {
		t.Errorf("NormalizeKey() accepted a blank URL")
	}
}

func TestNormalizeKey_VariantsCollapse(t *testing.T) {
	variants := []string{
		"https://example.com/story",
		"https://example.com/story/",
		"HTTPS://EXAMPLE.COM/STORY",
		"http://example.com/story?utm=1",
		"https://example.com/story#top",
	}

	want, _ := NormalizeKey(variants[0])
	for _, v := range variants[1:] {
		got, _ := NormalizeKey(v)
		if got != want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestItem_Annotated(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want bool
	}{
		{
			name: "no annotation",
			item: Item{Title: "Raw headline"},
			want: false,
		},
		{
			name: "empty display title",
			item: Item{
				Title:      "Raw headline",
				Annotation: &Annotation{DisplayTitle: ""},
			},
			want: false,
		},
		{
			name: "display title equals raw title",
			item: Item{
				Title:      "Raw headline",
				Annotation: &Annotation{DisplayTitle: "  Raw headline "},
			},
			want: false,
		},
		{
			name: "rewritten display title",
			item: Item{
				Title:      "Raw headline",
				Annotation: &Annotation{DisplayTitle: "Clear rewritten headline"},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Annotated(); got != tt.want {
				t.Errorf("Item.Annotated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateKey(t *testing.T) {
	ts := time.Date(2026, 8, 23, 22, 15, 0, 0, time.FixedZone("JST", 9*3600))
	got := DateKey(ts)

	if got != "2026-08-23" {
		t.Errorf("DateKey() = %q, want 2026-08-23", got)
	}
	if strings.Count(got, "-") != 2 {
		t.Errorf("DateKey() = %q, not a date key", got)
	}
}
