package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateItem(t *testing.T) {
	published := time.Now().Add(-2 * time.Hour)
	future := time.Now().Add(3 * time.Hour)

	tests := []struct {
		name    string
		item    *Item
		wantErr error
	}{
		{
			name: "valid item",
			item: &Item{
				Key:       "example.com/story",
				URL:       "https://example.com/story",
				Title:     "A headline",
				Published: published,
			},
			wantErr: nil,
		},
		{
			name: "valid item before any stage ran",
			item: &Item{
				Key:       "example.com/story",
				Title:     "A headline",
				Published: published,
				// Annotation, Category, Subs intentionally unset
			},
			wantErr: nil,
		},
		{
			name: "valid tagged duplicate",
			item: &Item{
				Key:       "example.com/mirror",
				Title:     "A headline",
				Published: published,
				Duplicate: true,
				Origin:    "example.com/story",
			},
			wantErr: nil,
		},
		{
			name:    "nil item",
			item:    nil,
			wantErr: ErrInvalidItem,
		},
		{
			name: "missing key",
			item: &Item{
				Title:     "A headline",
				Published: published,
			},
			wantErr: ErrEmptyKey,
		},
		{
			name: "missing title",
			item: &Item{
				Key:       "example.com/story",
				Published: published,
			},
			wantErr: ErrEmptyTitle,
		},
		{
			name: "future published",
			item: &Item{
				Key:       "example.com/story",
				Title:     "A headline",
				Published: future,
			},
			wantErr: ErrInvalidPublished,
		},
		{
			name: "origin without duplicate tag",
			item: &Item{
				Key:       "example.com/mirror",
				Title:     "A headline",
				Published: published,
				Origin:    "example.com/story",
			},
			wantErr: ErrOriginWithoutDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItem(tt.item)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateItem() unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateItem() error = %v, want %v", err, tt.wantErr)
			}
			if tt.item != nil && !errors.Is(err, ErrInvalidItem) {
				t.Errorf("ValidateItem() error %v should wrap ErrInvalidItem", err)
			}
		})
	}
}

func TestValidateItem_SkewTolerance(t *testing.T) {
	item := &Item{
		Key:       "example.com/story",
		Title:     "A headline",
		Published: time.Now().Add(10 * time.Minute),
	}

	if err := ValidateItem(item); err != nil {
		t.Errorf("ValidateItem() rejected small clock skew: %v", err)
	}
}

func TestValidateDigest(t *testing.T) {
	tests := []struct {
		name    string
		digest  *Digest
		wantErr error
	}{
		{
			name: "valid digest",
			digest: &Digest{
				Date: "2026-08-23",
				Categories: map[string][]Item{
					"research": {},
					"industry": {},
				},
				CategoryOrder: []string{"research", "industry"},
			},
			wantErr: nil,
		},
		{
			name: "empty digest with date",
			digest: &Digest{
				Date: "2026-08-23",
			},
			wantErr: nil,
		},
		{
			name:    "nil digest",
			digest:  nil,
			wantErr: ErrInvalidDigest,
		},
		{
			name: "bad date key",
			digest: &Digest{
				Date: "23/08/2026",
			},
			wantErr: ErrInvalidDate,
		},
		{
			name: "ordered category absent from map",
			digest: &Digest{
				Date:          "2026-08-23",
				Categories:    map[string][]Item{"research": {}},
				CategoryOrder: []string{"research", "industry"},
			},
			wantErr: ErrInvalidDigest,
		},
		{
			name: "category present but unordered",
			digest: &Digest{
				Date: "2026-08-23",
				Categories: map[string][]Item{
					"research": {},
					"industry": {},
				},
				CategoryOrder: []string{"research"},
			},
			wantErr: ErrInvalidDigest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDigest(tt.digest)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDigest() unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDigest() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidPublished(t *testing.T) {
	if !IsValidPublished(time.Now().Add(-time.Minute)) {
		t.Errorf("IsValidPublished() rejected a past timestamp")
	}
	if IsValidPublished(time.Now().Add(2 * time.Hour)) {
		t.Errorf("IsValidPublished() accepted a far-future timestamp")
	}
}
