// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"time"
)

// ValidateItem validates an Item according to domain rules.
//
// Validation rules:
//   - Key and Title must not be empty
//   - Published must not be in the future (small clock skew tolerated)
//   - an Origin reference is only legal on an item tagged Duplicate
//
// NOT validated (populated by pipeline stages):
//   - Annotation, Category, Subs, Score (empty until the relevant stage ran)
//   - Related (empty until a feature pass ran)
func ValidateItem(item *Item) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidItem)
	}

	if item.Key == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyKey)
	}

	if item.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyTitle)
	}

	if !IsValidPublished(item.Published) {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrInvalidPublished)
	}

	if item.Origin != "" && !item.Duplicate {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrOriginWithoutDuplicate)
	}

	return nil
}

// ValidateDigest validates a Digest according to domain rules.
//
// Validation rules:
//   - Date must be a YYYY-MM-DD key
//   - every category in Categories appears in CategoryOrder and vice versa
func ValidateDigest(digest *Digest) error {
	if digest == nil {
		return fmt.Errorf("%w: digest is nil", ErrInvalidDigest)
	}

	if _, err := time.Parse("2006-01-02", digest.Date); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDigest, ErrInvalidDate)
	}

	ordered := make(map[string]bool, len(digest.CategoryOrder))
	for _, name := range digest.CategoryOrder {
		ordered[name] = true
		if _, ok := digest.Categories[name]; !ok {
			return fmt.Errorf("%w: category %q ordered but absent", ErrInvalidDigest, name)
		}
	}
	for name := range digest.Categories {
		if !ordered[name] {
			return fmt.Errorf("%w: category %q present but unordered", ErrInvalidDigest, name)
		}
	}

	return nil
}

// IsValidPublished checks that a published timestamp is not in the future.
// Feeds occasionally stamp a few minutes ahead, so an hour of skew is allowed.
func IsValidPublished(ts time.Time) bool {
	return !ts.After(time.Now().Add(time.Hour))
}
