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

import "errors"

// Domain validation errors
var (
	// ErrInvalidItem indicates an Item failed validation.
	ErrInvalidItem = errors.New("invalid item")

	// ErrInvalidDigest indicates a Digest failed validation.
	ErrInvalidDigest = errors.New("invalid digest")

	// ErrEmptyURL indicates an item URL is empty.
	ErrEmptyURL = errors.New("url cannot be empty")

	// ErrEmptyKey indicates an item's natural key is empty.
	ErrEmptyKey = errors.New("natural key cannot be empty")

	// ErrEmptyTitle indicates an item title is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrInvalidPublished indicates a published timestamp is in the future.
	ErrInvalidPublished = errors.New("published timestamp cannot be in the future")

	// ErrInvalidDate indicates a digest date key is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("digest date must be YYYY-MM-DD")

	// ErrOriginWithoutDuplicate indicates an origin reference on an item not
	// tagged as a duplicate.
	ErrOriginWithoutDuplicate = errors.New("origin reference requires duplicate tag")
)
