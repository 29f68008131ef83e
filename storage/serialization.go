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


package storage

import (
	"github.com/poiesic/curator/core"
)

// MarshalItem serializes an Item to bytes.
func MarshalItem(item *core.Item) []byte {
	buf := make([]byte, core.ItemMUS.Size(*item))
	core.ItemMUS.Marshal(*item, buf)
	return buf
}

// UnmarshalItem deserializes an Item from bytes.
func UnmarshalItem(data []byte) (*core.Item, error) {
	item, _, err := core.ItemMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// MarshalDigest serializes a Digest to bytes.
func MarshalDigest(digest *core.Digest) []byte {
	buf := make([]byte, core.DigestMUS.Size(*digest))
	core.DigestMUS.Marshal(*digest, buf)
	return buf
}

// UnmarshalDigest deserializes a Digest from bytes.
func UnmarshalDigest(data []byte) (*core.Digest, error) {
	digest, _, err := core.DigestMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &digest, nil
}
