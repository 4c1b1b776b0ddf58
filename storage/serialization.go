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
	"encoding/binary"
	"fmt"

	"github.com/poiesic/morphit/core"
)

const idSize = 8

// MarshalID serializes an ID for use in keys. Fixed-width big-endian so
// encoded IDs sort in numeric order; record bodies use core.IDMUS.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, idSize)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	if len(data) < idSize {
		return 0, fmt.Errorf("%w: id needs %d bytes, got %d", ErrTruncatedData, idSize, len(data))
	}
	return core.ID(binary.BigEndian.Uint64(data)), nil
}

// MarshalCharacterRecord serializes a CharacterRecord to bytes.
func MarshalCharacterRecord(record *core.CharacterRecord) []byte {
	buf := make([]byte, core.CharacterRecordMUS.Size(*record))
	core.CharacterRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalCharacterRecord deserializes a CharacterRecord from bytes.
func UnmarshalCharacterRecord(data []byte) (*core.CharacterRecord, error) {
	if len(data) == 0 {
		return nil, ErrTruncatedData
	}
	record, _, err := core.CharacterRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: character: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalGeneration serializes a Generation to bytes.
func MarshalGeneration(generation *core.Generation) []byte {
	buf := make([]byte, core.GenerationMUS.Size(*generation))
	core.GenerationMUS.Marshal(*generation, buf)
	return buf
}

// UnmarshalGeneration deserializes a Generation from bytes.
func UnmarshalGeneration(data []byte) (*core.Generation, error) {
	if len(data) == 0 {
		return nil, ErrTruncatedData
	}
	generation, _, err := core.GenerationMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: generation: %w", ErrSerializationFailed, err)
	}
	return &generation, nil
}
