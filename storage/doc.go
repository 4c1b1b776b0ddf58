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


// Package storage provides the storage abstraction layer for morphit.
//
// This package defines repository interfaces that decouple storage implementation
// from the scene and bridge. The BadgerDB implementation lives in storage/badger.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Repository: transaction support and resource release
//   - CharacterRepository: the parameter state of each character object
//   - GenerationRepository: history of processed requests
//
// # Usage
//
// Open a backend and create repositories on it:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	characters, err := badger.NewCharacterRepository(backend)
//
// Use in tests with in-memory storage:
//
//	characters, generations, backend, err := badger.NewMemoryRepositories()
//
// # Serialization
//
// Records are stored as JSON. IDs used as index values are encoded as
// 8 big-endian bytes.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
