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


package exchange

import "errors"

var (
	// ErrDirRequired is returned when a file transport has no directory.
	ErrDirRequired = errors.New("exchange directory required")

	// ErrClientRequired is returned when a redis transport has no client.
	ErrClientRequired = errors.New("redis client required")

	// ErrMalformedRequest is returned by Receive when a pending request
	// cannot be decoded or fails validation. The request must still be
	// answered so it is cleared.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrCorruptResponse is returned when a response exists but cannot be
	// decoded after retrying.
	ErrCorruptResponse = errors.New("corrupt response")

	// ErrTimeout is returned when no response arrives in time.
	ErrTimeout = errors.New("timed out waiting for response")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be positive")
)
