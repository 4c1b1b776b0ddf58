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


package bridge

import "errors"

var (
	ErrTransportRequired = errors.New("transport required")
	ErrMapperRequired    = errors.New("mapper required")
	ErrSceneRequired     = errors.New("scene required")

	// ErrAlreadyRunning is returned by Start when the watcher is not idle.
	ErrAlreadyRunning = errors.New("watcher already running")

	// ErrNotWatching is returned by Tick when the watcher is idle.
	ErrNotWatching = errors.New("watcher not running")

	// ErrProcessingPanic wraps a panic recovered while handling a request.
	ErrProcessingPanic = errors.New("panic while processing request")
)
