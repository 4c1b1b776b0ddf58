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


package launcher

import "errors"

var (
	ErrExecutableRequired = errors.New("host executable required")
	ErrExecutableNotFound = errors.New("host executable not found")
	ErrModelNotFound      = errors.New("model file not found")
	ErrStartFailed        = errors.New("failed to start host")
	// ErrExitedEarly is returned when the host terminates within the
	// startup grace period. The error text carries its output.
	ErrExitedEarly = errors.New("host process terminated immediately")
	ErrNotRunning  = errors.New("host not running")
)
