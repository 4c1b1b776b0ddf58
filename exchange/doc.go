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


// Package exchange carries prompt requests from a producer (the web
// frontend) to the bridge running inside the host, and responses back.
//
// Two transports implement the same Transport (consumer) and Requester
// (producer) interfaces:
//
//   - FileTransport uses character_request.json and character_response.json
//     in one directory. The consumer removes the request after responding;
//     the producer removes any stale response before writing a request.
//     Both documents are replaced atomically via a temp file and rename.
//   - RedisTransport queues requests on a list and stores each response
//     under its own key with a TTL.
//
// Requesters poll for the response (every 500ms by default) until a
// timeout, reported as ErrTimeout. A response that exists but does not
// decode is re-read with a doubling delay (see WithRetry) before
// ErrCorruptResponse.
//
// Example:
//
//	transport, err := exchange.NewFileTransport(os.TempDir())
//	if err != nil {
//		return err
//	}
//	resp, err := transport.Submit(ctx, "a tall elf with pointed ears", 30*time.Second)
//	if errors.Is(err, exchange.ErrTimeout) {
//		// bridge not running
//	}
package exchange
