// Package bridge runs the request loop inside the host.
//
// A Watcher is Idle until Start, then Watching: every interval (500ms by
// default) it asks its exchange.Transport for a pending request. File
// transports also wake it as soon as the request file appears. While a
// request is handled the watcher is Processing:
//
//  1. The mapper detects the gender and picks the target object
//     (mb_male or mb_female by default, matched by name prefix).
//  2. The prompt is analyzed and the resulting parameter set applied,
//     resetting every other parameter on the target.
//  3. The character is persisted and the request recorded in history.
//  4. A completed or error response is written and the request cleared.
//
// Malformed requests, missing targets and panics all become error
// responses; the loop keeps running. The status check prompt is answered
// without touching the scene. Stop returns the watcher to Idle after any
// in-flight request finishes.
package bridge
