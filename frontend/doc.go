// Package frontend serves the browser form and the JSON endpoints that
// drive the host.
//
// Routes:
//
//	GET  /               prompt form
//	POST /generate       {"prompt": "..."} relayed through the exchange
//	POST /start          launch the host unless it already answers
//	GET  /status         host state, paths and last successful generation
//	POST /reset-status   forget the launch and clear the exchange
//	GET  /config         configured paths
//	GET  /metrics        Prometheus metrics
//	GET  /healthcheck    liveness
//
// /generate answers 400 without a prompt or before the host was started,
// 408 when the host does not respond in time and 500 when its response
// cannot be read. /start-blender is kept as an alias of /start.
package frontend
