// Package launcher starts the host application that runs the bridge.
//
// Launch checks that the executable and the model file exist, starts
// "<executable> <args...>" with {model} substituted in the arguments, and
// waits a short grace period (2s by default). A host that dies within the
// grace period usually refused to run scripts; its captured output is
// returned inside ErrExitedEarly. A successful launch sets a flag the web
// frontend uses to refuse generation before any host was started. Failed
// launches are never retried automatically.
package launcher
