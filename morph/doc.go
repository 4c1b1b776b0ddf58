// Package morph applies parameter sets produced by the mapper to targets.
//
// Application is a full replacement, not a merge: every parameter the target
// exposes is first reset to 0, then each requested parameter is set to its
// value capped at 1. Requested names the target does not expose are skipped
// with a warning and listed in the Report.
package morph
