package formula

import "github.com/lighttime0/RSC/internal/diag"

// violatef raises a contract violation (spec.md §7 kind 4), recovered
// at rsc.AnalyzeFunction.
func violatef(format string, args ...interface{}) {
	diag.Violate(format, args...)
}
