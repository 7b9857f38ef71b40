//go:build platerdebug

package selection

import "github.com/chazu/plater/pkg/scene"

// debugAssert panics on a violated internal invariant. Violations indicate
// a programming error in a caller, not a user-facing failure.
func debugAssert(cond bool, msg string) {
	if !cond {
		panic("selection: " + msg)
	}
}

func verifyInstanceRotationsSynchronized(items []scene.Item, tree scene.Tree) {
	if !InstanceRotationsSynchronized(items, tree) {
		panic("selection: instance rotations not Z-synchronized")
	}
}
