//go:build !platerdebug

package selection

import "github.com/chazu/plater/pkg/scene"

// debugAssert is compiled out unless the platerdebug build tag is set.
func debugAssert(bool, string) {}

// verifyInstanceRotationsSynchronized is the O(n²) whole-document check of
// the Z-only divergence invariant. Compiled out of release builds.
func verifyInstanceRotationsSynchronized([]scene.Item, scene.Tree) {}
