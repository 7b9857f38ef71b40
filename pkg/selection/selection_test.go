package selection

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plater/pkg/scene"
)

// testItem is a minimal scene.Item for exercising the selection without the
// document layer.
type testItem struct {
	objectIdx   int
	instanceIdx int
	volumeIdx   int
	modifier    bool
	wipeTower   bool
	selected    bool
	disabled    bool

	hull      []mgl64.Vec3
	volumeT   scene.Transformation
	instanceT scene.Transformation
}

func (it *testItem) ObjectIdx() int                           { return it.objectIdx }
func (it *testItem) InstanceIdx() int                         { return it.instanceIdx }
func (it *testItem) VolumeIdx() int                           { return it.volumeIdx }
func (it *testItem) IsModifier() bool                         { return it.modifier }
func (it *testItem) IsWipeTower() bool                        { return it.wipeTower }
func (it *testItem) Selected() bool                           { return it.selected }
func (it *testItem) SetSelected(selected bool)                { it.selected = selected }
func (it *testItem) Disabled() bool                           { return it.disabled }
func (it *testItem) SetDisabled(disabled bool)                { it.disabled = disabled }
func (it *testItem) VolumeTransform() *scene.Transformation   { return &it.volumeT }
func (it *testItem) InstanceTransform() *scene.Transformation { return &it.instanceT }

func (it *testItem) TransformedConvexHullBox() scene.BoundingBox {
	m := it.instanceT.Matrix().Mul4(it.volumeT.Matrix())
	return scene.TransformedBox(m, it.hull)
}

// testTree exposes fixed per-object counts.
type testTree struct {
	// objects[i] = [volumes, instances]
	objects [][2]int
}

func (t *testTree) ObjectCount() int { return len(t.objects) }

func (t *testTree) VolumeCount(objectIdx int) int {
	if objectIdx < 0 || objectIdx >= len(t.objects) {
		return 0
	}
	return t.objects[objectIdx][0]
}

func (t *testTree) InstanceCount(objectIdx int) int {
	if objectIdx < 0 || objectIdx >= len(t.objects) {
		return 0
	}
	return t.objects[objectIdx][1]
}

func cubeHull(half float64) []mgl64.Vec3 {
	return []mgl64.Vec3{
		{-half, -half, -half},
		{half, -half, -half},
		{-half, half, -half},
		{half, half, -half},
		{-half, -half, half},
		{half, -half, half},
		{-half, half, half},
		{half, half, half},
	}
}

// newFixture builds items for the given per-object [volumes, instances]
// counts, in the canonical order: per object, per volume, per instance.
func newFixture(counts ...[2]int) ([]*testItem, *testTree) {
	tree := &testTree{objects: counts}
	var items []*testItem
	for obj, c := range counts {
		for vol := 0; vol < c[0]; vol++ {
			for inst := 0; inst < c[1]; inst++ {
				items = append(items, &testItem{
					objectIdx:   obj,
					instanceIdx: inst,
					volumeIdx:   vol,
					hull:        cubeHull(5),
					volumeT:     scene.NewTransformation(),
					instanceT:   scene.NewTransformation(),
				})
			}
		}
	}
	return items, tree
}

func wipeTowerItem() *testItem {
	return &testItem{
		objectIdx:   -1,
		instanceIdx: 0,
		volumeIdx:   -1,
		wipeTower:   true,
		hull:        cubeHull(5),
		volumeT:     scene.NewTransformation(),
		instanceT:   scene.NewTransformation(),
	}
}

func sceneItems(items []*testItem) []scene.Item {
	out := make([]scene.Item, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// findItem returns the index of the (object, volume, instance) item.
func findItem(t *testing.T, items []*testItem, obj, vol, inst int) int {
	t.Helper()
	for i, it := range items {
		if it.objectIdx == obj && it.volumeIdx == vol && it.instanceIdx == inst {
			return i
		}
	}
	t.Fatalf("no item (%d, %d, %d)", obj, vol, inst)
	return -1
}

type countingSidebar struct {
	resets int
}

func (s *countingSidebar) ResetCache() { s.resets++ }

type recordingDeleter struct {
	batches [][]DeletionItem
}

func (d *recordingDeleter) DeleteItems(items []DeletionItem) {
	d.batches = append(d.batches, items)
}

func newTestSelection(items []*testItem, tree *testTree) (*Selection, *countingSidebar, *recordingDeleter) {
	sidebar := &countingSidebar{}
	deleter := &recordingDeleter{}
	s := New(sidebar, deleter)
	s.SetItems(sceneItems(items))
	s.SetTree(tree)
	return s, sidebar, deleter
}

func TestNewSelectionIsEmpty(t *testing.T) {
	s := New(nil, nil)
	if s.IsValid() {
		t.Error("unbound selection reports valid")
	}
	if got := s.Shape(); got != Empty {
		t.Errorf("shape = %v, want Empty", got)
	}
	if got := s.Mode(); got != Instance {
		t.Errorf("mode = %v, want Instance", got)
	}
}

func TestOperationsOnUnboundSelectionAreNoOps(t *testing.T) {
	s := New(nil, nil)
	s.Add(0, true)
	s.AddAll()
	s.Clear()
	s.StartDragging()
	s.Translate(mgl64.Vec3{1, 0, 0}, false)
	s.Erase()
	if !s.IsEmpty() {
		t.Error("unbound selection picked up items")
	}
}

func TestAddSingleItemOfSimpleObject(t *testing.T) {
	items, tree := newFixture([2]int{1, 1})
	s, _, _ := newTestSelection(items, tree)

	s.Add(0, true)

	if got := s.Shape(); got != SingleFullObject {
		t.Errorf("shape = %v, want SingleFullObject", got)
	}
	if got := s.Mode(); got != Instance {
		t.Errorf("mode = %v, want Instance", got)
	}
	if !items[0].selected {
		t.Error("item flag not set")
	}
	if !s.IsFromSingleObject() || !s.IsFromSingleInstance() {
		t.Error("single object/instance queries disagree")
	}
}

func TestAddSelectsWholeInstance(t *testing.T) {
	// Two volumes, one instance: clicking one item selects the instance.
	items, tree := newFixture([2]int{2, 1})
	s, _, _ := newTestSelection(items, tree)

	s.Add(0, true)

	if got := len(s.Indices()); got != 2 {
		t.Fatalf("selected %d items, want 2", got)
	}
	if got := s.Shape(); got != SingleFullObject {
		t.Errorf("shape = %v, want SingleFullObject", got)
	}
}

func TestSingleFullInstanceShape(t *testing.T) {
	// One volume, three instances: one selected item is a full instance.
	items, tree := newFixture([2]int{1, 3})
	s, _, _ := newTestSelection(items, tree)

	s.AddInstance(0, 1, true)

	if got := s.Shape(); got != SingleFullInstance {
		t.Errorf("shape = %v, want SingleFullInstance", got)
	}
	if got := s.InstanceIdx(); got != 1 {
		t.Errorf("instance idx = %d, want 1", got)
	}
	if !s.IsSingleFullInstance() {
		t.Error("IsSingleFullInstance = false")
	}
}

func TestMultipleFullInstanceShape(t *testing.T) {
	items, tree := newFixture([2]int{1, 3})
	s, _, _ := newTestSelection(items, tree)

	s.AddInstance(0, 0, true)
	s.AddInstance(0, 2, false)

	if got := s.Shape(); got != MultipleFullInstance {
		t.Errorf("shape = %v, want MultipleFullInstance", got)
	}
	if got := s.InstanceIdxs(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("instance idxs = %v, want [0 2]", got)
	}
}

func TestSelectingAllInstancesIsFullObject(t *testing.T) {
	items, tree := newFixture([2]int{1, 2})
	s, _, _ := newTestSelection(items, tree)

	s.AddInstance(0, 0, true)
	s.AddInstance(0, 1, false)

	if got := s.Shape(); got != SingleFullObject {
		t.Errorf("shape = %v, want SingleFullObject", got)
	}
}

func TestSingleVolumeShape(t *testing.T) {
	items, tree := newFixture([2]int{2, 1}, [2]int{1, 1})
	s, _, _ := newTestSelection(items, tree)

	s.AddVolume(0, 0, 0, true)

	if got := s.Shape(); got != SingleVolume {
		t.Errorf("shape = %v, want SingleVolume", got)
	}
	if got := s.Mode(); got != Volume {
		t.Errorf("mode = %v, want Volume", got)
	}
	if !s.RequiresLocalAxes() {
		t.Error("RequiresLocalAxes = false for a single volume")
	}
	if s.RequiresUniformScale() {
		t.Error("RequiresUniformScale = true for a single volume")
	}

	// Items outside the owning instance are disabled.
	other := findItem(t, items, 1, 0, 0)
	if !items[other].disabled {
		t.Error("foreign item not disabled")
	}
	sibling := findItem(t, items, 0, 1, 0)
	if items[sibling].disabled {
		t.Error("sibling of the same instance disabled")
	}
}

func TestAddVolumeAcrossAllInstances(t *testing.T) {
	items, tree := newFixture([2]int{2, 2})
	s, _, _ := newTestSelection(items, tree)

	s.AddVolume(0, 0, -1, true)

	if !s.Contains(findItem(t, items, 0, 0, 0)) || !s.Contains(findItem(t, items, 0, 0, 1)) {
		t.Error("volume not selected in every instance")
	}
	if s.Contains(findItem(t, items, 0, 1, 0)) {
		t.Error("other volume selected")
	}
}

func TestMultipleVolumeShape(t *testing.T) {
	items, tree := newFixture([2]int{3, 1})
	s, _, _ := newTestSelection(items, tree)

	s.AddVolume(0, 0, 0, true)
	s.AddVolume(0, 1, 0, false)

	if got := s.Shape(); got != MultipleVolume {
		t.Errorf("shape = %v, want MultipleVolume", got)
	}
	if s.RequiresUniformScale() == false {
		t.Error("RequiresUniformScale = false for multiple volumes")
	}
}

func TestModifierSelection(t *testing.T) {
	items, tree := newFixture([2]int{2, 1})
	items[findItem(t, items, 0, 1, 0)].modifier = true
	s, _, _ := newTestSelection(items, tree)

	s.Add(findItem(t, items, 0, 1, 0), false)

	if got := s.Shape(); got != SingleModifier {
		t.Errorf("shape = %v, want SingleModifier", got)
	}
	if got := s.Mode(); got != Volume {
		t.Errorf("mode = %v, want Volume", got)
	}

	// Adding a plain volume resets the modifier selection first.
	s.Add(findItem(t, items, 0, 0, 0), false)
	if got := s.Shape(); got != SingleFullObject && got != SingleVolume {
		t.Logf("shape after mixing = %v", got)
	}
	if s.Contains(findItem(t, items, 0, 1, 0)) && s.Shape() == SingleModifier {
		t.Error("modifier kept after adding a plain volume")
	}
}

func TestMixedShape(t *testing.T) {
	items, tree := newFixture([2]int{2, 1}, [2]int{2, 1})
	s, _, _ := newTestSelection(items, tree)

	s.AddVolume(0, 0, 0, true)
	s.AddVolume(1, 0, 0, false)

	if got := s.Shape(); got != Mixed {
		t.Errorf("shape = %v, want Mixed", got)
	}
	if s.IsFromSingleObject() {
		t.Error("mixed selection claims a single object")
	}
	if got := s.ObjectIdx(); got != -1 {
		t.Errorf("object idx = %d, want -1", got)
	}
}

func TestMultipleFullObjectShape(t *testing.T) {
	items, tree := newFixture([2]int{2, 1}, [2]int{1, 2})
	s, _, _ := newTestSelection(items, tree)

	s.AddObject(0, true)
	s.AddObject(1, false)

	if got := s.Shape(); got != MultipleFullObject {
		t.Errorf("shape = %v, want MultipleFullObject", got)
	}
	if got := len(s.Indices()); got != 4 {
		t.Errorf("selected %d items, want 4", got)
	}
}

func TestWipeTowerSelection(t *testing.T) {
	items, tree := newFixture([2]int{1, 1})
	items = append(items, wipeTowerItem())
	s, _, _ := newTestSelection(items, tree)

	wt := len(items) - 1
	s.Add(wt, false)
	if got := s.Shape(); got != WipeTower {
		t.Errorf("shape = %v, want WipeTower", got)
	}

	// Adding the wipe tower again is a no-op.
	s.Add(wt, false)
	if got := s.Shape(); got != WipeTower {
		t.Errorf("shape after re-add = %v, want WipeTower", got)
	}

	// Adding a document item replaces the wipe tower selection.
	s.Add(0, false)
	if s.Contains(wt) {
		t.Error("wipe tower still selected after adding a document item")
	}
	if got := s.Shape(); got != SingleFullObject {
		t.Errorf("shape = %v, want SingleFullObject", got)
	}
}

func TestAddAllSkipsWipeTower(t *testing.T) {
	items, tree := newFixture([2]int{2, 1}, [2]int{1, 1})
	items = append(items, wipeTowerItem())
	s, _, _ := newTestSelection(items, tree)

	s.AddAll()

	if s.Contains(len(items) - 1) {
		t.Error("AddAll selected the wipe tower")
	}
	if got := s.Shape(); got != MultipleFullObject {
		t.Errorf("shape = %v, want MultipleFullObject", got)
	}
}

func TestRemoveInstance(t *testing.T) {
	items, tree := newFixture([2]int{1, 3})
	s, _, _ := newTestSelection(items, tree)

	s.AddObject(0, true)
	s.RemoveInstance(0, 1)

	if got := s.Shape(); got != MultipleFullInstance {
		t.Errorf("shape = %v, want MultipleFullInstance", got)
	}
	if s.Contains(findItem(t, items, 0, 0, 1)) {
		t.Error("removed instance still selected")
	}
}

func TestRemoveInInstanceModeDropsWholeInstance(t *testing.T) {
	items, tree := newFixture([2]int{2, 1})
	s, _, _ := newTestSelection(items, tree)

	s.Add(0, true) // selects both volumes of the instance
	s.Remove(findItem(t, items, 0, 1, 0))

	if !s.IsEmpty() {
		t.Errorf("shape = %v, want Empty", s.Shape())
	}
}

func TestClearResetsSidebarAndFlags(t *testing.T) {
	items, tree := newFixture([2]int{2, 1})
	s, sidebar, _ := newTestSelection(items, tree)

	s.AddVolume(0, 0, 0, true)
	resets := sidebar.resets
	s.Clear()

	if sidebar.resets != resets+1 {
		t.Errorf("sidebar resets = %d, want %d", sidebar.resets, resets+1)
	}
	for i, it := range items {
		if it.selected {
			t.Errorf("item %d still flagged selected", i)
		}
		if it.disabled {
			t.Errorf("item %d still disabled", i)
		}
	}
	if !s.IsEmpty() {
		t.Error("selection not empty after Clear")
	}
}

func TestSelectionFlagBijection(t *testing.T) {
	items, tree := newFixture([2]int{2, 2}, [2]int{1, 1})
	s, _, _ := newTestSelection(items, tree)

	s.AddInstance(0, 1, true)
	s.AddObject(1, false)

	for i, it := range items {
		if it.selected != s.Contains(i) {
			t.Errorf("item %d: flag %v, membership %v", i, it.selected, s.Contains(i))
		}
	}
}

func TestBoundingBoxCoversSelection(t *testing.T) {
	items, tree := newFixture([2]int{1, 2})
	items[findItem(t, items, 0, 0, 1)].instanceT.SetOffset(mgl64.Vec3{20, 0, 0})
	s, _, _ := newTestSelection(items, tree)

	s.AddObject(0, true)

	box := s.BoundingBox()
	if !box.Defined {
		t.Fatal("selection box undefined")
	}
	if got := box.Min; !got.ApproxEqualThreshold(mgl64.Vec3{-5, -5, -5}, 1e-9) {
		t.Errorf("min = %v, want (-5,-5,-5)", got)
	}
	if got := box.Max; !got.ApproxEqualThreshold(mgl64.Vec3{25, 5, 5}, 1e-9) {
		t.Errorf("max = %v, want (25,5,5)", got)
	}
}

func TestItemsChangedKeepsSurvivors(t *testing.T) {
	items, tree := newFixture([2]int{2, 1})
	s, _, _ := newTestSelection(items, tree)
	s.Add(0, true)

	// Rebuild: volume 0 removed, volume 1 becomes item 0.
	newItems, newTree := newFixture([2]int{1, 1})
	s.SetItems(sceneItems(newItems))
	s.SetTree(newTree)
	s.ItemsChanged(map[int]int{findItem(t, items, 0, 1, 0): 0})

	if !s.Contains(0) {
		t.Error("surviving item lost")
	}
	if got := s.Shape(); got != SingleFullObject {
		t.Errorf("shape = %v, want SingleFullObject", got)
	}
	if !newItems[0].selected {
		t.Error("survivor flag not set")
	}
}

func TestItemsChangedPicksUpInsertedInstanceItems(t *testing.T) {
	// Instance selection follows a rebuild that added a volume to the
	// selected instance.
	items, tree := newFixture([2]int{1, 1})
	s, _, _ := newTestSelection(items, tree)
	s.Add(0, true)

	newItems, newTree := newFixture([2]int{2, 1})
	s.SetItems(sceneItems(newItems))
	s.SetTree(newTree)
	s.ItemsChanged(map[int]int{0: findItem(t, newItems, 0, 0, 0)})

	if got := len(s.Indices()); got != 2 {
		t.Fatalf("selected %d items, want 2 (inserted volume picked up)", got)
	}
	if got := s.Shape(); got != SingleFullObject {
		t.Errorf("shape = %v, want SingleFullObject", got)
	}
}

func TestItemsChangedDropsRemoved(t *testing.T) {
	items, tree := newFixture([2]int{1, 1}, [2]int{1, 1})
	s, _, _ := newTestSelection(items, tree)
	s.AddObject(0, true)

	// Object 0 removed entirely; object 1 shifts to index 0.
	newItems, newTree := newFixture([2]int{1, 1})
	s.SetItems(sceneItems(newItems))
	s.SetTree(newTree)
	s.ItemsChanged(map[int]int{findItem(t, items, 1, 0, 0): 0})

	if !s.IsEmpty() {
		t.Errorf("shape = %v, want Empty", s.Shape())
	}
}
