// Package selection manages the set of selected scene items in the placement
// view and applies geometric transformations to it.
//
// The selection is keyed by item indices into an externally owned item
// array. It classifies the selected set into a shape (single volume, full
// instance, mixed, ...) that drives transform semantics and UI affordances,
// applies translate/rotate/scale/mirror with the appropriate frame and
// pivot, and keeps unselected sibling items rigidly synchronized.
//
// The package is single threaded by design: every operation runs to
// completion on the calling thread and the backing collections are borrowed,
// never owned. Calls made while the selection is unbound are silent no-ops.
package selection

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plater/pkg/scene"
)

// Mode scopes transform operations: Instance moves a whole instance as a
// rigid unit, Volume moves an individual volume within an instance.
type Mode int

const (
	Volume Mode = iota
	Instance
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Volume {
		return "Volume"
	}
	return "Instance"
}

// Type is the derived shape of the current selection.
type Type int

const (
	Invalid Type = iota
	Empty
	WipeTower
	SingleModifier
	MultipleModifier
	SingleVolume
	MultipleVolume
	SingleFullObject
	MultipleFullObject
	SingleFullInstance
	MultipleFullInstance
	Mixed
)

var typeNames = map[Type]string{
	Invalid:              "Invalid",
	Empty:                "Empty",
	WipeTower:            "WipeTower",
	SingleModifier:       "SingleModifier",
	MultipleModifier:     "MultipleModifier",
	SingleVolume:         "SingleVolume",
	MultipleVolume:       "MultipleVolume",
	SingleFullObject:     "SingleFullObject",
	MultipleFullObject:   "MultipleFullObject",
	SingleFullInstance:   "SingleFullInstance",
	MultipleFullInstance: "MultipleFullInstance",
	Mixed:                "Mixed",
}

// String returns the type name.
func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "Unknown"
}

// Sidebar is the manipulation panel collaborator. The selection only needs
// to invalidate its cached display values when the selection is cleared.
type Sidebar interface {
	ResetCache()
}

// DeletionKind is the granularity of one deletion request.
type DeletionKind int

const (
	DeleteObject DeletionKind = iota
	DeleteInstance
	DeleteVolume
)

// DeletionItem is a single entry of a deletion batch: Sub is the instance
// index for DeleteInstance, the volume index for DeleteVolume, and unused
// for DeleteObject.
type DeletionItem struct {
	Kind   DeletionKind
	Object int
	Sub    int
}

// Deleter receives deletion batches computed by Erase. The selection decides
// the batch contents; the document list performs the removal.
type Deleter interface {
	DeleteItems(items []DeletionItem)
}

// Selection holds the selected item indices plus the caches derived from
// them. The item array and document tree are borrowed references; the
// selection re-validates itself whenever either is rebound.
type Selection struct {
	items []scene.Item
	tree  scene.Tree

	sidebar Sidebar
	deleter Deleter

	list map[int]struct{}
	// content maps object index -> set of selected instance indices.
	// Rebuilt by updateType on every mutation.
	content map[int]map[int]struct{}

	mode  Mode
	typ   Type
	valid bool

	snapshot       map[int]itemCache
	draggingCenter mgl64.Vec3

	bbox      scene.BoundingBox
	bboxDirty bool
}

// New creates an unbound selection. Both collaborators may be nil; the
// corresponding notifications are then skipped.
func New(sidebar Sidebar, deleter Deleter) *Selection {
	return &Selection{
		sidebar:   sidebar,
		deleter:   deleter,
		list:      make(map[int]struct{}),
		content:   make(map[int]map[int]struct{}),
		mode:      Instance,
		typ:       Empty,
		bboxDirty: true,
	}
}

// SetItems binds the backing item array. Passing nil unbinds it and
// invalidates the selection.
func (s *Selection) SetItems(items []scene.Item) {
	s.items = items
	s.updateValid()
}

// SetTree binds the document tree. Passing nil unbinds it and invalidates
// the selection.
func (s *Selection) SetTree(tree scene.Tree) {
	s.tree = tree
	s.updateValid()
}

func (s *Selection) updateValid() {
	s.valid = s.items != nil && s.tree != nil
}

// IsValid reports whether the selection is bound to an item array and tree.
func (s *Selection) IsValid() bool { return s.valid }

// Mode returns the current editing mode.
func (s *Selection) Mode() Mode { return s.mode }

// Shape returns the current selection shape.
func (s *Selection) Shape() Type { return s.typ }

// IsEmpty reports whether nothing is selected.
func (s *Selection) IsEmpty() bool { return s.typ == Empty }

// Contains reports whether the given item index is selected.
func (s *Selection) Contains(itemIdx int) bool {
	_, ok := s.list[itemIdx]
	return ok
}

// Indices returns the selected item indices in ascending order.
func (s *Selection) Indices() []int {
	idxs := make([]int, 0, len(s.list))
	for i := range s.list {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)
	return idxs
}

// Add selects the item at itemIdx. With asSingle, or when the new item is
// incompatible with the current selection (wipe tower boundaries, modifier
// against non-modifier), the existing selection is cleared first. The
// editing mode is inferred from the item being added.
func (s *Selection) Add(itemIdx int, asSingle bool) {
	if !s.valid || itemIdx < 0 || itemIdx >= len(s.items) {
		return
	}

	item := s.items[itemIdx]
	// Wipe tower is already selected.
	if s.typ == WipeTower && item.IsWipeTower() {
		return
	}

	needsReset := asSingle
	needsReset = needsReset || item.IsWipeTower()
	needsReset = needsReset || (s.typ == WipeTower && !item.IsWipeTower())
	needsReset = needsReset || (!s.isModifierShape() && item.IsModifier())
	needsReset = needsReset || (s.isModifierShape() && !item.IsModifier())
	if needsReset {
		s.Clear()
	}

	if item.IsModifier() {
		s.mode = Volume
	} else if !s.Contains(itemIdx) {
		s.mode = Instance
	}
	// Otherwise keep the current mode.

	switch s.mode {
	case Volume:
		if item.VolumeIdx() >= 0 && (s.IsEmpty() || item.InstanceIdx() == s.InstanceIdx()) {
			s.selectItem(itemIdx)
		}
	case Instance:
		s.selectInstanceItems(item.ObjectIdx(), item.InstanceIdx())
	}

	s.updateType()
	s.bboxDirty = true
}

// Remove deselects the item at itemIdx. In Instance mode the whole owning
// instance is deselected.
func (s *Selection) Remove(itemIdx int) {
	if !s.valid || itemIdx < 0 || itemIdx >= len(s.items) {
		return
	}

	item := s.items[itemIdx]
	switch s.mode {
	case Volume:
		s.deselectItem(itemIdx)
	case Instance:
		s.deselectInstanceItems(item.ObjectIdx(), item.InstanceIdx())
	}

	s.updateType()
	s.bboxDirty = true
}

// AddObject selects every item of the given object.
func (s *Selection) AddObject(objectIdx int, asSingle bool) {
	if !s.valid {
		return
	}
	if asSingle {
		s.Clear()
	}
	s.mode = Instance

	for i, item := range s.items {
		if item.ObjectIdx() == objectIdx {
			s.selectItem(i)
		}
	}

	s.updateType()
	s.bboxDirty = true
}

// RemoveObject deselects every item of the given object.
func (s *Selection) RemoveObject(objectIdx int) {
	if !s.valid {
		return
	}
	for i, item := range s.items {
		if item.ObjectIdx() == objectIdx {
			s.deselectItem(i)
		}
	}

	s.updateType()
	s.bboxDirty = true
}

// AddInstance selects every item of the given (object, instance).
func (s *Selection) AddInstance(objectIdx, instanceIdx int, asSingle bool) {
	if !s.valid {
		return
	}
	if asSingle {
		s.Clear()
	}
	s.mode = Instance

	s.selectInstanceItems(objectIdx, instanceIdx)

	s.updateType()
	s.bboxDirty = true
}

// RemoveInstance deselects every item of the given (object, instance).
func (s *Selection) RemoveInstance(objectIdx, instanceIdx int) {
	if !s.valid {
		return
	}
	s.deselectInstanceItems(objectIdx, instanceIdx)

	s.updateType()
	s.bboxDirty = true
}

// AddVolume selects the items representing the given (object, volume).
// A non-negative instanceIdx restricts the selection to that instance.
func (s *Selection) AddVolume(objectIdx, volumeIdx, instanceIdx int, asSingle bool) {
	if !s.valid {
		return
	}
	if asSingle {
		s.Clear()
	}
	s.mode = Volume

	for i, item := range s.items {
		if item.ObjectIdx() == objectIdx && item.VolumeIdx() == volumeIdx {
			if instanceIdx == -1 || item.InstanceIdx() == instanceIdx {
				s.selectItem(i)
			}
		}
	}

	s.updateType()
	s.bboxDirty = true
}

// RemoveVolume deselects every item representing the given (object, volume).
func (s *Selection) RemoveVolume(objectIdx, volumeIdx int) {
	if !s.valid {
		return
	}
	for i, item := range s.items {
		if item.ObjectIdx() == objectIdx && item.VolumeIdx() == volumeIdx {
			s.deselectItem(i)
		}
	}

	s.updateType()
	s.bboxDirty = true
}

// AddAll selects every item except the wipe tower.
func (s *Selection) AddAll() {
	if !s.valid {
		return
	}
	s.mode = Instance
	s.Clear()

	for i, item := range s.items {
		if !item.IsWipeTower() {
			s.selectItem(i)
		}
	}

	s.updateType()
	s.bboxDirty = true
}

// Clear deselects everything and resets the sidebar cache.
func (s *Selection) Clear() {
	if !s.valid {
		return
	}

	for i := range s.list {
		s.items[i].SetSelected(false)
	}
	s.list = make(map[int]struct{})

	s.updateType()
	s.bboxDirty = true

	if s.sidebar != nil {
		s.sidebar.ResetCache()
	}
}

// ItemsChanged updates the selection after the backing item array has been
// rebuilt. oldToNew maps old item indices to new ones; indices absent from
// the map were removed. In Instance mode, newly added items belonging to a
// still-selected (object, instance) are selected as well.
func (s *Selection) ItemsChanged(oldToNew map[int]int) {
	if !s.valid {
		return
	}

	type objInst struct{ obj, inst int }
	listNew := make(map[int]struct{}, len(s.list))
	kept := make(map[objInst]struct{})
	for oldIdx := range s.list {
		newIdx, ok := oldToNew[oldIdx]
		if !ok {
			continue
		}
		listNew[newIdx] = struct{}{}
		if s.mode == Instance {
			item := s.items[newIdx]
			kept[objInst{item.ObjectIdx(), item.InstanceIdx()}] = struct{}{}
		}
	}
	s.list = listNew

	if len(kept) > 0 {
		// Instance selection: pick up items of the kept instances that were
		// inserted by the rebuild.
		for i, item := range s.items {
			if _, ok := kept[objInst{item.ObjectIdx(), item.InstanceIdx()}]; ok {
				s.selectItem(i)
			}
		}
	}
	for i := range s.list {
		s.items[i].SetSelected(true)
	}

	s.updateType()
	s.bboxDirty = true
}

// BoundingBox returns the axis-aligned box covering the transformed convex
// hulls of all selected items, recomputing it if dirty.
func (s *Selection) BoundingBox() scene.BoundingBox {
	if s.bboxDirty {
		s.bbox = scene.BoundingBox{}
		if s.valid {
			for _, i := range s.Indices() {
				s.bbox.Merge(s.items[i].TransformedConvexHullBox())
			}
		}
		s.bboxDirty = false
	}
	return s.bbox
}

// ObjectIdx returns the object index when the selection spans exactly one
// object, -1 otherwise.
func (s *Selection) ObjectIdx() int {
	if len(s.content) == 1 {
		for obj := range s.content {
			return obj
		}
	}
	return -1
}

// InstanceIdx returns the instance index when the selection spans exactly
// one instance of one object, -1 otherwise.
func (s *Selection) InstanceIdx() int {
	if len(s.content) == 1 {
		for _, insts := range s.content {
			if len(insts) == 1 {
				for inst := range insts {
					return inst
				}
			}
		}
	}
	return -1
}

// InstanceIdxs returns the sorted selected instance indices of the single
// selected object, or nil when the selection spans several objects.
func (s *Selection) InstanceIdxs() []int {
	if len(s.content) != 1 {
		return nil
	}
	for _, insts := range s.content {
		idxs := make([]int, 0, len(insts))
		for inst := range insts {
			idxs = append(idxs, inst)
		}
		sort.Ints(idxs)
		return idxs
	}
	return nil
}

// IsSingleFullInstance reports whether the selection is exactly one full
// instance, including the degenerate SingleFullObject case of an object
// with a single instance.
func (s *Selection) IsSingleFullInstance() bool {
	if s.typ == SingleFullInstance {
		return true
	}
	if s.typ == SingleFullObject {
		return s.InstanceIdx() != -1
	}
	if len(s.list) == 0 || len(s.items) == 0 {
		return false
	}

	objectIdx := -1
	if s.valid {
		objectIdx = s.ObjectIdx()
	}
	if objectIdx < 0 || objectIdx >= s.tree.ObjectCount() {
		return false
	}

	idxs := s.Indices()
	instanceIdx := s.items[idxs[0]].InstanceIdx()
	volumeIdxs := make(map[int]struct{})
	for _, i := range idxs {
		item := s.items[i]
		if item.ObjectIdx() != objectIdx || item.InstanceIdx() != instanceIdx {
			return false
		}
		if item.VolumeIdx() >= 0 {
			volumeIdxs[item.VolumeIdx()] = struct{}{}
		}
	}
	return s.tree.VolumeCount(objectIdx) == len(volumeIdxs)
}

// IsSingleFullObject reports whether every volume of every instance of one
// object is selected.
func (s *Selection) IsSingleFullObject() bool { return s.typ == SingleFullObject }

// IsMultipleFullObject reports whether several whole objects are selected.
func (s *Selection) IsMultipleFullObject() bool { return s.typ == MultipleFullObject }

// IsMultipleFullInstance reports whether several whole instances are selected.
func (s *Selection) IsMultipleFullInstance() bool { return s.typ == MultipleFullInstance }

// IsSingleModifier reports whether exactly one modifier is selected.
func (s *Selection) IsSingleModifier() bool { return s.typ == SingleModifier }

// IsSingleVolume reports whether exactly one plain volume is selected.
func (s *Selection) IsSingleVolume() bool { return s.typ == SingleVolume }

// IsMixed reports whether the selection has no more specific shape.
func (s *Selection) IsMixed() bool { return s.typ == Mixed }

// IsWipeTower reports whether the wipe tower is selected.
func (s *Selection) IsWipeTower() bool { return s.typ == WipeTower }

// IsFromSingleObject reports whether the whole selection belongs to a single
// document object.
func (s *Selection) IsFromSingleObject() bool {
	return s.ObjectIdx() >= 0
}

// IsFromSingleInstance reports whether the whole selection belongs to a
// single instance of a single object.
func (s *Selection) IsFromSingleInstance() bool {
	return s.InstanceIdx() != -1
}

// RequiresUniformScale reports whether only uniform scaling is allowed for
// the current shape.
func (s *Selection) RequiresUniformScale() bool {
	if s.IsSingleFullInstance() || s.IsSingleModifier() || s.IsSingleVolume() {
		return false
	}
	return true
}

// RequiresLocalAxes reports whether UI hints should be drawn in the local
// frame of the selected volume.
func (s *Selection) RequiresLocalAxes() bool {
	return s.mode == Volume && s.IsFromSingleInstance()
}

func (s *Selection) isModifierShape() bool {
	return s.typ == SingleModifier || s.typ == MultipleModifier
}

func (s *Selection) selectItem(itemIdx int) {
	s.list[itemIdx] = struct{}{}
	s.items[itemIdx].SetSelected(true)
}

func (s *Selection) selectInstanceItems(objectIdx, instanceIdx int) {
	for i, item := range s.items {
		if item.ObjectIdx() == objectIdx && item.InstanceIdx() == instanceIdx {
			s.selectItem(i)
		}
	}
}

func (s *Selection) deselectItem(itemIdx int) {
	if _, ok := s.list[itemIdx]; !ok {
		return
	}
	delete(s.list, itemIdx)
	s.items[itemIdx].SetSelected(false)
}

func (s *Selection) deselectInstanceItems(objectIdx, instanceIdx int) {
	for i, item := range s.items {
		if item.ObjectIdx() == objectIdx && item.InstanceIdx() == instanceIdx {
			s.deselectItem(i)
		}
	}
}
