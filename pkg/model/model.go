// Package model implements the concrete placement-view document behind the
// scene contracts: objects holding volume definitions and placed instances,
// flattened into one renderable item per (volume, instance) pair.
//
// The item array is regenerated by Rebuild after every structural change;
// Rebuild reports an old-to-new index remap so that the selection can
// follow along.
package model

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plater/pkg/scene"
)

// Volume is a shape definition shared by every instance of its object.
type Volume struct {
	serial    uint64
	hull      []mgl64.Vec3
	modifier  bool
	transform scene.Transformation
}

// Transform exposes the document-level volume transform.
func (v *Volume) Transform() *scene.Transformation { return &v.transform }

// Instance is one placement of an object on the plate.
type Instance struct {
	serial    uint64
	transform scene.Transformation
}

// Transform exposes the document-level instance transform.
func (i *Instance) Transform() *scene.Transformation { return &i.transform }

// Object is a document object: volume definitions replicated across
// instances.
type Object struct {
	serial     uint64
	volumes    []*Volume
	auxVolumes []*Volume
	instances  []*Instance
}

// Model is the placement-view document.
type Model struct {
	serial    uint64
	objects   []*Object
	wipeTower *Item
	items     []*Item
}

// New creates an empty document.
func New() *Model {
	return &Model{}
}

func (m *Model) nextSerial() uint64 {
	m.serial++
	return m.serial
}

// ObjectCount returns the number of document objects.
func (m *Model) ObjectCount() int { return len(m.objects) }

// VolumeCount returns the number of editable volumes of an object.
// Auxiliary volumes are excluded.
func (m *Model) VolumeCount(objectIdx int) int {
	if objectIdx < 0 || objectIdx >= len(m.objects) {
		return 0
	}
	return len(m.objects[objectIdx].volumes)
}

// InstanceCount returns the number of instances of an object.
func (m *Model) InstanceCount(objectIdx int) int {
	if objectIdx < 0 || objectIdx >= len(m.objects) {
		return 0
	}
	return len(m.objects[objectIdx].instances)
}

// AddObject appends an empty object and returns its index.
func (m *Model) AddObject() int {
	m.objects = append(m.objects, &Object{serial: m.nextSerial()})
	return len(m.objects) - 1
}

// AddInstance appends an instance to an object and returns its index.
func (m *Model) AddInstance(objectIdx int) int {
	obj := m.objects[objectIdx]
	obj.instances = append(obj.instances, &Instance{
		serial:    m.nextSerial(),
		transform: scene.NewTransformation(),
	})
	return len(obj.instances) - 1
}

// AddVolume appends a volume definition to an object and returns its index.
// The hull holds the volume's convex-hull points in local coordinates.
func (m *Model) AddVolume(objectIdx int, hull []mgl64.Vec3, modifier bool) int {
	obj := m.objects[objectIdx]
	obj.volumes = append(obj.volumes, &Volume{
		serial:    m.nextSerial(),
		hull:      hull,
		modifier:  modifier,
		transform: scene.NewTransformation(),
	})
	return len(obj.volumes) - 1
}

// AddAuxVolume appends an auxiliary (non-document) volume such as a support
// shape. Auxiliary volumes render and select but carry a negative volume
// index and do not count toward the object's editable volumes.
func (m *Model) AddAuxVolume(objectIdx int, hull []mgl64.Vec3) {
	obj := m.objects[objectIdx]
	obj.auxVolumes = append(obj.auxVolumes, &Volume{
		serial:    m.nextSerial(),
		hull:      hull,
		transform: scene.NewTransformation(),
	})
}

// SetWipeTower places the wipe tower item, replacing any previous one.
func (m *Model) SetWipeTower(hull []mgl64.Vec3, position mgl64.Vec3) {
	item := &Item{
		objectIdx:   -1,
		instanceIdx: 0,
		volumeIdx:   -1,
		wipeTower:   true,
		hull:        hull,
		volumeT:     scene.NewTransformation(),
		instanceT:   scene.NewTransformation(),
	}
	item.volumeT.SetOffset(position)
	m.wipeTower = item
}

// DeleteObject removes an object from the document. Rebuild must follow.
func (m *Model) DeleteObject(objectIdx int) {
	if objectIdx < 0 || objectIdx >= len(m.objects) {
		return
	}
	m.objects = append(m.objects[:objectIdx], m.objects[objectIdx+1:]...)
}

// DeleteInstance removes one instance of an object. Removing the last
// instance removes the object. Rebuild must follow.
func (m *Model) DeleteInstance(objectIdx, instanceIdx int) {
	if objectIdx < 0 || objectIdx >= len(m.objects) {
		return
	}
	obj := m.objects[objectIdx]
	if instanceIdx < 0 || instanceIdx >= len(obj.instances) {
		return
	}
	obj.instances = append(obj.instances[:instanceIdx], obj.instances[instanceIdx+1:]...)
	if len(obj.instances) == 0 {
		m.DeleteObject(objectIdx)
	}
}

// DeleteVolume removes one volume definition of an object. Removing the
// last volume removes the object. Rebuild must follow.
func (m *Model) DeleteVolume(objectIdx, volumeIdx int) {
	if objectIdx < 0 || objectIdx >= len(m.objects) {
		return
	}
	obj := m.objects[objectIdx]
	if volumeIdx < 0 || volumeIdx >= len(obj.volumes) {
		return
	}
	obj.volumes = append(obj.volumes[:volumeIdx], obj.volumes[volumeIdx+1:]...)
	if len(obj.volumes) == 0 {
		m.DeleteObject(objectIdx)
	}
}

// Items returns the current item array as scene items.
func (m *Model) Items() []scene.Item {
	items := make([]scene.Item, len(m.items))
	for i, item := range m.items {
		items[i] = item
	}
	return items
}

// ModelItems returns the current item array with its concrete type.
func (m *Model) ModelItems() []*Item { return m.items }

// itemKey identifies an item across rebuilds.
type itemKey struct {
	object, volume, instance uint64
}

func (it *Item) key() itemKey {
	return itemKey{it.objectSerial, it.volumeSerial, it.instanceSerial}
}

// Rebuild regenerates the item array from the document and returns the map
// from old item indices to new ones. Old indices absent from the map refer
// to items that no longer exist. Transforms of surviving items are carried
// over from the old array; new items start from the document transforms.
func (m *Model) Rebuild() map[int]int {
	old := make(map[itemKey]*Item, len(m.items))
	oldIdx := make(map[itemKey]int, len(m.items))
	for i, item := range m.items {
		old[item.key()] = item
		oldIdx[item.key()] = i
	}

	m.items = nil
	for objIdx, obj := range m.objects {
		appendVolume := func(vol *Volume, volIdx int) {
			for instIdx, inst := range obj.instances {
				item := &Item{
					objectIdx:      objIdx,
					instanceIdx:    instIdx,
					volumeIdx:      volIdx,
					modifier:       vol.modifier,
					hull:           vol.hull,
					volumeT:        vol.transform,
					instanceT:      inst.transform,
					objectSerial:   obj.serial,
					volumeSerial:   vol.serial,
					instanceSerial: inst.serial,
				}
				if prev, ok := old[item.key()]; ok {
					item.volumeT = prev.volumeT
					item.instanceT = prev.instanceT
					item.selected = prev.selected
					item.disabled = prev.disabled
				}
				m.items = append(m.items, item)
			}
		}
		for volIdx, vol := range obj.volumes {
			appendVolume(vol, volIdx)
		}
		for auxIdx, vol := range obj.auxVolumes {
			appendVolume(vol, -(auxIdx + 1))
		}
	}
	if m.wipeTower != nil {
		m.items = append(m.items, m.wipeTower)
	}

	remap := make(map[int]int, len(m.items))
	for newIdx, item := range m.items {
		var k itemKey
		if item.wipeTower {
			k = itemKey{}
		} else {
			k = item.key()
		}
		if i, ok := oldIdx[k]; ok {
			remap[i] = newIdx
		}
	}
	return remap
}

// CommitTransforms writes the item transforms back into the document
// definitions. Items of one definition are kept synchronized by the
// selection, so the last write wins.
func (m *Model) CommitTransforms() {
	for _, item := range m.items {
		if item.wipeTower || item.objectIdx < 0 || item.objectIdx >= len(m.objects) {
			continue
		}
		obj := m.objects[item.objectIdx]
		if item.volumeIdx >= 0 && item.volumeIdx < len(obj.volumes) {
			obj.volumes[item.volumeIdx].transform = item.volumeT
		}
		if item.instanceIdx >= 0 && item.instanceIdx < len(obj.instances) {
			obj.instances[item.instanceIdx].transform = item.instanceT
		}
	}
}
