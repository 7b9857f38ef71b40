package selection

import "sort"

// Erase submits a deletion batch for the current selection. The deletion
// granularity (object, instance or volume) follows the selection shape; the
// document list collaborator performs the actual removal.
func (s *Selection) Erase() {
	if !s.valid || s.deleter == nil {
		return
	}

	switch {
	case s.IsSingleFullObject():
		s.submit([]DeletionItem{{Kind: DeleteObject, Object: s.ObjectIdx()}})

	case s.IsMultipleFullObject():
		items := make([]DeletionItem, 0, len(s.content))
		for obj := range s.content {
			items = append(items, DeletionItem{Kind: DeleteObject, Object: obj})
		}
		s.submit(items)

	case s.IsMultipleFullInstance():
		var items []DeletionItem
		for obj, insts := range s.content {
			for inst := range insts {
				items = append(items, DeletionItem{Kind: DeleteInstance, Object: obj, Sub: inst})
			}
		}
		s.submit(items)

	case s.IsSingleFullInstance():
		s.submit([]DeletionItem{{Kind: DeleteInstance, Object: s.ObjectIdx(), Sub: s.InstanceIdx()}})

	case s.IsMixed():
		s.submit(s.mixedDeletionBatch())

	default:
		// Per-volume deletion. Auxiliary items (negative volume index) are
		// not part of the editable document and are skipped.
		requested := make(map[DeletionItem]struct{})
		for _, i := range s.Indices() {
			item := s.items[i]
			if item.VolumeIdx() >= 0 {
				requested[DeletionItem{Kind: DeleteVolume, Object: item.ObjectIdx(), Sub: item.VolumeIdx()}] = struct{}{}
			}
		}
		items := make([]DeletionItem, 0, len(requested))
		for d := range requested {
			items = append(items, d)
		}
		s.submit(items)
	}
}

// mixedDeletionBatch classifies each selected leaf against its object's
// instance and volume counts, then upgrades per-volume requests to a whole
// object request when the set of requested volume indices covers every
// volume of that object.
func (s *Selection) mixedDeletionBatch() []DeletionItem {
	requested := make(map[DeletionItem]struct{})
	// Object index -> set of requested volume indices within it.
	requestedVolumes := make(map[int]map[int]struct{})

	requestVolume := func(obj, vol int) {
		if vol < 0 {
			return
		}
		requested[DeletionItem{Kind: DeleteVolume, Object: obj, Sub: vol}] = struct{}{}
		vols, ok := requestedVolumes[obj]
		if !ok {
			vols = make(map[int]struct{})
			requestedVolumes[obj] = vols
		}
		vols[vol] = struct{}{}
	}

	for _, i := range s.Indices() {
		item := s.items[i]
		obj := item.ObjectIdx()
		if obj < 0 {
			continue
		}

		if s.tree.InstanceCount(obj) == 1 {
			if s.tree.VolumeCount(obj) == 1 {
				requested[DeletionItem{Kind: DeleteObject, Object: obj}] = struct{}{}
			} else {
				requestVolume(obj, item.VolumeIdx())
			}
			continue
		}

		inst := item.InstanceIdx()
		insts, ok := s.content[obj]
		if !ok {
			continue
		}
		if _, ok := insts[inst]; ok {
			if len(insts) == s.tree.InstanceCount(obj) {
				// Every instance is selected, so removing the volume from
				// the shared definition covers them all.
				requestVolume(obj, item.VolumeIdx())
			} else {
				requested[DeletionItem{Kind: DeleteInstance, Object: obj, Sub: inst}] = struct{}{}
			}
		}
	}

	// Upgrade: an object whose full volume-index set ended up requested is
	// deleted wholesale instead.
	upgraded := make(map[int]bool)
	for obj, vols := range requestedVolumes {
		if len(vols) == s.tree.VolumeCount(obj) {
			upgraded[obj] = true
		}
	}

	final := make(map[DeletionItem]struct{}, len(requested))
	for d := range requested {
		if d.Kind == DeleteVolume && upgraded[d.Object] {
			continue
		}
		final[d] = struct{}{}
	}
	for obj := range upgraded {
		final[DeletionItem{Kind: DeleteObject, Object: obj}] = struct{}{}
	}

	items := make([]DeletionItem, 0, len(final))
	for d := range final {
		items = append(items, d)
	}
	return items
}

// submit sorts a batch for determinism and hands it to the deleter. Empty
// batches are dropped.
func (s *Selection) submit(items []DeletionItem) {
	if len(items) == 0 {
		return
	}
	sort.Slice(items, func(a, b int) bool {
		if items[a].Object != items[b].Object {
			return items[a].Object < items[b].Object
		}
		if items[a].Kind != items[b].Kind {
			return items[a].Kind < items[b].Kind
		}
		return items[a].Sub < items[b].Sub
	})
	s.deleter.DeleteItems(items)
}
