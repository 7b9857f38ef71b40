package selection

// updateType rebuilds the object -> selected instances index and derives the
// selection shape from it. Must run after every mutation of the list.
//
// Shape detection compares selected counts against the owning objects'
// volume and instance counts. Auxiliary items (negative volume index) are
// counted into the object's volume total when selected, so a full instance
// carrying support shapes still classifies as full.
func (s *Selection) updateType() {
	s.content = make(map[int]map[int]struct{})
	s.typ = Mixed

	for i := range s.list {
		item := s.items[i]
		insts, ok := s.content[item.ObjectIdx()]
		if !ok {
			insts = make(map[int]struct{})
			s.content[item.ObjectIdx()] = insts
		}
		insts[item.InstanceIdx()] = struct{}{}
	}

	requiresDisable := false

	switch {
	case !s.valid:
		s.typ = Invalid
	case len(s.list) == 0:
		s.typ = Empty
	case len(s.list) == 1:
		first := s.items[s.Indices()[0]]
		switch {
		case first.IsWipeTower():
			s.typ = WipeTower
		case first.IsModifier():
			s.typ = SingleModifier
			requiresDisable = true
		default:
			volumesCount := s.tree.VolumeCount(first.ObjectIdx())
			instancesCount := s.tree.InstanceCount(first.ObjectIdx())
			switch {
			case volumesCount*instancesCount == 1:
				s.typ = SingleFullObject
				// Ensures the correct mode is selected.
				s.mode = Instance
			case volumesCount == 1: // instancesCount > 1
				s.typ = SingleFullInstance
				s.mode = Instance
			default:
				s.typ = SingleVolume
				requiresDisable = true
			}
		}
	case len(s.content) == 1: // multiple items, single object
		var objectIdx int
		var selectedInstances int
		for obj, insts := range s.content {
			objectIdx = obj
			selectedInstances = len(insts)
		}

		auxCount := 0
		for _, i := range s.Indices() {
			if s.items[i].VolumeIdx() < 0 {
				auxCount++
			}
		}
		volumesCount := s.tree.VolumeCount(objectIdx) + auxCount
		instancesCount := s.tree.InstanceCount(objectIdx)

		switch {
		case volumesCount*instancesCount == len(s.list):
			s.typ = SingleFullObject
			s.mode = Instance
		case selectedInstances == 1:
			if volumesCount == len(s.list) {
				s.typ = SingleFullInstance
				s.mode = Instance
			} else {
				modifiersCount := 0
				for _, i := range s.Indices() {
					if s.items[i].IsModifier() {
						modifiersCount++
					}
				}
				if modifiersCount == 0 {
					s.typ = MultipleVolume
					requiresDisable = true
				} else if modifiersCount == len(s.list) {
					s.typ = MultipleModifier
					requiresDisable = true
				}
			}
		case selectedInstances > 1 && selectedInstances*volumesCount == len(s.list):
			s.typ = MultipleFullInstance
			s.mode = Instance
		}
	default: // multiple objects
		fullCount := 0
		for obj := range s.content {
			fullCount += s.tree.VolumeCount(obj) * s.tree.InstanceCount(obj)
		}
		if fullCount == len(s.list) {
			s.typ = MultipleFullObject
			s.mode = Instance
		}
	}

	objectIdx := s.ObjectIdx()
	instanceIdx := s.InstanceIdx()
	for _, item := range s.items {
		if requiresDisable {
			item.SetDisabled(item.ObjectIdx() != objectIdx || item.InstanceIdx() != instanceIdx)
		} else {
			item.SetDisabled(false)
		}
	}
}
