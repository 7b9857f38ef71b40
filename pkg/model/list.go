package model

import (
	"sort"

	"github.com/chazu/plater/pkg/selection"
)

// DocumentList applies deletion batches computed by the selection to the
// document, then rebuilds the item array and replays the index remap back
// into the selection. It is the concrete deletion-command collaborator.
type DocumentList struct {
	model *Model
	sel   *selection.Selection
}

// NewDocumentList creates a list over the given document. Bind attaches the
// selection once it exists (the selection needs the list at construction
// time, hence the two-step setup).
func NewDocumentList(m *Model) *DocumentList {
	return &DocumentList{model: m}
}

// Bind attaches the selection that receives remaps after deletions.
func (l *DocumentList) Bind(sel *selection.Selection) { l.sel = sel }

// DeleteItems applies a deletion batch. Entries are applied from the
// highest index down so that earlier deletions do not shift later ones.
func (l *DocumentList) DeleteItems(items []selection.DeletionItem) {
	if len(items) == 0 {
		return
	}

	l.model.CommitTransforms()

	batch := make([]selection.DeletionItem, len(items))
	copy(batch, items)
	sort.Slice(batch, func(a, b int) bool {
		if batch[a].Object != batch[b].Object {
			return batch[a].Object > batch[b].Object
		}
		return batch[a].Sub > batch[b].Sub
	})

	for _, d := range batch {
		switch d.Kind {
		case selection.DeleteObject:
			l.model.DeleteObject(d.Object)
		case selection.DeleteInstance:
			l.model.DeleteInstance(d.Object, d.Sub)
		case selection.DeleteVolume:
			l.model.DeleteVolume(d.Object, d.Sub)
		}
	}

	remap := l.model.Rebuild()
	if l.sel != nil {
		l.sel.SetItems(l.model.Items())
		l.sel.ItemsChanged(remap)
	}
}
