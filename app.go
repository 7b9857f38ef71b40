package main

import (
	"context"
	"log"

	"github.com/chazu/plater/pkg/engine"
	"github.com/chazu/plater/pkg/kernel"
	"github.com/chazu/plater/pkg/kernel/sdfx"
	"github.com/chazu/plater/pkg/model"
	"github.com/chazu/plater/pkg/selection"
)

// sidebarState implements selection.Sidebar. The real object list lives in
// the frontend; the backend only tracks that its cached hierarchy is stale
// and must be re-sent.
type sidebarState struct {
	stale bool
}

func (s *sidebarState) ResetCache() { s.stale = true }

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx     context.Context
	model   *model.Model
	sel     *selection.Selection
	engine  *engine.Engine
	kernel  kernel.Kernel
	sidebar *sidebarState
}

// ItemData is the JSON-serializable per-item state sent to the frontend.
type ItemData struct {
	Index     int        `json:"index"`
	Object    int        `json:"object"`
	Instance  int        `json:"instance"`
	Volume    int        `json:"volume"`
	Modifier  bool       `json:"modifier"`
	WipeTower bool       `json:"wipeTower"`
	Selected  bool       `json:"selected"`
	Disabled  bool       `json:"disabled"`
	BoxMin    [3]float64 `json:"boxMin"`
	BoxMax    [3]float64 `json:"boxMax"`
}

// SelectionState summarizes the selection for the frontend gizmos.
type SelectionState struct {
	Shape        string `json:"shape"`
	Mode         string `json:"mode"`
	Indices      []int  `json:"indices"`
	UniformScale bool   `json:"uniformScale"`
	LocalAxes    bool   `json:"localAxes"`
	SidebarStale bool   `json:"sidebarStale"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Items  []ItemData      `json:"items"`
	State  SelectionState  `json:"state"`
	Errors []EvalErrorData `json:"errors"`
}

// NewApp creates a new App with an empty document, a selection over it, and
// the console engine wired to both.
func NewApp() *App {
	m := model.New()
	list := model.NewDocumentList(m)
	sidebar := &sidebarState{}
	sel := selection.New(sidebar, list)
	list.Bind(sel)
	sel.SetTree(m)
	sel.SetItems(m.Items())
	k := sdfx.New()

	return &App{
		model:   m,
		sel:     sel,
		engine:  engine.New(m, sel, k, list),
		kernel:  k,
		sidebar: sidebar,
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate runs console source against the live document and returns the
// resulting plate and selection state. This is the primary binding called
// by the frontend console.
func (a *App) Evaluate(source string) EvalResult {
	evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		log.Printf("Evaluate fatal error: %v", err)
		return EvalResult{
			Items:  []ItemData{},
			State:  a.selectionState(),
			Errors: []EvalErrorData{{Message: err.Error()}},
		}
	}

	result := EvalResult{
		Items:  a.itemData(),
		State:  a.selectionState(),
		Errors: []EvalErrorData{},
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    e.Line,
			Col:     e.Col,
			Message: e.Message,
		})
	}
	return result
}

// State returns the current plate and selection state without evaluating
// anything, for frontend refreshes.
func (a *App) State() EvalResult {
	return EvalResult{
		Items:  a.itemData(),
		State:  a.selectionState(),
		Errors: []EvalErrorData{},
	}
}

func (a *App) itemData() []ItemData {
	items := a.model.Items()
	data := make([]ItemData, 0, len(items))
	for i, item := range items {
		box := item.TransformedConvexHullBox()
		data = append(data, ItemData{
			Index:     i,
			Object:    item.ObjectIdx(),
			Instance:  item.InstanceIdx(),
			Volume:    item.VolumeIdx(),
			Modifier:  item.IsModifier(),
			WipeTower: item.IsWipeTower(),
			Selected:  item.Selected(),
			Disabled:  item.Disabled(),
			BoxMin:    [3]float64{box.Min.X(), box.Min.Y(), box.Min.Z()},
			BoxMax:    [3]float64{box.Max.X(), box.Max.Y(), box.Max.Z()},
		})
	}
	return data
}

func (a *App) selectionState() SelectionState {
	state := SelectionState{
		Shape:        a.sel.Shape().String(),
		Mode:         a.sel.Mode().String(),
		Indices:      a.sel.Indices(),
		UniformScale: a.sel.RequiresUniformScale(),
		LocalAxes:    a.sel.RequiresLocalAxes(),
		SidebarStale: a.sidebar.stale,
	}
	a.sidebar.stale = false
	return state
}
