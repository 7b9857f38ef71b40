// Package engine provides the Lisp console for the placement view. It wraps
// zygomys in a sandboxed environment whose builtins author plate content
// (objects, instances, volumes) and drive the selection: select, drag,
// translate, rotate, scale, mirror, erase.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/plater/pkg/kernel"
	"github.com/chazu/plater/pkg/model"
	"github.com/chazu/plater/pkg/selection"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter over a live document and selection.
// Unlike a pure evaluator it mutates shared state, so evaluations run on
// the calling thread without a timeout; a panic in a builtin is recovered
// and reported as a fatal error.
type Engine struct {
	model  *model.Model
	sel    *selection.Selection
	kernel kernel.Kernel
	list   *model.DocumentList
}

// New creates an engine over the given document, selection and kernel.
func New(m *model.Model, sel *selection.Selection, k kernel.Kernel, list *model.DocumentList) *Engine {
	return &Engine{model: m, sel: sel, kernel: k, list: list}
}

// Evaluate runs console source against the live document.
//
// Return semantics:
//   - On success: nil errors + nil error
//   - On parse/eval failure: eval errors + nil error
//   - On fatal failure (panic in a builtin): nil + error
func (e *Engine) Evaluate(source string) (evalErrs []EvalError, err error) {
	defer func() {
		if r := recover(); r != nil {
			evalErrs = nil
			err = fmt.Errorf("panic during evaluation: %v", r)
		}
	}()

	if strings.TrimSpace(source) == "" {
		return nil, nil
	}

	// Sandbox mode prevents console code from reaching the filesystem or
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	e.registerBuiltins(env)

	if loadErr := env.LoadString(preprocessSource(source)); loadErr != nil {
		return parseZygomysError(loadErr), nil
	}
	if _, runErr := env.Run(); runErr != nil {
		return parseZygomysError(runErr), nil
	}
	return nil, nil
}

// rebuild regenerates the item array after a structural change and replays
// the remap into the selection.
func (e *Engine) rebuild() {
	remap := e.model.Rebuild()
	e.sel.SetItems(e.model.Items())
	e.sel.ItemsChanged(remap)
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError
// values, extracting line numbers when the message carries them.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
