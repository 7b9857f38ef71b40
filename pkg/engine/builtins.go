package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plater/pkg/kernel"
	"github.com/chazu/plater/pkg/scene"
	"github.com/chazu/plater/pkg/selection"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms console Lisp source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: select-all -> select_all
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus
		// operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps an mgl64.Vec3.
type sexpVec3 struct {
	vec mgl64.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X(), v.vec.Y(), v.vec.Z())
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value, treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp. A bare keyword flag (value SexpNull)
// counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toAxis converts a keyword or string to a scene.Axis.
func toAxis(s zygo.Sexp) (scene.Axis, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	switch name {
	case "x":
		return scene.X, nil
	case "y":
		return scene.Y, nil
	case "z":
		return scene.Z, nil
	}
	return 0, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

// toVec3 extracts an mgl64.Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// vec3FromArgs reads three leading positional numbers as a vector.
func vec3FromArgs(pa kwArgs, what string) (mgl64.Vec3, error) {
	if len(pa.positional) < 3 {
		return mgl64.Vec3{}, fmt.Errorf("%s requires x y z arguments", what)
	}
	var v mgl64.Vec3
	for i := 0; i < 3; i++ {
		f, err := toFloat64(pa.positional[i])
		if err != nil {
			return mgl64.Vec3{}, fmt.Errorf("%s: component %d: %w", what, i, err)
		}
		v[i] = f
	}
	return v, nil
}

// kwFlag reads an optional boolean keyword argument.
func kwFlag(pa kwArgs, name, what string) (bool, error) {
	v, ok := pa.kw[name]
	if !ok {
		return false, nil
	}
	b, err := toBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %s: %w", what, name, err)
	}
	return b, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the placement console builtins into a zygomys
// environment. The builtins operate on the engine's live document and
// selection.
//
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens are converted to recognizable string literals.
func (e *Engine) registerBuiltins(env *zygo.Zlisp) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v mgl64.Vec3
		for i := 0; i < 3; i++ {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: component %d: %w", i, err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (object) -> object index
	// -----------------------------------------------------------------------
	env.AddFunction("object", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		idx := e.model.AddObject()
		e.rebuild()
		return &zygo.SexpInt{Val: int64(idx)}, nil
	})

	// -----------------------------------------------------------------------
	// (instance obj) -> instance index
	// -----------------------------------------------------------------------
	env.AddFunction("instance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("instance requires an object index")
		}
		obj, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("instance: object: %w", err)
		}
		if obj < 0 || obj >= e.model.ObjectCount() {
			return zygo.SexpNull, fmt.Errorf("instance: no object %d", obj)
		}
		idx := e.model.AddInstance(obj)
		e.rebuild()
		return &zygo.SexpInt{Val: int64(idx)}, nil
	})

	// -----------------------------------------------------------------------
	// (box obj :x 20 :y 20 :z 10 :modifier true) -> volume index
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("box requires an object index")
		}
		obj, err := toInt(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: object: %w", err)
		}
		if obj < 0 || obj >= e.model.ObjectCount() {
			return zygo.SexpNull, fmt.Errorf("box: no object %d", obj)
		}

		dims := mgl64.Vec3{10, 10, 10}
		for i, axis := range []string{"x", "y", "z"} {
			if v, ok := pa.kw[axis]; ok {
				f, err := toFloat64(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("box: %s: %w", axis, err)
				}
				dims[i] = f
			}
		}
		modifier, err := kwFlag(pa, "modifier", "box")
		if err != nil {
			return zygo.SexpNull, err
		}

		solid := e.kernel.Box(dims.X(), dims.Y(), dims.Z())
		idx := e.model.AddVolume(obj, kernel.HullPoints(solid), modifier)
		e.rebuild()
		return &zygo.SexpInt{Val: int64(idx)}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder obj :height 30 :radius 5 :modifier true) -> volume index
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("cylinder requires an object index")
		}
		obj, err := toInt(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: object: %w", err)
		}
		if obj < 0 || obj >= e.model.ObjectCount() {
			return zygo.SexpNull, fmt.Errorf("cylinder: no object %d", obj)
		}

		height, radius := 10.0, 5.0
		if v, ok := pa.kw["height"]; ok {
			if height, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
			}
		}
		if v, ok := pa.kw["radius"]; ok {
			if radius, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
			}
		}
		modifier, err := kwFlag(pa, "modifier", "cylinder")
		if err != nil {
			return zygo.SexpNull, err
		}

		solid := e.kernel.Cylinder(height, radius)
		idx := e.model.AddVolume(obj, kernel.HullPoints(solid), modifier)
		e.rebuild()
		return &zygo.SexpInt{Val: int64(idx)}, nil
	})

	// -----------------------------------------------------------------------
	// (support obj :x 5 :y 5 :z 20) -- auxiliary volume, not part of the
	// object's editable volumes
	// -----------------------------------------------------------------------
	env.AddFunction("support", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("support requires an object index")
		}
		obj, err := toInt(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("support: object: %w", err)
		}
		if obj < 0 || obj >= e.model.ObjectCount() {
			return zygo.SexpNull, fmt.Errorf("support: no object %d", obj)
		}

		dims := mgl64.Vec3{5, 5, 5}
		for i, axis := range []string{"x", "y", "z"} {
			if v, ok := pa.kw[axis]; ok {
				f, err := toFloat64(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("support: %s: %w", axis, err)
				}
				dims[i] = f
			}
		}

		solid := e.kernel.Box(dims.X(), dims.Y(), dims.Z())
		e.model.AddAuxVolume(obj, kernel.HullPoints(solid))
		e.rebuild()
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (wipe-tower :x 60 :y 60 :z 80 :at (vec3 150 150 0))
	// -----------------------------------------------------------------------
	env.AddFunction("wipe_tower", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		dims := mgl64.Vec3{60, 60, 80}
		for i, axis := range []string{"x", "y", "z"} {
			if v, ok := pa.kw[axis]; ok {
				f, err := toFloat64(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("wipe-tower: %s: %w", axis, err)
				}
				dims[i] = f
			}
		}
		var position mgl64.Vec3
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("wipe-tower: at: %w", err)
			}
			position = vec
		}

		solid := e.kernel.Box(dims.X(), dims.Y(), dims.Z())
		e.model.SetWipeTower(kernel.HullPoints(solid), position)
		e.rebuild()
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (select idx :extend true) / (deselect idx)
	// -----------------------------------------------------------------------
	env.AddFunction("select", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("select requires an item index")
		}
		idx, err := toInt(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select: item: %w", err)
		}
		extend, err := kwFlag(pa, "extend", "select")
		if err != nil {
			return zygo.SexpNull, err
		}
		e.sel.Add(idx, !extend)
		return zygo.SexpNull, nil
	})

	env.AddFunction("deselect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("deselect requires an item index")
		}
		idx, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deselect: item: %w", err)
		}
		e.sel.Remove(idx)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (select-object obj :extend true) / (deselect-object obj)
	// -----------------------------------------------------------------------
	env.AddFunction("select_object", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("select-object requires an object index")
		}
		obj, err := toInt(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select-object: object: %w", err)
		}
		extend, err := kwFlag(pa, "extend", "select-object")
		if err != nil {
			return zygo.SexpNull, err
		}
		e.sel.AddObject(obj, !extend)
		return zygo.SexpNull, nil
	})

	env.AddFunction("deselect_object", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("deselect-object requires an object index")
		}
		obj, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deselect-object: object: %w", err)
		}
		e.sel.RemoveObject(obj)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (select-instance obj inst :extend true) / (deselect-instance obj inst)
	// -----------------------------------------------------------------------
	env.AddFunction("select_instance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("select-instance requires object and instance indices")
		}
		obj, err := toInt(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select-instance: object: %w", err)
		}
		inst, err := toInt(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select-instance: instance: %w", err)
		}
		extend, err := kwFlag(pa, "extend", "select-instance")
		if err != nil {
			return zygo.SexpNull, err
		}
		e.sel.AddInstance(obj, inst, !extend)
		return zygo.SexpNull, nil
	})

	env.AddFunction("deselect_instance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("deselect-instance requires object and instance indices")
		}
		obj, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deselect-instance: object: %w", err)
		}
		inst, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deselect-instance: instance: %w", err)
		}
		e.sel.RemoveInstance(obj, inst)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (select-volume obj vol inst :extend true) / (deselect-volume obj vol)
	// -----------------------------------------------------------------------
	env.AddFunction("select_volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 3 {
			return zygo.SexpNull, fmt.Errorf("select-volume requires object, volume and instance indices")
		}
		obj, err := toInt(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select-volume: object: %w", err)
		}
		vol, err := toInt(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select-volume: volume: %w", err)
		}
		inst, err := toInt(pa.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select-volume: instance: %w", err)
		}
		extend, err := kwFlag(pa, "extend", "select-volume")
		if err != nil {
			return zygo.SexpNull, err
		}
		e.sel.AddVolume(obj, vol, inst, !extend)
		return zygo.SexpNull, nil
	})

	env.AddFunction("deselect_volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("deselect-volume requires object and volume indices")
		}
		obj, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deselect-volume: object: %w", err)
		}
		vol, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deselect-volume: volume: %w", err)
		}
		e.sel.RemoveVolume(obj, vol)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (select-all) / (clear)
	// -----------------------------------------------------------------------
	env.AddFunction("select_all", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		e.sel.AddAll()
		return zygo.SexpNull, nil
	})

	env.AddFunction("clear", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		e.sel.Clear()
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (drag) -- snapshot transforms at gesture start
	// -----------------------------------------------------------------------
	env.AddFunction("drag", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		e.sel.StartDragging()
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (translate x y z :local true)
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, err := vec3FromArgs(pa, "translate")
		if err != nil {
			return zygo.SexpNull, err
		}
		local, err := kwFlag(pa, "local", "translate")
		if err != nil {
			return zygo.SexpNull, err
		}
		e.sel.Translate(v, local)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (rotate x y z :local true :relative true :independent true)
	// Angles are in radians.
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, err := vec3FromArgs(pa, "rotate")
		if err != nil {
			return zygo.SexpNull, err
		}
		var tt selection.TransformationType
		local, err := kwFlag(pa, "local", "rotate")
		if err != nil {
			return zygo.SexpNull, err
		}
		relative, err := kwFlag(pa, "relative", "rotate")
		if err != nil {
			return zygo.SexpNull, err
		}
		independent, err := kwFlag(pa, "independent", "rotate")
		if err != nil {
			return zygo.SexpNull, err
		}
		if local {
			tt |= selection.TransformationLocal
		}
		if relative {
			tt |= selection.TransformationRelative
		}
		if independent {
			tt |= selection.TransformationIndependent
		}
		e.sel.Rotate(v, tt)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (flatten nx ny nz) -- rotate so the given face normal points down
	// -----------------------------------------------------------------------
	env.AddFunction("flatten", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, err := vec3FromArgs(pa, "flatten")
		if err != nil {
			return zygo.SexpNull, err
		}
		e.sel.FlatteningRotate(v)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (scale sx sy sz :local true)
	// -----------------------------------------------------------------------
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, err := vec3FromArgs(pa, "scale")
		if err != nil {
			return zygo.SexpNull, err
		}
		local, err := kwFlag(pa, "local", "scale")
		if err != nil {
			return zygo.SexpNull, err
		}
		e.sel.Scale(v, local)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (mirror :x)
	// -----------------------------------------------------------------------
	env.AddFunction("mirror", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("mirror requires an axis keyword")
		}
		axis, err := toAxis(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mirror: %w", err)
		}
		e.sel.Mirror(axis)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (translate-object obj x y z) / (translate-instance obj inst x y z)
	// -----------------------------------------------------------------------
	env.AddFunction("translate_object", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 4 {
			return zygo.SexpNull, fmt.Errorf("translate-object requires object index and x y z")
		}
		obj, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate-object: object: %w", err)
		}
		var v mgl64.Vec3
		for i := 0; i < 3; i++ {
			f, err := toFloat64(args[i+1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("translate-object: component %d: %w", i, err)
			}
			v[i] = f
		}
		e.sel.TranslateObject(obj, v)
		return zygo.SexpNull, nil
	})

	env.AddFunction("translate_instance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 5 {
			return zygo.SexpNull, fmt.Errorf("translate-instance requires object, instance indices and x y z")
		}
		obj, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate-instance: object: %w", err)
		}
		inst, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate-instance: instance: %w", err)
		}
		var v mgl64.Vec3
		for i := 0; i < 3; i++ {
			f, err := toFloat64(args[i+2])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("translate-instance: component %d: %w", i, err)
			}
			v[i] = f
		}
		e.sel.TranslateInstance(obj, inst, v)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (erase) -- delete the selected content at its natural granularity
	// -----------------------------------------------------------------------
	env.AddFunction("erase", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		e.sel.Erase()
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (shape) / (mode) / (selected) -- introspection
	// -----------------------------------------------------------------------
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return &zygo.SexpStr{S: e.sel.Shape().String()}, nil
	})

	env.AddFunction("mode", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return &zygo.SexpStr{S: e.sel.Mode().String()}, nil
	})

	env.AddFunction("selected", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		indices := e.sel.Indices()
		elems := make([]zygo.Sexp, len(indices))
		for i, idx := range indices {
			elems[i] = &zygo.SexpInt{Val: int64(idx)}
		}
		return &zygo.SexpArray{Val: elems, Env: env}, nil
	})
}
