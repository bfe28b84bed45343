package preproc

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnbalanced is returned for #else/#elif/#endif without #if, and for #if
// without #endif.
var ErrUnbalanced = errors.New("unbalanced conditional directive")

// Expander derives configurations from conditional directives and expands a
// unit for one of them.
type Expander struct {
	// Defines are defined in every configuration and never produce one.
	Defines []string
	// Undefs never produce a configuration and are never defined.
	Undefs []string
}

// Configurations returns the configuration names of text: the empty default
// configuration first, then one name per distinct set of macros guarding a
// conditional block, in order of first appearance. A name is the sorted
// macro set joined by ';'.
func (e *Expander) Configurations(text []byte) ([]string, error) {
	skip := make(map[string]bool, len(e.Defines)+len(e.Undefs))
	for _, d := range e.Defines {
		skip[d] = true
	}
	for _, u := range e.Undefs {
		skip[u] = true
	}
	// макросы, определённые самим файлом (include guards), конфигураций не дают
	definedHere := make(map[string]bool)

	type frame struct {
		parent []string // path of the enclosing branch
		path   []string // path of the current branch
		kind   dirKind
		arg    string
	}
	var (
		stack []frame
		names = []string{""}
		seen  = map[string]bool{"": true}
	)

	branch := func(parent []string, req ...string) []string {
		set := slices.Clone(parent)
		for _, r := range req {
			if r != "" && !skip[r] && !definedHere[r] && !slices.Contains(set, r) {
				set = append(set, r)
			}
		}
		slices.Sort(set)
		if name := strings.Join(set, ";"); !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		return set
	}
	top := func() *frame { return &stack[len(stack)-1] }

	for _, ln := range splitLines(string(text)) {
		d := ln.dir
		switch d.kind {
		case dirIfdef, dirIfndef, dirIf:
			var parent []string
			if len(stack) > 0 {
				parent = top().path
			}
			f := frame{parent: parent, kind: d.kind, arg: d.arg}
			switch d.kind {
			case dirIfdef:
				f.path = branch(parent, d.arg)
			case dirIf:
				f.path = branch(parent, conditionSymbols(d.arg)...)
			default:
				f.path = parent
			}
			stack = append(stack, f)
		case dirElif:
			if len(stack) == 0 {
				return nil, unbalanced("#elif", ln)
			}
			top().path = branch(top().parent, conditionSymbols(d.arg)...)
		case dirElse:
			if len(stack) == 0 {
				return nil, unbalanced("#else", ln)
			}
			if f := top(); f.kind == dirIfndef {
				f.path = branch(f.parent, f.arg)
			} else {
				f.path = f.parent
			}
		case dirEndif:
			if len(stack) == 0 {
				return nil, unbalanced("#endif", ln)
			}
			stack = stack[:len(stack)-1]
		case dirDefine:
			definedHere[d.arg] = true
		}
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: %d #if without #endif", ErrUnbalanced, len(stack))
	}
	return names, nil
}

func unbalanced(what string, ln line) error {
	return fmt.Errorf("%w: %s without #if at line %d", ErrUnbalanced, what, ln.first+1)
}

// ExpandConfig returns text as seen in configuration config. The result has
// exactly as many lines as text.
func (e *Expander) ExpandConfig(text []byte, config string) ([]byte, error) {
	defined := make(map[string]bool)
	for _, d := range e.Defines {
		defined[d] = true
	}
	if config != "" {
		for _, d := range strings.Split(config, ";") {
			defined[d] = true
		}
	}
	for _, u := range e.Undefs {
		delete(defined, u)
	}
	isDefined := func(name string) bool { return defined[name] }

	type frame struct {
		parentActive bool
		active       bool
		taken        bool // some branch of this #if already matched
		sawElse      bool
	}
	var stack []frame
	active := func() bool { return len(stack) == 0 || stack[len(stack)-1].active }

	phys := strings.Split(string(text), "\n")
	keep := make([]bool, len(phys))

	for _, ln := range splitLines(string(text)) {
		d := ln.dir
		emit := false
		switch d.kind {
		case dirIfdef, dirIfndef, dirIf:
			var cond bool
			switch d.kind {
			case dirIfdef:
				cond = isDefined(d.arg)
			case dirIfndef:
				cond = !isDefined(d.arg)
			default:
				var err error
				if cond, err = evalCondition(d.arg, isDefined); err != nil {
					return nil, fmt.Errorf("line %d: %w", ln.first+1, err)
				}
			}
			parent := active()
			stack = append(stack, frame{parentActive: parent, active: parent && cond, taken: cond})
		case dirElif:
			if len(stack) == 0 {
				return nil, unbalanced("#elif", ln)
			}
			f := &stack[len(stack)-1]
			if f.taken {
				f.active = false
				break
			}
			cond, err := evalCondition(d.arg, isDefined)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", ln.first+1, err)
			}
			f.active = f.parentActive && cond
			f.taken = cond
		case dirElse:
			if len(stack) == 0 {
				return nil, unbalanced("#else", ln)
			}
			f := &stack[len(stack)-1]
			if f.sawElse {
				return nil, fmt.Errorf("%w: second #else at line %d", ErrUnbalanced, ln.first+1)
			}
			f.active = f.parentActive && !f.taken
			f.taken = true
			f.sawElse = true
		case dirEndif:
			if len(stack) == 0 {
				return nil, unbalanced("#endif", ln)
			}
			stack = stack[:len(stack)-1]
		case dirDefine:
			if active() {
				defined[d.arg] = true
			}
		case dirUndef:
			if active() {
				delete(defined, d.arg)
			}
		default:
			emit = active()
		}
		for k := range ln.count {
			keep[ln.first+k] = emit
		}
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: %d #if without #endif", ErrUnbalanced, len(stack))
	}

	var sb strings.Builder
	sb.Grow(len(text))
	for i, p := range phys {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if keep[i] {
			sb.WriteString(p)
		}
	}
	return []byte(sb.String()), nil
}
