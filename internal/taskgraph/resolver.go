// Package taskgraph implements component D: the base-task resolver. It
// walks every name declared in a decoded document and produces raw
// (un-expanded) tasks, honoring baseTask chains, implicit `child@parent`
// template derivation, and the overlay-from-a-prior-parse case, with
// cycle detection over baseTask chains.
//
// Grounded directly on TaskData.cpp::parse's generate_task_and_its_base /
// generate_fun state machine: the four statuses below share both the
// names and the zero-value semantics of the original's TaskStatus enum
// (NotToBeGenerate == 0 is also Go's zero value for an unset map entry,
// which is exactly how the original's std::unordered_map::operator[]
// treats a name it has never seen). The permanent/temporary-set cycle
// idiom mirrors internal/dag/dag.go's DetectCycles.
package taskgraph

import (
	"fmt"
	"strings"

	"github.com/vk/taskcatalog/internal/taskdefaults"
	"github.com/vk/taskcatalog/internal/taskfield"
	"github.com/vk/taskcatalog/internal/tasktype"
	"github.com/zclconf/go-cty/cty"
)

// status mirrors TaskData.cpp's TaskStatus enum; the zero value
// (statusNotToBeGenerate) is deliberately what an unset map entry
// returns, matching the original's default-constructed map access for
// names that were never declared.
type status int

const (
	statusNotToBeGenerate status = iota
	statusToBeGenerate
	statusGenerating
	statusNotExists
)

// CycleError reports a baseTask chain that revisits a node still being
// generated.
type CycleError struct {
	Task string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("task %q is generated cyclically", e.Task)
}

// UnknownTaskError reports a must-exist reference that resolved to
// nothing.
type UnknownTaskError struct {
	Task string
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("unknown task: %q", e.Task)
}

// Resolver holds the persistent raw-task table across one or more Parse
// calls, so a later Parse can overlay/override tasks produced by an
// earlier one (spec.md §4.D bullet 2).
type Resolver struct {
	defaults *taskdefaults.Registry
	debug    bool
	raw      map[string]*tasktype.Task
}

// New constructs an empty resolver.
func New(defaults *taskdefaults.Registry, debug bool) *Resolver {
	return &Resolver{
		defaults: defaults,
		debug:    debug,
		raw:      make(map[string]*tasktype.Task),
	}
}

// Raw returns the previously-interned raw task named name, or nil.
func (r *Resolver) Raw(name string) *tasktype.Task {
	return r.raw[name]
}

// All returns a snapshot of every interned raw task, keyed by name.
func (r *Resolver) All() map[string]*tasktype.Task {
	out := make(map[string]*tasktype.Task, len(r.raw))
	for k, v := range r.raw {
		out[k] = v
	}
	return out
}

// MaterializeTemplate materializes and interns an implicit `prefix@parent`
// derivation on top of an already-resolved parent task. Used by the
// lookup facade (component F) for names discovered only at lookup time,
// long after Parse has returned.
func (r *Resolver) MaterializeTemplate(name, prefix string, parent *tasktype.Task, body cty.Value) (*tasktype.Task, error) {
	t, err := taskfield.Materialize(r.defaults, name, body, parent, prefix, taskfield.Options{Debug: r.debug})
	if err != nil {
		return nil, err
	}
	r.raw[name] = t
	return t, nil
}

// emptyObject is substituted for the task body of an implicitly-derived
// template whose document never declared the name explicitly — there is
// nothing to decode, it simply inherits everything from its parent.
var emptyObject = cty.ObjectVal(map[string]cty.Value{})

// Parse walks every key of doc (an object value mapping task name to task
// body) and materializes a raw task for each, per spec.md §4.D. On
// success the resolver's raw-task table gains every newly-generated
// entry; on failure the table is left exactly as it was before the call
// (§7: "either parse succeeds wholesale or the resolver leaves its
// tables in the pre-parse state").
func (r *Resolver) Parse(doc cty.Value) error {
	if doc.IsNull() || !doc.Type().IsObjectType() {
		return fmt.Errorf("task document must be an object")
	}
	docMap := doc.AsValueMap()

	status := make(map[string]status, len(docMap))
	for name := range docMap {
		status[name] = statusToBeGenerate
	}

	scratch := make(map[string]*tasktype.Task, len(r.raw))
	for k, v := range r.raw {
		scratch[k] = v
	}

	var firstErr error

	intern := func(name, prefix string, parent *tasktype.Task, body cty.Value) bool {
		t, err := taskfield.Materialize(r.defaults, name, body, parent, prefix, taskfield.Options{Debug: r.debug})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return false
		}
		status[name] = statusNotToBeGenerate
		scratch[name] = t
		return true
	}

	var generate func(name string, mustExist bool) bool
	generate = func(name string, mustExist bool) bool {
		switch status[name] {
		case statusNotToBeGenerate:
			if _, ok := scratch[name]; ok {
				return true
			}
			if at := strings.IndexByte(name, '@'); at >= 0 {
				return generate(name[at+1:], mustExist)
			}
			status[name] = statusNotExists
			fallthrough
		case statusNotExists:
			if mustExist && firstErr == nil {
				firstErr = &UnknownTaskError{Task: name}
			}
			return false
		case statusToBeGenerate:
			status[name] = statusGenerating
			body := docMap[name]

			hasBase, baseName := findBaseTask(body)
			if hasBase {
				if baseName != "" {
					if !generate(baseName, mustExist) {
						return false
					}
					return intern(name, "", scratch[baseName], body)
				}
				// baseTask == "": skip the overlay path and continue to
				// the implicit-template and default paths below, matching
				// the original's control flow (the empty-base check does
				// nothing and execution continues past the whole
				// if/else-if chain).
			} else if existing, ok := scratch[name]; ok {
				return intern(name, "", existing, body)
			}

			if at := strings.IndexByte(name, '@'); at >= 0 {
				base := name[at+1:]
				if generate(base, false) {
					return intern(name, name[:at], scratch[base], body)
				}
			}
			return intern(name, "", nil, body)
		case statusGenerating:
			if firstErr == nil {
				firstErr = &CycleError{Task: name}
			}
			return false
		default:
			return false
		}
	}

	for name := range docMap {
		generate(name, true)
	}

	if firstErr != nil {
		return firstErr
	}

	r.raw = scratch
	return nil
}

// findBaseTask reports whether body declares a "baseTask" key at all,
// and its value (which may be empty).
func findBaseTask(body cty.Value) (bool, string) {
	if body.IsNull() || !body.Type().IsObjectType() || !body.Type().HasAttribute("baseTask") {
		return false, ""
	}
	v := body.GetAttr("baseTask")
	if v.IsNull() {
		return false, ""
	}
	return true, v.AsString()
}

// Body returns the decoded object belonging to name within doc, or the
// empty object if the document never declared name (the case for a
// `child@parent` name that is only ever referenced implicitly).
func Body(doc cty.Value, name string) cty.Value {
	if doc.IsNull() || !doc.Type().IsObjectType() || !doc.Type().HasAttribute(name) {
		return emptyObject
	}
	return doc.GetAttr(name)
}
