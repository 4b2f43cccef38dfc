// Package taskfield implements component C: the field materializer. It
// builds a single fully-populated tasktype.Task from a decoded task body
// (a cty.Value object) plus a parent prototype, applying the
// override-vs-inherit rules of spec.md §4.C.
//
// Grounded on TaskData.cpp's generate_task_info / append_base_task_info /
// generate_match_task_info / generate_ocr_task_info / generate_hash_task_info.
package taskfield

import (
	"fmt"

	"github.com/vk/taskcatalog/internal/taskdefaults"
	"github.com/vk/taskcatalog/internal/tasktype"
	"github.com/zclconf/go-cty/cty"
)

// FieldError names the task and field an invalid decoded value was found
// on, so callers can report a precise parse error.
type FieldError struct {
	Task  string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("task %q: field %q: %v", e.Task, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Options controls materialization behavior that only matters in debug
// builds.
type Options struct {
	Debug bool
}

// Materialize builds a Task named name from obj, inheriting from parent
// (or the defaults registry's prototypes, if parent is nil). prefix is the
// pre-`@` segment when this is an implicit template derivation, and is
// empty otherwise.
func Materialize(defaults *taskdefaults.Registry, name string, obj cty.Value, parent *tasktype.Task, prefix string, opts Options) (*tasktype.Task, error) {
	if parent == nil {
		parent = defaults.Base()
		prefix = ""
	}

	algorithm := parent.Algorithm
	sameAlgorithm := true
	if s, ok := getString(obj, "algorithm"); ok {
		algorithm = tasktype.ParseAlgorithmType(s)
		if algorithm == tasktype.AlgorithmInvalid {
			return nil, &FieldError{Task: name, Field: "algorithm", Err: fmt.Errorf("unknown algorithm %q", s)}
		}
		sameAlgorithm = algorithm == parent.Algorithm
	}

	variantParent := parent
	if !sameAlgorithm {
		variantParent = nil
	}

	task := &tasktype.Task{}
	var err error
	switch algorithm {
	case tasktype.AlgorithmMatchTemplate:
		task.Match, err = materializeMatch(defaults, name, obj, variantParent)
	case tasktype.AlgorithmOcrDetect:
		task.Ocr, err = materializeOcr(defaults, obj, variantParent)
	case tasktype.AlgorithmHash:
		task.Hash, err = materializeHash(defaults, obj, variantParent)
	case tasktype.AlgorithmJustReturn:
		// No extra payload.
	default:
		err = &FieldError{Task: name, Field: "algorithm", Err: fmt.Errorf("unknown algorithm")}
	}
	if err != nil {
		return nil, err
	}

	if err := appendBaseFields(task, name, obj, parent, prefix, opts); err != nil {
		return nil, err
	}

	task.Algorithm = algorithm
	task.Name = name
	return task, nil
}

func materializeMatch(defaults *taskdefaults.Registry, name string, obj cty.Value, parent *tasktype.Task) (*tasktype.MatchPayload, error) {
	base := defaults.Match()
	if parent != nil && parent.Match != nil {
		base = parent.Match
	}
	p := &tasktype.MatchPayload{}

	// An omitted template name does not inherit: it always defaults to
	// "<task_name>.png", matching TaskData.cpp's
	// task_json.get("template", name + ".png"). A declared template
	// string, even an empty one, is used as-is.
	if s, ok := getString(obj, "template"); ok {
		p.TemplName = s
	} else {
		p.TemplName = name + ".png"
	}

	if f, ok := getFloat(obj, "templThreshold"); ok {
		p.TemplThreshold = f
	} else {
		p.TemplThreshold = base.TemplThreshold
	}

	if mr, ok, err := getMaskRange(obj, "maskRange"); err != nil {
		return nil, &FieldError{Task: name, Field: "maskRange", Err: err}
	} else if ok {
		p.MaskRange = mr
	} else {
		p.MaskRange = base.MaskRange
	}
	return p, nil
}

func materializeOcr(defaults *taskdefaults.Registry, obj cty.Value, parent *tasktype.Task) (*tasktype.OcrPayload, error) {
	base := defaults.Ocr()
	if parent != nil && parent.Ocr != nil {
		base = parent.Ocr
	}
	p := &tasktype.OcrPayload{}

	if list, ok := getStringList(obj, "text"); ok {
		p.Text = list
	} else {
		p.Text = append([]string(nil), base.Text...)
	}

	if b, ok := getBool(obj, "fullMatch"); ok {
		p.FullMatch = b
	} else {
		p.FullMatch = base.FullMatch
	}
	if b, ok := getBool(obj, "isAscii"); ok {
		p.IsAscii = b
	} else {
		p.IsAscii = base.IsAscii
	}
	if b, ok := getBool(obj, "withoutDet"); ok {
		p.WithoutDet = b
	} else {
		p.WithoutDet = base.WithoutDet
	}

	if rm, ok, err := getReplaceMap(obj, "ocrReplace"); err != nil {
		return nil, &FieldError{Field: "ocrReplace", Err: err}
	} else if ok {
		p.ReplaceMap = rm
	} else {
		p.ReplaceMap = append([]tasktype.ReplacePair(nil), base.ReplaceMap...)
	}
	return p, nil
}

func materializeHash(defaults *taskdefaults.Registry, obj cty.Value, parent *tasktype.Task) (*tasktype.HashPayload, error) {
	base := defaults.Hash()
	if parent != nil && parent.Hash != nil {
		base = parent.Hash
	}
	p := &tasktype.HashPayload{}

	if list, ok := getStringList(obj, "hash"); ok {
		p.Hashes = list
	} else {
		p.Hashes = append([]string(nil), base.Hashes...)
	}

	if i, ok := getInt(obj, "threshold"); ok {
		p.DistThreshold = i
	} else {
		p.DistThreshold = base.DistThreshold
	}

	if mr, ok, err := getMaskRange(obj, "maskRange"); err != nil {
		return nil, &FieldError{Field: "maskRange", Err: err}
	} else if ok {
		p.MaskRange = mr
	} else {
		p.MaskRange = base.MaskRange
	}

	if b, ok := getBool(obj, "bound"); ok {
		p.Bound = b
	} else {
		p.Bound = base.Bound
	}
	return p, nil
}

// appendPrefix rewrites every inherited list-field name by prepending
// prefix@, per spec.md §4.C rule 3. Called only for inherited (not
// object-supplied) lists.
func appendPrefix(names []string, prefix string) []string {
	if prefix == "" || len(names) == 0 {
		return append([]string(nil), names...)
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = prefix + "@" + n
	}
	return out
}

func appendBaseFields(task *tasktype.Task, name string, obj cty.Value, parent *tasktype.Task, prefix string, opts Options) error {
	if s, ok := getString(obj, "action"); ok {
		task.Action = tasktype.ParseProcessTaskAction(s)
		if task.Action == tasktype.ActionInvalid {
			return &FieldError{Task: name, Field: "action", Err: fmt.Errorf("unknown action %q", s)}
		}
	} else {
		task.Action = parent.Action
	}

	if b, ok := getBool(obj, "cache"); ok {
		task.Cache = b
	} else {
		task.Cache = parent.Cache
	}

	if i, ok := getInt(obj, "maxTimes"); ok {
		task.MaxTimes = i
	} else {
		task.MaxTimes = parent.MaxTimes
	}

	if i, ok := getInt(obj, "preDelay"); ok {
		task.PreDelay = i
	} else {
		task.PreDelay = parent.PreDelay
	}
	if i, ok := getInt(obj, "postDelay"); ok {
		task.PostDelay = i
	} else {
		task.PostDelay = parent.PostDelay
	}

	if list, ok := getStringList(obj, "exceededNext"); ok {
		task.ExceededNext = list
	} else {
		task.ExceededNext = appendPrefix(parent.ExceededNext, prefix)
	}
	if list, ok := getStringList(obj, "onErrorNext"); ok {
		task.OnErrorNext = list
	} else {
		task.OnErrorNext = appendPrefix(parent.OnErrorNext, prefix)
	}
	if list, ok := getStringList(obj, "reduceOtherTimes"); ok {
		task.ReduceOtherTimes = list
	} else {
		task.ReduceOtherTimes = appendPrefix(parent.ReduceOtherTimes, prefix)
	}
	if list, ok := getStringList(obj, "sub"); ok {
		task.Sub = list
	} else {
		task.Sub = appendPrefix(parent.Sub, prefix)
	}
	if list, ok := getStringList(obj, "next"); ok {
		task.Next = list
	} else {
		task.Next = appendPrefix(parent.Next, prefix)
	}

	if b, ok := getBool(obj, "subErrorIgnored"); ok {
		task.SubErrorIgnored = b
	} else {
		task.SubErrorIgnored = parent.SubErrorIgnored
	}

	if rect, ok, err := getRect(obj, "roi"); err != nil {
		return &FieldError{Task: name, Field: "roi", Err: err}
	} else if ok {
		if opts.Debug {
			if rect.X+rect.W > tasktype.WindowWidthDefault || rect.Y+rect.H > tasktype.WindowHeightDefault {
				return &FieldError{Task: name, Field: "roi", Err: fmt.Errorf("roi %s is out of bounds", rect)}
			}
		}
		task.ROI = rect
	} else {
		task.ROI = parent.ROI
	}

	if rect, ok, err := getRect(obj, "rectMove"); err != nil {
		return &FieldError{Task: name, Field: "rectMove", Err: err}
	} else if ok {
		task.RectMove = rect
	} else {
		task.RectMove = parent.RectMove
	}

	if rect, ok, err := getRect(obj, "specificRect"); err != nil {
		return &FieldError{Task: name, Field: "specificRect", Err: err}
	} else if ok {
		task.SpecificRect = rect
	} else {
		task.SpecificRect = parent.SpecificRect
	}

	if list, ok := getIntList(obj, "specialParams"); ok {
		task.SpecialParams = list
	} else {
		task.SpecialParams = append([]int(nil), parent.SpecialParams...)
	}

	return nil
}
