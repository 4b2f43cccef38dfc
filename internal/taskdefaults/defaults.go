// Package taskdefaults holds the four read-only prototype tasks the field
// materializer falls back to whenever a declared task has no parent, or
// switches algorithm away from its parent's.
//
// Grounded on TaskData.cpp's _default_task_info/_default_match_task_info/
// _default_ocr_task_info/_default_hash_task_info. These prototypes live for
// the process lifetime and are never mutated after Registry construction.
package taskdefaults

import "github.com/vk/taskcatalog/internal/tasktype"

// DefaultThreshold is the match-template confidence threshold used when a
// task declares no templThreshold of its own.
const DefaultThreshold = 0.8

// Registry holds the immutable default prototypes.
type Registry struct {
	base  *tasktype.Task
	match *tasktype.MatchPayload
	ocr   *tasktype.OcrPayload
	hash  *tasktype.HashPayload
}

// New constructs the default registry. Call once; the result is safe to
// share across every materialization call for the process lifetime.
func New() *Registry {
	return &Registry{
		base: &tasktype.Task{
			Algorithm: tasktype.AlgorithmMatchTemplate,
			Action:    tasktype.ActionDoNothing,
			Cache:     true,
			MaxTimes:  tasktype.MaxTimesUnbounded,
		},
		match: &tasktype.MatchPayload{
			TemplName:      "__INVALID__",
			TemplThreshold: DefaultThreshold,
		},
		ocr: &tasktype.OcrPayload{
			FullMatch:  false,
			IsAscii:    false,
			WithoutDet: false,
		},
		hash: &tasktype.HashPayload{
			DistThreshold: 0,
			Bound:         true,
		},
	}
}

// Base returns a fresh clone of the default base task. Every materialized
// task without a parent starts from this.
func (r *Registry) Base() *tasktype.Task {
	return r.base.Clone()
}

// Match returns the default match-template payload.
func (r *Registry) Match() *tasktype.MatchPayload {
	v := *r.match
	return &v
}

// Ocr returns the default OCR payload.
func (r *Registry) Ocr() *tasktype.OcrPayload {
	v := *r.ocr
	v.Text = append([]string(nil), r.ocr.Text...)
	v.ReplaceMap = append([]tasktype.ReplacePair(nil), r.ocr.ReplaceMap...)
	return &v
}

// Hash returns the default hash payload.
func (r *Registry) Hash() *tasktype.HashPayload {
	v := *r.hash
	v.Hashes = append([]string(nil), r.hash.Hashes...)
	return &v
}
