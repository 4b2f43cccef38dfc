// Package syntaxcheck implements component G: the debug-only validator.
// It is never wired into the resolve path itself — callers run it once
// after a successful Parse, typically gated behind a debug build flag,
// the same way the original only compiles syntax_check's caller under
// ASST_DEBUG.
//
// Grounded on TaskData.cpp::syntax_check for the per-algorithm/per-action
// allowed-key tables and the doc/_Doc escape hatch, and on its sibling
// check_tasklist lambda (inlined into TaskData::parse) for the
// non-final-JustReturn and null-reference checks. Diagnostics are
// aggregated with hcl.Diagnostics, the same container
// internal/registry/validate.go uses to collect every problem in one
// pass instead of failing on the first.
package syntaxcheck

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/taskcatalog/internal/tasktype"
	"github.com/zclconf/go-cty/cty"
)

// allowedKeyUnderAlgorithm mirrors TaskData.cpp's allowed_key_under_algorithm.
var allowedKeyUnderAlgorithm = map[tasktype.AlgorithmType]map[string]bool{
	tasktype.AlgorithmInvalid: set(
		"action", "algorithm", "baseTask", "cache", "exceededNext", "fullMatch",
		"hash", "isAscii", "maskRange", "maxTimes", "next", "ocrReplace",
		"onErrorNext", "postDelay", "preDelay", "rectMove", "reduceOtherTimes", "roi",
		"specialParams", "sub", "subErrorIgnored", "templThreshold", "template",
		"text", "threshold", "withoutDet",
	),
	tasktype.AlgorithmMatchTemplate: set(
		"action", "algorithm", "baseTask", "cache", "exceededNext", "maskRange",
		"maxTimes", "next", "onErrorNext", "postDelay", "preDelay", "rectMove",
		"reduceOtherTimes", "roi", "sub", "subErrorIgnored", "templThreshold", "template",
	),
	tasktype.AlgorithmOcrDetect: set(
		"action", "algorithm", "baseTask", "cache", "exceededNext",
		"fullMatch", "isAscii", "maxTimes", "next", "ocrReplace",
		"onErrorNext", "postDelay", "preDelay", "rectMove", "reduceOtherTimes",
		"roi", "sub", "subErrorIgnored", "text", "withoutDet",
	),
	tasktype.AlgorithmJustReturn: set(
		"action", "algorithm", "baseTask", "exceededNext", "maxTimes", "next",
		"onErrorNext", "postDelay", "preDelay", "reduceOtherTimes", "specialParams", "sub",
		"subErrorIgnored",
	),
	tasktype.AlgorithmHash: set(
		"action", "algorithm", "baseTask", "cache", "exceededNext", "hash",
		"maskRange", "maxTimes", "next", "onErrorNext", "postDelay", "preDelay",
		"rectMove", "reduceOtherTimes", "roi", "specialParams", "sub", "subErrorIgnored",
		"threshold",
	),
}

// allowedKeyUnderAction mirrors TaskData.cpp's allowed_key_under_action.
var allowedKeyUnderAction = map[tasktype.ProcessTaskAction]map[string]bool{
	tasktype.ActionClickRect: set("specificRect"),
	tasktype.ActionSwipe:     set("specificRect", "rectMove"),
}

func set(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

func isDoc(key string) bool {
	return strings.Contains(key, "Doc") || strings.Contains(key, "doc")
}

func hasDocSibling(obj cty.Value, key string) bool {
	if obj.IsNull() || !obj.Type().IsObjectType() {
		return false
	}
	return obj.Type().HasAttribute(key+"_Doc") || obj.Type().HasAttribute(key+"_doc")
}

// Lookup is the narrow interface syntaxcheck needs from the lookup
// facade: the raw, un-expanded view of a task by name.
type Lookup interface {
	GetRaw(name string) *tasktype.Task
}

// CheckKeys validates that every key obj declares for name is one the
// task's resolved algorithm/action combination permits, unless it is a
// doc/Doc comment key or has a `<key>_Doc`/`<key>_doc` sibling.
func CheckKeys(diags *hcl.Diagnostics, name string, obj cty.Value, task *tasktype.Task) {
	if task.Algorithm == tasktype.AlgorithmInvalid {
		*diags = diags.Append(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "unknown algorithm",
			Detail:   fmt.Sprintf("task %q has unknown algorithm", name),
		})
	}
	if task.Action == tasktype.ActionInvalid {
		*diags = diags.Append(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "unknown action",
			Detail:   fmt.Sprintf("task %q has unknown action", name),
		})
	}

	allowed := map[string]bool{}
	for k := range allowedKeyUnderAlgorithm[task.Algorithm] {
		allowed[k] = true
	}
	for k := range allowedKeyUnderAction[task.Action] {
		allowed[k] = true
	}

	if obj.IsNull() || !obj.Type().IsObjectType() {
		return
	}
	for k := range obj.Type().AttributeTypes() {
		if allowed[k] || isDoc(k) || hasDocSibling(obj, k) {
			continue
		}
		*diags = diags.Append(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "unknown key",
			Detail:   fmt.Sprintf("task %q has unknown key %q", name, k),
		})
	}
}

// listKind names a task-list field for diagnostic messages and says
// whether it participates in the non-final-JustReturn check.
type listKind struct {
	name              string
	get               func(t *tasktype.Task) []string
	justReturnChecked bool
}

var lists = []listKind{
	{"next", func(t *tasktype.Task) []string { return t.Next }, true},
	{"sub", func(t *tasktype.Task) []string { return t.Sub }, false},
	{"exceeded_next", func(t *tasktype.Task) []string { return t.ExceededNext }, true},
	{"on_error_next", func(t *tasktype.Task) []string { return t.OnErrorNext }, true},
	{"reduce_other_times", func(t *tasktype.Task) []string { return t.ReduceOtherTimes }, false},
}

// CheckTaskLists validates name's flow-list fields: no non-final
// JustReturn task in a next/exceeded_next/on_error_next chain, and no
// reference to a task get_raw cannot resolve.
//
// A null reference is only flagged when the name contains no `@`, or
// when its post-`@` parent does resolve (so the derivation itself
// failed) — a `child@parent` reference whose parent is also
// unresolvable is a legitimate absent fallback per the lookup facade's
// own resolution rule and is not rejected here (see DESIGN.md's Open
// Question decision on this).
func CheckTaskLists(diags *hcl.Diagnostics, name string, task *tasktype.Task, lookup Lookup) {
	for _, lk := range lists {
		seen := map[string]bool{}
		justReturnTask := ""
		for _, ref := range lk.get(task) {
			if seen[ref] {
				continue
			}
			seen[ref] = true

			if lk.justReturnChecked && justReturnTask != "" {
				*diags = diags.Append(&hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "non-final JustReturn task",
					Detail:   fmt.Sprintf("%s->%s has a not-final JustReturn task: %s", name, lk.name, justReturnTask),
				})
			}

			ptr := lookup.GetRaw(ref)
			if ptr == nil {
				if !unresolvableIsAllowed(ref, lookup) {
					*diags = diags.Append(&hcl.Diagnostic{
						Severity: hcl.DiagError,
						Summary:  "null reference",
						Detail:   fmt.Sprintf("%s in %s->%s is null", ref, name, lk.name),
					})
				}
				continue
			}
			if ptr.Algorithm == tasktype.AlgorithmJustReturn {
				justReturnTask = ptr.Name
			}
		}
	}
}

// unresolvableIsAllowed reports whether ref's unresolvability is
// explained entirely by implicit `@`-template fallback: ref contains an
// `@`, and its parent (the part after the first `@`) does not exist
// either — there is nothing to derive from, so ref legitimately
// resolves to nothing rather than being a real bug.
func unresolvableIsAllowed(ref string, lookup Lookup) bool {
	at := strings.IndexByte(ref, '@')
	if at < 0 {
		return false
	}
	parent := ref[at+1:]
	return lookup.GetRaw(parent) == nil
}
