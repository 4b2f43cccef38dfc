// Package catalogio loads a task document from disk: one or more JSON
// files, each holding an object mapping task name to task body, merged
// into the single decoded document the resolver (component D) expects.
//
// Grounded on internal/registry/load.go's LoadGridsRecursively (walk a
// directory for files by extension, parse each, aggregate into one
// result or fail with every file's errors attached) adapted from HCL to
// this format's JSON-via-cty decoding. Libraries:
// github.com/zclconf/go-cty/cty/json for the bytes-to-cty.Value step
// (kept entirely outside internal/tasktype and internal/taskfield, which
// never see raw JSON — see spec.md §1's non-goal on this), and
// github.com/hashicorp/hcl/v2 for hcl.Diagnostics as the per-file error
// aggregator.
package catalogio

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/taskcatalog/internal/ctxlog"
	"github.com/vk/taskcatalog/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// LoadDocument walks dirPath for every *.json file, decodes each as a
// cty object value, and merges them into a single object value keyed by
// task name. A task name declared in more than one file is an error
// (the original source never merges two files' definitions of the same
// name; a later file silently shadowing an earlier one would hide a
// configuration mistake).
func LoadDocument(ctx context.Context, dirPath string) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("catalogio loading task documents from path...", "path", dirPath)

	filePaths, err := findTaskDocumentFiles(dirPath)
	if err != nil {
		logger.Error("failed to walk task document directory", "path", dirPath, "error", err)
		return cty.NilVal, err
	}
	if len(filePaths) == 0 {
		logger.Warn("no .json task document files found in path", "path", dirPath)
		return cty.EmptyObjectVal, nil
	}

	merged := map[string]cty.Value{}
	var diags hcl.Diagnostics

	for _, filePath := range filePaths {
		raw, err := os.ReadFile(filePath)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "failed to read task document",
				Detail:   fmt.Sprintf("%s: %v", filePath, err),
			})
			continue
		}

		val, ctyErr := ctyjson.ImpliedType(raw)
		if ctyErr != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "failed to infer type of task document",
				Detail:   fmt.Sprintf("%s: %v", filePath, ctyErr),
			})
			continue
		}
		decoded, ctyErr := ctyjson.Unmarshal(raw, val)
		if ctyErr != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "failed to decode task document",
				Detail:   fmt.Sprintf("%s: %v", filePath, ctyErr),
			})
			continue
		}
		if decoded.IsNull() || !decoded.Type().IsObjectType() {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "task document must be a JSON object",
				Detail:   filePath,
			})
			continue
		}

		for name, body := range decoded.AsValueMap() {
			if _, dup := merged[name]; dup {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "duplicate task name across documents",
					Detail:   fmt.Sprintf("task %q declared in %s was already declared in another file", name, filePath),
				})
				continue
			}
			merged[name] = body
		}
		logger.Debug("successfully loaded task document", "file", filePath)
	}

	if diags.HasErrors() {
		return cty.NilVal, diags
	}

	logger.Info("catalogio loaded task documents successfully.", "task_count", len(merged))
	return cty.ObjectVal(merged), nil
}

// taskDocumentExtension is the file extension a task document is
// recognized by. Named here rather than inlined at the call site so the
// domain's one file format has a single place it is spelled out.
const taskDocumentExtension = ".json"

// findTaskDocumentFiles walks dirPath for task document files. A thin,
// domain-named wrapper around fsutil.FindFilesByExtension so this
// package's callers read in terms of "task documents", not a bare
// extension string.
func findTaskDocumentFiles(dirPath string) ([]string, error) {
	return fsutil.FindFilesByExtension(dirPath, taskDocumentExtension)
}
