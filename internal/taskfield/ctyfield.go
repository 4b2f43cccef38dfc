package taskfield

import (
	"fmt"

	"github.com/vk/taskcatalog/internal/tasktype"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// hasAttr reports whether obj declares key at all. Absent keys fall back
// to the parent prototype; a present-but-null value is treated as absent
// too, since the JSON source never distinguishes "omitted" from "null".
func hasAttr(obj cty.Value, key string) bool {
	if obj.IsNull() || !obj.Type().IsObjectType() {
		return false
	}
	if !obj.Type().HasAttribute(key) {
		return false
	}
	v := obj.GetAttr(key)
	return !v.IsNull()
}

func getString(obj cty.Value, key string) (string, bool) {
	if !hasAttr(obj, key) {
		return "", false
	}
	var s string
	if err := gocty.FromCtyValue(obj.GetAttr(key), &s); err != nil {
		return "", false
	}
	return s, true
}

func getBool(obj cty.Value, key string) (bool, bool) {
	if !hasAttr(obj, key) {
		return false, false
	}
	var b bool
	if err := gocty.FromCtyValue(obj.GetAttr(key), &b); err != nil {
		return false, false
	}
	return b, true
}

func getInt(obj cty.Value, key string) (int, bool) {
	if !hasAttr(obj, key) {
		return 0, false
	}
	v := obj.GetAttr(key)
	if !v.Type().Equals(cty.Number) {
		return 0, false
	}
	i64, _ := v.AsBigFloat().Int64()
	return int(i64), true
}

func getFloat(obj cty.Value, key string) (float64, bool) {
	if !hasAttr(obj, key) {
		return 0, false
	}
	var f float64
	if err := gocty.FromCtyValue(obj.GetAttr(key), &f); err != nil {
		return 0, false
	}
	return f, true
}

func getStringList(obj cty.Value, key string) ([]string, bool) {
	if !hasAttr(obj, key) {
		return nil, false
	}
	v := obj.GetAttr(key)
	if v.IsNull() {
		return nil, false
	}
	out := make([]string, 0)
	for _, el := range v.AsValueSlice() {
		var s string
		if err := gocty.FromCtyValue(el, &s); err != nil {
			continue
		}
		out = append(out, s)
	}
	return out, true
}

func getIntList(obj cty.Value, key string) ([]int, bool) {
	if !hasAttr(obj, key) {
		return nil, false
	}
	v := obj.GetAttr(key)
	if v.IsNull() {
		return nil, false
	}
	out := make([]int, 0)
	for _, el := range v.AsValueSlice() {
		bf := el.AsBigFloat()
		i64, _ := bf.Int64()
		out = append(out, int(i64))
	}
	return out, true
}

func getRect(obj cty.Value, key string) (tasktype.Rect, bool, error) {
	if !hasAttr(obj, key) {
		return tasktype.Rect{}, false, nil
	}
	v := obj.GetAttr(key)
	if v.IsNull() {
		return tasktype.Rect{}, false, nil
	}
	nums := v.AsValueSlice()
	if len(nums) != 4 {
		return tasktype.Rect{}, false, fmt.Errorf("field %q must have exactly 4 elements, got %d", key, len(nums))
	}
	vals := make([]int, 4)
	for i, n := range nums {
		bf := n.AsBigFloat()
		i64, _ := bf.Int64()
		vals[i] = int(i64)
	}
	return tasktype.Rect{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}, true, nil
}

func getMaskRange(obj cty.Value, key string) (tasktype.MaskRange, bool, error) {
	if !hasAttr(obj, key) {
		return tasktype.MaskRange{}, false, nil
	}
	v := obj.GetAttr(key)
	if v.IsNull() {
		return tasktype.MaskRange{}, false, nil
	}
	nums := v.AsValueSlice()
	if len(nums) != 2 {
		return tasktype.MaskRange{}, false, fmt.Errorf("field %q must have exactly 2 elements, got %d", key, len(nums))
	}
	lowF, _ := nums[0].AsBigFloat().Int64()
	highF, _ := nums[1].AsBigFloat().Int64()
	return tasktype.MaskRange{Low: int(lowF), High: int(highF)}, true, nil
}

func getReplaceMap(obj cty.Value, key string) ([]tasktype.ReplacePair, bool, error) {
	if !hasAttr(obj, key) {
		return nil, false, nil
	}
	v := obj.GetAttr(key)
	if v.IsNull() {
		return nil, false, nil
	}
	out := make([]tasktype.ReplacePair, 0)
	for _, pairVal := range v.AsValueSlice() {
		elems := pairVal.AsValueSlice()
		if len(elems) != 2 {
			return nil, false, fmt.Errorf("field %q entries must be [pattern, replacement] pairs", key)
		}
		var pattern, replacement string
		if err := gocty.FromCtyValue(elems[0], &pattern); err != nil {
			return nil, false, fmt.Errorf("field %q entry pattern: %w", key, err)
		}
		if err := gocty.FromCtyValue(elems[1], &replacement); err != nil {
			return nil, false, fmt.Errorf("field %q entry replacement: %w", key, err)
		}
		out = append(out, tasktype.ReplacePair{Pattern: pattern, Replacement: replacement})
	}
	return out, true, nil
}
