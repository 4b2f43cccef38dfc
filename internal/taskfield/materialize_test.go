package taskfield

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/taskcatalog/internal/taskdefaults"
	"github.com/vk/taskcatalog/internal/tasktype"
	"github.com/zclconf/go-cty/cty"
)

func strList(vals ...string) cty.Value {
	elems := make([]cty.Value, len(vals))
	for i, v := range vals {
		elems[i] = cty.StringVal(v)
	}
	return cty.ListVal(elems)
}

func TestMaterialize_NilParentUsesDefaults(t *testing.T) {
	t.Parallel()

	defaults := taskdefaults.New()
	obj := cty.EmptyObjectVal

	task, err := Materialize(defaults, "Roguelike", obj, nil, "", Options{})
	require.NoError(t, err)
	require.Equal(t, tasktype.AlgorithmMatchTemplate, task.Algorithm)
	require.Equal(t, tasktype.ActionDoNothing, task.Action)
	require.True(t, task.Cache)
	require.Equal(t, "Roguelike.png", task.Match.TemplName)
	require.Equal(t, taskdefaults.DefaultThreshold, task.Match.TemplThreshold)
}

func TestMaterialize_TemplateNeverInheritsFromParent(t *testing.T) {
	t.Parallel()

	defaults := taskdefaults.New()
	parent, err := Materialize(defaults, "Base", cty.ObjectVal(map[string]cty.Value{
		"template": cty.StringVal("Explicit.png"),
	}), nil, "", Options{})
	require.NoError(t, err)
	require.Equal(t, "Explicit.png", parent.Match.TemplName)

	child, err := Materialize(defaults, "Child", cty.EmptyObjectVal, parent, "", Options{})
	require.NoError(t, err)
	require.Equal(t, "Child.png", child.Match.TemplName, "template must default to <name>.png and never inherit the parent's")
}

func TestMaterialize_InheritedListsGetPrefixed(t *testing.T) {
	t.Parallel()

	defaults := taskdefaults.New()
	parent, err := Materialize(defaults, "Base", cty.ObjectVal(map[string]cty.Value{
		"next": strList("A", "B"),
	}), nil, "", Options{})
	require.NoError(t, err)

	child, err := Materialize(defaults, "Prefix@Base", cty.EmptyObjectVal, parent, "Prefix", Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"Prefix@A", "Prefix@B"}, child.Next)
}

func TestMaterialize_DeclaredListsAreNotPrefixed(t *testing.T) {
	t.Parallel()

	defaults := taskdefaults.New()
	parent, err := Materialize(defaults, "Base", cty.ObjectVal(map[string]cty.Value{
		"next": strList("A"),
	}), nil, "", Options{})
	require.NoError(t, err)

	child, err := Materialize(defaults, "Prefix@Base", cty.ObjectVal(map[string]cty.Value{
		"next": strList("C"),
	}), parent, "Prefix", Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"C"}, child.Next, "an explicitly declared list must not be prefixed")
}

func TestMaterialize_AlgorithmSwitchDropsParentVariantPayload(t *testing.T) {
	t.Parallel()

	defaults := taskdefaults.New()
	parent, err := Materialize(defaults, "Base", cty.ObjectVal(map[string]cty.Value{
		"algorithm":      cty.StringVal("MatchTemplate"),
		"templThreshold": cty.NumberFloatVal(0.95),
	}), nil, "", Options{})
	require.NoError(t, err)
	require.Equal(t, 0.95, parent.Match.TemplThreshold)

	child, err := Materialize(defaults, "Child", cty.ObjectVal(map[string]cty.Value{
		"algorithm": cty.StringVal("OcrDetect"),
	}), parent, "", Options{})
	require.NoError(t, err)
	require.Equal(t, tasktype.AlgorithmOcrDetect, child.Algorithm)
	require.Nil(t, child.Match)
	require.NotNil(t, child.Ocr)
	require.False(t, child.Ocr.FullMatch, "a switched-algorithm child must fall back to the defaults prototype, not the parent's unrelated payload")
}

func TestMaterialize_UnknownAlgorithm_ReturnsFieldError(t *testing.T) {
	t.Parallel()

	defaults := taskdefaults.New()
	_, err := Materialize(defaults, "T", cty.ObjectVal(map[string]cty.Value{
		"algorithm": cty.StringVal("NotReal"),
	}), nil, "", Options{})
	require.Error(t, err)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "algorithm", fe.Field)
}

func TestMaterialize_RoiOutOfBounds_ErrorsOnlyInDebug(t *testing.T) {
	t.Parallel()

	defaults := taskdefaults.New()
	obj := cty.ObjectVal(map[string]cty.Value{
		"roi": cty.ListVal([]cty.Value{
			cty.NumberIntVal(1200), cty.NumberIntVal(0), cty.NumberIntVal(200), cty.NumberIntVal(50),
		}),
	})

	_, err := Materialize(defaults, "T", obj, nil, "", Options{Debug: false})
	require.NoError(t, err)

	_, err = Materialize(defaults, "T", obj, nil, "", Options{Debug: true})
	require.Error(t, err)
}

func TestMaterialize_MaskRangeWrongLength_Errors(t *testing.T) {
	t.Parallel()

	defaults := taskdefaults.New()
	obj := cty.ObjectVal(map[string]cty.Value{
		"maskRange": cty.ListVal([]cty.Value{cty.NumberIntVal(1)}),
	})

	_, err := Materialize(defaults, "T", obj, nil, "", Options{})
	require.Error(t, err)
}

func TestMaterialize_CacheAndMaxTimesInheritWhenOmitted(t *testing.T) {
	t.Parallel()

	defaults := taskdefaults.New()
	parent, err := Materialize(defaults, "Base", cty.ObjectVal(map[string]cty.Value{
		"cache":    cty.False,
		"maxTimes": cty.NumberIntVal(3),
	}), nil, "", Options{})
	require.NoError(t, err)

	child, err := Materialize(defaults, "Child", cty.EmptyObjectVal, parent, "", Options{})
	require.NoError(t, err)
	require.False(t, child.Cache)
	require.Equal(t, 3, child.MaxTimes)
}
