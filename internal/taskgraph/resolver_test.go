package taskgraph

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/taskcatalog/internal/taskdefaults"
	"github.com/vk/taskcatalog/internal/tasktype"
	"github.com/zclconf/go-cty/cty"
)

func newResolver() *Resolver {
	return New(taskdefaults.New(), false)
}

func obj(attrs map[string]cty.Value) cty.Value {
	return cty.ObjectVal(attrs)
}

func TestParse_SimpleTask(t *testing.T) {
	t.Parallel()

	r := newResolver()
	doc := obj(map[string]cty.Value{
		"StartButton1": cty.EmptyObjectVal,
	})

	require.NoError(t, r.Parse(doc))
	task := r.Raw("StartButton1")
	require.NotNil(t, task)
	require.Equal(t, "StartButton1", task.Name)
	require.Equal(t, tasktype.AlgorithmMatchTemplate, task.Algorithm)
}

func TestParse_BaseTaskInheritsFields(t *testing.T) {
	t.Parallel()

	r := newResolver()
	doc := obj(map[string]cty.Value{
		"BaseCombat": obj(map[string]cty.Value{
			"action": cty.StringVal("ClickSelf"),
		}),
		"SpecificCombat": obj(map[string]cty.Value{
			"baseTask": cty.StringVal("BaseCombat"),
		}),
	})

	require.NoError(t, r.Parse(doc))
	require.Equal(t, tasktype.ActionClickSelf, r.Raw("SpecificCombat").Action)
}

func TestParse_ImplicitTemplateDerivation(t *testing.T) {
	t.Parallel()

	r := newResolver()
	doc := obj(map[string]cty.Value{
		"Roguelike": obj(map[string]cty.Value{
			"action": cty.StringVal("ClickSelf"),
		}),
		"Prefix@Roguelike": cty.EmptyObjectVal,
	})

	require.NoError(t, r.Parse(doc))
	derived := r.Raw("Prefix@Roguelike")
	require.NotNil(t, derived)
	require.Equal(t, tasktype.ActionClickSelf, derived.Action, "an implicit @-derived task must inherit from its parent")
	require.Equal(t, "Prefix@Roguelike.png", derived.Match.TemplName, "the template default is <name>.png, derived from the full qualified name")
}

func TestParse_CycleDetection(t *testing.T) {
	t.Parallel()

	r := newResolver()
	doc := obj(map[string]cty.Value{
		"A": obj(map[string]cty.Value{"baseTask": cty.StringVal("B")}),
		"B": obj(map[string]cty.Value{"baseTask": cty.StringVal("A")}),
	})

	err := r.Parse(doc)
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestParse_UnknownBaseTask_Errors(t *testing.T) {
	t.Parallel()

	r := newResolver()
	doc := obj(map[string]cty.Value{
		"A": obj(map[string]cty.Value{"baseTask": cty.StringVal("Ghost")}),
	})

	err := r.Parse(doc)
	require.Error(t, err)
	var unknownErr *UnknownTaskError
	require.ErrorAs(t, err, &unknownErr)
}

func TestParse_FailureLeavesRawTableUnchanged(t *testing.T) {
	t.Parallel()

	r := newResolver()
	require.NoError(t, r.Parse(obj(map[string]cty.Value{
		"A": cty.EmptyObjectVal,
	})))

	badDoc := obj(map[string]cty.Value{
		"B": obj(map[string]cty.Value{"baseTask": cty.StringVal("Ghost")}),
	})
	require.Error(t, r.Parse(badDoc))

	require.NotNil(t, r.Raw("A"), "a failed Parse must not disturb tasks from a prior successful Parse")
	require.Nil(t, r.Raw("B"))
}

func TestParse_SecondParseOverlaysOnFirst(t *testing.T) {
	t.Parallel()

	r := newResolver()
	require.NoError(t, r.Parse(obj(map[string]cty.Value{
		"A": obj(map[string]cty.Value{"action": cty.StringVal("ClickSelf")}),
	})))

	require.NoError(t, r.Parse(obj(map[string]cty.Value{
		"B": obj(map[string]cty.Value{"baseTask": cty.StringVal("A")}),
	})))

	require.NotNil(t, r.Raw("A"), "A must survive into the second parse's result table")
	require.Equal(t, tasktype.ActionClickSelf, r.Raw("B").Action)
}

func TestParse_RejectsNonObjectDocument(t *testing.T) {
	t.Parallel()

	r := newResolver()
	require.Error(t, r.Parse(cty.StringVal("not an object")))
}

func TestAll_ReturnsIndependentSnapshot(t *testing.T) {
	t.Parallel()

	r := newResolver()
	require.NoError(t, r.Parse(obj(map[string]cty.Value{
		"A": cty.EmptyObjectVal,
	})))

	snapshot := r.All()
	delete(snapshot, "A")
	require.NotNil(t, r.Raw("A"), "mutating a snapshot returned by All must not affect the resolver's table")
}
