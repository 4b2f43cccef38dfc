package listexpr

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/taskcatalog/internal/tasktype"
)

func taskWithSub(name string, sub ...string) *tasktype.Task {
	return &tasktype.Task{Name: name, Algorithm: tasktype.AlgorithmJustReturn, Sub: sub}
}

func newExpander(tasks map[string]*tasktype.Task) *Expander {
	return &Expander{
		GetRaw: func(name string) *tasktype.Task { return tasks[name] },
		Default: &tasktype.Task{},
	}
}

func TestExpand_NoOperators_ReturnsSamePointer(t *testing.T) {
	t.Parallel()

	raw := taskWithSub("T", "A", "B")
	ex := newExpander(nil)

	resolved, derived, err := ex.Expand("T", raw)
	require.NoError(t, err)
	require.Nil(t, derived)
	require.Same(t, raw, resolved, "an unchanged field set must return the original pointer")
}

func TestExpand_ConcatenateAndReplicate_SynthesizesDerivedTask(t *testing.T) {
	t.Parallel()

	tasks := map[string]*tasktype.Task{
		"A": taskWithSub("A"),
		"B": taskWithSub("B"),
	}
	raw := taskWithSub("T", "(A+B)*3")
	ex := newExpander(tasks)

	resolved, derived, err := ex.Expand("T", raw)
	require.NoError(t, err)
	require.Len(t, derived, 1)

	derivedName := "T_DERIVED_(A+B)*3"
	require.Equal(t, derivedName, derived[0].Name)
	require.Equal(t, tasktype.AlgorithmJustReturn, derived[0].Algorithm)
	require.Equal(t, []string{"A", "B", "A", "B", "A", "B"}, derived[0].Sub)
	require.Equal(t, []string{derivedName}, resolved.Sub)
}

func TestExpand_ConcatenateWithoutParens_FollowsPrecedence(t *testing.T) {
	t.Parallel()

	tasks := map[string]*tasktype.Task{
		"A": taskWithSub("A"),
		"B": taskWithSub("B"),
	}
	raw := taskWithSub("T", "A+B*2")
	ex := newExpander(tasks)

	_, derived, err := ex.Expand("T", raw)
	require.NoError(t, err)
	require.Len(t, derived, 1)
	// '*' binds tighter than '+': A+(B*2).
	require.Equal(t, []string{"A", "B", "B"}, derived[0].Sub)
}

func TestExpand_SharpSelf_SplicesDirectlyNoSynthesis(t *testing.T) {
	t.Parallel()

	raw := &tasktype.Task{
		Name:      "T",
		Algorithm: tasktype.AlgorithmJustReturn,
		Next:      []string{"#self"},
	}
	ex := newExpander(nil)

	resolved, derived, err := ex.Expand("T", raw)
	require.NoError(t, err)
	require.Nil(t, derived)
	require.Equal(t, []string{"T"}, resolved.Next)
}

func TestExpand_SharpProjectsFieldFromAnotherTask(t *testing.T) {
	t.Parallel()

	tasks := map[string]*tasktype.Task{
		"A": {Name: "A", Algorithm: tasktype.AlgorithmJustReturn, Sub: []string{"X", "Y"}},
	}
	raw := taskWithSub("T", "A#sub")
	ex := newExpander(tasks)

	resolved, derived, err := ex.Expand("T", raw)
	require.NoError(t, err)
	require.Nil(t, derived, "an expression using only '#' must splice directly, never synthesize")
	require.Equal(t, []string{"X", "Y"}, resolved.Sub)
}

func TestExpand_SharpUnknownTask_Errors(t *testing.T) {
	t.Parallel()

	raw := taskWithSub("T", "Ghost#sub")
	ex := newExpander(nil)

	_, _, err := ex.Expand("T", raw)
	require.Error(t, err)
}

func TestExpand_NextDuplicates_AreSuppressed(t *testing.T) {
	t.Parallel()

	raw := &tasktype.Task{
		Name:      "T",
		Algorithm: tasktype.AlgorithmJustReturn,
		Next:      []string{"A", "A"},
	}
	ex := newExpander(nil)

	resolved, _, err := ex.Expand("T", raw)
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, resolved.Next)
}

func TestExpand_SubDuplicates_AreKept(t *testing.T) {
	t.Parallel()

	raw := taskWithSub("T", "A", "A")
	ex := newExpander(nil)

	resolved, derived, err := ex.Expand("T", raw)
	require.NoError(t, err)
	require.Nil(t, derived)
	require.Same(t, raw, resolved)
}

func TestExpand_StarWithNonIntegerRHS_Errors(t *testing.T) {
	t.Parallel()

	tasks := map[string]*tasktype.Task{"A": taskWithSub("A")}
	raw := taskWithSub("T", "A*B")
	ex := newExpander(tasks)

	_, _, err := ex.Expand("T", raw)
	require.Error(t, err)
}

func TestExpand_EmptyListItem_Errors(t *testing.T) {
	t.Parallel()

	raw := taskWithSub("T", "")
	ex := newExpander(nil)

	_, _, err := ex.Expand("T", raw)
	require.Error(t, err)
}
