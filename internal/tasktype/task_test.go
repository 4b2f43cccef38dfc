package tasktype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClone_NilReceiver(t *testing.T) {
	t.Parallel()

	var task *Task
	require.Nil(t, task.Clone())
}

func TestClone_DeepCopiesSlicesAndPayload(t *testing.T) {
	t.Parallel()

	original := &Task{
		Name:      "Roguelike@Combat",
		Algorithm: AlgorithmMatchTemplate,
		Sub:       []string{"A", "B"},
		Next:      []string{"C"},
		Match: &MatchPayload{
			TemplName:      "Roguelike.png",
			TemplThreshold: 0.8,
		},
	}

	clone := original.Clone()
	require.Equal(t, original.Name, clone.Name)
	require.Equal(t, original.Sub, clone.Sub)
	require.NotSame(t, &original.Sub, &clone.Sub)
	require.NotSame(t, original.Match, clone.Match)

	clone.Sub[0] = "mutated"
	clone.Match.TemplName = "mutated.png"
	require.Equal(t, "A", original.Sub[0], "mutating the clone's slice must not alias the original")
	require.Equal(t, "Roguelike.png", original.Match.TemplName, "mutating the clone's payload must not alias the original")
}

func TestClone_NilSlicesAndPayloadsStayNil(t *testing.T) {
	t.Parallel()

	original := &Task{Name: "T", Algorithm: AlgorithmJustReturn}
	clone := original.Clone()

	require.Nil(t, clone.Match)
	require.Nil(t, clone.Ocr)
	require.Nil(t, clone.Hash)
	require.Nil(t, clone.Sub)
	require.Nil(t, clone.Next)
}

func TestAlgorithmType_StringAndParseRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []AlgorithmType{AlgorithmMatchTemplate, AlgorithmOcrDetect, AlgorithmHash, AlgorithmJustReturn}
	for _, a := range cases {
		require.Equal(t, a, ParseAlgorithmType(a.String()))
	}
	require.Equal(t, AlgorithmInvalid, ParseAlgorithmType("NotARealAlgorithm"))
	require.Equal(t, "Invalid", AlgorithmInvalid.String())
}

func TestProcessTaskAction_StringAndParseRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []ProcessTaskAction{ActionDoNothing, ActionClickRect, ActionSwipe, ActionClickSelf, ActionStopGame}
	for _, a := range cases {
		require.Equal(t, a, ParseProcessTaskAction(a.String()))
	}
	require.Equal(t, ActionInvalid, ParseProcessTaskAction("NotARealAction"))
}

func TestRect_Empty(t *testing.T) {
	t.Parallel()

	require.True(t, Rect{}.Empty())
	require.False(t, Rect{W: 100, H: 100}.Empty())
}
