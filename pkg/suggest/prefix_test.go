package suggest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bastiangx/wordict/pkg/dictconst"
)

func TestPrefixEngineSuggestOrdering(t *testing.T) {
	e := NewPrefixEngine()
	e.Load(map[string]int{"cat": 100, "car": 150, "cart": 90, "dog": 200})

	got, err := e.Suggest(context.Background(), "ca", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "car", got[0].Word)
	require.Equal(t, "cat", got[1].Word)
	require.Equal(t, "cart", got[2].Word)
}

func TestPrefixEngineExcludesExactMatch(t *testing.T) {
	e := NewPrefixEngine()
	e.Load(map[string]int{"cat": 100, "cats": 50})

	got, err := e.Suggest(context.Background(), "cat", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "cats", got[0].Word)
}

func TestPrefixEngineRespectsLimit(t *testing.T) {
	e := NewPrefixEngine()
	e.Load(map[string]int{"a1": 1, "a2": 2, "a3": 3})

	got, err := e.Suggest(context.Background(), "a", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestPrefixEngineBigramBoost(t *testing.T) {
	e := NewPrefixEngine()
	e.Load(map[string]int{"morning": 80, "mood": 200})
	e.SetBigramContext(func(word string) int {
		if word == "morning" {
			return 180
		}
		return dictconst.NotAProbability
	})

	got, err := e.Suggest(context.Background(), "m", 0)
	require.NoError(t, err)
	require.Equal(t, "morning", got[0].Word)
	require.Greater(t, got[0].Probability, 80)
}

func TestPrefixEngineContextCancelled(t *testing.T) {
	e := NewPrefixEngine()
	e.Load(map[string]int{"cat": 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Suggest(ctx, "c", 0)
	require.Error(t, err)
}
