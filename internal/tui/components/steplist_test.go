package components

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

func TestNewStepList(t *testing.T) {
	t.Parallel()

	t.Run("creates empty step list", func(t *testing.T) {
		t.Parallel()
		sl := NewStepList(nil, map[string]model.StepResult{})
		require.Empty(t, sl.Entries())
	})

	t.Run("respects provided order", func(t *testing.T) {
		t.Parallel()
		order := []string{"Order create", "Auth public key", "Cart add/update"}
		steps := map[string]model.StepResult{
			"Auth public key": {Status: model.StatusOK},
			"Cart add/update": {Status: model.StatusRunning},
			"Order create":    {Status: model.StatusFailed, Detail: "unexpected status 500, expected [201]"},
		}

		entries := NewStepList(order, steps).Entries()
		require.Len(t, entries, 3)
		require.Equal(t, "Order create", entries[0].Name)
		require.Equal(t, model.StatusFailed, entries[0].Result.Status)
		require.Equal(t, "unexpected status 500, expected [201]", entries[0].Result.Detail)
		require.Equal(t, "Auth public key", entries[1].Name)
		require.Equal(t, "Cart add/update", entries[2].Name)
	})

	t.Run("unknown names render as pending", func(t *testing.T) {
		t.Parallel()
		entries := NewStepList([]string{"Shipping create"}, map[string]model.StepResult{}).Entries()
		require.Len(t, entries, 1)
		require.Equal(t, model.StatusPending, entries[0].Result.Status)
		require.Equal(t, "Shipping create", entries[0].Result.Name)
	})
}

func TestStepListEntriesReturnsIndependentCopy(t *testing.T) {
	t.Parallel()

	sl := NewStepList([]string{"step1"}, map[string]model.StepResult{"step1": {Status: model.StatusOK}})
	first := sl.Entries()
	second := sl.Entries()

	first[0].Name = "modified"
	require.Equal(t, "step1", second[0].Name)
}
