package webhook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBatch = `[
	{"msys":{"message_event":{"type":"bounce","subaccount_id":7,"rcpt_to":"me@test.com"}}},
	{"msys":{"track_event":{"type":"open","rcpt_to":"me@test.com"}}},
	{"msys":{}}
]`

func TestParseBatch_Array(t *testing.T) {
	events, err := ParseBatch([]byte(sampleBatch))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, CategoryMessage, events[0].Category)
	assert.Equal(t, "bounce", events[0].Type())
	assert.Equal(t, 7, events[0].SubaccountID())

	assert.Equal(t, CategoryEngagement, events[1].Category)
	assert.Equal(t, "open", events[1].Type())
	assert.Zero(t, events[1].SubaccountID())
}

func TestParseBatch_IndexKeyedObject(t *testing.T) {
	body := `{"0":{"msys":{"gen_event":{"type":"generation_failure"}}}}`
	events, err := ParseBatch([]byte(body))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, CategoryGeneration, events[0].Category)
}

func TestParseBatch_UnknownCategorySkipped(t *testing.T) {
	body := `[{"msys":{"mystery_event":{"type":"odd"}}}]`
	events, err := ParseBatch([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParseBatch_InvalidJSON(t *testing.T) {
	_, err := ParseBatch([]byte("not json"))
	require.Error(t, err)
}

func TestProcessBatch_Dispatch(t *testing.T) {
	registry := NewRegistry()

	var bounces, all int
	registry.Subscribe(CategoryMessage, func(_ context.Context, e Event) error {
		bounces++
		assert.Equal(t, "bounce", e.Type())
		return nil
	})
	registry.SubscribeAll(func(_ context.Context, _ Event) error {
		all++
		return nil
	})

	events, err := ParseBatch([]byte(sampleBatch))
	require.NoError(t, err)

	stats := NewProcessor(registry, 0).ProcessBatch(context.Background(), events)

	assert.Equal(t, 1, bounces)
	assert.Equal(t, 2, all)
	assert.Equal(t, 2, stats.Processed)
	assert.Zero(t, stats.Skipped)
	assert.Zero(t, stats.Errors)
}

func TestProcessBatch_SubaccountFilter(t *testing.T) {
	registry := NewRegistry()
	var seen int
	registry.SubscribeAll(func(_ context.Context, _ Event) error {
		seen++
		return nil
	})

	events, err := ParseBatch([]byte(sampleBatch))
	require.NoError(t, err)

	// Only the bounce event carries subaccount 7
	stats := NewProcessor(registry, 7).ProcessBatch(context.Background(), events)
	assert.Equal(t, 1, seen)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)
}

func TestProcessBatch_HandlerErrorDoesNotAbort(t *testing.T) {
	registry := NewRegistry()
	var calls int
	registry.SubscribeAll(func(_ context.Context, _ Event) error {
		calls++
		return errors.New("boom")
	})

	events, err := ParseBatch([]byte(sampleBatch))
	require.NoError(t, err)

	stats := NewProcessor(registry, 0).ProcessBatch(context.Background(), events)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 2, stats.Errors)
}

func TestProcessBatch_NoHandlersSkips(t *testing.T) {
	events, err := ParseBatch([]byte(sampleBatch))
	require.NoError(t, err)

	stats := NewProcessor(NewRegistry(), 0).ProcessBatch(context.Background(), events)
	assert.Zero(t, stats.Processed)
	assert.Equal(t, 2, stats.Skipped)
}
