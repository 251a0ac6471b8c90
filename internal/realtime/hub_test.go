package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, buffer int) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(buffer)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func receive(t *testing.T, sub *Subscription) ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return ChangeEvent{}
	}
}

func TestHub_FansOutByFilter(t *testing.T) {
	hub, _ := startHub(t, 4)
	ctx := context.Background()

	all, err := hub.Subscribe(ctx, Filter{})
	require.NoError(t, err)
	labs, err := hub.Subscribe(ctx, Filter{Table: "labs"})
	require.NoError(t, err)

	eqEvent := ChangeEvent{Table: "equipment", Type: EventUpdate, ID: uuid.New()}
	labEvent := ChangeEvent{Table: "labs", Type: EventInsert, ID: uuid.New()}
	require.NoError(t, hub.Publish(ctx, eqEvent))
	require.NoError(t, hub.Publish(ctx, labEvent))

	assert.Equal(t, eqEvent, receive(t, all))
	assert.Equal(t, labEvent, receive(t, all))
	assert.Equal(t, labEvent, receive(t, labs))
	assert.Empty(t, labs.Events())
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub, _ := startHub(t, 1)
	sub, err := hub.Subscribe(context.Background(), Filter{})
	require.NoError(t, err)

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)

	_, ok := <-sub.Events()
	assert.False(t, ok)
}

func TestHub_DropsLaggingSubscriber(t *testing.T) {
	hub, _ := startHub(t, 1)
	ctx := context.Background()
	slow, err := hub.Subscribe(ctx, Filter{})
	require.NoError(t, err)

	require.NoError(t, hub.Publish(ctx, ChangeEvent{Table: "labs", Type: EventInsert, ID: uuid.New()}))
	require.NoError(t, hub.Publish(ctx, ChangeEvent{Table: "labs", Type: EventInsert, ID: uuid.New()}))
	// a third publish only returns once the hub handled the second
	require.NoError(t, hub.Publish(ctx, ChangeEvent{Table: "labs", Type: EventInsert, ID: uuid.New()}))

	_, ok := <-slow.Events()
	assert.True(t, ok)
	_, ok = <-slow.Events()
	assert.False(t, ok)
}

func TestHub_StopClosesEverything(t *testing.T) {
	hub, cancel := startHub(t, 1)
	sub, err := hub.Subscribe(context.Background(), Filter{})
	require.NoError(t, err)

	cancel()
	_, ok := <-sub.Events()
	assert.False(t, ok)

	_, err = hub.Subscribe(context.Background(), Filter{})
	assert.ErrorIs(t, err, ErrHubClosed)
	assert.ErrorIs(t, hub.Publish(context.Background(), ChangeEvent{}), ErrHubClosed)
	hub.Unsubscribe(sub)
}
