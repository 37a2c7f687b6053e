package backend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func receive(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "channel closed")
		return c
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
		return Change{}
	}
}

func assertEmpty(t *testing.T, ch <-chan Change) {
	t.Helper()
	select {
	case c := <-ch:
		t.Fatalf("unexpected change %+v", c)
	default:
	}
}

func TestHubDeliversOnlyToMatchingTable(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	payments, cancelPayments := hub.Subscribe("payments")
	defer cancelPayments()
	groups, cancelGroups := hub.Subscribe("training_groups")
	defer cancelGroups()
	all, cancelAll := hub.Subscribe(AllTables)
	defer cancelAll()

	hub.Publish(Change{Table: "payments", Op: "insert", ID: 3})

	assert.Equal(t, Change{Table: "payments", Op: "insert", ID: 3}, receive(t, payments))
	assert.Equal(t, int64(3), receive(t, all).ID)
	assertEmpty(t, groups)
}

func TestHubResyncReachesEveryone(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	a, cancelA := hub.Subscribe("payments")
	defer cancelA()
	b, cancelB := hub.Subscribe("expenses")
	defer cancelB()

	hub.Publish(Change{Table: AllTables, Op: Resync})

	assert.Equal(t, Resync, receive(t, a).Op)
	assert.Equal(t, Resync, receive(t, b).Op)
}

func TestHubCancelClosesChannel(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	ch, cancel := hub.Subscribe("payments")
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// публикация после отписки не должна паниковать
	hub.Publish(Change{Table: "payments", Op: "delete", ID: 1})
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	_, cancel := hub.Subscribe("payments")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(Change{Table: "payments", Op: "insert", ID: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestHubClose(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ch, _ := hub.Subscribe("payments")
	hub.Close()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := hub.Subscribe("payments")
	_, ok = <-late
	assert.False(t, ok)
}

func TestDecodeNotification(t *testing.T) {
	c, err := DecodeNotification(`{"table":"pt_sessions","op":"delete","id":42}`)
	require.NoError(t, err)
	assert.Equal(t, Change{Table: "pt_sessions", Op: "delete", ID: 42}, c)

	_, err = DecodeNotification(`{"op":"insert"}`)
	assert.Error(t, err)

	_, err = DecodeNotification(`not json`)
	assert.Error(t, err)
}
