package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRealtimeForwardsChanges(t *testing.T) {
	env := newTestEnv(t)
	hub := backend.NewHub(zap.NewNop())
	defer hub.Close()
	env.h.changes = hub

	srv := httptest.NewServer(env.srv)
	defer srv.Close()

	header := http.Header{}
	header.Add("Cookie", env.login(t, models.RoleCoach, ptr(3)).String())
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?table=" + repository.TablePTSessions

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	// подписка появляется после апгрейда, поэтому публикуем, пока не дойдет
	received := make(chan backend.Change, 1)
	go func() {
		var c backend.Change
		if err := conn.ReadJSON(&c); err == nil {
			received <- c
		}
	}()

	want := backend.Change{Table: repository.TablePTSessions, Op: "INSERT", ID: 42}
	deadline := time.After(3 * time.Second)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case got := <-received:
			assert.Equal(t, want, got)
			return
		case <-tick.C:
			hub.Publish(want)
		case <-deadline:
			t.Fatal("change was not delivered")
		}
	}
}
