package web

import (
	"net/http"
	"slices"
	"time"

	"gym-panel/internal/backend"
	"gym-panel/internal/repository"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

var watchable = []string{
	repository.TableStudents,
	repository.TableCoaches,
	repository.TablePayments,
	repository.TableRefunds,
	repository.TableExpenses,
	repository.TableTrainingGroups,
	repository.TableGroupMembers,
	repository.TablePTSubscriptions,
	repository.TablePTSessions,
}

// тренеру доступны только таблицы PT
var coachWatchable = []string{repository.TablePTSubscriptions, repository.TablePTSessions}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Realtime /ws?table=... пересылает изменения таблицы в браузер
func (h *Handler) Realtime(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	allowed := coachWatchable
	if isAdmin(sessionFrom(r.Context())) {
		allowed = watchable
	}
	if !slices.Contains(allowed, table) {
		http.Error(w, "неизвестная таблица", http.StatusBadRequest)
		return
	}
	if h.changes == nil {
		http.Error(w, "обновления отключены", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("Не удалось открыть websocket", zap.Error(err))
		return
	}

	changes, cancel := h.changes.Subscribe(table)
	defer cancel()

	closed := make(chan struct{})
	go readPump(conn, closed)
	h.writePump(conn, changes, closed)
}

// readPump читает только control-фреймы, чтобы заметить закрытие
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writePump(conn *websocket.Conn, changes <-chan backend.Change, closed <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case <-closed:
			return
		case c, ok := <-changes:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(c); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
