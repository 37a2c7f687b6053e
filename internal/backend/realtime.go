package backend

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// AllTables subscribes to changes of every table.
const AllTables = "*"

// Hub fans changes out to per-table subscribers. A subscriber that does not
// keep up loses notifications instead of blocking the others.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan Change]struct{}
	closed bool
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[chan Change]struct{}),
		logger: logger.Named("realtime"),
	}
}

func (h *Hub) Subscribe(table string) (<-chan Change, func()) {
	ch := make(chan Change, 16)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	set, ok := h.subs[table]
	if !ok {
		set = make(map[chan Change]struct{})
		h.subs[table] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set, ok := h.subs[table]; ok {
				if _, exists := set[ch]; exists {
					delete(set, ch)
					close(ch)
				}
				if len(set) == 0 {
					delete(h.subs, table)
				}
			}
		})
	}
	return ch, cancel
}

// Publish delivers c to subscribers of c.Table and of AllTables. Resync
// changes go to everybody.
func (h *Hub) Publish(c Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if c.Op == Resync {
		for table, set := range h.subs {
			h.deliver(table, set, c)
		}
		return
	}
	h.deliver(c.Table, h.subs[c.Table], c)
	if c.Table != AllTables {
		h.deliver(AllTables, h.subs[AllTables], c)
	}
}

func (h *Hub) deliver(table string, set map[chan Change]struct{}, c Change) {
	for ch := range set {
		select {
		case ch <- c:
		default:
			h.logger.Warn("subscriber is slow, change dropped", zap.String("table", table), zap.String("op", c.Op))
		}
	}
}

// Close closes every subscriber channel; later subscriptions get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, set := range h.subs {
		for ch := range set {
			close(ch)
		}
	}
	h.subs = make(map[string]map[chan Change]struct{})
}

// Listener feeds the hub from Postgres LISTEN/NOTIFY.
type Listener struct {
	hub      *Hub
	listener *pq.Listener
	channel  string
	logger   *zap.Logger
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewListener(dsn, channel string, hub *Hub, logger *zap.Logger) *Listener {
	logger = logger.Named("listener")
	report := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	}
	return &Listener{
		hub:      hub,
		listener: pq.NewListener(dsn, 10*time.Second, time.Minute, report),
		channel:  channel,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

func (l *Listener) Start() error {
	if err := l.listener.Listen(l.channel); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}

	l.wg.Add(1)
	go l.loop()

	l.logger.Info("📡 Подписка на изменения", zap.String("channel", l.channel))
	return nil
}

func (l *Listener) loop() {
	defer l.wg.Done()

	for {
		select {
		case <-l.done:
			return
		case n := <-l.listener.Notify:
			if n == nil {
				// соединение переподнялось, часть событий могла потеряться
				l.hub.Publish(Change{Table: AllTables, Op: Resync})
				continue
			}
			change, err := DecodeNotification(n.Extra)
			if err != nil {
				l.logger.Warn("bad notification payload", zap.String("payload", n.Extra), zap.Error(err))
				continue
			}
			l.hub.Publish(change)
		case <-time.After(90 * time.Second):
			go l.listener.Ping()
		}
	}
}

func (l *Listener) Stop() error {
	close(l.done)
	l.wg.Wait()
	return l.listener.Close()
}

// DecodeNotification parses the trigger payload {"table":..,"op":..,"id":..}.
func DecodeNotification(payload string) (Change, error) {
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{}, err
	}
	if c.Table == "" {
		return Change{}, fmt.Errorf("notification without table")
	}
	return c, nil
}
