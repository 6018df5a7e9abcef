package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// Feed fans session events out to the owning member's open sockets. A
// member may have several tabs; each gets its own subscriber.
type Feed struct {
	mu   sync.RWMutex
	subs map[int64]map[*Subscriber]struct{}
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int64]map[*Subscriber]struct{})}
}

type Subscriber struct {
	MemberID int64
	Conn     *websocket.Conn
	Send     chan []byte

	feed *Feed
	once sync.Once
}

// Subscribe registers a socket for the member's events. Call Run on the
// returned subscriber to start the pumps.
func (f *Feed) Subscribe(memberID int64, conn *websocket.Conn) *Subscriber {
	sub := &Subscriber{
		MemberID: memberID,
		Conn:     conn,
		Send:     make(chan []byte, 16),
		feed:     f,
	}
	f.mu.Lock()
	if f.subs[memberID] == nil {
		f.subs[memberID] = make(map[*Subscriber]struct{})
	}
	f.subs[memberID][sub] = struct{}{}
	f.mu.Unlock()
	return sub
}

// Publish sends the event to every subscriber of the member. Slow
// subscribers are skipped rather than blocking the request path.
func (f *Feed) Publish(memberID int64, event SessionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws: marshal event: %v", err)
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for sub := range f.subs[memberID] {
		select {
		case sub.Send <- payload:
		default:
		}
	}
}

// Subscribers returns how many sockets the member has open.
func (f *Feed) Subscribers(memberID int64) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[memberID])
}

func (f *Feed) remove(sub *Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if set, ok := f.subs[sub.MemberID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(f.subs, sub.MemberID)
		}
	}
}

// Close unregisters the subscriber and closes its socket.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		s.feed.remove(s)
		close(s.Send)
		if s.Conn != nil {
			_ = s.Conn.Close()
		}
	})
}

// Run starts the read and write pumps and blocks until the socket dies.
// The feed is push-only: inbound messages are discarded, reads only serve
// pong and close handling.
func (s *Subscriber) Run() {
	go s.writeLoop()
	s.readLoop()
}

func (s *Subscriber) readLoop() {
	defer s.Close()
	s.Conn.SetReadLimit(512)
	_ = s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error {
		return s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Subscriber) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()
	for {
		select {
		case msg, ok := <-s.Send:
			_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
