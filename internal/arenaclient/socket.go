package arenaclient

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/Cheese-chess-arena/pkg/chessdto"
)

type SocketState string

const (
	SocketDisconnected SocketState = "disconnected"
	SocketConnecting   SocketState = "connecting"
	SocketConnected    SocketState = "connected"
	SocketClosed       SocketState = "closed"
)

type EventCallback func(ev *chessdto.SocketEvent)

type StateCallback func(state SocketState)

var ErrNotConnected = errors.New("socket not connected")

// Socket follows one game over the websocket endpoint.
type Socket struct {
	url string

	conn   *websocket.Conn
	state  SocketState
	stateM sync.RWMutex
	writeM sync.Mutex

	eventCbs []EventCallback
	stateCbs []StateCallback
	cbM      sync.RWMutex

	pingInterval time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc

	headerProvider HeaderProvider
}

// NewSocket targets wsBaseURL + /ws/games/{gameID}.
func NewSocket(wsBaseURL, gameID string) *Socket {
	return &Socket{
		url:          strings.TrimRight(wsBaseURL, "/") + "/ws/games/" + gameID,
		state:        SocketDisconnected,
		pingInterval: 30 * time.Second,
		stopCh:       make(chan struct{}),
	}
}

func (s *Socket) SetHeaderProvider(h HeaderProvider) {
	s.headerProvider = h
}

func (s *Socket) SetPingInterval(d time.Duration) {
	s.pingInterval = d
}

func (s *Socket) Connect(ctx context.Context) error {
	s.stateM.Lock()
	if s.state == SocketConnected || s.state == SocketConnecting {
		s.stateM.Unlock()
		return nil
	}
	s.stateM.Unlock()

	s.rootCtx, s.rootCancel = context.WithCancel(context.Background())
	s.setState(SocketConnecting)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, s.url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      s.buildHeaders(),
	})
	if err != nil {
		s.setState(SocketDisconnected)
		return err
	}

	s.stateM.Lock()
	s.conn = conn
	s.stateM.Unlock()
	s.setState(SocketConnected)

	s.wg.Add(2)
	go s.listen(conn)
	go s.pingLoop(conn)
	return nil
}

func (s *Socket) Send(ctx context.Context, cmd chessdto.SocketCommand) error {
	s.stateM.RLock()
	conn, state := s.conn, s.state
	s.stateM.RUnlock()
	if conn == nil || state != SocketConnected {
		return ErrNotConnected
	}
	dctx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	s.writeM.Lock()
	defer s.writeM.Unlock()
	return wsjson.Write(dctx, conn, cmd)
}

func (s *Socket) Move(ctx context.Context, move string) error {
	return s.Send(ctx, chessdto.SocketCommand{Type: "move", Move: move})
}

func (s *Socket) listen(conn *websocket.Conn) {
	defer s.wg.Done()
	for {
		var ev chessdto.SocketEvent
		if err := wsjson.Read(s.rootCtx, conn, &ev); err != nil {
			if !s.isStopping() {
				s.setState(SocketDisconnected)
				_ = conn.Close(websocket.StatusGoingAway, "read failure")
			}
			return
		}

		s.cbM.RLock()
		callbacks := make([]EventCallback, len(s.eventCbs))
		copy(callbacks, s.eventCbs)
		s.cbM.RUnlock()
		for _, cb := range callbacks {
			if cb != nil {
				cb(&ev)
			}
		}
	}
}

func (s *Socket) pingLoop(conn *websocket.Conn) {
	defer s.wg.Done()
	t := time.NewTicker(s.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-s.stopCh:
			return
		case <-s.rootCtx.Done():
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(s.rootCtx, 3*time.Second)
			err := conn.Ping(ctx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			failures++
			if failures >= 2 {
				if !s.isStopping() {
					s.setState(SocketDisconnected)
					_ = conn.Close(websocket.StatusGoingAway, "ping failure")
				}
				return
			}
		}
	}
}

func (s *Socket) OnEvent(cb EventCallback) {
	s.cbM.Lock()
	defer s.cbM.Unlock()
	s.eventCbs = append(s.eventCbs, cb)
}

func (s *Socket) OnStateChange(cb StateCallback) {
	s.cbM.Lock()
	defer s.cbM.Unlock()
	s.stateCbs = append(s.stateCbs, cb)
}

func (s *Socket) State() SocketState {
	s.stateM.RLock()
	defer s.stateM.RUnlock()
	return s.state
}

func (s *Socket) setState(state SocketState) {
	s.stateM.Lock()
	s.state = state
	s.stateM.Unlock()

	s.cbM.RLock()
	callbacks := make([]StateCallback, len(s.stateCbs))
	copy(callbacks, s.stateCbs)
	s.cbM.RUnlock()
	for _, cb := range callbacks {
		if cb != nil {
			cb(state)
		}
	}
}

func (s *Socket) Close(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.stateM.Lock()
	conn := s.conn
	s.conn = nil
	s.stateM.Unlock()
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "close")
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		if s.rootCancel != nil {
			s.rootCancel()
		}
		s.setState(SocketClosed)
		return nil
	}
}

func (s *Socket) isStopping() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

func (s *Socket) buildHeaders() http.Header {
	hdr := http.Header{}
	if s.headerProvider == nil {
		return hdr
	}
	for k, v := range s.headerProvider() {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		hdr.Set(k, v)
	}
	return hdr
}
