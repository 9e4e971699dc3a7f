package httpapi

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"

	"github.com/park285/Cheese-chess-arena/internal/adapter/chesspresenter"
	"github.com/park285/Cheese-chess-arena/internal/arenaclient"
	"github.com/park285/Cheese-chess-arena/internal/msgcat"
	"github.com/park285/Cheese-chess-arena/internal/service/cache"
	svcchess "github.com/park285/Cheese-chess-arena/internal/service/chess"
	"github.com/park285/Cheese-chess-arena/pkg/chessdto"
)

type fixture struct {
	svc       *svcchess.Service
	formatter *chesspresenter.Formatter
	baseURL   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc, err := svcchess.NewService(cache.NewFromClient(client, nil), svcchess.NewMemoryRepository(), svcchess.Config{SessionTTL: time.Minute}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	svc.SetRandomSeed(3)
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat: %v", err)
	}
	f := &fixture{svc: svc, formatter: chesspresenter.NewFormatter(cat, nil)}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = NewServer(svc, f.formatter, nil).Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	f.baseURL = "http://" + ln.Addr().String()
	return f
}

func (f *fixture) client(player string) *arenaclient.Client {
	opts := []arenaclient.Option{arenaclient.WithTimeout(5 * time.Second), arenaclient.WithRetry(1)}
	if player != "" {
		opts = append(opts, arenaclient.WithPlayerID(player))
	}
	return arenaclient.NewClient(f.baseURL, opts...)
}

func TestHealthAndProfiles(t *testing.T) {
	f := newFixture(t)
	c := f.client("")
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health: %v", err)
	}
	list, err := c.Profiles(ctx)
	if err != nil {
		t.Fatalf("Profiles: %v", err)
	}
	if len(list.Profiles) != 6 || list.Message == "" {
		t.Fatalf("unexpected profiles response %+v", list)
	}
	p, err := c.Profile(ctx, "maestro")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.ID != "maestro" || p.Behavior.SearchDepth == 0 {
		t.Fatalf("unexpected profile %+v", p)
	}
	if _, err := c.Profile(ctx, "nobody"); arenaclient.Code(err) != chesspresenter.CodeProfileNotFound {
		t.Fatalf("expected profile_not_found, got %v", err)
	}
}

func TestGameLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)
	c := f.client("alice")
	ctx := context.Background()

	start, err := c.StartGame(ctx, chessdto.StartGameRequest{Profile: "iniciado", Color: "white"})
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	gameID := start.State.GameID
	if gameID == "" || !start.State.PlayerToMove || start.Message == "" {
		t.Fatalf("unexpected start %+v", start)
	}

	hint, err := c.Hint(ctx, gameID)
	if err != nil {
		t.Fatalf("Hint: %v", err)
	}
	if hint.MoveUCI == "" || hint.Message == "" {
		t.Fatalf("empty hint %+v", hint)
	}

	moved, err := c.Move(ctx, gameID, "e4")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if moved.PlayerSAN != "e4" || moved.EngineSAN == "" || len(moved.State.MovesUCI) != 2 {
		t.Fatalf("unexpected move summary %+v", moved)
	}

	if _, err := c.Move(ctx, gameID, "Ke8"); arenaclient.Code(err) != chesspresenter.CodeInvalidMove {
		t.Fatalf("expected invalid_move, got %v", err)
	}
	if _, err := c.EngineMove(ctx, gameID); arenaclient.Code(err) != chesspresenter.CodeNotYourTurn {
		t.Fatalf("expected not_your_turn, got %v", err)
	}

	undone, err := c.Undo(ctx, gameID)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if len(undone.State.MovesUCI) != 0 || undone.Message == "" {
		t.Fatalf("unexpected undo %+v", undone)
	}

	resigned, err := c.Resign(ctx, gameID)
	if err != nil {
		t.Fatalf("Resign: %v", err)
	}
	if resigned.State.Status != "finished" || resigned.State.Outcome != "0-1" || resigned.State.RecordID == 0 {
		t.Fatalf("unexpected resign %+v", resigned.State)
	}
	if _, err := c.Move(ctx, gameID, "e4"); arenaclient.Code(err) != chesspresenter.CodeGameFinished {
		t.Fatalf("expected game_finished, got %v", err)
	}

	history, err := c.History(ctx, 5)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history.Games) != 1 || history.Games[0].Result != "loss" {
		t.Fatalf("unexpected history %+v", history)
	}
	record, err := c.Record(ctx, history.Games[0].ID)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !strings.Contains(record.PGN, `[Result "0-1"]`) {
		t.Fatalf("pgn missing result:\n%s", record.PGN)
	}
	if _, err := f.client("bob").Record(ctx, record.ID); arenaclient.Code(err) != chesspresenter.CodeRecordNotFound {
		t.Fatalf("records are scoped to their player, got %v", err)
	}

	player, err := c.Player(ctx)
	if err != nil {
		t.Fatalf("Player: %v", err)
	}
	if player.Losses != 1 || player.GamesPlayed != 1 {
		t.Fatalf("unexpected player %+v", player)
	}
}

func TestHTTPErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anon := f.client("")

	if _, err := anon.State(ctx, "missing"); arenaclient.Code(err) != chesspresenter.CodeGameNotFound {
		t.Fatalf("expected game_not_found, got %v", err)
	}
	if _, err := anon.History(ctx, 0); arenaclient.Code(err) != chesspresenter.CodePlayerNotFound {
		t.Fatalf("history needs a player id, got %v", err)
	}
	if _, err := anon.StartGame(ctx, chessdto.StartGameRequest{FEN: "not a fen"}); arenaclient.Code(err) != chesspresenter.CodeInvalidStart {
		t.Fatalf("expected invalid_start, got %v", err)
	}

	status, body := rawRequest(t, f.baseURL+"/api/games/abc/moves", fasthttp.MethodPost, "{")
	if status != fasthttp.StatusBadRequest || !strings.Contains(body, chesspresenter.CodeInvalidRequest) {
		t.Fatalf("bad body: %d %s", status, body)
	}
	status, _ = rawRequest(t, f.baseURL+"/api/games", fasthttp.MethodGet, "")
	if status != fasthttp.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", status)
	}
	status, _ = rawRequest(t, f.baseURL+"/nowhere", fasthttp.MethodGet, "")
	if status != fasthttp.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	status, _ = rawRequest(t, f.baseURL+"/api/history/zero", fasthttp.MethodGet, "")
	if status != fasthttp.StatusBadRequest {
		t.Fatalf("expected 400 for bad record id, got %d", status)
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[string]int{
		chesspresenter.CodeGameNotFound:     404,
		chesspresenter.CodeInvalidMove:      422,
		chesspresenter.CodeConcurrentUpdate: 409,
		chesspresenter.CodeInvalidRequest:   400,
		chesspresenter.CodeInternal:         500,
	}
	for code, want := range cases {
		if got := StatusFor(code); got != want {
			t.Fatalf("%s: got %d want %d", code, got, want)
		}
	}
}

func rawRequest(t *testing.T, uri, method, body string) (int, string) {
	t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	if body != "" {
		req.SetBodyString(body)
	}
	if err := fasthttp.DoTimeout(req, resp, 5*time.Second); err != nil {
		t.Fatalf("%s %s: %v", method, uri, err)
	}
	return resp.StatusCode(), string(resp.Body())
}

func TestSocketStreamsPlayerThenEngineMove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start, err := f.client("carol").StartGame(ctx, chessdto.StartGameRequest{Profile: "acolito", Color: "white"})
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	sockets := NewSocketServer(f.svc, f.formatter, nil, WithEngineDelay(func(string) time.Duration { return 10 * time.Millisecond }))
	srv := httptest.NewServer(sockets.Handler())
	defer srv.Close()

	var (
		mu     sync.Mutex
		events []*chessdto.SocketEvent
	)
	got := make(chan struct{}, 16)
	sock := arenaclient.NewSocket("ws"+strings.TrimPrefix(srv.URL, "http"), start.State.GameID)
	sock.OnEvent(func(ev *chessdto.SocketEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
		got <- struct{}{}
	})
	if err := sock.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer sock.Close(context.Background())

	waitEvents := func(n int) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			mu.Lock()
			have := len(events)
			mu.Unlock()
			if have >= n {
				return
			}
			select {
			case <-got:
			case <-deadline:
				t.Fatalf("timed out waiting for %d events, have %d", n, have)
			}
		}
	}

	waitEvents(1)
	if err := sock.Move(ctx, "d4"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	waitEvents(3)
	if err := sock.Move(ctx, "d4"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	waitEvents(4)

	mu.Lock()
	defer mu.Unlock()
	kinds := []string{events[0].Type, events[1].Type, events[2].Type, events[3].Type}
	want := []string{"state", "player_move", "engine_move", "error"}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event %d: got %s want %s (all %v)", i, kinds[i], want[i], kinds)
		}
	}
	if events[1].Summary.PlayerSAN != "d4" || events[2].Summary.EngineSAN == "" {
		t.Fatalf("unexpected summaries %+v / %+v", events[1].Summary, events[2].Summary)
	}
	if events[3].Error == nil || events[3].Error.Code != chesspresenter.CodeInvalidMove {
		t.Fatalf("expected invalid_move error event, got %+v", events[3])
	}
}

func TestSocketRejectsUnknownGame(t *testing.T) {
	f := newFixture(t)
	sockets := NewSocketServer(f.svc, f.formatter, nil)
	srv := httptest.NewServer(sockets.Handler())
	defer srv.Close()

	got := make(chan *chessdto.SocketEvent, 1)
	sock := arenaclient.NewSocket("ws"+strings.TrimPrefix(srv.URL, "http"), "missing")
	sock.OnEvent(func(ev *chessdto.SocketEvent) { got <- ev })
	if err := sock.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer sock.Close(context.Background())

	select {
	case ev := <-got:
		if ev.Type != "error" || ev.Error.Code != chesspresenter.CodeGameNotFound {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no error event")
	}

	resp, err := http.Get(srv.URL + "/ws/other")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", resp.StatusCode)
	}
}
