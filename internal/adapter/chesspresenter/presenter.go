package chesspresenter

import (
	"context"

	"github.com/park285/Cheese-chess-arena/pkg/chessdto"
)

// Presenter turns service results into socket events without coupling the
// transport to the formatter.
type Presenter struct {
	formatter *Formatter
	send      func(ctx context.Context, ev chessdto.SocketEvent) error
}

func NewPresenter(formatter *Formatter, send func(ctx context.Context, ev chessdto.SocketEvent) error) *Presenter {
	return &Presenter{formatter: formatter, send: send}
}

func (p *Presenter) State(ctx context.Context, state *chessdto.GameState) error {
	if p == nil || p.send == nil || state == nil {
		return nil
	}
	return p.send(ctx, chessdto.SocketEvent{Type: "state", Message: p.formatter.Status(state), State: state})
}

func (p *Presenter) PlayerMove(ctx context.Context, summary *chessdto.MoveSummary) error {
	return p.move(ctx, "player_move", summary)
}

func (p *Presenter) EngineMove(ctx context.Context, summary *chessdto.MoveSummary) error {
	return p.move(ctx, "engine_move", summary)
}

func (p *Presenter) move(ctx context.Context, kind string, summary *chessdto.MoveSummary) error {
	if p == nil || p.send == nil || summary == nil {
		return nil
	}
	summary.Message = p.formatter.Move(summary)
	return p.send(ctx, chessdto.SocketEvent{Type: kind, Message: summary.Message, Summary: summary})
}

func (p *Presenter) Error(ctx context.Context, err error) error {
	if p == nil || p.send == nil || err == nil {
		return nil
	}
	de := p.formatter.Error(err)
	return p.send(ctx, chessdto.SocketEvent{Type: "error", Message: de.Message, Error: &de})
}

func (p *Presenter) Hint(ctx context.Context, h *chessdto.Hint) error {
	if p == nil || p.send == nil || h == nil {
		return nil
	}
	h.Message = p.formatter.Hint(h)
	return p.send(ctx, chessdto.SocketEvent{Type: "hint", Message: h.Message, Hint: h})
}
