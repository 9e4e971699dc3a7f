package rules

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	corechess "github.com/park285/Cheese-chess-arena/internal/chess"
)

func mustBoard(t *testing.T, moves ...string) *Board {
	t.Helper()
	b, err := FromUCI(moves...)
	if err != nil {
		t.Fatalf("replay %v: %v", moves, err)
	}
	return b
}

func findMove(moves []corechess.Move, uci string) (corechess.Move, bool) {
	for _, m := range moves {
		if m.UCI() == uci {
			return m, true
		}
	}
	return corechess.Move{}, false
}

func TestStartPositionHasTwentyMoves(t *testing.T) {
	b := New()
	moves := b.LegalMoves()
	if len(moves) != 20 {
		t.Fatalf("expected 20 legal moves, got %d", len(moves))
	}
	if b.SideToMove() != corechess.White {
		t.Fatalf("expected white to move")
	}
	if b.InCheck() {
		t.Fatalf("start position is not check")
	}
	for _, m := range moves {
		if m.Capture || m.Check || m.Checkmate {
			t.Fatalf("unexpected flags on %s", m.UCI())
		}
		if m.Piece != corechess.Pawn && m.Piece != corechess.Knight {
			t.Fatalf("unexpected mover %v on %s", m.Piece, m.UCI())
		}
	}
	if got := len(b.LegalMovesFrom("g1")); got != 2 {
		t.Fatalf("expected 2 knight moves from g1, got %d", got)
	}
}

func TestApplyUndoRestoresPosition(t *testing.T) {
	b := mustBoard(t, "e2e4", "e7e5")
	fen := b.FEN()
	history := b.UCIHistory()

	m, ok := findMove(b.LegalMoves(), "g1f3")
	if !ok {
		t.Fatalf("g1f3 not legal")
	}
	if err := b.Apply(m); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if b.SideToMove() != corechess.Black {
		t.Fatalf("expected black to move after trial")
	}
	if got := b.PieceAt("f3"); got.Kind != corechess.Knight {
		t.Fatalf("expected knight on f3, got %+v", got)
	}
	if err := b.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if b.FEN() != fen {
		t.Fatalf("fen mismatch after undo: %s vs %s", b.FEN(), fen)
	}
	if diff := cmp.Diff(history, b.UCIHistory()); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
	if err := b.Undo(); !errors.Is(err, corechess.ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestApplyRejectsIllegalMove(t *testing.T) {
	b := New()
	err := b.Apply(corechess.Move{From: "e2", To: "e5", Piece: corechess.Pawn})
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	if b.Depth() != 0 {
		t.Fatalf("failed apply must not push")
	}
}

func TestCaptureAndCheckmateFlags(t *testing.T) {
	b := mustBoard(t, "e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6")
	m, ok := findMove(b.LegalMoves(), "h5f7")
	if !ok {
		t.Fatalf("h5f7 not legal")
	}
	if !m.Capture || m.Captured != corechess.Pawn {
		t.Fatalf("expected pawn capture, got %+v", m)
	}
	if !m.Check || !m.Checkmate {
		t.Fatalf("expected checkmate flags, got %+v", m)
	}
	if m.Notation != "Qxf7#" {
		t.Fatalf("expected Qxf7#, got %q", m.Notation)
	}
}

func TestCheckFlagWithoutMate(t *testing.T) {
	b := mustBoard(t, "e2e4", "f7f6")
	m, ok := findMove(b.LegalMoves(), "d1h5")
	if !ok {
		t.Fatalf("d1h5 not legal")
	}
	if !m.Check || m.Checkmate {
		t.Fatalf("expected plain check, got %+v", m)
	}
}

func TestEnPassantIsCapture(t *testing.T) {
	b := mustBoard(t, "e2e4", "a7a6", "e4e5", "d7d5")
	m, ok := findMove(b.LegalMoves(), "e5d6")
	if !ok {
		t.Fatalf("en passant not offered")
	}
	if !m.Capture || m.Captured != corechess.Pawn {
		t.Fatalf("expected en passant capture flags, got %+v", m)
	}
}

func TestNoLegalMovesAfterMate(t *testing.T) {
	b := mustBoard(t, "f2f3", "e7e5", "g2g4", "d8h4")
	if moves := b.LegalMoves(); len(moves) != 0 {
		t.Fatalf("expected no legal moves, got %d", len(moves))
	}
	if !b.InCheck() {
		t.Fatalf("expected white in check")
	}
	if !b.Finished() || b.Outcome() != "0-1" {
		t.Fatalf("expected black win, got %s", b.Outcome())
	}
}

func TestAttacksAndAttackers(t *testing.T) {
	b := New()
	got := b.AttacksFrom("g1")
	want := []corechess.Square{"h3", "f3", "e2"}
	if diff := cmp.Diff(sortSquares(want), sortSquares(got)); diff != "" {
		t.Fatalf("knight attacks mismatch (-want +got):\n%s", diff)
	}
	if len(b.AttacksFrom("a1")) != 2 {
		t.Fatalf("rook on a1 should see a2 and b1 only")
	}
	attackers := b.Attackers("f3", corechess.White)
	if diff := cmp.Diff(sortSquares([]corechess.Square{"e2", "g2", "g1"}), sortSquares(attackers)); diff != "" {
		t.Fatalf("attackers mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeAcceptsSANAndUCI(t *testing.T) {
	b := New()
	san, err := b.Decode("Nf3")
	if err != nil {
		t.Fatalf("decode san: %v", err)
	}
	uci, err := b.Decode("G1F3")
	if err != nil {
		t.Fatalf("decode uci: %v", err)
	}
	if !san.Same(uci) {
		t.Fatalf("expected same move, got %s and %s", san.UCI(), uci.UCI())
	}
	if _, err := b.Decode("g1f4"); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("illegal coordinates must not fall back to SAN, got %v", err)
	}
	if _, err := b.Decode("Ke5"); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
}

func TestSANHistoryAndMaterial(t *testing.T) {
	b := mustBoard(t, "e2e4", "d7d5", "e4d5")
	if diff := cmp.Diff([]string{"e4", "d5", "exd5"}, b.SANHistory()); diff != "" {
		t.Fatalf("san history mismatch (-want +got):\n%s", diff)
	}
	white, black := b.Material()
	if white != 39 || black != 38 {
		t.Fatalf("expected 39/38 material, got %d/%d", white, black)
	}
}

func sortSquares(in []corechess.Square) []corechess.Square {
	out := append([]corechess.Square(nil), in...)
	slices.Sort(out)
	return out
}

func TestPlayReadsCoordinatesBeforeSAN(t *testing.T) {
	for _, tc := range []struct {
		input string
		from  corechess.Square
		to    corechess.Square
	}{
		{"g1f3", "g1", "f3"},
		{"b1c3", "b1", "c3"},
		{"Nf3", "g1", "f3"},
	} {
		b := New()
		mv, err := b.Play(tc.input)
		if err != nil {
			t.Fatalf("play %s: %v", tc.input, err)
		}
		if mv.From != tc.from || mv.To != tc.to || mv.Piece != corechess.Knight {
			t.Fatalf("play %s: got %s (%v)", tc.input, mv.UCI(), mv.Piece)
		}
		if p := b.PieceAt(tc.to); p.Kind != corechess.Knight || p.Color != corechess.White {
			t.Fatalf("play %s: expected white knight on %s, got %+v", tc.input, tc.to, p)
		}
	}
}

func TestFromUCIReplaysPieceMoves(t *testing.T) {
	b := mustBoard(t, "g1f3", "b8c6", "b1c3")
	want := "r1bqkbnr/pppppppp/2n5/8/8/2N2N2/PPPPPPPP/R1BQKB1R b KQkq"
	if fen := b.FEN(); len(fen) < len(want) || fen[:len(want)] != want {
		t.Fatalf("unexpected fen %s", fen)
	}
	if diff := cmp.Diff([]string{"g1f3", "b8c6", "b1c3"}, b.UCIHistory()); diff != "" {
		t.Fatalf("uci history mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Nf3", "Nc6", "Nc3"}, b.SANHistory()); diff != "" {
		t.Fatalf("san history mismatch (-want +got):\n%s", diff)
	}

	castled := mustBoard(t, "e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "f8c5", "e1g1")
	if p := castled.PieceAt("g1"); p.Kind != corechess.King {
		t.Fatalf("expected king on g1 after castling, got %+v", p)
	}
	if p := castled.PieceAt("f1"); p.Kind != corechess.Rook {
		t.Fatalf("expected rook on f1 after castling, got %+v", p)
	}
}

func TestPlayUCIRejectsSAN(t *testing.T) {
	b := New()
	if _, err := b.PlayUCI("Nf3"); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove for SAN input, got %v", err)
	}
	if _, err := b.PlayUCI("e2e5"); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove for illegal coordinates, got %v", err)
	}
	if b.Ply() != 0 {
		t.Fatalf("rejected moves must not be played, ply=%d", b.Ply())
	}
}
