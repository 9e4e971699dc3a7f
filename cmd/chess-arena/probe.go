package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/park285/Cheese-chess-arena/internal/arenaclient"
	"github.com/park285/Cheese-chess-arena/pkg/chessdto"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check a running arena: health, one game over REST and one move over the websocket",
	Args:  cobra.NoArgs,
	RunE:  runProbe,
}

var (
	probeBaseURL string
	probeWSURL   string
	probePlayer  string
	probeProfile string
)

func init() {
	probeCmd.Flags().StringVar(&probeBaseURL, "base-url", "http://localhost:8080", "REST base url")
	probeCmd.Flags().StringVar(&probeWSURL, "ws-url", "ws://localhost:8081", "websocket base url (empty skips the socket check)")
	probeCmd.Flags().StringVar(&probePlayer, "player", "probe", "X-Player-ID to send")
	probeCmd.Flags().StringVar(&probeProfile, "profile", "iniciado", "opponent profile")
}

func runProbe(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	client := arenaclient.NewClient(probeBaseURL,
		arenaclient.WithPlayerID(probePlayer),
		arenaclient.WithTimeout(8*time.Second),
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("/healthz: %w", err)
	}
	fmt.Fprintln(out, "/healthz ok")

	start, err := client.StartGame(ctx, chessdto.StartGameRequest{Profile: probeProfile, Color: "white"})
	if err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	gameID := start.State.GameID
	fmt.Fprintf(out, "game %s: %s\n", gameID, start.Message)

	moved, err := client.Move(ctx, gameID, "e4")
	if err != nil {
		return fmt.Errorf("move: %w", err)
	}
	fmt.Fprintln(out, moved.Message)

	if probeWSURL != "" {
		if err := probeSocket(ctx, cmd, gameID); err != nil {
			return err
		}
	}

	resigned, err := client.Resign(ctx, gameID)
	if err != nil {
		return fmt.Errorf("resign: %w", err)
	}
	fmt.Fprintln(out, resigned.Message)
	return nil
}

// probeSocket plays one move over the websocket and waits for the engine reply.
func probeSocket(ctx context.Context, cmd *cobra.Command, gameID string) error {
	out := cmd.OutOrStdout()
	sock := arenaclient.NewSocket(probeWSURL, gameID)
	sock.SetHeaderProvider(func() map[string]string { return map[string]string{"X-Player-ID": probePlayer} })
	sock.OnStateChange(func(state arenaclient.SocketState) {
		fmt.Fprintf(out, "ws state: %s\n", state)
	})

	events := make(chan *chessdto.SocketEvent, 8)
	sock.OnEvent(func(ev *chessdto.SocketEvent) {
		select {
		case events <- ev:
		default:
		}
	})
	if err := sock.Connect(ctx); err != nil {
		return fmt.Errorf("ws connect: %w", err)
	}
	defer sock.Close(context.Background())

	if err := sock.Move(ctx, "d4"); err != nil {
		return fmt.Errorf("ws move: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("ws: %w", ctx.Err())
		case ev := <-events:
			fmt.Fprintf(out, "ws %s: %s\n", ev.Type, ev.Message)
			switch ev.Type {
			case "engine_move":
				return nil
			case "error":
				return fmt.Errorf("ws error: %s", ev.Message)
			}
		}
	}
}
