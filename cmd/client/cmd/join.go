package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dkeye/Video/internal/client/core"
	"github.com/dkeye/Video/internal/client/media"
	"github.com/dkeye/Video/internal/client/orch"
	"github.com/dkeye/Video/internal/client/rtc"
	"github.com/dkeye/Video/internal/client/signaling"
	"github.com/dkeye/Video/internal/domain"
)

var (
	flagServer string
	flagName   string
	flagSTUN   []string
)

var joinCmd = &cobra.Command{
	Use:     "join <room>",
	Aliases: []string{"j"},
	Short:   "Join a room",
	Long: `Join a room and stay connected until interrupted.

Examples:
  video join standup --name alice
  video join demo --server ws://rooms.example.com/ws/signal`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return joinRoom(args[0])
	},
}

func joinRoom(room string) error {
	if flagName == "" {
		return fmt.Errorf("a display name is required, pass --name")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := rtc.Config(flagSTUN)
	o := orch.New(orch.Options{
		Dial: func(ctx context.Context) (core.Transport, error) {
			c := signaling.NewClient(flagServer)
			if err := c.Connect(ctx); err != nil {
				return nil, fmt.Errorf("connect %s: %w", flagServer, err)
			}
			return c, nil
		},
		Media: media.NewSource(media.NewSampleDevice("camera")),
		NewConn: func(peer domain.ConnID) (core.LinkConn, error) {
			return rtc.New(cfg, peer)
		},
		UserID:      domain.UserID(uuid.NewString()),
		DisplayName: flagName,
		Room:        domain.RoomID(room),
	})

	log.Info().Str("module", "client").Str("room", room).Str("name", flagName).Msg("joining")
	err := o.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info().Str("module", "client").Msg("left room")
		return nil
	}
	return err
}

func init() {
	joinCmd.Flags().StringVarP(&flagServer, "server", "s", "ws://localhost:8080/ws/signal", "signaling server URL")
	joinCmd.Flags().StringVarP(&flagName, "name", "n", "", "display name shown to other participants")
	joinCmd.Flags().StringSliceVar(&flagSTUN, "stun", []string{"stun:stun.l.google.com:19302", "stun:stun1.l.google.com:19302"}, "STUN server URLs")

	rootCmd.AddCommand(joinCmd)
}
