package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/pribylovaa/gamerfeeds/internal/client"
	"github.com/pribylovaa/gamerfeeds/internal/events"
)

var watchCmd = &cobra.Command{
	Use:   "watch <type:id>",
	Short: "Follow a comment tree live via NATS events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if natsURL == "" {
			return errors.New("watch requires --nats or GAMERFEEDS_NATS_URL")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		view, err := loadView(cmd, args[0])
		if err != nil {
			return err
		}

		return watchNATS(ctx, cmd, view)
	},
}

// watchNATS применяет события к локальной ветке и перерисовывает её.
// После переподключения ветка перечитывается: события за время обрыва потеряны.
func watchNATS(ctx context.Context, cmd *cobra.Command, view *client.ThreadView) error {
	reconnectCh := make(chan struct{}, 1)

	sub, err := events.NewNATSSubscriber(natsURL,
		nats.Name("commentsctl"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			select {
			case reconnectCh <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(events.TopicAll)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	out := cmd.OutOrStdout()
	if err := printForest(out, view.Forest()); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reconnectCh:
			if err := view.Load(ctx); err != nil {
				return err
			}
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if ev.Target() != view.Target() {
				continue
			}
			if err := view.ApplyEvent(ctx, ev); err != nil {
				return err
			}
		}

		fmt.Fprintln(out, "---")
		if err := printForest(out, view.Forest()); err != nil {
			return err
		}
	}
}
