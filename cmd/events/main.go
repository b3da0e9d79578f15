// Command events tails the chat events published to NATS.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docchat-be/internal/config"
	"docchat-be/internal/constant"
	"docchat-be/pkg/events"
	pktNats "docchat-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		natsURL string
		durable string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "events [event-type]",
		Short: "Tail chat events from NATS",
		Long: `Subscribes to the chat event stream and prints every event as it arrives.
An optional event type (for example CHAT_REPLIED) narrows the subscription.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if natsURL == "" {
				natsURL = config.Load().App.NatsURL
			}
			if natsURL == "" {
				return fmt.Errorf("no NATS url: set NATS_URL or pass --nats-url")
			}

			subject := pktNats.SubjectPrefix + ".>"
			if len(args) == 1 {
				subject = pktNats.Subject(args[0])
			}

			sub, err := pktNats.NewSubscriber(natsURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			out := cmd.OutOrStdout()
			stopConsuming, err := sub.Subscribe(cmd.Context(), subject, durable, func(ctx context.Context, event events.Event) error {
				return printEvent(out, event, asJSON)
			})
			if err != nil {
				return err
			}
			defer stopConsuming()

			color.New(color.FgYellow).Fprintf(out, "Listening on %s\n", subject)
			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS server url (default NATS_URL)")
	cmd.Flags().StringVar(&durable, "durable", "", "durable consumer name, empty for an ephemeral consumer")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON events")

	return cmd
}

func printEvent(out io.Writer, event events.Event, asJSON bool) error {
	if asJSON {
		data, err := events.Marshal(event)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	c := color.New(color.FgCyan)
	switch event.EventType() {
	case constant.EventChatFailed:
		c = color.New(color.FgRed)
	case constant.EventChatReplied:
		c = color.New(color.FgGreen)
	}

	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return err
	}
	c.Fprintf(out, "%s %-16s %s\n", event.Timestamp().Format(time.TimeOnly), event.EventType(), payload)
	return nil
}
