package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/matchmaker/internal/model"
)

// Event names sent on the participant stream
const (
	eventConnected    = "connected"
	eventNotification = "notification"
)

func newEventsCmd() *cobra.Command {
	var (
		mode       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "events <participant>",
		Short: "Stream notifications for a participant",
		Long: `Connect as a participant and print every session start it is sent.

Only one connection per participant receives notifications; connecting
again replaces the previous one.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return streamEvents(ctx, os.Stdout, mode, args[0], jsonOutput)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "registered", "Queue mode: registered, guest")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// SSEEvent is one event read from the stream
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(ctx context.Context, out io.Writer, mode, participant string, jsonOutput bool) error {
	query := url.Values{}
	query.Set("mode", mode)
	query.Set("participant", participant)

	body, err := client.Stream(ctx, "/api/v1/events?"+query.Encode())
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	err = readEvents(body, func(evt SSEEvent) {
		if jsonOutput {
			data, _ := json.Marshal(evt)
			_, _ = fmt.Fprintln(out, string(data))
			return
		}
		if line, ok := describeEvent(evt, mode, participant); ok {
			_, _ = fmt.Fprintf(out, "[%s] %s\n", evt.Time.Format("2006-01-02 15:04:05"), line)
		}
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		_, _ = fmt.Fprintln(out, "Disconnected")
	}
	return nil
}

// readEvents calls handle for every complete event in r.
// Keepalive comments and events without a name are skipped.
func readEvents(r io.Reader, handle func(SSEEvent)) error {
	scanner := bufio.NewScanner(r)
	var (
		name string
		data []string
	)

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if name != "" {
				handle(SSEEvent{Time: time.Now(), Event: name, Data: strings.Join(data, "\n")})
			}
			name, data = "", nil
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		}
	}
	return scanner.Err()
}

// describeEvent renders an event as one human readable line
func describeEvent(evt SSEEvent, mode, participant string) (string, bool) {
	switch evt.Event {
	case eventConnected:
		return fmt.Sprintf("listening as %s participant %s", mode, participant), true
	case eventNotification:
		var msg model.SessionStartMessage
		if err := json.Unmarshal([]byte(evt.Data), &msg); err != nil || msg.Type != model.MessageSessionStart {
			return "notification: " + evt.Data, true
		}
		return fmt.Sprintf("session %d started, playing %s (clocks %s / %s)",
			msg.SessionID, roleName(msg.Role),
			time.Duration(msg.FirstTimeBudget)*time.Millisecond,
			time.Duration(msg.SecondTimeBudget)*time.Millisecond), true
	default:
		return "", false
	}
}

func roleName(role model.Role) string {
	if role == model.RoleFirst {
		return "first"
	}
	return "second"
}
