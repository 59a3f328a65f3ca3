package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Queue inspection commands",
	}

	cmd.AddCommand(newQueueLengthCmd())
	cmd.AddCommand(newQueuePushCmd())

	return cmd
}

func newQueueLengthCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "length",
		Short: "Show how many participants are waiting",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result QueueResult

			if err := client.Get(queuePath(mode), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "registered", "Queue mode: registered, guest")

	return cmd
}

func newQueuePushCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "push <participant>...",
		Short: "Add participants to a queue",
		Long: `Add participants to the back of a queue, in the order given.

Registered participants are numeric account ids; guests are opaque strings.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string][]string{"participants": args}

			var result QueueResult

			if err := client.Post(queuePath(mode), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "registered", "Queue mode: registered, guest")

	return cmd
}

func newAttemptCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "attempt",
		Short: "Run one pairing pass now",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result AttemptResult

			if err := client.Post(queuePath(mode)+"/attempt", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "registered", "Queue mode: registered, guest")

	return cmd
}

func newSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session <id>",
		Short: "Show a created session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Get(fmt.Sprintf("/api/v1/sessions/%s", url.PathEscape(args[0])), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func queuePath(mode string) string {
	return "/api/v1/queues/" + url.PathEscape(mode)
}
