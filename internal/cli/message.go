package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rodrigiego-coder/beauty-manager/internal/config"
	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
)

func newMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Send test messages through the pipeline",
	}

	cmd.AddCommand(newMessageSendCmd())
	return cmd
}

// printSender writes replies to the command's stdout instead of a
// provider. Used by `message send` so the reply is visible.
type printSender struct {
	cmd *cobra.Command
}

func (p printSender) Send(ctx context.Context, salonID, phone, text string) (string, error) {
	fmt.Fprintln(p.cmd.OutOrStdout(), text)
	return uuid.New().String(), nil
}

func newMessageSendCmd() *cobra.Command {
	var (
		phone string
		name  string
	)

	cmd := &cobra.Command{
		Use:   "send [text]",
		Short: "Inject a customer message and print the assistant reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if cfg.Salon.ID == "" {
				return fmt.Errorf("salon.id is not configured")
			}

			// Short window so a single injected message does not sit in
			// the debounce buffer for seconds.
			cfg.Engine.DebounceMillis = 50

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := buildRuntime(ctx, cfg, log, printSender{cmd: cmd})
			if err != nil {
				return err
			}
			defer rt.Close()

			ev := domain.InboundEvent{
				SalonID:   cfg.Salon.ID,
				Phone:     phone,
				Name:      name,
				Text:      text,
				MessageID: "cli-" + uuid.New().String(),
				Timestamp: time.Now(),
			}
			return rt.Engine.HandleInbound(ctx, ev)
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "+5511999990000", "customer phone number")
	cmd.Flags().StringVar(&name, "name", "Cliente", "customer display name")

	return cmd
}
