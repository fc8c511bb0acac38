package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"mizu/internal/domain"
)

// recvCmd fetches and decrypts queued messages from every known contact.
func recvCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recv",
		Short: "Fetch and decrypt your queued messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := appCtx.MessagingService.Receive(cmd.Context(), passphrase, domain.Address(address), limit)
			if err != nil {
				return err
			}
			for _, m := range msgs {
				fmt.Printf("[%s] %s\n", m.From, string(m.Plaintext))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of messages to decrypt (0 = no limit)")
	return cmd
}
