package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"mizu/internal/domain"
)

// sendCmd encrypts and sends a message to <peer>.
func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <peer> <message>",
		Short: "Encrypt and send a message to a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer := domain.Address(args[0])
			plaintext := []byte(args[1])

			err := appCtx.MessagingService.Send(cmd.Context(), passphrase, domain.Address(address), peer, plaintext)
			if err != nil {
				return fmt.Errorf("sending message to %q: %w", peer, err)
			}

			fmt.Println("Message sent")
			return nil
		},
	}
}
