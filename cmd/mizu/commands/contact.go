package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"mizu/internal/domain"
)

// contactCmd fetches and caches a peer's published identity key and
// prekey, so recv can poll their postal box even before we've sent them
// anything ourselves.
func contactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contact <peer>",
		Short: "Add a peer as a known contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer := domain.Address(args[0])

			data, ok, err := appCtx.Transport.RetrieveUserData(cmd.Context(), peer.String())
			if err != nil {
				return fmt.Errorf("fetching %q: %w", peer, err)
			}
			if !ok {
				return fmt.Errorf("no published bundle for %q", peer)
			}

			if err := appCtx.ContactStore.SaveContact(peer, data); err != nil {
				return fmt.Errorf("saving contact: %w", err)
			}

			fmt.Printf("Added %s as a contact\n", peer)
			return nil
		},
	}
}
