package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// registerCmd rotates the local prekey and publishes the identity key
// and new prekey to the postbox server.
func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Rotate and publish your prekey to the postbox server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := appCtx.IdentityService.LoadIdentity(passphrase)
			if err != nil {
				return fmt.Errorf("loading identity: %w", err)
			}

			published, err := appCtx.PrekeyService.Rotate(passphrase)
			if err != nil {
				return fmt.Errorf("rotating prekey: %w", err)
			}

			idPub := id.XPub
			if err := appCtx.Transport.Register(cmd.Context(), &idPub, published.Pub); err != nil {
				return fmt.Errorf("registering with postbox server: %w", err)
			}

			fmt.Println("Registered identity and prekey with postbox server")
			return nil
		},
	}
}
