package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sdg-quest/internal/auth"
	"sdg-quest/internal/config"
	"sdg-quest/internal/domain"
)

// NewLoginCmd stores the credentials used to submit scores.
func NewLoginCmd(opts *rootOptions) *cobra.Command {
	var userID, name, token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save your user id and bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user-id is required")
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if token == "" {
				// With a shared secret configured, mint the token locally.
				token, err = tokenService(cfg).Issue(userID, name)
				if err != nil {
					return fmt.Errorf("no --token given and cannot issue one: %w", err)
				}
			}

			store := credentialStore(cfg)
			if err := store.Save(domain.Credentials{Token: token, UserID: userID, User: name}); err != nil {
				return err
			}
			who := name
			if who == "" {
				who = userID
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (credentials in %s)\n", who, store.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "your user id")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&token, "token", "", "bearer token issued by the API operator")
	return cmd
}

// NewLogoutCmd forgets stored credentials.
func NewLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove saved credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if err := credentialStore(cfg).Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

// NewTokenCmd issues a bearer token for a user with the server secret.
func NewTokenCmd(opts *rootOptions) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a bearer token (requires auth.secret)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			token, err := tokenService(cfg).Issue(args[0], name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name embedded in the token")
	return cmd
}

func tokenService(cfg config.Config) *auth.TokenService {
	return auth.NewTokenService(cfg.Auth.Secret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
}
