package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/psikotes-app/go-client/internal/models"
	"github.com/psikotes-app/go-client/internal/tokenstore"
)

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the platform",
	}

	cmd.AddCommand(loginAdminCmd(), loginParticipantCmd())

	return cmd
}

func loginAdminCmd() *cobra.Command {
	var identifier, password string

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Sign in as an administrator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			if err := a.ctrl.LoginAdmin(ctx, identifier, password); err != nil {
				return err
			}

			fmt.Println("logged in")
			return nil
		},
	}

	cmd.Flags().StringVar(&identifier, "identifier", "", "admin e-mail")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("identifier")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func loginParticipantCmd() *cobra.Command {
	var phone string
	var remember bool

	cmd := &cobra.Command{
		Use:   "participant",
		Short: "Sign in as a participant by phone number",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			if err := a.ctrl.LoginParticipant(ctx, phone, remember); err != nil {
				return err
			}

			fmt.Println("logged in")
			return nil
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "participant phone number")
	cmd.Flags().BoolVar(&remember, "remember", false, "remember this device")
	_ = cmd.MarkFlagRequired("phone")

	return cmd
}

func logoutCmd() *cobra.Command {
	var allDevices bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear stored credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			a.ctrl.Logout(ctx, allDevices)

			fmt.Println("logged out")
			return nil
		},
	}

	cmd.Flags().BoolVar(&allDevices, "all-devices", false, "revoke the session on all devices")

	return cmd
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			snap := a.ctrl.Snapshot()
			if !snap.IsAuthenticated() {
				fmt.Println("not authenticated")
				return nil
			}

			return printJSON(snap.User)
		},
	}
}

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force a token refresh",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			if err := a.ctrl.RefreshTokens(ctx); err != nil {
				return err
			}

			snap := a.ctrl.Snapshot()
			fmt.Println("tokens refreshed, expires at", snap.Tokens.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
}

// tokenCmd — инспекция claims access-токена (без проверки подписи).
func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Inspect the stored access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			tp, err := a.store.Tokens(ctx)
			if err != nil {
				return err
			}
			if tp == nil {
				fmt.Println("no stored tokens")
				return nil
			}

			claims, err := models.ParseAccessClaims(tp.AccessToken)
			if err != nil {
				return err
			}

			return printJSON(map[string]any{
				"subject":    claims.Subject,
				"role":       claims.Role,
				"issuer":     claims.Issuer,
				"expires_at": claims.Expiry(),
				"expired":    tokenstore.IsExpired(tp, time.Now()),
			})
		},
	}
}
