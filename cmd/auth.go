package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/wordcraft/internal/api"
	"github.com/abhisek/wordcraft/internal/store"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the configured server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireServer(); err != nil {
			return err
		}

		account, _ := cmd.Flags().GetString("account")
		password, _ := cmd.Flags().GetString("password")
		in := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()
		if account == "" {
			if account, err = prompt(in, out, "Username or email: "); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = prompt(in, out, "Password: "); err != nil {
				return err
			}
		}
		if account == "" || password == "" {
			return fmt.Errorf("account and password are required")
		}

		resp, err := d.client.Login(ctx, account, password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}

		user, err := json.Marshal(resp.User)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		if err := store.SaveCredentials(ctx, d.store.SettingsRepo(), store.Credentials{Token: resp.Token, User: user}); err != nil {
			return fmt.Errorf("save credentials: %w", err)
		}

		d.log.Info("logged in", zap.String("user_id", resp.User.ID))
		fmt.Fprintf(out, "Logged in as %s.\n", resp.User.DisplayName())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if d.client.BaseURL() != "" && d.client.Token() != "" {
			if err := d.client.Logout(ctx); err != nil {
				// The local token is cleared regardless.
				d.log.Warn("server logout failed", zap.Error(err))
			}
		}
		if err := store.ClearCredentials(ctx, d.store.SettingsRepo()); err != nil {
			return fmt.Errorf("clear credentials: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireLogin(); err != nil {
			return err
		}

		u, err := d.client.Me(cmd.Context())
		if err != nil {
			return fmt.Errorf("whoami: %w", explain(err))
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", u.DisplayName(), u.Email)
		fmt.Fprintf(out, "Server: %s\n", d.client.BaseURL())
		return nil
	},
}

func init() {
	loginCmd.Flags().String("account", "", "Username or email")
	loginCmd.Flags().String("password", "", "Password (prompted when empty)")
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// decodeUser parses the cached user stored at login. Bad JSON yields nil.
func decodeUser(raw json.RawMessage) *api.User {
	if len(raw) == 0 {
		return nil
	}
	var u api.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil
	}
	return &u
}
