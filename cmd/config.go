package cmd

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/wordcraft/internal/api"
	"github.com/abhisek/wordcraft/internal/config"
	"github.com/abhisek/wordcraft/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change client settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		out := cmd.OutOrStdout()
		settings := d.v.AllSettings()
		data, err := yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}

		if f := config.UsedFile(d.v); f != "" {
			fmt.Fprintf(out, "# config file: %s\n", f)
		} else {
			fmt.Fprintln(out, "# config file: none")
		}
		fmt.Fprint(out, string(data))
		fmt.Fprintf(out, "# server in use: %s\n", orNone(d.client.BaseURL()))
		fmt.Fprintf(out, "# logged in: %t\n", d.client.Token() != "")
		return nil
	},
}

var configSetURLCmd = &cobra.Command{
	Use:   "set-url <url>",
	Short: "Save the server address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		raw := api.NormalizeBaseURL(args[0])
		if err := validateServerURL(raw); err != nil {
			return err
		}

		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if check, _ := cmd.Flags().GetBool("check"); check {
			status, err := api.New(raw, api.WithTimeout(d.cfg.API.Timeout)).Health(ctx)
			if err != nil {
				return fmt.Errorf("server check failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server is %s.\n", status.Status)
		}

		if err := d.store.SettingsRepo().Set(ctx, store.KeyBaseURL, raw); err != nil {
			return fmt.Errorf("save server address: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Server set to %s.\n", raw)
		if d.cfg.API.BaseURL != "" && d.cfg.API.BaseURL != raw {
			fmt.Fprintf(cmd.OutOrStdout(), "Note: api.base_url (%s) from config or environment takes precedence.\n", d.cfg.API.BaseURL)
		}
		return nil
	},
}

var configTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Check that the server is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireServer(); err != nil {
			return err
		}

		status, err := d.client.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("server check failed: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %s", d.client.BaseURL(), status.Status)
		if status.Version != "" {
			fmt.Fprintf(out, " (version %s)", status.Version)
		}
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	configSetURLCmd.Flags().Bool("check", false, "Check /health before saving")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetURLCmd)
	configCmd.AddCommand(configTestCmd)
}

func validateServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("server url must start with http:// or https://")
	}
	if u.Host == "" {
		return fmt.Errorf("invalid url %q: missing host", raw)
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
