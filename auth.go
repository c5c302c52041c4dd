package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/minios-linux/xlfsync/config"
	"github.com/minios-linux/xlfsync/i18n"
	"github.com/minios-linux/xlfsync/settings"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: i18n.T("Manage the stored Azure Translator key"),
		Long: i18n.T(`Manage the Azure Translator subscription key used by "xlfsync sync".

The key is looked up in this order:
  --translation-key flag
  XLFSYNC_API_KEY environment variable
  stored credential (xlfsync auth login)

Examples:
  xlfsync auth login --region westeurope   Store a key for a regional resource
  xlfsync auth status                      Show the stored key and region
  xlfsync auth logout                      Remove the stored key`),
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
	)
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var region string
	cmd := &cobra.Command{
		Use:   "login",
		Short: i18n.T("Store an Azure Translator subscription key"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return authLogin(cmd.InOrStdin(), logOut, region, cmd.Flags().Changed("region"))
		},
	}
	cmd.Flags().StringVar(&region, "region", "", i18n.T("Azure resource region (e.g. westeurope)"))
	return cmd
}

// authLogin reads a key from in. An empty line keeps the existing key, in
// which case only a changed region is saved.
func authLogin(in io.Reader, out io.Writer, region string, regionChanged bool) error {
	color.New(color.FgBlue).Fprintf(out, "\n%s\n", i18n.T("Azure Translator key setup"))
	fmt.Fprintln(out, strings.Repeat("─", 60))

	existing := settings.Get(config.ProviderAzure)
	if !regionChanged && existing != nil {
		region = existing.Region
	}

	if existing != nil && existing.Key != "" {
		fmt.Fprintf(out, "  %s %s\n", i18n.T("Current key:"), color.YellowString(settings.MaskKey(existing.Key)))
		fmt.Fprint(out, "  "+i18n.T("Enter new key to replace, or press Enter to keep: "))
	} else {
		fmt.Fprint(out, "  "+i18n.T("Enter subscription key: "))
	}

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		fmt.Fprintln(out)
		return errors.New(i18n.T("no input received"))
	}
	key := strings.TrimSpace(scanner.Text())

	if key == "" {
		if existing == nil || existing.Key == "" {
			return errors.New(i18n.T("no key provided"))
		}
		if !regionChanged {
			logInfo(i18n.T("Keeping existing key"))
			return nil
		}
		key = existing.Key
	}

	if err := settings.SetAPIKey(config.ProviderAzure, key, region); err != nil {
		return fmt.Errorf(i18n.T("saving key: %w"), err)
	}
	logSuccess(i18n.T("Key saved to %s"), settings.FilePath())
	return nil
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: i18n.T("Remove the stored key"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.Remove(config.ProviderAzure); err != nil {
				return fmt.Errorf(i18n.T("removing key: %w"), err)
			}
			logSuccess(i18n.T("Stored key removed"))
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"list", "ls"},
		Short:   i18n.T("Show the stored key and environment overrides"),
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			authStatus(cmd.OutOrStdout())
		},
	}
}

func authStatus(out io.Writer) {
	color.New(color.FgBlue).Fprintf(out, "\n%s\n", i18n.T("Stored Credentials"))
	fmt.Fprintln(out, strings.Repeat("─", 60))

	if entry := settings.Get(config.ProviderAzure); entry != nil && entry.Key != "" {
		fmt.Fprintf(out, "  %-10s %s (%s)\n", config.ProviderAzure, color.GreenString(i18n.T("configured")), settings.MaskKey(entry.Key))
		if entry.Region != "" {
			fmt.Fprintf(out, "  %-10s %s\n", i18n.T("region"), entry.Region)
		}
	} else {
		fmt.Fprintf(out, "  %-10s %s\n", config.ProviderAzure, color.RedString(i18n.T("not configured")))
	}
	fmt.Fprintf(out, "  %-10s %s\n", i18n.T("file"), settings.FilePath())

	if env := os.Getenv(settings.EnvAPIKey); env != "" {
		fmt.Fprintf(out, "\n  %s: %s (%s)\n", settings.EnvAPIKey, color.GreenString(settings.MaskKey(env)), i18n.T("overrides the stored key"))
	} else {
		fmt.Fprintf(out, "\n  %s: %s\n", settings.EnvAPIKey, color.RedString(i18n.T("not set")))
	}
	fmt.Fprintln(out)
}
