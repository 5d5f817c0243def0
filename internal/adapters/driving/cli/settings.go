package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/shopdesk/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change shopdesk settings.

Values are resolved from built-in defaults, then the config file, then
SHOPDESK_* environment variables. OPENAI_API_KEY is used when the OpenAI
provider has no key configured.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a setting in the config file",
	Long: `Validates and stores a single setting in the config file.

When the value is omitted it is read from stdin without echo, which keeps
API keys out of shell history:

  shopdesk settings set embedding.api_key`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := getSettingsService()
	if err != nil {
		return err
	}
	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(out.Heading.Render("Current Settings"))
	cmd.Println(out.Muted.Render("config: " + svc.ConfigPath()))
	cmd.Println()

	values := services.SettingsMap(settings)
	section := ""
	for _, key := range services.SettingKeys() {
		group, _, _ := strings.Cut(key, ".")
		if group != section {
			if section != "" {
				cmd.Println()
			}
			cmd.Printf("[%s]\n", group)
			section = group
		}
		value := values[key]
		if value == "" {
			value = "(not set)"
		}
		cmd.Println("  " + out.KeyValue(key, value))
	}
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Println(out.Warning.Render(fmt.Sprintf("Warning: %v", err)))
		cmd.Println("Run 'shopdesk settings set <key> <value>' to fix it.")
	} else {
		cmd.Println(out.Success.Render("Configuration is valid."))
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := getSettingsService()
	if err != nil {
		return err
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		cmd.Printf("Enter value for %s: ", key)
		value = readPassword()
		cmd.Println()
		if value == "" {
			return errors.New("no value entered")
		}
	}

	if err := svc.Set(key, value); err != nil {
		return err
	}

	cmd.Printf("Set %s (saved to %s)\n", key, svc.ConfigPath())
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
