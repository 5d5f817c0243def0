package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

var toolCmd = &cobra.Command{
	Use:   "tool",
	Short: "List and call the lookup tools",
}

var toolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered lookup tools",
	Args:  cobra.NoArgs,
	RunE:  runToolList,
}

var toolCallCmd = &cobra.Command{
	Use:   "call [name] [argument]",
	Short: "Call a lookup tool",
	Long: `Calls a lookup tool exactly as the voice agent would and prints the
text it would speak.

Examples:
  shopdesk tool call get_order_status ORD123
  shopdesk tool call get_policy_info returns`,
	Args: cobra.ExactArgs(2),
	RunE: runToolCall,
}

func init() {
	toolCmd.AddCommand(toolListCmd)
	toolCmd.AddCommand(toolCallCmd)
	rootCmd.AddCommand(toolCmd)
}

func runToolList(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	reg, err := getToolRegistry(cmd.Context(), settings)
	if err != nil {
		return err
	}

	for _, spec := range reg.List() {
		cmd.Println(out.Heading.Render(spec.Name))
		cmd.Printf("  %s\n", spec.Description)
		cmd.Printf("  %s %s\n", out.Muted.Render(spec.Param+":"), spec.ParamDescription)
		cmd.Println()
	}
	return nil
}

func runToolCall(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	reg, err := getToolRegistry(cmd.Context(), settings)
	if err != nil {
		return err
	}

	result, err := reg.Dispatch(cmd.Context(), args[0], args[1])
	if errors.Is(err, domain.ErrUnknownTool) {
		return fmt.Errorf("%w: %s (see 'shopdesk tool list')", domain.ErrUnknownTool, args[0])
	}
	if err != nil {
		return err
	}

	cmd.Println(result)
	return nil
}
