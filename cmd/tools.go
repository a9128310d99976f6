package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storyloom/storyloom/internal/providers"
	"github.com/storyloom/storyloom/internal/shared/cmdutils"
	"github.com/storyloom/storyloom/internal/tools"
)

var toolsFormat string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tool catalogue as sent to the model",
	RunE:  runTools,
}

func init() {
	toolsCmd.Flags().StringVar(&toolsFormat, "format", "anthropic", "Output: anthropic (content blocks), openai (tool_calls) or summary")
}

func runTools(_ *cobra.Command, _ []string) error {
	// The catalogue does not depend on storage; handlers are never invoked here.
	reg, err := tools.NewRegistry(tools.Stores{})
	if err != nil {
		return err
	}
	defs := reg.ListTools()

	switch toolsFormat {
	case "anthropic", string(providers.ProtocolContentBlocks):
		return cmdutils.PrintJSON(providers.AnthropicTools(defs))
	case "openai", string(providers.ProtocolToolCalls):
		return cmdutils.PrintJSON(providers.OpenAITools(defs))
	case "summary":
		cmdutils.PrintToolSummary(defs)
		return nil
	default:
		return fmt.Errorf("unknown format %q: want anthropic, openai or summary", toolsFormat)
	}
}
