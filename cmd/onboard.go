package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/storyloom/storyloom/internal/agent"
	"github.com/storyloom/storyloom/internal/config"
	"github.com/storyloom/storyloom/internal/dependency"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration, workspace and database",
	RunE:  runOnboard,
}

func runOnboard(cmd *cobra.Command, _ []string) error {
	cfgPath := cfgFile
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}

	var cfg *config.Config
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		fmt.Printf("Press Enter to refresh (keep existing values) or Ctrl+C to cancel: ")
		fmt.Scanln()
		existing, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			def := config.DefaultConfig()
			existing = &def
		}
		cfg = existing
		if err := config.Save(cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		def := config.DefaultConfig()
		cfg = &def
		if err := config.Save(cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	workspace := cfg.WorkspacePath()
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	fmt.Printf("✓ Workspace at %s\n", workspace)
	createWorkspaceTemplates(workspace)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := dependency.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	fmt.Printf("✓ Database at %s\n", db.Path())

	fmt.Printf("\n%s storyloom is ready!\n\n", logo)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Add your API key to %s (or export ANTHROPIC_API_KEY / OPENAI_API_KEY)\n", cfgPath)
	fmt.Printf("  2. Describe your voice in %s\n", filepath.Join(workspace, agent.StyleFile))
	fmt.Printf("  3. Chat: storyloom chat -m \"Create a chapter called Arrival\"\n")
	return nil
}

func createWorkspaceTemplates(workspace string) {
	templates := map[string]string{
		agent.StyleFile: `---
# Fill in what applies; empty fields are left out of the prompt.
# Free-form notes on voice and vocabulary go below the closing dashes.
tone: ""
pov: ""
tense: ""
genre: ""
---
`,
	}

	for filename, content := range templates {
		p := filepath.Join(workspace, filename)
		if _, err := os.Stat(p); os.IsNotExist(err) {
			_ = os.WriteFile(p, []byte(content), 0o644)
			fmt.Printf("  Created %s\n", filename)
		}
	}
}
