package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/storyloom/storyloom/internal/config"
	"github.com/storyloom/storyloom/internal/dependency"
	"github.com/storyloom/storyloom/internal/providers"
	"github.com/storyloom/storyloom/internal/schema"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storyloom status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfgPath := cfgFile
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}

	fmt.Printf("%s storyloom Status\n\n", logo)
	fmt.Printf("Config:    %s %s\n", cfgPath, mark(cfgPath))

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	ws := cfg.WorkspacePath()
	fmt.Printf("Workspace: %s %s\n", ws, mark(ws))
	fmt.Printf("Model:     %s\n", cfg.Agents.Defaults.Model)

	params := cfg.ProviderParams("")
	if params.ProviderName == "" {
		fmt.Printf("Provider:  (none configured)\n\n")
	} else {
		r := providers.Resolve(params)
		fmt.Printf("Provider:  %s via %s (%s protocol)\n\n", r.Spec.Label(), r.APIBase, r.Protocol)
	}

	fmt.Println("Providers:")
	for _, spec := range providers.PROVIDERS {
		p := cfg.ProviderByName(spec.Name)
		if p == nil {
			continue
		}
		label := spec.Label()
		switch {
		case !p.Usable(spec.IsLocal):
			fmt.Printf("  %-20s (not set)\n", label)
		case spec.IsLocal:
			fmt.Printf("  %-20s ✓ %s\n", label, p.APIBase)
		default:
			fmt.Printf("  %-20s ✓\n", label)
		}
	}

	dbPath := cfg.DatabasePath()
	fmt.Printf("\nDatabase:  %s %s\n", dbPath, mark(dbPath))
	if _, err := os.Stat(dbPath); err != nil {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := dependency.OpenStore(ctx, cfg)
	if err != nil {
		fmt.Printf("  (could not open database: %v)\n", err)
		return nil
	}
	defer db.Close()

	scope := schema.Scope{UserID: cfg.Book.UserID, BookID: cfg.Book.BookID}
	st, err := db.Stats(ctx, scope)
	if err != nil {
		fmt.Printf("  (could not read book: %v)\n", err)
		return nil
	}
	fmt.Printf("  Size:          %s\n", humanize.Bytes(uint64(st.FileBytes)))
	fmt.Printf("  Book:          %d (user %d)\n", scope.BookID, scope.UserID)
	fmt.Printf("  Binder items:  %s (%s words)\n", humanize.Comma(st.BinderItems), humanize.Comma(st.Words))
	fmt.Printf("  Characters:    %s\n", humanize.Comma(st.Characters))
	fmt.Printf("  Locations:     %s\n", humanize.Comma(st.Locations))
	fmt.Printf("  Plot threads:  %s\n", humanize.Comma(st.PlotThreads))
	return nil
}

func mark(path string) string {
	if _, err := os.Stat(path); err == nil {
		return "✓"
	}
	return "✗"
}
