package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/storyloom/storyloom/internal/agent"
	"github.com/storyloom/storyloom/internal/dependency"
	"github.com/storyloom/storyloom/internal/schema"
	"github.com/storyloom/storyloom/internal/shared/cmdutils"
)

var (
	chatMessage string
	chatBook    int64
	chatUser    int64
	chatItem    int64
	chatTimeout time.Duration
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the writing assistant about your book",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single message and exit")
	chatCmd.Flags().Int64Var(&chatBook, "book", 0, "Book ID (default from config)")
	chatCmd.Flags().Int64Var(&chatUser, "user", 0, "User ID (default from config)")
	chatCmd.Flags().Int64Var(&chatItem, "item", 0, "Binder item currently open in the editor")
	chatCmd.Flags().DurationVar(&chatTimeout, "timeout", 5*time.Minute, "Time limit for one turn")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := dependency.New(ctx, cfg, func(hint string) {
		fmt.Fprintf(os.Stderr, "  ↳ %s\n", hint)
	})
	if err != nil {
		return err
	}
	defer container.Close()

	scope := schema.Scope{
		UserID:        pick(chatUser, cfg.Book.UserID),
		BookID:        pick(chatBook, cfg.Book.BookID),
		CurrentItemID: chatItem,
	}
	orch := container.Orchestrator()

	if chatMessage != "" {
		return runTurn(ctx, orch, scope, chatMessage)
	}
	return runInteractive(ctx, orch, scope)
}

// runTurn sends one message and prints the reply and the entities it touched.
// Effects are printed even when the turn fails part-way.
func runTurn(ctx context.Context, orch *agent.Orchestrator, scope schema.Scope, message string) error {
	ctx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "  ↳ thinking...\n")
	res, err := orch.ProcessTurn(ctx, scope, message)

	cmdutils.PrintEffects(res.Effects)
	if err != nil {
		return err
	}
	cmdutils.PrintResponse(res.Reply)
	return nil
}

// runInteractive starts the REPL: each line is one turn. A failed turn is
// reported and the session continues.
func runInteractive(ctx context.Context, orch *agent.Orchestrator, scope schema.Scope) error {
	fmt.Printf("%s Interactive mode, book %d (type 'exit' or Ctrl+C to quit)\n\n", logo, scope.BookID)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("You: ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Println("\nGoodbye!")
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Println("\nGoodbye!")
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		if exitCommands[strings.ToLower(line)] {
			fmt.Println("Goodbye!")
			return nil
		}

		if err := runTurn(ctx, orch, scope, line); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

func pick(flag, fallback int64) int64 {
	if flag > 0 {
		return flag
	}
	return fallback
}
