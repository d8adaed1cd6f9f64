package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/darkostanimirovic/cinesnap"
)

type chatOptions struct {
	SessionID string
	Mood      string
}

func newChatCmd() *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant in the terminal",
		Long: `Start an interactive conversation.

Commands:
  /reset      Start over
  /history    Print the conversation so far
  /context    Print what the assistant knows about you
  /quit       Exit

Examples:
  cinesnap chat
  cinesnap chat --mood happy
  cinesnap chat --session 3f0c...   # resume a persisted conversation`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatCmd(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.SessionID, "session", "", "Resume the conversation stored under this id")
	cmd.Flags().StringVar(&opts.Mood, "mood", "", "Seed the conversation with a mood")
	return cmd
}

func runChatCmd(ctx context.Context, opts *chatOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, stderr)

	d, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.close(context.Background())

	assistantCfg := d.assistantConfig(opts.SessionID)
	assistantCfg.Logging = cinesnap.LoggingConfig{}.Silent()
	if opts.Mood != "" {
		assistantCfg.InitialContext = &cinesnap.UserContext{Mood: cinesnap.Ptr(opts.Mood)}
	}

	a, err := cinesnap.New(assistantCfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if opts.SessionID != "" {
		if err := a.Restore(ctx); err != nil {
			return err
		}
	}
	return chatLoop(ctx, a, os.Stdin, os.Stdout)
}

// chatLoop reads one utterance per line until EOF, /quit or ctx is done.
func chatLoop(ctx context.Context, a *cinesnap.Assistant, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "CineSnap (session %s). Tell me what you feel like watching, or /quit.\n", a.SessionID())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			a.ResetSession()
			fmt.Fprintln(out, "Starting over.")
			continue
		case "/history":
			for _, t := range a.History() {
				fmt.Fprintf(out, "[%s] %s\n", t.Role, t.Text)
			}
			continue
		case "/context":
			lines := a.UserContext().PromptLines()
			if len(lines) == 0 {
				fmt.Fprintln(out, "Nothing yet.")
			}
			for _, l := range lines {
				fmt.Fprintln(out, l)
			}
			continue
		}

		reply, err := a.HandleTurn(ctx, line, nil)
		if errors.Is(err, cinesnap.ErrAssistantClosed) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(out, "!", err)
			continue
		}
		printReply(out, reply)
	}
}

func printReply(out io.Writer, reply *cinesnap.Reply) {
	fmt.Fprintf(out, "\n%s\n", reply.Message)
	if len(reply.Movies) > 0 && !reply.Fallback {
		fmt.Fprintln(out)
		for _, m := range reply.Movies {
			if year := m.Year(); year != "" {
				fmt.Fprintf(out, "  * %s (%s) %.1f/10\n", m.Title, year, m.VoteAverage)
			} else {
				fmt.Fprintf(out, "  * %s %.1f/10\n", m.Title, m.VoteAverage)
			}
		}
	}
	if len(reply.Suggestions) > 0 {
		fmt.Fprintf(out, "\nTry: %s\n", strings.Join(reply.Suggestions, " | "))
	}
	fmt.Fprintln(out)
}
