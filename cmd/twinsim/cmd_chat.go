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

	"github.com/user/twinsim/internal/chat"
	"github.com/user/twinsim/internal/types"
)

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("name", "", "your display name (defaults to chat.user_name)")
	chatCmd.Flags().Bool("thoughts", false, "show the twin's internal thoughts")
}

var chatCmd = &cobra.Command{
	Use:   "chat <profile_id>",
	Short: "Chat with a profile's digital twin",
	Long: `Open a chat with a digital twin and send messages line by line.

Commands inside the chat:
  /history  show the conversation so far
  /quit     end the chat`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = cfg.Chat.UserName
		}
		thoughts, _ := cmd.Flags().GetBool("thoughts")

		s := chat.NewSession(newClient(), chat.WithUserName(name), chat.WithContext(cfg.Chat.Context))
		if err := s.Start(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println(headerStyle.Render(fmt.Sprintf("Chatting with %s (%s)", s.ProfileName(), s.ProfileMBTI())))
		fmt.Printf("Fondness: %s\n", fondness(s.CurrentFondness()))
		fmt.Println(mutedStyle.Render("Type /quit to end, /history to review."))

		return runChat(cmd.Context(), s, os.Stdin, os.Stdout, thoughts)
	},
}

// runChat reads one message per line from in until /quit or EOF, then ends
// the chat.
func runChat(ctx context.Context, s *chat.Session, in io.Reader, out io.Writer, thoughts bool) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "/quit", "/exit":
			return endChat(ctx, s, out)
		case "/history":
			printTranscript(out, s.Transcript(), thoughts)
			if h, err := s.History(ctx); err == nil {
				fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d messages on record, fondness %d", h.MessageCount, h.CurrentFondness)))
			}
		default:
			before := len(s.Transcript())
			if err := s.Send(ctx, line); err != nil {
				if errors.Is(err, chat.ErrBusy) {
					fmt.Fprintln(out, "Still waiting for a reply.")
				} else {
					fmt.Fprintf(out, "Failed to send message: %v\n", err)
				}
				break
			}
			turns := s.Transcript()
			if len(turns) > before+1 {
				printTwinTurn(out, s.ProfileName(), turns[len(turns)-1], thoughts)
			}
		}
		fmt.Fprint(out, "> ")
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	fmt.Fprintln(out)
	return endChat(ctx, s, out)
}

func endChat(ctx context.Context, s *chat.Session, out io.Writer) error {
	final, err := s.End(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Chat ended. Final fondness: %s\n", fondness(final))
	return nil
}

func printTwinTurn(out io.Writer, name string, t types.ChatTurn, thoughts bool) {
	change := ""
	switch {
	case t.FondnessChange > 0:
		change = fmt.Sprintf(" +%d", t.FondnessChange)
	case t.FondnessChange < 0:
		change = fmt.Sprintf(" %d", t.FondnessChange)
	}
	emotion := ""
	if t.Emotion != "" {
		emotion = " " + mutedStyle.Render("("+t.Emotion+")")
	}
	fmt.Fprintf(out, "%s%s: %s\n", name, emotion, t.Text)
	if thoughts && t.InternalThought != "" {
		fmt.Fprintln(out, mutedStyle.Render("  thinks: "+t.InternalThought))
	}
	fmt.Fprintf(out, "  fondness %s%s\n", fondness(t.FondnessLevel), change)
}

func printTranscript(out io.Writer, turns []types.ChatTurn, thoughts bool) {
	if len(turns) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No messages yet."))
		return
	}
	for _, t := range turns {
		if t.Role == types.RoleUser {
			fmt.Fprintf(out, "you: %s\n", t.Text)
			continue
		}
		fmt.Fprintf(out, "twin: %s\n", t.Text)
		if thoughts && t.InternalThought != "" {
			fmt.Fprintln(out, mutedStyle.Render("  thinks: "+t.InternalThought))
		}
	}
}
