package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/agendify/internal/model"
	"github.com/nhle/agendify/internal/source/email"
)

var (
	extractSubject string
	extractFrom    string
	extractEML     bool
	extractAI      bool
)

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractSubject, "subject", "", "subject for plain-text input")
	extractCmd.Flags().StringVar(&extractFrom, "from", "", "sender for plain-text input")
	extractCmd.Flags().BoolVar(&extractEML, "eml", false, "treat input as a full RFC 822 message (implied for .eml files)")
	extractCmd.Flags().BoolVar(&extractAI, "ai", false, "use the model service even if ai.enabled is false")
}

var extractCmd = &cobra.Command{
	Use:   "extract [file|-]",
	Short: "Extract an event from one message and print it as JSON",
	Long: `Run the extraction pipeline over a single message without touching the
inbox or the review queue.

Examples:
  # A saved message
  agendify extract invite.eml

  # Plain text from stdin
  echo "We have a meeting at 3 PM tomorrow." | agendify extract --subject "Test Meeting" -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

// readMessage loads the input named by args into an EmailMessage.
func readMessage(args []string, stdin io.Reader) (model.EmailMessage, error) {
	var (
		raw  []byte
		err  error
		name = "-"
	)
	if len(args) == 0 || args[0] == "-" {
		raw, err = io.ReadAll(stdin)
		if err != nil {
			return model.EmailMessage{}, fmt.Errorf("reading stdin: %w", err)
		}
	} else {
		name = args[0]
		raw, err = os.ReadFile(name)
		if err != nil {
			return model.EmailMessage{}, fmt.Errorf("reading %s: %w", name, err)
		}
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return model.EmailMessage{}, errors.New("no content to extract from")
	}

	if extractEML || strings.EqualFold(filepath.Ext(name), ".eml") {
		parsed, err := email.ParseRFC822(raw)
		if err != nil {
			return model.EmailMessage{}, err
		}
		id := parsed.Envelope.MessageID
		if id == "" {
			id = name
		}
		return email.ToEmailMessage(id, parsed), nil
	}

	return model.EmailMessage{
		ID:         name,
		Subject:    extractSubject,
		From:       extractFrom,
		ReceivedAt: time.Now(),
		BodyText:   string(raw),
	}, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	msg, err := readMessage(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, cleanup, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if extractAI {
		a.Config.AI.Enabled = true
	}
	extractor, err := a.Extractor()
	if err != nil {
		return err
	}

	ev := extractor.Extract(cmd.Context(), msg)

	return writeJSON(cmd, ev)
}
