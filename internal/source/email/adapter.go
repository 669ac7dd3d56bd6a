package email

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"

	"github.com/nhle/agendify/internal/model"
	"github.com/nhle/agendify/internal/source"
)

// Adapter implements source.Mail over IMAP.
type Adapter struct {
	imapClient *IMAPClient
	username   string
	maxResults int
}

var _ source.Mail = (*Adapter)(nil)

// NewAdapter creates a new IMAP mail adapter.
func NewAdapter(
	imapHost, imapPort string,
	username, password string,
	useTLS bool,
	mailbox string,
	maxResults int,
) *Adapter {
	return &Adapter{
		imapClient: NewIMAPClient(
			imapHost, imapPort, username, password, useTLS, mailbox,
		),
		username:   username,
		maxResults: maxResults,
	}
}

// ValidateConnection verifies IMAP credentials by connecting,
// authenticating, and selecting the mailbox. Returns the username on
// success.
func (a *Adapter) ValidateConnection(
	ctx context.Context,
) (string, error) {
	client, err := a.imapClient.connectAndSelect(ctx)
	if err != nil {
		return "", fmt.Errorf("validating email connection: %w", err)
	}
	defer func() { _ = client.Logout().Wait() }()

	return a.username, nil
}

// ListMessageIDs searches for messages from any of addresses received
// between since and until, returning their UIDs.
func (a *Adapter) ListMessageIDs(
	ctx context.Context,
	addresses []string,
	since, until time.Time,
) ([]string, error) {
	criteria := searchCriteria(addresses, since, until)
	if criteria == nil {
		return nil, nil
	}

	uids, err := a.imapClient.SearchUIDs(ctx, criteria, a.maxResults)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	ids := make([]string, 0, len(uids))
	for _, uid := range uids {
		ids = append(ids, strconv.FormatUint(uint64(uid), 10))
	}
	return ids, nil
}

// FetchMessage retrieves one message by UID and converts it for the
// extraction pipeline.
func (a *Adapter) FetchMessage(
	ctx context.Context,
	id string,
) (model.EmailMessage, error) {
	uid, err := parseUID(id)
	if err != nil {
		return model.EmailMessage{}, err
	}

	parsed, err := a.imapClient.FetchMessage(ctx, uid)
	if err != nil {
		return model.EmailMessage{}, fmt.Errorf("fetching message %s: %w", id, err)
	}

	return ToEmailMessage(id, parsed), nil
}

// ToEmailMessage converts a parsed message into the pipeline's input type.
func ToEmailMessage(id string, parsed *ParsedMessage) model.EmailMessage {
	return model.EmailMessage{
		ID:         id,
		Subject:    parsed.Envelope.Subject,
		From:       parsed.Envelope.From,
		ReceivedAt: parsed.Envelope.Date,
		BodyText:   parsed.BodyText(),
	}
}

// searchCriteria builds "FROM a OR FROM b ..." restricted to the date
// window. IMAP dates have day granularity, so BEFORE is the day after
// until. Returns nil when there is nothing to search for.
func searchCriteria(addresses []string, since, until time.Time) *imap.SearchCriteria {
	if len(addresses) == 0 {
		return nil
	}

	criteria := fromAny(addresses)
	criteria.Since = since
	if !until.IsZero() {
		criteria.Before = until.AddDate(0, 0, 1)
	}
	return &criteria
}

func fromAny(addresses []string) imap.SearchCriteria {
	if len(addresses) == 1 {
		return imap.SearchCriteria{
			Header: []imap.SearchCriteriaHeaderField{
				{Key: "From", Value: addresses[0]},
			},
		}
	}
	return imap.SearchCriteria{
		Or: [][2]imap.SearchCriteria{
			{fromAny(addresses[:1]), fromAny(addresses[1:])},
		},
	}
}

// parseUID converts a string message ID to a uint32 UID.
func parseUID(id string) (uint32, error) {
	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return 0, fmt.Errorf(
			"invalid email UID %q: %w", id, err,
		)
	}
	return uint32(uid), nil
}

// htmlTagPattern matches HTML tags for stripping.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML removes HTML tags from a string and decodes common
// entities, providing a basic plain-text rendering.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}

	result := html
	for _, tag := range []string{
		"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>",
	} {
		result = strings.ReplaceAll(result, tag, "\n")
	}

	result = htmlTagPattern.ReplaceAllString(result, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	result = replacer.Replace(result)

	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(result)
}
