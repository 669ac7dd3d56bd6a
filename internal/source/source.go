package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/agendify/internal/model"
)

// AuthError indicates that authentication has failed or expired for a
// remote service. It is returned by clients when credentials are rejected.
type AuthError struct {
	SourceType SourceType
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.SourceType, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// SourceType identifies the kind of remote service.
type SourceType string

const (
	SourceTypeEmail    SourceType = "email"
	SourceTypeGoogle   SourceType = "google"
	SourceTypeModelAPI SourceType = "model_api"
)

// Mail is the inbox collaborator the scanner reads from.
type Mail interface {
	// ListMessageIDs returns the ids of messages sent by any of addresses
	// and received within [since, until].
	ListMessageIDs(ctx context.Context, addresses []string, since, until time.Time) ([]string, error)

	// FetchMessage retrieves and decodes one message.
	FetchMessage(ctx context.Context, id string) (model.EmailMessage, error)
}
