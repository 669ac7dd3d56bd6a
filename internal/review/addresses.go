package review

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/nhle/agendify/internal/store"
)

// ErrInvalidAddress is returned for strings that are not a bare
// RFC 5322 address.
var ErrInvalidAddress = errors.New("invalid email address")

// NormalizeAddress trims and lower-cases addr and checks that it is a
// plain address without a display name.
func NormalizeAddress(addr string) (string, error) {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if addr == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr || parsed.Name != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return addr, nil
}

// Addresses is the user-editable set of monitored sender addresses.
type Addresses struct {
	store store.Store
}

// NewAddresses creates an address set backed by s.
func NewAddresses(s store.Store) *Addresses {
	return &Addresses{store: s}
}

// Add normalizes and stores addr. It returns the stored form and
// whether it was new.
func (a *Addresses) Add(ctx context.Context, addr string) (string, bool, error) {
	norm, err := NormalizeAddress(addr)
	if err != nil {
		return "", false, err
	}
	added, err := a.store.AddAddress(ctx, norm)
	if err != nil {
		return "", false, err
	}
	return norm, added, nil
}

// Remove stops monitoring addr. It reports whether addr was monitored.
func (a *Addresses) Remove(ctx context.Context, addr string) (bool, error) {
	norm, err := NormalizeAddress(addr)
	if err != nil {
		return false, err
	}
	return a.store.RemoveAddress(ctx, norm)
}

// List returns the monitored addresses.
func (a *Addresses) List(ctx context.Context) ([]string, error) {
	return a.store.ListAddresses(ctx)
}

// Seed adds addrs when the set is still empty. Invalid entries are
// reported together after the valid ones are stored.
func (a *Addresses) Seed(ctx context.Context, addrs []string) error {
	current, err := a.store.ListAddresses(ctx)
	if err != nil {
		return err
	}
	if len(current) > 0 {
		return nil
	}

	var errs []error
	for _, addr := range addrs {
		if _, _, err := a.Add(ctx, addr); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
