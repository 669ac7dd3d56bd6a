package review_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/agendify/internal/review"
	"github.com/nhle/agendify/tests/testutil"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "  Ada@Example.COM ", want: "ada@example.com"},
		{in: "grace.hopper+cal@navy.mil", want: "grace.hopper+cal@navy.mil"},
		{in: "", wantErr: true},
		{in: "not an address", wantErr: true},
		{in: "Ada <ada@example.com>", wantErr: true},
		{in: "ada@", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := review.NormalizeAddress(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, review.ErrInvalidAddress)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddresses_AddRemoveList(t *testing.T) {
	ctx := context.Background()
	a := review.NewAddresses(testutil.NewTestStore(t))

	norm, added, err := a.Add(ctx, "Ada@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", norm)
	assert.True(t, added)

	_, added, err = a.Add(ctx, " ada@example.com")
	require.NoError(t, err)
	assert.False(t, added)

	list, err := a.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@example.com"}, list)

	removed, err := a.Remove(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.True(t, removed)

	list, err = a.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddresses_Seed(t *testing.T) {
	ctx := context.Background()
	a := review.NewAddresses(testutil.NewTestStore(t))

	err := a.Seed(ctx, []string{"ada@example.com", "bogus", "grace@example.com"})
	assert.ErrorIs(t, err, review.ErrInvalidAddress)

	list, err := a.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@example.com", "grace@example.com"}, list)

	require.NoError(t, a.Seed(ctx, []string{"other@example.com"}))
	list, err = a.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
