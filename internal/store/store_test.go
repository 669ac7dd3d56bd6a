package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/agendify/internal/model"
	"github.com/nhle/agendify/internal/store"
	"github.com/nhle/agendify/tests/testutil"
)

func candidate(id string, received time.Time) model.Candidate {
	return model.Candidate{
		ExtractedEvent: model.ExtractedEvent{
			EventName:       "Design Review",
			Date:            model.StringPtr("2025-08-21"),
			Time:            model.StringPtr("3:00 pm"),
			Timezone:        model.StringPtr("EST"),
			Description:     "Design Review",
			Confidence:      model.ConfidenceHigh,
			Source:          model.SourcePatternMatching,
			SourceMessageID: id,
			SourceSubject:   "Design Review",
			SourceFrom:      "Ada <ada@example.com>",
			SourceDate:      received,
		},
		State:     model.ReviewPending,
		CreatedAt: testutil.FixedNow,
	}
}

func TestSQLiteStore_Migrations(t *testing.T) {
	s := testutil.NewTestStore(t)

	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestSQLiteStore_InsertAndGetCandidate(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	added, err := s.InsertCandidate(ctx, candidate("101", testutil.FixedNow))
	require.NoError(t, err)
	assert.True(t, added)

	got, err := s.GetCandidate(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, "Design Review", got.EventName)
	assert.Equal(t, "2025-08-21", model.Deref(got.Date))
	assert.Equal(t, "3:00 pm", model.Deref(got.Time))
	assert.Equal(t, "EST", model.Deref(got.Timezone))
	assert.Nil(t, got.Location)
	assert.Equal(t, model.ReviewPending, got.State)
	assert.Nil(t, got.ReviewedAt)
	assert.True(t, testutil.FixedNow.Equal(got.SourceDate))
}

func TestSQLiteStore_InsertCandidateKeepsExisting(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	_, err := s.InsertCandidate(ctx, candidate("101", testutil.FixedNow))
	require.NoError(t, err)
	require.NoError(t, s.TransitionCandidate(ctx, "101", model.ReviewDenied, "", testutil.FixedNow))

	again := candidate("101", testutil.FixedNow)
	again.EventName = "Other"
	added, err := s.InsertCandidate(ctx, again)
	require.NoError(t, err)
	assert.False(t, added)

	got, err := s.GetCandidate(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, "Design Review", got.EventName)
	assert.Equal(t, model.ReviewDenied, got.State)
}

func TestSQLiteStore_GetCandidateNotFound(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.GetCandidate(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSQLiteStore_ListCandidates(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	for i, id := range []string{"3", "1", "2"} {
		_, err := s.InsertCandidate(ctx, candidate(id, testutil.FixedNow.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	require.NoError(t, s.TransitionCandidate(ctx, "1", model.ReviewApproved, "evt-1", testutil.FixedNow))

	all, err := s.ListCandidates(ctx, store.CandidateFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "3", all[0].SourceMessageID)
	assert.Equal(t, "1", all[1].SourceMessageID)

	pending := model.ReviewPending
	open, err := s.ListCandidates(ctx, store.CandidateFilter{State: &pending})
	require.NoError(t, err)
	require.Len(t, open, 2)
	for _, c := range open {
		assert.Equal(t, model.ReviewPending, c.State)
	}

	limited, err := s.ListCandidates(ctx, store.CandidateFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteStore_TransitionCandidate(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	_, err := s.InsertCandidate(ctx, candidate("101", testutil.FixedNow))
	require.NoError(t, err)

	reviewed := testutil.FixedNow.Add(time.Hour)
	require.NoError(t, s.TransitionCandidate(ctx, "101", model.ReviewApproved, "evt-9", reviewed))

	got, err := s.GetCandidate(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, model.ReviewApproved, got.State)
	assert.Equal(t, "evt-9", got.CalendarEventID)
	require.NotNil(t, got.ReviewedAt)
	assert.True(t, reviewed.Equal(*got.ReviewedAt))

	err = s.TransitionCandidate(ctx, "101", model.ReviewDenied, "", reviewed)
	assert.ErrorIs(t, err, store.ErrNotPending)

	err = s.TransitionCandidate(ctx, "missing", model.ReviewDenied, "", reviewed)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSQLiteStore_Addresses(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	added, err := s.AddAddress(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddAddress(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = s.AddAddress(ctx, "grace@example.com")
	require.NoError(t, err)

	addrs, err := s.ListAddresses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@example.com", "grace@example.com"}, addrs)

	removed, err := s.RemoveAddress(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveAddress(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.False(t, removed)

	addrs, err = s.ListAddresses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"grace@example.com"}, addrs)
}

func TestSQLiteStore_ScanRuns(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	for i := range 3 {
		start := testutil.FixedNow.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.RecordScanRun(ctx, model.ScanRun{
			StartedAt:  start,
			FinishedAt: start.Add(2 * time.Second),
			Addresses:  2,
			Messages:   i,
		}))
	}

	runs, err := s.ListScanRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 2, runs[0].Messages)
	assert.Equal(t, 1, runs[1].Messages)
	assert.NotEmpty(t, runs[0].ID)
	assert.Equal(t, 2*time.Second, runs[0].Duration())
}
