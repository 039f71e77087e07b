package rma

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	relay   = ItemRef{ID: "1", Name: "Industrial Relay Switch", SKU: "EL-001-PRO"}
)

func TestCreatePrependsPendingEntry(t *testing.T) {
	s := NewStore([]Entry{{ID: "rma-1", Status: StatusPending}})

	entry, err := s.Create(CreateInput{SKU: "EL-001-PRO", Quantity: 2, Notes: "coil failure"}, relay, testNow)
	require.NoError(t, err)
	require.Regexp(t, `^RMA-[0-9A-F]{8}$`, entry.ID)
	require.Equal(t, StatusPending, entry.Status)
	require.Equal(t, ReasonOther, entry.Reason)
	require.Equal(t, "Industrial Relay Switch", entry.ItemName)

	list := s.List()
	require.Len(t, list, 2)
	require.Equal(t, entry.ID, list[0].ID)
}

func TestCreateValidation(t *testing.T) {
	s := NewStore(nil)

	_, err := s.Create(CreateInput{SKU: "X", Quantity: 0}, relay, testNow)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = s.Create(CreateInput{SKU: "X", Quantity: 1, Reason: "LOST"}, relay, testNow)
	require.ErrorIs(t, err, ErrInvalidReason)
	_, err = s.Create(CreateInput{SKU: "X", Quantity: 1}, ItemRef{}, testNow)
	require.ErrorIs(t, err, ErrUnknownSKU)
	require.Empty(t, s.List())
}

func TestRestockEdgeFiresOnce(t *testing.T) {
	s := NewStore(nil)
	entry, err := s.Create(CreateInput{SKU: "EL-001-PRO", Quantity: 2, Reason: ReasonDefective}, relay, testNow)
	require.NoError(t, err)

	tr, err := s.SetStatus(entry.ID, StatusInspected, testNow)
	require.NoError(t, err)
	require.False(t, tr.Restock)
	require.Equal(t, StatusPending, tr.Previous)

	tr, err = s.SetStatus(entry.ID, StatusRestocked, testNow)
	require.NoError(t, err)
	require.True(t, tr.Restock)
	require.NotNil(t, tr.Entry.RestockedAt)

	for i := 0; i < 3; i++ {
		tr, err = s.SetStatus(entry.ID, StatusRestocked, testNow.Add(time.Hour))
		require.NoError(t, err)
		require.False(t, tr.Restock)
		require.Equal(t, testNow, *tr.Entry.RestockedAt)
	}

	_, err = s.SetStatus(entry.ID, StatusPending, testNow)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSetStatusErrors(t *testing.T) {
	s := NewStore([]Entry{{ID: "rma-1", Status: StatusPending}})

	_, err := s.SetStatus("rma-1", Status("LOST"), testNow)
	require.ErrorIs(t, err, ErrInvalidStatus)
	_, err = s.SetStatus("rma-404", StatusScrapped, testNow)
	require.ErrorIs(t, err, ErrNotFound)

	tr, err := s.SetStatus("rma-1", StatusScrapped, testNow)
	require.NoError(t, err)
	require.Equal(t, StatusScrapped, tr.Entry.Status)
}
