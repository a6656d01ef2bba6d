package waitlist

import (
	"testing"

	"github.com/akeren/go-waitlist/internal/models"
	"github.com/akeren/go-waitlist/pkg/flash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewViewContext_PreservesOrderAndFlash(t *testing.T) {
	notice := flash.Success(MsgInserted)
	entries := []models.WaitlistEntry{
		{Email: "z@example.com", FirstName: "Zed", LastName: "Zulu", Notes: "first"},
		{Email: "a@example.com", FirstName: "Ann", LastName: "Alpha"},
	}

	view := NewViewContext(&notice, entries)

	require.NotNil(t, view.Flash)
	assert.Equal(t, flash.KindSuccess, view.Flash.Kind)
	assert.Equal(t, MsgInserted, view.Flash.Message)
	require.Len(t, view.Entries, 2)
	assert.Equal(t, WaitlistEntryResponse{Email: "z@example.com", FirstName: "Zed", LastName: "Zulu", Notes: "first"}, view.Entries[0])
	assert.Equal(t, "a@example.com", view.Entries[1].Email)
}

func TestNewViewContext_NilEntriesBecomeEmpty(t *testing.T) {
	view := NewViewContext(nil, nil)

	assert.Nil(t, view.Flash)
	assert.NotNil(t, view.Entries)
	assert.Empty(t, view.Entries)
}

func TestErrorViewContext(t *testing.T) {
	view := ErrorViewContext(MsgDeleteFailed, []models.WaitlistEntry{{Email: "a@example.com"}})

	require.NotNil(t, view.Flash)
	assert.Equal(t, flash.KindError, view.Flash.Kind)
	assert.Equal(t, MsgDeleteFailed, view.Flash.Message)
	assert.Len(t, view.Entries, 1)
}
