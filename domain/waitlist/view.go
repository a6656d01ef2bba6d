package waitlist

import (
	"github.com/akeren/go-waitlist/internal/models"
	"github.com/akeren/go-waitlist/pkg/flash"
)

// ViewContext is the data handed to the index template.
type ViewContext struct {
	Flash   *flash.Notice
	Entries []WaitlistEntryResponse
}

// NewViewContext keeps the entry order and never yields a nil Entries slice.
func NewViewContext(notice *flash.Notice, entries []models.WaitlistEntry) ViewContext {
	responses := make([]WaitlistEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, ToWaitlistEntryResponse(&entries[i]))
	}

	return ViewContext{Flash: notice, Entries: responses}
}

func ErrorViewContext(message string, entries []models.WaitlistEntry) ViewContext {
	notice := flash.Error(message)
	return NewViewContext(&notice, entries)
}
