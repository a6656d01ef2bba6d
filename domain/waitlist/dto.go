package waitlist

import (
	"strings"

	"github.com/akeren/go-waitlist/internal/models"
)

// CreateWaitlistEntryRequest is the signup form. Only the email is mandatory.
type CreateWaitlistEntryRequest struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email" binding:"required"`
	Notes     string `form:"notes" json:"notes"`
}

type WaitlistEntryResponse struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Notes     string `json:"notes"`
}

// ========================================
// Mappers
// ========================================

func ToWaitlistEntryModel(req *CreateWaitlistEntryRequest) *models.WaitlistEntry {
	if req == nil {
		return nil
	}
	return &models.WaitlistEntry{
		Email:     strings.TrimSpace(req.Email),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Notes:     req.Notes,
	}
}

func ToWaitlistEntryResponse(entry *models.WaitlistEntry) WaitlistEntryResponse {
	if entry == nil {
		return WaitlistEntryResponse{}
	}
	return WaitlistEntryResponse{
		Email:     entry.Email,
		FirstName: entry.FirstName,
		LastName:  entry.LastName,
		Notes:     entry.Notes,
	}
}
