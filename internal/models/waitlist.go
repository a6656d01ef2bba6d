package models

// WaitlistEntry is keyed on email and is never updated after insert.
type WaitlistEntry struct {
	Email     string `gorm:"type:text;primaryKey" json:"email"`
	FirstName string `gorm:"type:text;not null" json:"first_name"`
	LastName  string `gorm:"type:text;not null" json:"last_name"`
	Notes     string `gorm:"type:text;not null" json:"notes"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist_entries"
}
