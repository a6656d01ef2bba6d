package waitlist

// Flash messages shown to visitors.
const (
	MsgDatabaseUnavailable = "Fail to access database"
	MsgEmailRequired       = "Email cannot be empty"
	MsgInsertFailed        = "Entry could not be inserted due an internal error."
	MsgInserted            = "Successfully added to waitlist."
	MsgDeleteFailed        = "Failed to delete entry"
	MsgDeleted             = "Entry was deleted."
	MsgInvalidForm         = "Invalid form submission."
)
