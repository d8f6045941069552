package ledger

import "github.com/google/uuid"

func newEntryID() string { return uuid.NewString() }
