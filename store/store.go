// Package store defines the combined persistence surface and provides the
// in-memory implementation used by tests and dev mode.
package store

import (
	"context"

	"github.com/warp/leave-engine/cclwork"
	"github.com/warp/leave-engine/directory"
	"github.com/warp/leave-engine/leave"
)

// Store is everything the API layer needs from persistence: both workflow
// stores plus account management. The balance history is append-only in
// every implementation: entries are inserted, never updated or deleted, and
// balance columns move by the entry's signed delta so concurrent approvals
// of different requests cannot lose each other's writes.
type Store interface {
	leave.Store
	cclwork.Store

	SaveAccount(ctx context.Context, acct *directory.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*directory.Account, error)
	ListAccounts(ctx context.Context) ([]*directory.Account, error)
}
