package sync

import (
	"context"
	"encoding/json"

	"tradeconsole/internal/bus"
	"tradeconsole/internal/domain"
	"tradeconsole/internal/ports"
	"tradeconsole/internal/store"
)

type accountAPI interface {
	GetAccounts(ctx context.Context) ([]domain.Account, error)
	GetAccount(ctx context.Context, accountID string) (domain.Account, error)
	RefreshAccount(ctx context.Context, accountID string) (domain.Account, error)
}

// Accounts reconciles the account collection.
type Accounts struct {
	api      accountAPI
	store    *store.Store
	log      ports.Logger
	fetching inflight
}

// NewAccounts creates the account reconciler.
func NewAccounts(api accountAPI, st *store.Store, log ports.Logger) *Accounts {
	return &Accounts{api: api, store: st, log: log}
}

// FetchAll pulls the full snapshot and replaces the store slice wholesale.
// Overlapping calls are dropped. On failure the slice is left untouched and
// the store error is set.
func (a *Accounts) FetchAll(ctx context.Context) error {
	if !a.fetching.tryAcquire() {
		return nil
	}
	defer a.fetching.release()

	a.store.SetLoading(true)
	defer a.store.SetLoading(false)

	accounts, err := a.api.GetAccounts(ctx)
	if err != nil {
		reportError(ctx, a.store, a.log, err, "failed to fetch accounts")
		return err
	}
	a.store.SetAccounts(accounts)
	a.store.ClearError()
	return nil
}

// RefreshOne re-pulls a single account through its dedicated endpoint.
func (a *Accounts) RefreshOne(ctx context.Context, accountID string) error {
	acc, err := a.api.GetAccount(ctx, accountID)
	if err != nil {
		reportError(ctx, a.store, a.log, err, "failed to refresh account")
		return err
	}
	a.store.UpdateAccount(acc)
	a.store.ClearError()
	return nil
}

// RefreshRemote asks the backend to re-query the account at the broker,
// then converges the local copy with the response.
func (a *Accounts) RefreshRemote(ctx context.Context, accountID string) error {
	acc, err := a.api.RefreshAccount(ctx, accountID)
	if err != nil {
		reportError(ctx, a.store, a.log, err, "failed to refresh account")
		return err
	}
	a.store.UpdateAccount(acc)
	a.store.ClearError()
	return nil
}

// Bind registers push handlers and returns a teardown removing them.
func (a *Accounts) Bind(b *bus.Bus) func() {
	ctx := context.Background()
	return b.Subscribe("account", func(data json.RawMessage) {
		var acc domain.Account
		if !decodePush(ctx, a.log, "account", data, &acc) {
			return
		}
		a.store.UpdateAccount(acc)
	})
}
