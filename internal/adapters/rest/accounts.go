package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"tradeconsole/internal/domain"
)

type accountsEnvelope struct {
	Accounts []domain.Account `json:"accounts"`
}

type accountEnvelope struct {
	Account domain.Account `json:"account"`
	Message string         `json:"message"`
}

type balanceEnvelope struct {
	Balance   decimal.Decimal `json:"balance"`
	Available decimal.Decimal `json:"available"`
	Frozen    decimal.Decimal `json:"frozen"`
}

// GetAccounts pulls the full account collection snapshot.
func (c *Client) GetAccounts(ctx context.Context) ([]domain.Account, error) {
	var env accountsEnvelope
	if err := c.do(ctx, "GetAccounts", http.MethodGet, "/api/accounts", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Accounts, nil
}

// GetAccount retrieves a single account by ID.
func (c *Client) GetAccount(ctx context.Context, accountID string) (domain.Account, error) {
	var env accountEnvelope
	path := "/api/accounts/" + url.PathEscape(accountID)
	if err := c.do(ctx, "GetAccount", http.MethodGet, path, nil, nil, &env); err != nil {
		return domain.Account{}, err
	}
	return env.Account, nil
}

// GetAccountBalance retrieves the balance breakdown for one account.
func (c *Client) GetAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	var env balanceEnvelope
	path := "/api/accounts/" + url.PathEscape(accountID) + "/balance"
	if err := c.do(ctx, "GetAccountBalance", http.MethodGet, path, nil, nil, &env); err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	return env.Balance, env.Available, env.Frozen, nil
}

// RefreshAccount asks the backend to re-query the account at the broker and
// returns the refreshed record.
func (c *Client) RefreshAccount(ctx context.Context, accountID string) (domain.Account, error) {
	var env accountEnvelope
	path := "/api/accounts/" + url.PathEscape(accountID) + "/refresh"
	if err := c.do(ctx, "RefreshAccount", http.MethodPost, path, nil, nil, &env); err != nil {
		return domain.Account{}, err
	}
	return env.Account, nil
}
