package commerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jafarshop/storefront/internal/domain"
)

// ListAddresses fetches the user's saved address book.
func (c *Client) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	var addresses []domain.Address
	if err := c.do(ctx, http.MethodGet, "/users/addresses", nil, &addresses, nil); err != nil {
		return nil, err
	}
	return addresses, nil
}

// CreateAddress saves a new address and returns it with its server-assigned ID.
func (c *Client) CreateAddress(ctx context.Context, addr domain.Address) (*domain.Address, error) {
	var created domain.Address
	if err := c.do(ctx, http.MethodPost, "/users/addresses", addr, &created, nil); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateAddress replaces a saved address.
func (c *Client) UpdateAddress(ctx context.Context, addr domain.Address) (*domain.Address, error) {
	var updated domain.Address
	path := fmt.Sprintf("/users/addresses/%s", url.PathEscape(addr.ID))
	if err := c.do(ctx, http.MethodPut, path, addr, &updated, nil); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteAddress removes a saved address.
func (c *Client) DeleteAddress(ctx context.Context, addressID string) error {
	path := fmt.Sprintf("/users/addresses/%s", url.PathEscape(addressID))
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// SetDefaultAddress marks a saved address as the default.
func (c *Client) SetDefaultAddress(ctx context.Context, addressID string) error {
	path := fmt.Sprintf("/users/addresses/%s/default", url.PathEscape(addressID))
	return c.do(ctx, http.MethodPut, path, nil, nil, nil)
}

// GetLoyaltyPoints fetches the user's redeemable point balance.
func (c *Client) GetLoyaltyPoints(ctx context.Context) (*domain.LoyaltyBalance, error) {
	var balance domain.LoyaltyBalance
	if err := c.do(ctx, http.MethodGet, "/users/loyalty-points", nil, &balance, nil); err != nil {
		return nil, err
	}
	return &balance, nil
}
