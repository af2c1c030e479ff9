package commerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jafarshop/storefront/internal/domain"
)

// GetCart fetches the current cart snapshot.
func (c *Client) GetCart(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &cart, nil); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem adds a variant to the cart and returns the updated snapshot.
func (c *Client) AddItem(ctx context.Context, variantID string, quantity int) (*domain.Cart, error) {
	req := AddItemRequest{ProductVariantID: variantID, Quantity: quantity}
	var cart domain.Cart
	if err := c.do(ctx, http.MethodPost, "/cart/items", req, &cart, nil); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateItem changes a line's quantity and returns the updated snapshot.
func (c *Client) UpdateItem(ctx context.Context, variantID string, quantity int) (*domain.Cart, error) {
	req := UpdateItemRequest{Quantity: quantity}
	var cart domain.Cart
	path := fmt.Sprintf("/cart/items/%s", url.PathEscape(variantID))
	if err := c.do(ctx, http.MethodPut, path, req, &cart, nil); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveItem removes a line and returns the updated snapshot.
func (c *Client) RemoveItem(ctx context.Context, variantID string) (*domain.Cart, error) {
	var cart domain.Cart
	path := fmt.Sprintf("/cart/items/%s", url.PathEscape(variantID))
	if err := c.do(ctx, http.MethodDelete, path, nil, &cart, nil); err != nil {
		return nil, err
	}
	return &cart, nil
}

// ClearCart empties the cart and returns the (empty) snapshot.
func (c *Client) ClearCart(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, http.MethodDelete, "/cart", nil, &cart, nil); err != nil {
		return nil, err
	}
	return &cart, nil
}
