package api

import (
	"context"
	"fmt"
)

// GetDate fetches every recorded entry for a month and day, across all years.
func (c *Client) GetDate(ctx context.Context, month, day int) (*DateResponse, error) {
	var resp DateResponse
	if err := c.get(ctx, fmt.Sprintf("/date/%d/%d", month, day), &resp); err != nil {
		return nil, fmt.Errorf("get date %d/%d: %w", month, day, err)
	}
	return &resp, nil
}
