package supabase

import (
	"context"
	"fmt"

	"nutriflow/models"
)

const profilesPath = "/rest/v1/profiles"

// InsertProfile adds a row to the profiles table.
func (c *Client) InsertProfile(ctx context.Context, p models.Profile) error {
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	key := c.dataKey()
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("apikey", key).
		SetHeader("Authorization", "Bearer "+key).
		SetHeader("Prefer", "return=minimal").
		SetBody(p).
		Post(profilesPath)
	if err != nil {
		return fmt.Errorf("supabase insert profile: %w", err)
	}
	if res.IsError() {
		return responseError(res)
	}
	return nil
}
