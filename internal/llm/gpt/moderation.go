package gpt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
)

// Moderate sends text to the moderation endpoint and returns every
// category the service flagged, keyed by its wire name (e.g. "hate/threatening").
func (c *Client) Moderate(ctx context.Context, text string) (map[string]bool, error) {
	resp, err := c.Client.Moderations.New(ctx, openai.ModerationNewParams{
		Input: openai.ModerationNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.ModerationModelOmniModerationLatest,
	})
	if err != nil {
		return nil, fmt.Errorf("moderation request failed: %w", err)
	}

	flagged := make(map[string]bool)
	for _, result := range resp.Results {
		categories, err := decodeCategories(result.Categories.RawJSON())
		if err != nil {
			return nil, err
		}
		for name, hit := range categories {
			if hit {
				flagged[name] = true
			}
		}
	}

	return flagged, nil
}

// decodeCategories tolerates null entries, which the service sends for
// categories that were not evaluated.
func decodeCategories(raw string) (map[string]bool, error) {
	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to decode moderation categories: %w", err)
	}

	categories := make(map[string]bool, len(values))
	for name, value := range values {
		hit, _ := value.(bool)
		categories[name] = hit
	}
	return categories, nil
}
