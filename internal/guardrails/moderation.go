package guardrails

import (
	"context"
	"fmt"
	"sort"

	"github.com/povarna/generative-ai-agents/proposal-agent/internal/config"
)

// Moderator flags content categories for a piece of text. The returned map
// is keyed by category name (e.g. "hate/threatening").
type Moderator interface {
	Moderate(ctx context.Context, text string) (map[string]bool, error)
}

type ModerationCheck struct {
	moderator Moderator
}

func NewModerationCheck(moderator Moderator) *ModerationCheck {
	return &ModerationCheck{moderator: moderator}
}

func (c *ModerationCheck) Name() string {
	return config.CheckModeration
}

// Run trips when the moderator flags any configured category. With no
// categories configured every flagged category counts.
func (c *ModerationCheck) Run(ctx context.Context, text string, cfg config.CheckConfig) (CheckResult, error) {
	flagged, err := c.moderator.Moderate(ctx, text)
	if err != nil {
		return CheckResult{}, fmt.Errorf("moderation failed: %w", err)
	}

	categories := make([]string, 0)
	if len(cfg.Categories) == 0 {
		for name, hit := range flagged {
			if hit {
				categories = append(categories, name)
			}
		}
		sort.Strings(categories)
	} else {
		for _, name := range cfg.Categories {
			if flagged[name] {
				categories = append(categories, name)
			}
		}
	}

	return CheckResult{
		Name:              config.CheckModeration,
		TripwireTriggered: len(categories) > 0,
		Info:              ModerationInfo{FlaggedCategories: categories},
	}, nil
}
