package guardrails

import (
	"context"
	"errors"
	"fmt"
)

type SanitizeStatus string

const (
	// SanitizeSkipped means PII masking is not configured.
	SanitizeSkipped SanitizeStatus = "skipped"
	SanitizeSuccess SanitizeStatus = "success"
	SanitizePartial SanitizeStatus = "partial"
	SanitizeFailed  SanitizeStatus = "failed"
)

// SanitizeOutcome reports how the best-effort masking pass went. It is
// logged and exposed for inspection but never returned as an error.
type SanitizeOutcome struct {
	Status    SanitizeStatus
	Reason    string
	Attempted int
	Masked    int
}

// sanitizer masks text fields in place and records per-field failures.
type sanitizer struct {
	mask      func(ctx context.Context, text string) (string, error)
	attempted int
	masked    int
	errs      []error
}

func (s *sanitizer) apply(ctx context.Context, field *string) {
	s.attempted++

	masked, err := s.safeMask(ctx, *field)
	if err != nil {
		s.errs = append(s.errs, err)
		return
	}
	if masked != *field {
		*field = masked
		s.masked++
	}
}

func (s *sanitizer) safeMask(ctx context.Context, text string) (masked string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while masking: %v", r)
		}
	}()
	return s.mask(ctx, text)
}

func (s *sanitizer) outcome() SanitizeOutcome {
	out := SanitizeOutcome{
		Status:    SanitizeSuccess,
		Attempted: s.attempted,
		Masked:    s.masked,
	}
	if len(s.errs) == 0 {
		return out
	}

	out.Reason = errors.Join(s.errs...).Error()
	if len(s.errs) == s.attempted {
		out.Status = SanitizeFailed
	} else {
		out.Status = SanitizePartial
	}
	return out
}
