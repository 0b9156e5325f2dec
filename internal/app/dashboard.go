package app

import (
	"context"
	"time"

	"sdg-quest/internal/badge"
	"sdg-quest/internal/domain"
)

// Dashboard summarizes a user's score history.
type Dashboard struct {
	ledger  ScoreLedger
	rules   badge.Rules
	timeout time.Duration
}

func NewDashboard(ledger ScoreLedger, rules badge.Rules, timeout time.Duration) *Dashboard {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Dashboard{ledger: ledger, rules: rules, timeout: timeout}
}

// Load fetches the history of the user in creds and derives the summary.
func (d *Dashboard) Load(ctx context.Context, creds domain.Credentials) (badge.Summary, []domain.ScoreRecord, error) {
	if creds.UserID == "" {
		return badge.Summary{}, nil, &domain.AuthRequiredError{Reason: "missing user id"}
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	records, err := d.ledger.Scores(ctx, creds.UserID)
	if err != nil {
		return badge.Summary{}, nil, asTransient("fetch scores", err)
	}
	return badge.Summarize(records, d.rules), records, nil
}
