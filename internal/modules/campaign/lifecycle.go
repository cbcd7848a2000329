package campaign

import (
	"fmt"
	"time"

	"campaignhub/internal/domain"
)

var allowedTransitions = map[domain.CampaignStatus][]domain.CampaignStatus{
	domain.CampaignDraft:     {domain.CampaignActive, domain.CampaignCancelled},
	domain.CampaignActive:    {domain.CampaignPaused, domain.CampaignFinished, domain.CampaignCancelled},
	domain.CampaignPaused:    {domain.CampaignActive, domain.CampaignFinished, domain.CampaignCancelled},
	domain.CampaignFinished:  nil,
	domain.CampaignCancelled: nil,
}

// CanTransition reports whether requested is reachable from current in one step.
// Terminal states reach nothing, not even themselves.
func CanTransition(current, requested domain.CampaignStatus) bool {
	for _, s := range allowedTransitions[current] {
		if s == requested {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s domain.CampaignStatus) bool {
	return len(allowedTransitions[s]) == 0
}

// Transition validates the move and returns the updated_at stamp to persist.
func Transition(current, requested domain.CampaignStatus, now time.Time) (time.Time, error) {
	if !CanTransition(current, requested) {
		return time.Time{}, fmt.Errorf("%w: cannot change status from %s to %s", domain.ErrInvalidTransition, current, requested)
	}
	return now.UTC(), nil
}
