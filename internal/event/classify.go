package event

import "strings"

// Kind is the closed, locally classified category of an event.
type Kind string

const (
	KindDisputeCreated           Kind = "DISPUTE_CREATED"
	KindDisputeLost              Kind = "DISPUTE_LOST"
	KindDisputeWon               Kind = "DISPUTE_WON"
	KindDisputeEvidenceSubmitted Kind = "DISPUTE_EVIDENCE_SUBMITTED"
	KindUnknown                  Kind = "UNKNOWN"
)

// Classify maps the raw upstream event_type tag onto a Kind. Matching
// is case-insensitive and never fails: blank or unrecognised tags
// classify as KindUnknown.
func Classify(eventType string) Kind {
	switch strings.ToUpper(strings.TrimSpace(eventType)) {
	case string(KindDisputeCreated):
		return KindDisputeCreated
	case string(KindDisputeLost):
		return KindDisputeLost
	case string(KindDisputeWon):
		return KindDisputeWon
	case string(KindDisputeEvidenceSubmitted):
		return KindDisputeEvidenceSubmitted
	default:
		return KindUnknown
	}
}
