package event

import "strings"

// MapReason translates an upstream dispute reason code into the phrase
// shown in notification templates. Codes already readable pass through
// unchanged, known codes are respelled, anything else collapses to
// "other" and missing input to "unknown".
func MapReason(reason string) string {
	if strings.TrimSpace(reason) == "" {
		return "unknown"
	}

	switch reason {
	case "duplicate", "fraudulent", "general":
		return reason
	case "credit_not_processed":
		return "credit not processed"
	case "product_not_received":
		return "product not received"
	case "product_unacceptable":
		return "product unacceptable"
	case "subscription_canceled":
		return "subscription cancelled"
	case "unrecognized":
		return "unrecognised"
	default:
		return "other"
	}
}
