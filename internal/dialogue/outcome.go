package dialogue

// Outcome labels how a turn ended, for logs and metrics.
type Outcome string

const (
	OutcomeCompleted     Outcome = "completed"
	OutcomeNeedsInput    Outcome = "needs_input"
	OutcomeInvalidInput  Outcome = "invalid_input"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeAlreadyPaid   Outcome = "already_paid"
	OutcomeMenu          Outcome = "menu"
	OutcomeNotUnderstood Outcome = "not_understood"
	OutcomeFailed        Outcome = "failed"
)
