package domain

// Outcome is the user-visible result of a vocabulary action
type Outcome string

const (
	OutcomeAdded         Outcome = "added"
	OutcomeAlreadyExists Outcome = "already_exists"
	OutcomeFailed        Outcome = "failed"
	OutcomeRemoved       Outcome = "removed"
	OutcomeRemembered    Outcome = "remembered"
	OutcomeLearned       Outcome = "learned" // removed after MaxSuccessCount reviews
	OutcomeForgotten     Outcome = "forgotten"
)

func (o Outcome) String() string {
	return string(o)
}
