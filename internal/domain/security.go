package domain

// GuardAction describes how the client reacts to a matched guard rule.
type GuardAction string

const (
	GuardAllow   GuardAction = "allow"
	GuardConfirm GuardAction = "confirm"
	GuardBlock   GuardAction = "block"
)

// GuardVerdict aggregates the rules a query matched.
type GuardVerdict struct {
	Action       GuardAction
	Reasons      []string
	MatchedRules []string
}
