package types

// ReminderStage is the result of classifying a pending assignment against
// its reminder thresholds.
type ReminderStage string

const (
	ReminderNone  ReminderStage = "none"
	ReminderFirst ReminderStage = "first"
	ReminderFinal ReminderStage = "final"
)

// String returns the string representation of the reminder stage
func (s ReminderStage) String() string {
	return string(s)
}
