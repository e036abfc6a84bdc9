package model

// SweepResult summarizes one execution of the lifecycle sweep
type SweepResult struct {
	RemindersSent    int
	RemindersSkipped int
	OverdueProcessed int
	OverdueSkipped   int
}

// Profile is an aggregate view of a user and their assignment statistics
type Profile struct {
	User      *User
	Pending   []*Assignment
	Completed int
	Late      int
	Total     int
}
