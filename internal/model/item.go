package model

import "time"

// Item represents a feature request moving through the triage workflow.
type Item struct {
	ID          int64      `json:"id"`
	Number      int64      `json:"number"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	State       string     `json:"state"`
	Completed   bool       `json:"completed"`
	DueDate     *DueDate   `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedBy   *int64     `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DueDate is a coarse scheduling target (a week, month or quarter of a year).
type DueDate struct {
	Type  string `json:"type"`
	Year  int    `json:"year"`
	Which int    `json:"which"`
}

// Due date types.
const (
	DueWeek    = "week"
	DueMonth   = "month"
	DueQuarter = "quarter"
)

// Item states.
const (
	StateRequested  = "requested"
	StateWaiting    = "waiting"
	StateScheduled  = "scheduled"
	StateInProgress = "inProgress"
	StateCancelled  = "cancelled"
	StateCompleted  = "completed"
)

// transitions maps each state to the states reachable from it.
// Cancelled and completed are terminal.
var transitions = map[string][]string{
	StateRequested:  {StateWaiting, StateCancelled},
	StateWaiting:    {StateScheduled, StateCancelled},
	StateScheduled:  {StateInProgress, StateCancelled},
	StateInProgress: {StateCompleted, StateCancelled},
	StateCancelled:  {},
	StateCompleted:  {},
}

// ValidState reports whether s names a known item state.
func ValidState(s string) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether an item may move from one state to another.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a state has no outbound transitions.
func IsTerminal(state string) bool {
	return state == StateCancelled || state == StateCompleted
}

// States lists all item states in workflow order.
func States() []string {
	return []string{
		StateRequested, StateWaiting, StateScheduled,
		StateInProgress, StateCompleted, StateCancelled,
	}
}
