package model

import "fmt"

// Action names one kind of scheduled announcement.
type Action string

const (
	ActionRevealChallenge   Action = "reveal_challenge"
	ActionSendReminder      Action = "send_reminder"
	ActionRevealSolution    Action = "reveal_solution"
	ActionSendResourcePromo Action = "send_resource_promo"
)

// Actions lists every known action in schedule order.
var Actions = []Action{
	ActionRevealChallenge,
	ActionSendReminder,
	ActionRevealSolution,
	ActionSendResourcePromo,
}

// ParseAction validates a user-supplied action name.
func ParseAction(s string) (Action, bool) {
	for _, a := range Actions {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// ScheduleEntry fires Action every day at Hour:Minute UTC.
type ScheduleEntry struct {
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Action Action `json:"action"`
}

// CronSpec renders the entry as a five-field cron expression.
func (e ScheduleEntry) CronSpec() string {
	return fmt.Sprintf("%d %d * * *", e.Minute, e.Hour)
}
