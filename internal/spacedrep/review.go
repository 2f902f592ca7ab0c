// Package spacedrep schedules reviews of mastered skills. A review falls
// due when the decay model predicts the skill's level will drop below the
// mastery threshold.
package spacedrep

import "time"

// ReviewStatus describes a skill's review status for display.
type ReviewStatus string

const (
	ReviewNotDue  ReviewStatus = "not_due"
	ReviewDue     ReviewStatus = "due"
	ReviewOverdue ReviewStatus = "overdue"
)

// GraceFraction is the share of the last interval a due review may wait
// before it counts as overdue.
const GraceFraction = 0.5

// Review is the review schedule of one mastered skill.
type Review struct {
	SkillID       string    `json:"skill_id"`
	Level         int       `json:"level"`
	LastPracticed time.Time `json:"last_practiced"`
	DueAt         time.Time `json:"due_at"`
}

// IsDue returns true if the skill is due for review (at or past the due date).
func (r Review) IsDue(now time.Time) bool {
	return !now.Before(r.DueAt)
}

// OverdueDays returns how many days past due the skill is. Returns 0 if not yet due.
func (r Review) OverdueDays(now time.Time) float64 {
	if now.Before(r.DueAt) {
		return 0
	}
	return now.Sub(r.DueAt).Hours() / 24.0
}

// IntervalDays is the time from the last practice to the due date.
func (r Review) IntervalDays() float64 {
	return r.DueAt.Sub(r.LastPracticed).Hours() / 24.0
}

// IsOverdue returns true once the review has waited longer than its grace
// period.
func (r Review) IsOverdue(now time.Time) bool {
	if !r.IsDue(now) {
		return false
	}
	grace := time.Duration(r.IntervalDays() * GraceFraction * 24 * float64(time.Hour))
	return now.After(r.DueAt.Add(grace))
}

// Status returns the review status for display.
func (r Review) Status(now time.Time) ReviewStatus {
	switch {
	case r.IsOverdue(now):
		return ReviewOverdue
	case r.IsDue(now):
		return ReviewDue
	default:
		return ReviewNotDue
	}
}

// DaysUntilReview returns the whole number of days until the review is
// due, rounded up. Returns 0 if already due.
func (r Review) DaysUntilReview(now time.Time) int {
	if r.IsDue(now) {
		return 0
	}
	hours := r.DueAt.Sub(now).Hours()
	days := int(hours / 24)
	if float64(days*24) < hours {
		days++
	}
	return days
}
