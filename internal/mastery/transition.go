package mastery

import "time"

// EventKind classifies a change to a learner's skill state.
type EventKind string

const (
	EventSeeded     EventKind = "seeded"
	EventUnlocked   EventKind = "unlocked"
	EventDecayed    EventKind = "decayed"
	EventReinforced EventKind = "reinforced"
	EventMastered   EventKind = "mastered"
)

// Transition records a state change for the audit log.
type Transition struct {
	SkillID   string
	Kind      EventKind
	FromLevel int
	ToLevel   int
	At        time.Time
}

// Diff returns the transitions that turn prev into next. A skill that had
// no prior state should be passed a zero State with the same SkillID.
func Diff(prev, next State, at time.Time) []Transition {
	var out []Transition
	add := func(kind EventKind) {
		out = append(out, Transition{
			SkillID:   next.SkillID,
			Kind:      kind,
			FromLevel: prev.Level,
			ToLevel:   next.Level,
			At:        at,
		})
	}

	if !prev.Unlocked && next.Unlocked {
		add(EventUnlocked)
	}
	if next.ReinforcementCount > prev.ReinforcementCount {
		add(EventReinforced)
	} else if next.Level < prev.Level {
		add(EventDecayed)
	}
	if prev.MasteredAt == nil && next.MasteredAt != nil {
		add(EventMastered)
	}
	return out
}
