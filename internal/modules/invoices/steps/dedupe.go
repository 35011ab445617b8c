package steps

// Decision is the deduplication outcome for one ingestion run.
type Decision int

const (
	DecisionCreate Decision = iota
	DecisionSkipWithEvent
)

func (d Decision) String() string {
	switch d {
	case DecisionCreate:
		return "create"
	case DecisionSkipWithEvent:
		return "skip_with_event"
	}
	return "unknown"
}

// Decide never lets a run overwrite an existing record.
func Decide(exists bool) Decision {
	if exists {
		return DecisionSkipWithEvent
	}
	return DecisionCreate
}
