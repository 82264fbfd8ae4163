package frames

// Outcome classifies one access.
type Outcome uint8

const (
	Hit Outcome = iota
	Fault
	FaultEvicted
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Fault:
		return "fault"
	case FaultEvicted:
		return "fault+evict"
	}
	return "unknown"
}

// Step is the result of applying one access.
type Step struct {
	Number  uint32
	Write   bool
	Outcome Outcome
	// Victim is only meaningful when Outcome == FaultEvicted.
	Victim uint32
}
