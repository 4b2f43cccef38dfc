package tasktype

// AlgorithmType selects the vision strategy a task uses to detect its
// target on screen before its action runs.
type AlgorithmType int

const (
	// AlgorithmInvalid marks an unrecognized or absent algorithm tag. A
	// declared task must never resolve to this value.
	AlgorithmInvalid AlgorithmType = iota
	AlgorithmMatchTemplate
	AlgorithmOcrDetect
	AlgorithmHash
	AlgorithmJustReturn
)

// String implements fmt.Stringer for log-friendly error messages.
func (a AlgorithmType) String() string {
	switch a {
	case AlgorithmMatchTemplate:
		return "MatchTemplate"
	case AlgorithmOcrDetect:
		return "OcrDetect"
	case AlgorithmHash:
		return "Hash"
	case AlgorithmJustReturn:
		return "JustReturn"
	default:
		return "Invalid"
	}
}

// ParseAlgorithmType maps a decoded "algorithm" string to its tag.
// Unrecognized input returns AlgorithmInvalid.
func ParseAlgorithmType(s string) AlgorithmType {
	switch s {
	case "MatchTemplate":
		return AlgorithmMatchTemplate
	case "OcrDetect":
		return AlgorithmOcrDetect
	case "Hash":
		return AlgorithmHash
	case "JustReturn":
		return AlgorithmJustReturn
	default:
		return AlgorithmInvalid
	}
}

// ProcessTaskAction selects the effect a task produces once its target
// has been detected.
type ProcessTaskAction int

const (
	// ActionInvalid marks an unrecognized or absent action tag.
	ActionInvalid ProcessTaskAction = iota
	ActionDoNothing
	ActionClickRect
	ActionSwipe
	ActionClickSelf
	ActionStopGame
)

// String implements fmt.Stringer.
func (a ProcessTaskAction) String() string {
	switch a {
	case ActionDoNothing:
		return "DoNothing"
	case ActionClickRect:
		return "ClickRect"
	case ActionSwipe:
		return "Swipe"
	case ActionClickSelf:
		return "ClickSelf"
	case ActionStopGame:
		return "StopGame"
	default:
		return "Invalid"
	}
}

// ParseProcessTaskAction maps a decoded "action" string to its tag.
// Unrecognized input returns ActionInvalid.
func ParseProcessTaskAction(s string) ProcessTaskAction {
	switch s {
	case "DoNothing":
		return ActionDoNothing
	case "ClickRect":
		return ActionClickRect
	case "Swipe":
		return ActionSwipe
	case "ClickSelf":
		return ActionClickSelf
	case "StopGame":
		return ActionStopGame
	default:
		return ActionInvalid
	}
}
