// Package tasktype defines the value model for a resolved automation task:
// the common header every task carries plus the per-algorithm payload it
// carries on top, mirroring the tagged-variant layout of the original
// MaaAssistantArknights TaskData model.
package tasktype

// Task is a single node of the resolved task catalog. It carries the
// common header fields plus, depending on Algorithm, one populated
// variant payload (Match, Ocr, or Hash — JustReturn has none).
type Task struct {
	Name      string
	Algorithm AlgorithmType
	Action    ProcessTaskAction

	Cache    bool
	MaxTimes int // MaxTimesUnbounded means no limit

	PreDelay  int
	PostDelay int

	ROI          Rect
	RectMove     Rect
	SpecificRect Rect

	Sub             []string
	SubErrorIgnored bool

	Next            []string
	ExceededNext    []string
	OnErrorNext     []string
	ReduceOtherTimes []string

	SpecialParams []int

	Match *MatchPayload
	Ocr   *OcrPayload
	Hash  *HashPayload
}

// MaxTimesUnbounded is the sentinel max_times value meaning "no limit",
// matching the original's use of INT_MAX.
const MaxTimesUnbounded = int(^uint(0) >> 1)

// MatchPayload holds the fields specific to AlgorithmMatchTemplate.
type MatchPayload struct {
	TemplName     string
	TemplThreshold float64
	MaskRange     MaskRange
}

// OcrPayload holds the fields specific to AlgorithmOcrDetect.
type OcrPayload struct {
	Text       []string
	FullMatch  bool
	IsAscii    bool
	WithoutDet bool
	ReplaceMap []ReplacePair
}

// HashPayload holds the fields specific to AlgorithmHash.
type HashPayload struct {
	Hashes        []string
	DistThreshold int
	MaskRange     MaskRange
	Bound         bool
}

// Clone returns a deep-enough copy of t suitable for use as a
// materialization base: slices and the variant payload are copied so
// that mutating the clone never aliases the original.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.Sub = append([]string(nil), t.Sub...)
	c.Next = append([]string(nil), t.Next...)
	c.ExceededNext = append([]string(nil), t.ExceededNext...)
	c.OnErrorNext = append([]string(nil), t.OnErrorNext...)
	c.ReduceOtherTimes = append([]string(nil), t.ReduceOtherTimes...)
	c.SpecialParams = append([]int(nil), t.SpecialParams...)
	if t.Match != nil {
		m := *t.Match
		c.Match = &m
	}
	if t.Ocr != nil {
		o := *t.Ocr
		o.Text = append([]string(nil), t.Ocr.Text...)
		o.ReplaceMap = append([]ReplacePair(nil), t.Ocr.ReplaceMap...)
		c.Ocr = &o
	}
	if t.Hash != nil {
		h := *t.Hash
		h.Hashes = append([]string(nil), t.Hash.Hashes...)
		c.Hash = &h
	}
	return &c
}
