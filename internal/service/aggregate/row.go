package aggregate

import (
	"errors"
	"math"
	"strconv"

	"gas-monitor/internal/storage"
)

var (
	ErrInvalidRecordedAt = errors.New("reading has no valid recorded_at")
	ErrUnknownRowKind    = errors.New("unknown row kind")
)

type Kind string

const (
	KindReading        Kind = "reading"
	KindStopSummary    Kind = "stop_summary"
	KindDumpingTotal   Kind = "dumping_total"
	KindChangeSummary  Kind = "change_summary"
	KindDumpingSummary Kind = "dumping_summary"
)

// Summary reports whether the row is one of the synthetic block-boundary rows.
func (k Kind) Summary() bool {
	switch k {
	case KindStopSummary, KindDumpingTotal, KindChangeSummary, KindDumpingSummary:
		return true
	}
	return false
}

const NoData = "-"

// FlowMeter: расход между двумя совместимыми показаниями счётчика.
// Нулевое значение означает "нет данных".
type FlowMeter struct {
	value float64
	ok    bool
}

func Flow(v float64) FlowMeter {
	return FlowMeter{value: v, ok: true}
}

func (f FlowMeter) Value() (float64, bool) {
	return f.value, f.ok
}

// Float returns the delta, or 0 for the "-" sentinel.
func (f FlowMeter) Float() float64 {
	if !f.ok {
		return 0
	}
	return f.value
}

func (f FlowMeter) String() string {
	if !f.ok {
		return NoData
	}
	return strconv.FormatFloat(f.value, 'f', -1, 64)
}

func (f FlowMeter) MarshalJSON() ([]byte, error) {
	if !f.ok {
		return []byte(`"` + NoData + `"`), nil
	}
	return []byte(strconv.FormatFloat(f.value, 'f', -1, 64)), nil
}

type ReadingRow struct {
	storage.Reading
	FlowMeter FlowMeter `json:"flow_meter"`
}

type Summary struct {
	StorageNumber string  `json:"storage_number,omitempty"`
	TotalFlow     float64 `json:"total_flow"`
	Duration      string  `json:"duration"`
}

// RoundedTotal is the total flow as presented to users.
func (s Summary) RoundedTotal() int64 {
	return int64(math.Round(s.TotalFlow))
}

// Row is exactly one of Reading or Summary, selected by Kind.
type Row struct {
	Kind    Kind        `json:"kind"`
	Reading *ReadingRow `json:"reading,omitempty"`
	Summary *Summary    `json:"summary,omitempty"`
}
