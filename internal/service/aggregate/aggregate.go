// Package aggregate regroups a time-ordered list of readings into display
// blocks (manual runs, stops, dumping runs, storage changes) and inserts
// summary rows at the block boundaries.
package aggregate

import (
	"fmt"
	"math"
	"time"

	"gas-monitor/internal/storage"
)

// Aggregate expects the readings of a single customer sorted by recorded_at.
// It never mutates its input and returns a fresh slice on every call.
func Aggregate(readings []storage.Reading) ([]Row, error) {
	const op = "service.aggregate.Aggregate"

	for _, r := range readings {
		if r.RecordedAt.IsZero() {
			return nil, fmt.Errorf("%s: reading id=%s: %w", op, r.ID, ErrInvalidRecordedAt)
		}
	}

	meters := FlowMeters(readings)
	rows := make([]Row, 0, len(readings)+len(readings)/2)

	n := len(readings)
	for i := 0; i < n; {
		switch readings[i].OperationType {
		case storage.OperationManual, storage.OperationStop:
			end := manualBlockEnd(readings, i)
			rows = appendReadings(rows, readings, meters, i, end)

			first, last := readings[i], readings[end]
			total := sumFlow(meters[i : end+1])
			duration := Elapsed(first.RecordedAt, last.RecordedAt)

			if last.OperationType == storage.OperationStop {
				rows = append(rows, summaryRow(KindStopSummary, Summary{TotalFlow: total, Duration: duration}))
			} else if end+1 < n {
				next := readings[end+1]
				switch {
				case next.OperationType == storage.OperationDumping:
					rows = append(rows, summaryRow(KindDumpingTotal, Summary{
						StorageNumber: first.StorageNumber,
						TotalFlow:     total,
						Duration:      Clock(last.RecordedAt),
					}))
				case next.CustomerCode == last.CustomerCode && next.StorageNumber != last.StorageNumber:
					rows = append(rows, summaryRow(KindChangeSummary, Summary{TotalFlow: total, Duration: duration}))
				}
			}
			i = end + 1

		case storage.OperationDumping:
			end := i
			for end+1 < n && readings[end+1].OperationType == storage.OperationDumping {
				end++
			}
			rows = appendReadings(rows, readings, meters, i, end)
			rows = append(rows, summaryRow(KindDumpingSummary, Summary{
				TotalFlow: 0,
				Duration:  Elapsed(readings[i].RecordedAt, readings[end].RecordedAt),
			}))
			i = end + 1

		default:
			rows = appendReadings(rows, readings, meters, i, i)
			i++
		}
	}

	return rows, nil
}

// FlowMeters derives the per-reading flow meter in one left-to-right pass.
func FlowMeters(readings []storage.Reading) []FlowMeter {
	meters := make([]FlowMeter, len(readings))
	for i := 1; i < len(readings); i++ {
		prev, cur := readings[i-1], readings[i]
		if !compatible(prev, cur) {
			continue
		}
		meters[i] = delta(prev.FlowTurbine, cur.FlowTurbine)
	}
	return meters
}

func compatible(prev, cur storage.Reading) bool {
	if prev.StorageNumber != cur.StorageNumber {
		return false
	}
	if prev.OperationType == cur.OperationType {
		return true
	}
	return cur.OperationType == storage.OperationStop && prev.OperationType == storage.OperationManual
}

func delta(prev, cur *float64) FlowMeter {
	if prev == nil || cur == nil {
		return FlowMeter{}
	}
	d := *cur - *prev
	// отрицательная разница — сброс счётчика или перепутанный порядок
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return FlowMeter{}
	}
	return Flow(d)
}

// manualBlockEnd returns the index of the last reading of the manual/stop block
// starting at i. A stop reading always closes its block.
func manualBlockEnd(readings []storage.Reading, i int) int {
	end := i
	for readings[end].OperationType != storage.OperationStop && end+1 < len(readings) {
		next := readings[end+1]
		if next.StorageNumber != readings[i].StorageNumber {
			break
		}
		if next.OperationType != storage.OperationManual && next.OperationType != storage.OperationStop {
			break
		}
		end++
	}
	return end
}

func appendReadings(rows []Row, readings []storage.Reading, meters []FlowMeter, from, to int) []Row {
	for j := from; j <= to; j++ {
		rows = append(rows, Row{
			Kind:    KindReading,
			Reading: &ReadingRow{Reading: readings[j], FlowMeter: meters[j]},
		})
	}
	return rows
}

func summaryRow(kind Kind, s Summary) Row {
	return Row{Kind: kind, Summary: &s}
}

func sumFlow(meters []FlowMeter) float64 {
	var total float64
	for _, m := range meters {
		total += m.Float()
	}
	return total
}

// Elapsed formats b-a as HH:MM, truncated to whole minutes. Negative spans
// (unsorted input) are reported as 00:00.
func Elapsed(a, b time.Time) string {
	d := b.Sub(a)
	if d < 0 {
		d = 0
	}
	minutes := int64(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Clock formats the time of day as HH:MM in the time's own location.
func Clock(t time.Time) string {
	return t.Format("15:04")
}
