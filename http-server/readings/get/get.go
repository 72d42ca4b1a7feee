package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"gas-monitor/http-server/query"
	"gas-monitor/internal/service/aggregate"
	"gas-monitor/internal/service/monitor"
	"gas-monitor/internal/storage"
)

type RowsProvider interface {
	Rows(ctx context.Context, filter storage.ReadingFilter) ([]monitor.CustomerRows, error)
}

// DisplayRow — строка таблицы на фронте: либо показание, либо итог блока.
type DisplayRow struct {
	Kind aggregate.Kind `json:"kind"`

	ID                   string                `json:"id,omitempty"`
	Date                 string                `json:"date,omitempty"`
	Time                 string                `json:"time,omitempty"`
	StorageNumber        string                `json:"storage_number,omitempty"`
	OperationType        storage.OperationType `json:"operation_type,omitempty"`
	FixedStorageQuantity *int                  `json:"fixed_storage_quantity,omitempty"`
	PSI                  *float64              `json:"psi,omitempty"`
	Temp                 *float64              `json:"temp,omitempty"`
	PSIOut               *float64              `json:"psi_out,omitempty"`
	FlowTurbine          *float64              `json:"flow_turbine,omitempty"`
	FlowMeter            *aggregate.FlowMeter  `json:"flow_meter,omitempty"`
	Remarks              *string               `json:"remarks,omitempty"`
	Operator             string                `json:"operator,omitempty"`

	Label     string `json:"label,omitempty"`
	TotalFlow *int64 `json:"total_flow,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

type CustomerTable struct {
	CustomerCode string       `json:"customer_code"`
	Rows         []DisplayRow `json:"rows"`
}

type Response struct {
	Customers []CustomerTable `json:"customers"`
	Error     string          `json:"error,omitempty"`
}

func GetReadings(log *slog.Logger, rows RowsProvider, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.readings.GetReadings"

		filter, err := query.ReadingFilter(r, loc)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		groups, err := rows.Rows(ctx, filter)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Failed to fetch readings")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		resp := Response{Customers: make([]CustomerTable, 0, len(groups))}
		for _, g := range groups {
			table := CustomerTable{CustomerCode: g.CustomerCode, Rows: make([]DisplayRow, 0, len(g.Rows))}
			for _, row := range g.Rows {
				d, err := displayRow(row, loc)
				if err != nil {
					log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Failed to render row")
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				table.Rows = append(table.Rows, d)
			}
			resp.Customers = append(resp.Customers, table)
		}

		render.JSON(w, r, resp)
	}
}

func displayRow(row aggregate.Row, loc *time.Location) (DisplayRow, error) {
	switch row.Kind {
	case aggregate.KindReading:
		rd := row.Reading
		at := rd.RecordedAt.In(loc)
		fm := rd.FlowMeter
		return DisplayRow{
			Kind:                 row.Kind,
			ID:                   rd.ID,
			Date:                 at.Format("2006-01-02"),
			Time:                 at.Format("15:04"),
			StorageNumber:        rd.StorageNumber,
			OperationType:        rd.OperationType,
			FixedStorageQuantity: &rd.FixedStorageQuantity,
			PSI:                  &rd.PSI,
			Temp:                 &rd.Temp,
			PSIOut:               &rd.PSIOut,
			FlowTurbine:          rd.FlowTurbine,
			FlowMeter:            &fm,
			Remarks:              rd.Remarks,
			Operator:             rd.Operator,
		}, nil
	case aggregate.KindStopSummary:
		return summaryRow(row, "STOP TOTAL"), nil
	case aggregate.KindDumpingTotal:
		return summaryRow(row, "TOTAL BEFORE DUMPING "+row.Summary.StorageNumber), nil
	case aggregate.KindChangeSummary:
		return summaryRow(row, "CHANGE TOTAL"), nil
	case aggregate.KindDumpingSummary:
		return summaryRow(row, "DUMPING"), nil
	default:
		return DisplayRow{}, aggregate.ErrUnknownRowKind
	}
}

func summaryRow(row aggregate.Row, label string) DisplayRow {
	total := row.Summary.RoundedTotal()
	return DisplayRow{
		Kind:          row.Kind,
		StorageNumber: row.Summary.StorageNumber,
		Label:         label,
		TotalFlow:     &total,
		Duration:      row.Summary.Duration,
	}
}
