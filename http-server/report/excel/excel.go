package excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"gas-monitor/http-server/query"
	"gas-monitor/internal/storage"
)

type ReportGenerator interface {
	Generate(ctx context.Context, filter storage.ReadingFilter) ([]byte, error)
}

const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GenerateReportExcel отдаёт выгрузку показаний. Без дат берётся текущий месяц.
func GenerateReportExcel(log *slog.Logger, gen ReportGenerator, loc *time.Location, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GenerateReportExcel"

		filter, err := query.ReadingFilter(r, loc)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		now := time.Now().In(loc)
		if filter.From.IsZero() && filter.To.IsZero() {
			filter.From = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
			filter.To = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		excelBytes, err := gen.Generate(ctx, filter)
		if err != nil {
			log.Error("failed to generate excel", "op", op, "err", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		fileName := fmt.Sprintf("Gas_Readings_%s.xlsx", now.Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Header().Set("Content-Length", strconv.Itoa(len(excelBytes)))
		if _, err := w.Write(excelBytes); err != nil {
			log.Error("failed to write excel", "op", op, "err", err)
		}
	}
}
