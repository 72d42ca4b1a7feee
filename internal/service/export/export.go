package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"gas-monitor/internal/service/aggregate"
	"gas-monitor/internal/service/monitor"
	"gas-monitor/internal/storage"
)

type RowsProvider interface {
	Rows(ctx context.Context, filter storage.ReadingFilter) ([]monitor.CustomerRows, error)
}

type CustomerLister interface {
	ListCustomers(ctx context.Context, onlyActive bool) ([]*storage.Customer, error)
}

type Service struct {
	rows      RowsProvider
	customers CustomerLister
	title     string
}

func NewService(rows RowsProvider, customers CustomerLister, title string) *Service {
	return &Service{rows: rows, customers: customers, title: title}
}

var headers = []string{
	"Date", "Time", "Customer", "Storage No.", "Operation", "Fixed storage qty",
	"PSI", "Temp", "PSI out", "Flow turbine", "Flow meter", "Duration", "Remarks", "Operator",
}

// Колонки, на которые ссылаются формулы.
const (
	colFlowTurbine = 10 // J
	colFlowMeter   = 11 // K
	colDuration    = 12 // L
)

const headerRow = 1

// Generate builds one sheet per customer from the aggregated rows.
func (s *Service) Generate(ctx context.Context, filter storage.ReadingFilter) ([]byte, error) {
	const op = "service.export.Generate"

	var groups []monitor.CustomerRows
	var customers []*storage.Customer

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = s.rows.Rows(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = s.customers.ListCustomers(gctx, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: fetch data: %w", op, err)
	}

	names := make(map[string]string, len(customers))
	for _, c := range customers {
		names[c.Code] = c.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("%s: styles: %w", op, err)
	}

	if len(groups) == 0 {
		if err := f.SetSheetName("Sheet1", "Readings"); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := writeHeader(f, "Readings", st); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	for i, group := range groups {
		sheet := sheetName(group.CustomerCode, i)
		if i == 0 {
			err = f.SetSheetName("Sheet1", sheet)
		} else {
			_, err = f.NewSheet(sheet)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: sheet %s: %w", op, sheet, err)
		}

		if err := writeHeader(f, sheet, st); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		customerName := names[group.CustomerCode]
		if customerName == "" {
			customerName = group.CustomerCode
		}

		if err := writeRows(f, sheet, customerName, group.Rows, st); err != nil {
			return nil, fmt.Errorf("%s: customer %s: %w", op, group.CustomerCode, err)
		}
	}

	if s.title != "" {
		if err := f.SetDocProps(&excelize.DocProperties{Title: s.title, Creator: s.title}); err != nil {
			return nil, fmt.Errorf("%s: doc props: %w", op, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write: %w", op, err)
	}

	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, st styles) error {
	for i, name := range headers {
		if err := f.SetCellValue(sheet, cellName(i+1, headerRow), name); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(sheet, cellName(1, headerRow), cellName(len(headers), headerRow), st.header); err != nil {
		return err
	}

	// Закрепляем первую строку
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if err := f.SetColWidth(sheet, "A", "L", 14); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "M", "N", 28)
}

// writeRows пишет строки листа. lastSpecial — номер последней итоговой строки:
// формула итога суммирует расход от неё до текущей строки.
func writeRows(f *excelize.File, sheet, customerName string, rows []aggregate.Row, st styles) error {
	lastSpecial := headerRow
	prevWasReading := false

	for i, row := range rows {
		rowNum := headerRow + 1 + i

		switch row.Kind {
		case aggregate.KindReading:
			if err := writeReading(f, sheet, rowNum, customerName, row.Reading, prevWasReading); err != nil {
				return err
			}
			prevWasReading = true

		case aggregate.KindStopSummary, aggregate.KindDumpingTotal, aggregate.KindChangeSummary, aggregate.KindDumpingSummary:
			if err := writeSummary(f, sheet, rowNum, lastSpecial, row, st); err != nil {
				return err
			}
			lastSpecial = rowNum
			prevWasReading = false

		default:
			return fmt.Errorf("row %d: %w: %q", i, aggregate.ErrUnknownRowKind, row.Kind)
		}
	}

	return nil
}

func writeReading(f *excelize.File, sheet string, rowNum int, customerName string, r *aggregate.ReadingRow, prevWasReading bool) error {
	values := []any{
		r.RecordedAt.Format("2006-01-02"),
		r.RecordedAt.Format("15:04"),
		customerName,
		r.StorageNumber,
		strings.ToUpper(string(r.OperationType)),
		r.FixedStorageQuantity,
		r.PSI,
		r.Temp,
		r.PSIOut,
		aggregate.NoData,
		aggregate.NoData,
		"",
		"",
		r.Operator,
	}
	if r.FlowTurbine != nil {
		values[colFlowTurbine-1] = *r.FlowTurbine
	}
	if r.Remarks != nil {
		values[12] = *r.Remarks
	}

	if err := f.SetSheetRow(sheet, cellName(1, rowNum), &values); err != nil {
		return err
	}

	// Расход — разница с предыдущей строкой, если она тоже показание
	if _, ok := r.FlowMeter.Value(); ok && prevWasReading {
		formula := fmt.Sprintf("%s-%s", cellName(colFlowTurbine, rowNum), cellName(colFlowTurbine, rowNum-1))
		return f.SetCellFormula(sheet, cellName(colFlowMeter, rowNum), formula)
	}
	if v, ok := r.FlowMeter.Value(); ok {
		return f.SetCellValue(sheet, cellName(colFlowMeter, rowNum), v)
	}
	return nil
}

func writeSummary(f *excelize.File, sheet string, rowNum, lastSpecial int, row aggregate.Row, st styles) error {
	s := row.Summary

	label, style := summaryLabel(row.Kind, s, st)
	if err := f.SetCellValue(sheet, cellName(1, rowNum), label); err != nil {
		return err
	}

	flowCell := cellName(colFlowMeter, rowNum)
	if row.Kind == aggregate.KindDumpingSummary {
		if err := f.SetCellValue(sheet, flowCell, 0); err != nil {
			return err
		}
	} else {
		formula := fmt.Sprintf("ROUND(SUM(%s:%s),0)", cellName(colFlowMeter, lastSpecial+1), cellName(colFlowMeter, rowNum-1))
		if err := f.SetCellFormula(sheet, flowCell, formula); err != nil {
			return err
		}
	}

	if err := f.SetCellValue(sheet, cellName(colDuration, rowNum), s.Duration); err != nil {
		return err
	}

	return f.SetCellStyle(sheet, cellName(1, rowNum), cellName(len(headers), rowNum), style)
}

func summaryLabel(kind aggregate.Kind, s *aggregate.Summary, st styles) (string, int) {
	switch kind {
	case aggregate.KindStopSummary:
		return "STOP TOTAL", st.stop
	case aggregate.KindDumpingTotal:
		return "TOTAL BEFORE DUMPING " + s.StorageNumber, st.dumping
	case aggregate.KindChangeSummary:
		return "CHANGE TOTAL", st.change
	default:
		return "DUMPING", st.dumping
	}
}

type styles struct {
	header  int
	stop    int
	dumping int
	change  int
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	st.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return st, err
	}

	summary := func(color string) (int, error) {
		return f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
	}

	if st.stop, err = summary("F8CBAD"); err != nil {
		return st, err
	}
	if st.dumping, err = summary("BDD7EE"); err != nil {
		return st, err
	}
	if st.change, err = summary("FFE699"); err != nil {
		return st, err
	}

	return st, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// sheetName: Excel ограничивает имя листа 31 символом и запрещает часть символов.
func sheetName(code string, i int) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, strings.TrimSpace(code))

	if name == "" {
		name = fmt.Sprintf("Customer %d", i+1)
	}
	if len([]rune(name)) > 31 {
		name = string([]rune(name)[:31])
	}
	return name
}
