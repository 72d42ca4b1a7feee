package monitor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gas-monitor/internal/service/aggregate"
	"gas-monitor/internal/storage"
)

const (
	maxFutureSkew = 5 * time.Minute
	maxBackdate   = 24 * time.Hour
)

type ReadingStorage interface {
	ListReadings(ctx context.Context, filter storage.ReadingFilter) ([]storage.Reading, error)
	GetReading(ctx context.Context, id string) (*storage.Reading, error)
	CreateReading(ctx context.Context, r storage.Reading) error
	UpdateReading(ctx context.Context, upd storage.UpdateReading) error
	DeleteReading(ctx context.Context, id string) error
	GetCustomer(ctx context.Context, code string) (*storage.Customer, error)
}

type Service struct {
	storage ReadingStorage
	now     func() time.Time
	loc     *time.Location
}

func NewService(storage ReadingStorage, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{storage: storage, now: time.Now, loc: loc}
}

// ValidationError: ошибка входных данных, отдаётся клиенту как 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

type CustomerRows struct {
	CustomerCode string          `json:"customer_code"`
	Rows         []aggregate.Row `json:"rows"`
}

// Rows fetches the readings and aggregates every customer separately, so a
// block never runs into another customer's readings.
func (s *Service) Rows(ctx context.Context, filter storage.ReadingFilter) ([]CustomerRows, error) {
	const op = "service.monitor.Rows"

	readings, err := s.storage.ListReadings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	groups := partition(readings)
	result := make([]CustomerRows, len(groups))

	var g errgroup.Group
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			rows, err := aggregate.Aggregate(group)
			if err != nil {
				return fmt.Errorf("customer %s: %w", group[0].CustomerCode, err)
			}
			result[i] = CustomerRows{CustomerCode: group[0].CustomerCode, Rows: rows}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// partition группирует показания по заказчику, сохраняя порядок внутри группы.
func partition(readings []storage.Reading) [][]storage.Reading {
	index := make(map[string]int)
	var groups [][]storage.Reading

	for _, r := range readings {
		i, ok := index[r.CustomerCode]
		if !ok {
			i = len(groups)
			index[r.CustomerCode] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a][0].CustomerCode < groups[b][0].CustomerCode
	})

	return groups
}

type NewReading struct {
	RecordedAt           *time.Time            `json:"recorded_at"`
	CustomerCode         string                `json:"customer_code"`
	StorageNumber        string                `json:"storage_number"`
	OperationType        storage.OperationType `json:"operation_type"`
	FixedStorageQuantity int                   `json:"fixed_storage_quantity"`
	PSI                  float64               `json:"psi"`
	Temp                 float64               `json:"temp"`
	PSIOut               float64               `json:"psi_out"`
	FlowTurbine          *float64              `json:"flow_turbine"`
	Remarks              *string               `json:"remarks"`
}

func (s *Service) Record(ctx context.Context, operator storage.Profile, in NewReading) (*storage.Reading, error) {
	const op = "service.monitor.Record"

	now := s.now().In(s.loc)

	recordedAt := now
	if in.RecordedAt != nil {
		recordedAt = in.RecordedAt.In(s.loc)
	}

	if err := validateNew(in, recordedAt, now); err != nil {
		return nil, err
	}

	customer, err := s.storage.GetCustomer(ctx, in.CustomerCode)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, invalid("customer_code", "unknown customer")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !customer.IsActive {
		return nil, invalid("customer_code", "customer is not active")
	}
	if len(customer.Storages) > 0 && !customer.HasStorage(in.StorageNumber) {
		return nil, invalid("storage_number", "storage does not belong to customer")
	}

	r := storage.Reading{
		ID:                   storage.NewReadingID(),
		RecordedAt:           recordedAt,
		CreatedAt:            now,
		CustomerCode:         in.CustomerCode,
		StorageNumber:        strings.TrimSpace(in.StorageNumber),
		OperationType:        in.OperationType,
		FixedStorageQuantity: in.FixedStorageQuantity,
		PSI:                  in.PSI,
		Temp:                 in.Temp,
		PSIOut:               in.PSIOut,
		FlowTurbine:          in.FlowTurbine,
		Remarks:              cleanRemarks(in.Remarks),
		OperatorID:           operator.ID,
		Operator:             operator.DisplayName,
	}

	if err := s.storage.CreateReading(ctx, r); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &r, nil
}

func validateNew(in NewReading, recordedAt, now time.Time) error {
	if strings.TrimSpace(in.CustomerCode) == "" {
		return invalid("customer_code", "required")
	}
	if strings.TrimSpace(in.StorageNumber) == "" {
		return invalid("storage_number", "required")
	}
	if !in.OperationType.Valid() {
		return invalid("operation_type", "must be one of manual, dumping, stop")
	}
	if err := validateNumbers(&in.FixedStorageQuantity, &in.PSI, &in.Temp, &in.PSIOut, in.FlowTurbine); err != nil {
		return err
	}
	if recordedAt.After(now.Add(maxFutureSkew)) {
		return invalid("recorded_at", "is in the future")
	}
	// stop можно проставить задним числом, остальные — не старше суток
	if in.OperationType != storage.OperationStop && recordedAt.Before(now.Add(-maxBackdate)) {
		return invalid("recorded_at", "is too far in the past")
	}
	return nil
}

func validateNumbers(qty *int, psi, temp, psiOut, turbine *float64) error {
	if qty != nil && *qty < 0 {
		return invalid("fixed_storage_quantity", "must not be negative")
	}
	for _, f := range []struct {
		name     string
		v        *float64
		negative bool
	}{
		{"psi", psi, false},
		{"temp", temp, true},
		{"psi_out", psiOut, false},
		{"flow_turbine", turbine, false},
	} {
		if f.v == nil {
			continue
		}
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) {
			return invalid(f.name, "must be a number")
		}
		if !f.negative && *f.v < 0 {
			return invalid(f.name, "must not be negative")
		}
	}
	return nil
}

func cleanRemarks(remarks *string) *string {
	if remarks == nil {
		return nil
	}
	v := strings.TrimSpace(*remarks)
	if v == "" {
		return nil
	}
	return &v
}

func (s *Service) Get(ctx context.Context, id string) (*storage.Reading, error) {
	const op = "service.monitor.Get"

	if !storage.ValidReadingID(id) {
		return nil, invalid("id", "must be a uuid")
	}

	r, err := s.storage.GetReading(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

func (s *Service) Update(ctx context.Context, upd storage.UpdateReading) error {
	const op = "service.monitor.Update"

	if !storage.ValidReadingID(upd.ID) {
		return invalid("id", "must be a uuid")
	}
	if upd.OperationType != nil && !upd.OperationType.Valid() {
		return invalid("operation_type", "must be one of manual, dumping, stop")
	}
	if upd.StorageNumber != nil && strings.TrimSpace(*upd.StorageNumber) == "" {
		return invalid("storage_number", "required")
	}
	if upd.RecordedAt != nil && upd.RecordedAt.IsZero() {
		return invalid("recorded_at", "required")
	}
	if err := validateNumbers(upd.FixedStorageQuantity, upd.PSI, upd.Temp, upd.PSIOut, upd.FlowTurbine); err != nil {
		return err
	}

	if err := s.storage.UpdateReading(ctx, upd); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "service.monitor.Delete"

	if !storage.ValidReadingID(id) {
		return invalid("id", "must be a uuid")
	}
	if err := s.storage.DeleteReading(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
