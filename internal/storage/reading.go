package storage

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type OperationType string

const (
	OperationManual  OperationType = "manual"
	OperationDumping OperationType = "dumping"
	OperationStop    OperationType = "stop"
)

func (t OperationType) Valid() bool {
	switch t {
	case OperationManual, OperationDumping, OperationStop:
		return true
	}
	return false
}

// Reading: одно измерение по хранилищу заказчика.
type Reading struct {
	ID                   string        `json:"id"`
	RecordedAt           time.Time     `json:"recorded_at"`
	CreatedAt            time.Time     `json:"created_at"`
	CustomerCode         string        `json:"customer_code"`
	StorageNumber        string        `json:"storage_number"`
	OperationType        OperationType `json:"operation_type"`
	FixedStorageQuantity int           `json:"fixed_storage_quantity"`
	PSI                  float64       `json:"psi"`
	Temp                 float64       `json:"temp"`
	PSIOut               float64       `json:"psi_out"`
	FlowTurbine          *float64      `json:"flow_turbine"` // nil — счётчик не снят
	Remarks              *string       `json:"remarks"`
	OperatorID           string        `json:"operator_id"`
	Operator             string        `json:"operator"`
}

// ReadingFilter: пустые поля не ограничивают выборку, To не включается.
type ReadingFilter struct {
	CustomerCodes []string
	From          time.Time
	To            time.Time
	Search        string
}

type UpdateReading struct {
	ID                   string         `json:"id"`
	RecordedAt           *time.Time     `json:"recorded_at"`
	StorageNumber        *string        `json:"storage_number"`
	OperationType        *OperationType `json:"operation_type"`
	FixedStorageQuantity *int           `json:"fixed_storage_quantity"`
	PSI                  *float64       `json:"psi"`
	Temp                 *float64       `json:"temp"`
	PSIOut               *float64       `json:"psi_out"`
	FlowTurbine          *float64       `json:"flow_turbine"`
	Remarks              *string        `json:"remarks"`
}

func NewReadingID() string {
	return uuid.NewString()
}

func ValidReadingID(id string) bool {
	return uuid.Validate(id) == nil
}

// LikeEscape — символ экранирования для LikePattern, одинаковый для MySQL, Postgres и sqlite.
const LikeEscape = "!"

// LikePattern строит шаблон %term% для LIKE ... ESCAPE '!', чтобы введённые
// пользователем % и _ искались буквально.
func LikePattern(term string) string {
	r := strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")
	return "%" + r.Replace(term) + "%"
}
