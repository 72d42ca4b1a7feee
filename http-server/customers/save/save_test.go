package save

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gas-monitor/internal/storage"
)

type MockCustomerCreateProvider struct {
	mock.Mock
}

func (m *MockCustomerCreateProvider) CreateCustomer(ctx context.Context, c storage.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func post(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/customers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSaveCustomerAdmin_Success(t *testing.T) {
	provider := new(MockCustomerCreateProvider)
	provider.On("CreateCustomer", mock.Anything, storage.Customer{
		Code:     "C9",
		Name:     "Northwind LPG",
		IsActive: true,
		Storages: []string{},
	}).Return(nil)

	rr := httptest.NewRecorder()
	SaveCustomerAdmin(slog.Default(), provider).ServeHTTP(rr, post(`{"code":" C9 ","name":"Northwind LPG","is_active":true}`))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "created")
	provider.AssertExpectations(t)
}

func TestSaveCustomerAdmin_Validation(t *testing.T) {
	provider := new(MockCustomerCreateProvider)

	for _, body := range []string{`{`, `{"name":"No code"}`, `{"code":"C1","name":"  "}`} {
		rr := httptest.NewRecorder()
		SaveCustomerAdmin(slog.Default(), provider).ServeHTTP(rr, post(body))
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}

	provider.AssertNotCalled(t, "CreateCustomer")
}

func TestSaveCustomerAdmin_Duplicate(t *testing.T) {
	provider := new(MockCustomerCreateProvider)
	provider.On("CreateCustomer", mock.Anything, mock.Anything).Return(storage.ErrDuplicate)

	rr := httptest.NewRecorder()
	SaveCustomerAdmin(slog.Default(), provider).ServeHTTP(rr, post(`{"code":"C1","name":"Alpha"}`))

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestSaveCustomerAdmin_ProviderError(t *testing.T) {
	provider := new(MockCustomerCreateProvider)
	provider.On("CreateCustomer", mock.Anything, mock.Anything).Return(errors.New("timeout"))

	rr := httptest.NewRecorder()
	SaveCustomerAdmin(slog.Default(), provider).ServeHTTP(rr, post(`{"code":"C1","name":"Alpha"}`))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "ошибка создания заказчика")
}
