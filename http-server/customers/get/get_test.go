package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gas-monitor/internal/storage"
)

type MockCustomerLister struct {
	mock.Mock
}

func (m *MockCustomerLister) ListCustomers(ctx context.Context, onlyActive bool) ([]*storage.Customer, error) {
	args := m.Called(ctx, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.Customer), args.Error(1)
}

func TestGetCustomers_OnlyActive(t *testing.T) {
	lister := new(MockCustomerLister)
	lister.On("ListCustomers", mock.Anything, true).Return([]*storage.Customer{
		{Code: "C1", Name: "Alpha Gas", IsActive: true, Storages: []string{"S1"}},
	}, nil)

	rr := httptest.NewRecorder()
	GetCustomers(slog.Default(), lister).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/customers", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var resp []storage.Customer
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, []string{"S1"}, resp[0].Storages)

	lister.AssertExpectations(t)
}

func TestGetAllCustomersAdmin(t *testing.T) {
	lister := new(MockCustomerLister)
	lister.On("ListCustomers", mock.Anything, false).Return([]*storage.Customer{}, nil)

	rr := httptest.NewRecorder()
	GetAllCustomersAdmin(slog.Default(), lister).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/customers", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	lister.AssertExpectations(t)
}

func TestGetCustomers_Error(t *testing.T) {
	lister := new(MockCustomerLister)
	lister.On("ListCustomers", mock.Anything, true).Return(nil, errors.New("db down"))

	rr := httptest.NewRecorder()
	GetCustomers(slog.Default(), lister).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/customers", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
