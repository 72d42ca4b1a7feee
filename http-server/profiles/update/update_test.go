package update

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

type MockProfileUpdateProvider struct {
	mock.Mock
}

func (m *MockProfileUpdateProvider) UpdateProfiles(ctx context.Context, profiles []storage.Profile) error {
	return m.Called(ctx, profiles).Error(0)
}

func put(provider ProfileUpdateProvider, body string) int {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/admin/profiles/update", strings.NewReader(body))
	UpdateProfilesAdmin(slog.Default(), provider).ServeHTTP(rr, req)
	return rr.Code
}

func TestUpdateProfilesAdmin_Success(t *testing.T) {
	provider := new(MockProfileUpdateProvider)
	provider.On("UpdateProfiles", mock.Anything, []storage.Profile{
		{ID: "p1", DisplayName: "Ana R.", Role: storage.RoleOperator, IsActive: true},
		{ID: "p2", DisplayName: "Ben", Role: storage.RoleAdmin, IsActive: false},
	}).Return(nil)

	code := put(provider, `[
		{"id":"p1","display_name":"Ana R.","role":"operator","is_active":true},
		{"id":"p2","display_name":"Ben","role":"admin","is_active":false}
	]`)

	assert.Equal(t, http.StatusOK, code)
	provider.AssertExpectations(t)
}

func TestUpdateProfilesAdmin_BadInput(t *testing.T) {
	provider := new(MockProfileUpdateProvider)

	assert.Equal(t, http.StatusBadRequest, put(provider, `{"id":"p1"}`))
	assert.Equal(t, http.StatusBadRequest, put(provider, `[{"display_name":"no id","role":"operator"}]`))
	assert.Equal(t, http.StatusBadRequest, put(provider, `[{"id":"p1","role":"root"}]`))

	provider.AssertNotCalled(t, "UpdateProfiles")
}

func TestUpdateProfilesAdmin_StorageErrors(t *testing.T) {
	notFound := new(MockProfileUpdateProvider)
	notFound.On("UpdateProfiles", mock.Anything, mock.Anything).Return(storage.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, put(notFound, `[{"id":"p9","role":"operator"}]`))

	failing := new(MockProfileUpdateProvider)
	failing.On("UpdateProfiles", mock.Anything, mock.Anything).Return(errors.New("tx aborted"))
	assert.Equal(t, http.StatusInternalServerError, put(failing, `[{"id":"p1","role":"operator"}]`))
}
