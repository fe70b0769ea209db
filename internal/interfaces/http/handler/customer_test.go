package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	customerapp "github.com/microfinance/backend/internal/application/customer"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/microfinance/backend/internal/interfaces/http/dto"
	"github.com/microfinance/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCustomerHandler() (*gin.Engine, *mockCustomerService, *mockLifecycleService) {
	customers := &mockCustomerService{}
	lifecycle := &mockLifecycleService{}
	h := NewCustomerHandler(customers, lifecycle)

	engine := newEngine()
	engine.POST("/customers", h.Create)
	engine.GET("/customers", h.List)
	engine.GET("/customers/:id", h.Get)
	engine.PUT("/customers/:id", h.Update)
	engine.POST("/customers/:id/commands", h.ExecuteCommand)
	engine.GET("/customers/:id/commands", h.ListCommands)
	engine.GET("/customers/:id/actions", h.AvailableActions)
	return engine, customers, lifecycle
}

func validCreateCustomerBody() map[string]any {
	return map[string]any{
		"identifier": "C-100",
		"given_name": "Ada",
		"surname":    "Lovelace",
		"contact_details": []map[string]any{
			{"type": "EMAIL", "group": "PRIVATE", "value": "ada@example.com"},
		},
	}
}

func TestCustomerHandler_Create(t *testing.T) {
	engine, customers, _ := setupCustomerHandler()
	customers.On("Create", mock.Anything, testTenant, testActor, mock.MatchedBy(func(req customerapp.CreateCustomerRequest) bool {
		return req.Identifier == "C-100" && req.GivenName == "Ada" && len(req.ContactDetails) == 1
	})).Return(&customerapp.CustomerResponse{Identifier: "C-100", CurrentState: string(customer.StatePending)}, nil)

	w := testutil.Request(t, engine, http.MethodPost, "/customers", validCreateCustomerBody(), identityHeaders()...)

	testutil.AssertStatus(t, w, http.StatusAccepted)
	resp := testutil.DecodeData[customerapp.CustomerResponse](t, w)
	assert.Equal(t, "C-100", resp.Identifier)
	assert.Equal(t, "PENDING", resp.CurrentState)
	customers.AssertExpectations(t)
}

func TestCustomerHandler_CreateValidation(t *testing.T) {
	engine, customers, _ := setupCustomerHandler()

	body := validCreateCustomerBody()
	delete(body, "surname")
	body["contact_details"] = []map[string]any{{"type": "FAX", "group": "PRIVATE", "value": "1"}}

	w := testutil.Request(t, engine, http.MethodPost, "/customers", body, identityHeaders()...)

	testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	assert.Contains(t, w.Body.String(), "surname")
	assert.Contains(t, w.Body.String(), "contact_details[0].type")
	customers.AssertNotCalled(t, "Create")
}

func TestCustomerHandler_CreateDuplicate(t *testing.T) {
	engine, customers, _ := setupCustomerHandler()
	customers.On("Create", mock.Anything, testTenant, testActor, mock.Anything).
		Return(nil, shared.AlreadyExists("customer", "C-100"))

	w := testutil.Request(t, engine, http.MethodPost, "/customers", validCreateCustomerBody(), identityHeaders()...)

	testutil.AssertErrorCode(t, w, http.StatusConflict, dto.ErrCodeAlreadyExists)
}

func TestCustomerHandler_RequiresTenant(t *testing.T) {
	engine, customers, _ := setupCustomerHandler()

	w := testutil.Request(t, engine, http.MethodGet, "/customers/C-100", nil)

	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, dto.ErrCodeTenantMissing)
	customers.AssertNotCalled(t, "Get")
}

func TestCustomerHandler_Get(t *testing.T) {
	engine, customers, _ := setupCustomerHandler()
	customers.On("Get", mock.Anything, testTenant, "C-100").
		Return(&customerapp.CustomerResponse{Identifier: "C-100", CurrentState: "ACTIVE"}, nil)
	customers.On("Get", mock.Anything, testTenant, "missing").
		Return(nil, shared.NotFound("customer", "missing"))

	w := testutil.Request(t, engine, http.MethodGet, "/customers/C-100", nil, identityHeaders()...)
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Equal(t, "ACTIVE", testutil.DecodeData[customerapp.CustomerResponse](t, w).CurrentState)

	w = testutil.Request(t, engine, http.MethodGet, "/customers/missing", nil, identityHeaders()...)
	testutil.AssertErrorCode(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestCustomerHandler_List(t *testing.T) {
	engine, customers, _ := setupCustomerHandler()
	expected := customerapp.CustomerListFilter{
		Term:          "love",
		IncludeClosed: true,
		PageIndex:     1,
		Size:          10,
		SortColumn:    "surname",
		SortDirection: "ASC",
	}
	customers.On("List", mock.Anything, testTenant, expected).
		Return([]customerapp.CustomerResponse{{Identifier: "C-100"}}, int64(11), nil)

	w := testutil.Request(t, engine, http.MethodGet,
		"/customers?term=love&includeClosed=true&pageIndex=1&size=10&sortColumn=surname&sortDirection=ASC",
		nil, identityHeaders()...)

	testutil.AssertStatus(t, w, http.StatusOK)
	env := testutil.DecodeEnvelope(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(11), env.Meta.Total)
	assert.Equal(t, 1, env.Meta.Page)
	assert.Equal(t, 10, env.Meta.PageSize)
	assert.Equal(t, 2, env.Meta.TotalPages)
}

func TestCustomerHandler_ListRejectsUnknownSortColumn(t *testing.T) {
	engine, customers, _ := setupCustomerHandler()

	w := testutil.Request(t, engine, http.MethodGet, "/customers?sortColumn=password", nil, identityHeaders()...)

	testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	customers.AssertNotCalled(t, "List")
}

func TestCustomerHandler_Update(t *testing.T) {
	engine, customers, _ := setupCustomerHandler()
	customers.On("Update", mock.Anything, testTenant, "C-100", testActor, mock.MatchedBy(func(req customerapp.UpdateCustomerRequest) bool {
		return req.Surname == "Byron"
	})).Return(&customerapp.CustomerResponse{Identifier: "C-100", Surname: "Byron"}, nil)

	body := map[string]any{"given_name": "Ada", "surname": "Byron"}
	w := testutil.Request(t, engine, http.MethodPut, "/customers/C-100", body, identityHeaders()...)

	testutil.AssertStatus(t, w, http.StatusAccepted)
	assert.Equal(t, "Byron", testutil.DecodeData[customerapp.CustomerResponse](t, w).Surname)
}

func TestCustomerHandler_ExecuteCommand(t *testing.T) {
	engine, _, lifecycle := setupCustomerHandler()
	lifecycle.On("ExecuteCommand", mock.Anything, testTenant, "C-100", testActor,
		customerapp.ExecuteCommandRequest{Action: "activate", Comment: "kyc done"}).
		Return(&customerapp.CommandResult{Identifier: "C-100", Action: "ACTIVATE", FromState: "PENDING", CurrentState: "ACTIVE"}, nil)

	body := map[string]string{"action": "activate", "comment": "kyc done"}
	w := testutil.Request(t, engine, http.MethodPost, "/customers/C-100/commands", body, identityHeaders()...)

	testutil.AssertStatus(t, w, http.StatusAccepted)
	result := testutil.DecodeData[customerapp.CommandResult](t, w)
	assert.Equal(t, "ACTIVE", result.CurrentState)
	assert.Equal(t, "PENDING", result.FromState)
}

func TestCustomerHandler_ExecuteCommandErrors(t *testing.T) {
	tests := []struct {
		name       string
		action     string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unknown action is a validation error", "DELETE", nil, http.StatusBadRequest, dto.ErrCodeValidation},
		{"illegal transition", "LOCK", shared.NewDomainError(customer.CodeIllegalTransition, "cannot LOCK a PENDING customer"), http.StatusBadRequest, dto.ErrCodeIllegalTransition},
		{"open mandatory tasks", "ACTIVATE", shared.NewDomainError(customer.CodeOpenMandatoryTasks, "open tasks"), http.StatusConflict, dto.ErrCodeOpenMandatoryTasks},
		{"unknown customer", "CLOSE", shared.NotFound("customer", "C-100"), http.StatusNotFound, dto.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _, lifecycle := setupCustomerHandler()
			if tt.err != nil {
				lifecycle.On("ExecuteCommand", mock.Anything, testTenant, "C-100", testActor, mock.Anything).Return(nil, tt.err)
			}

			w := testutil.Request(t, engine, http.MethodPost, "/customers/C-100/commands",
				map[string]string{"action": tt.action}, identityHeaders()...)

			testutil.AssertErrorCode(t, w, tt.wantStatus, tt.wantCode)
			if tt.err == nil {
				lifecycle.AssertNotCalled(t, "ExecuteCommand")
			}
		})
	}
}

func TestCustomerHandler_ListCommands(t *testing.T) {
	engine, _, lifecycle := setupCustomerHandler()
	lifecycle.On("ListCommands", mock.Anything, testTenant, "C-100").
		Return([]customerapp.CommandResponse{{Action: "ACTIVATE"}, {Action: "LOCK"}}, nil)

	w := testutil.Request(t, engine, http.MethodGet, "/customers/C-100/commands", nil, identityHeaders()...)

	testutil.AssertStatus(t, w, http.StatusOK)
	cmds := testutil.DecodeData[[]customerapp.CommandResponse](t, w)
	require.Len(t, cmds, 2)
	assert.Equal(t, "LOCK", cmds[1].Action)
}

func TestCustomerHandler_AvailableActions(t *testing.T) {
	engine, _, lifecycle := setupCustomerHandler()
	lifecycle.On("AvailableActions", mock.Anything, testTenant, "C-100").Return([]string{"LOCK", "CLOSE"}, nil)

	w := testutil.Request(t, engine, http.MethodGet, "/customers/C-100/actions", nil, identityHeaders()...)

	testutil.AssertStatus(t, w, http.StatusOK)
	data := testutil.DecodeData[AvailableActionsData](t, w)
	assert.Equal(t, "C-100", data.Identifier)
	assert.Equal(t, []string{"LOCK", "CLOSE"}, data.Actions)
}
