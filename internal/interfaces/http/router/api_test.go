package router

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	customerapp "github.com/microfinance/backend/internal/application/customer"
	documentapp "github.com/microfinance/backend/internal/application/document"
	taskapp "github.com/microfinance/backend/internal/application/task"
	"github.com/microfinance/backend/internal/infrastructure/auth"
	"github.com/microfinance/backend/internal/infrastructure/config"
	"github.com/microfinance/backend/internal/infrastructure/event"
	"github.com/microfinance/backend/internal/infrastructure/persistence"
	"github.com/microfinance/backend/internal/infrastructure/persistence/models"
	"github.com/microfinance/backend/internal/interfaces/http/dto"
	"github.com/microfinance/backend/internal/interfaces/http/handler"
	"github.com/microfinance/backend/internal/interfaces/http/middleware"
	"github.com/microfinance/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gorm.io/gorm"
)

var pngPage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Name: "microfinance-test"},
		HTTP:      config.HTTPConfig{MaxBodySize: 64 << 10},
		Documents: config.DocumentsConfig{MaxPageSize: 1 << 20},
		Telemetry: config.TelemetryConfig{ServiceName: "microfinance-test"},
	}
}

func newHandlers(db *gorm.DB) Handlers {
	u := persistence.NewGormUnitOfWork(db, event.NewOutboxPublisher(event.NewRegisteredSerializer()))
	engine := taskapp.NewGatingEngine()

	return Handlers{
		Customers: handler.NewCustomerHandler(
			customerapp.NewCustomerService(u, engine, nil),
			customerapp.NewLifecycleService(u, engine, nil, nil),
		),
		Cards: handler.NewIdentificationCardHandler(customerapp.NewIdentificationCardService(u)),
		Tasks: handler.NewTaskHandler(taskapp.NewTaskService(u, engine, nil)),
		Documents: handler.NewDocumentHandler(documentapp.NewDocumentService(
			u, persistence.NewGormImageStore(db), documentapp.DefaultUploadLimits(), nil,
		)),
		Health: handler.NewHealthHandler("microfinance-test", "test", nil),
	}
}

func newAPI(t *testing.T, cfg *config.Config, opts ...func(*Options)) *gin.Engine {
	t.Helper()

	db := testutil.NewSQLiteDB(t, models.All()...)
	o := Options{Config: cfg, Handlers: newHandlers(db)}
	for _, opt := range opts {
		opt(&o)
	}
	engine, err := New(o)
	require.NoError(t, err)
	return engine
}

func headersFor(tenantID, userID uuid.UUID, extra ...string) []string {
	return append([]string{
		middleware.TenantHeaderKey, tenantID.String(),
		middleware.UserHeaderKey, userID.String(),
	}, extra...)
}

func TestAPI_Routes(t *testing.T) {
	engine := newAPI(t, testConfig())

	registered := map[string]bool{}
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"POST /api/v1/customers",
		"GET /api/v1/customers",
		"GET /api/v1/customers/:id",
		"PUT /api/v1/customers/:id",
		"POST /api/v1/customers/:id/commands",
		"GET /api/v1/customers/:id/commands",
		"GET /api/v1/customers/:id/actions",
		"POST /api/v1/customers/:id/identifications",
		"DELETE /api/v1/customers/:id/identifications/:number",
		"GET /api/v1/customers/:id/tasks",
		"PUT /api/v1/customers/:id/tasks/:taskId",
		"POST /api/v1/customers/:id/documents",
		"POST /api/v1/customers/:id/documents/:docId/pages/:page",
		"POST /api/v1/customers/:id/documents/:docId/completed",
		"POST /api/v1/tasks",
		"PUT /api/v1/tasks/:id",
	} {
		assert.True(t, registered[want], "route %s not registered", want)
	}
}

func TestAPI_HealthNeedsNoIdentity(t *testing.T) {
	engine := newAPI(t, testConfig())

	w := testutil.Request(t, engine, http.MethodGet, "/health", nil)

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAPI_RequiresTenantHeader(t *testing.T) {
	engine := newAPI(t, testConfig())

	w := testutil.Request(t, engine, http.MethodGet, "/api/v1/customers", nil)

	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, dto.ErrCodeTenantMissing)
}

func TestAPI_JWTIdentity(t *testing.T) {
	cfg := testConfig()
	cfg.JWT = config.JWTConfig{Enabled: true, Secret: "api-test-secret-at-least-32-characters", Issuer: "microfinance"}
	jwtService := auth.NewJWTService(cfg.JWT)
	engine := newAPI(t, cfg, func(o *Options) { o.JWT = jwtService })

	w := testutil.Request(t, engine, http.MethodGet, "/api/v1/customers", nil,
		middleware.TenantHeaderKey, uuid.NewString())
	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)

	token, err := jwtService.IssueToken(uuid.New(), uuid.New(), "officer", time.Minute)
	require.NoError(t, err)
	w = testutil.Request(t, engine, http.MethodGet, "/api/v1/customers", nil,
		middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestAPI_BodyLimit(t *testing.T) {
	engine := newAPI(t, testConfig())
	body := `{"identifier":"C-1","given_name":"` + strings.Repeat("x", 70<<10) + `","surname":"y"}`

	w := testutil.Request(t, engine, http.MethodPost, "/api/v1/customers", strings.NewReader(body),
		headersFor(uuid.New(), uuid.New(), "Content-Type", "application/json")...)

	testutil.AssertErrorCode(t, w, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge)
}

func TestAPI_RecordsHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	engine := newAPI(t, testConfig(), func(o *Options) { o.Meter = provider.Meter("api-test") })

	w := testutil.Request(t, engine, http.MethodGet, "/api/v1/tasks", nil, headersFor(uuid.New(), uuid.New())...)
	testutil.AssertStatus(t, w, http.StatusOK)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var names []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names = append(names, m.Name)
		}
	}
	assert.Contains(t, names, "http_server_request_total")
}

// Scenario: a mandatory ID_CARD task attached before activation blocks
// ACTIVATE until an identification card exists and the task is executed.
func TestAPI_ActivationGatedByIdentificationTask(t *testing.T) {
	engine := newAPI(t, testConfig())
	tenantID, officer := uuid.New(), uuid.New()
	h := headersFor(tenantID, officer)

	w := testutil.Request(t, engine, http.MethodPost, "/api/v1/tasks", map[string]any{
		"identifier":        "kyc",
		"type":              "ID_CARD",
		"name":              "Verify identity",
		"assigned_commands": []string{"ACTIVATE"},
		"mandatory":         true,
	}, h...)
	testutil.AssertStatus(t, w, http.StatusAccepted)

	w = testutil.Request(t, engine, http.MethodPost, "/api/v1/customers", map[string]any{
		"identifier": "C1",
		"given_name": "Ada",
		"surname":    "Lovelace",
	}, h...)
	testutil.AssertStatus(t, w, http.StatusAccepted)
	assert.Equal(t, "PENDING", testutil.DecodeData[customerapp.CustomerResponse](t, w).CurrentState)

	w = testutil.Request(t, engine, http.MethodPost, "/api/v1/customers/C1/tasks/kyc", nil, h...)
	testutil.AssertStatus(t, w, http.StatusAccepted)

	w = testutil.Request(t, engine, http.MethodGet, "/api/v1/customers/C1/actions", nil, h...)
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.NotContains(t, testutil.DecodeData[handler.AvailableActionsData](t, w).Actions, "ACTIVATE")

	w = testutil.Request(t, engine, http.MethodPost, "/api/v1/customers/C1/commands", map[string]string{"action": "ACTIVATE"}, h...)
	testutil.AssertErrorCode(t, w, http.StatusConflict, dto.ErrCodeOpenMandatoryTasks)

	w = testutil.Request(t, engine, http.MethodPut, "/api/v1/customers/C1/tasks/kyc", map[string]string{"action": "EXECUTE"}, h...)
	testutil.AssertErrorCode(t, w, http.StatusConflict, dto.ErrCodeTaskPreconditionFailed)

	w = testutil.Request(t, engine, http.MethodPost, "/api/v1/customers/C1/identifications", map[string]any{
		"number":          "P-1",
		"type":            "PASSPORT",
		"expiration_date": time.Now().AddDate(2, 0, 0).UTC(),
	}, h...)
	testutil.AssertStatus(t, w, http.StatusAccepted)

	w = testutil.Request(t, engine, http.MethodPut, "/api/v1/customers/C1/tasks/kyc", map[string]string{"action": "EXECUTE"}, h...)
	testutil.AssertStatus(t, w, http.StatusAccepted)

	w = testutil.Request(t, engine, http.MethodPost, "/api/v1/customers/C1/commands", map[string]string{"action": "ACTIVATE"}, h...)
	testutil.AssertStatus(t, w, http.StatusAccepted)

	w = testutil.Request(t, engine, http.MethodGet, "/api/v1/customers/C1", nil, h...)
	assert.Equal(t, "ACTIVE", testutil.DecodeData[customerapp.CustomerResponse](t, w).CurrentState)

	w = testutil.Request(t, engine, http.MethodGet, "/api/v1/customers/C1/commands", nil, h...)
	cmds := testutil.DecodeData[[]customerapp.CommandResponse](t, w)
	require.Len(t, cmds, 1)
	assert.Equal(t, "ACTIVATE", cmds[0].Action)

	w = testutil.Request(t, engine, http.MethodPost, "/api/v1/customers/C1/commands", map[string]string{"action": "REOPEN"}, h...)
	testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeIllegalTransition)

	// another tenant cannot see C1
	w = testutil.Request(t, engine, http.MethodGet, "/api/v1/customers/C1", nil, headersFor(uuid.New(), officer)...)
	testutil.AssertErrorCode(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestAPI_DocumentCompletion(t *testing.T) {
	engine := newAPI(t, testConfig())
	h := headersFor(uuid.New(), uuid.New())

	w := testutil.Request(t, engine, http.MethodPost, "/api/v1/customers", map[string]any{
		"identifier": "C2", "given_name": "Grace", "surname": "Hopper",
	}, h...)
	testutil.AssertStatus(t, w, http.StatusAccepted)

	w = testutil.Request(t, engine, http.MethodPost, "/api/v1/customers/C2/documents", map[string]string{"identifier": "D1"}, h...)
	testutil.AssertStatus(t, w, http.StatusAccepted)

	const pages = "/api/v1/customers/C2/documents/D1/pages/"
	w = testutil.Request(t, engine, http.MethodPost, pages+"1", bytes.NewReader(pngPage), append(h, "Content-Type", "image/png")...)
	testutil.AssertStatus(t, w, http.StatusAccepted)

	w = testutil.Request(t, engine, http.MethodPost, "/api/v1/customers/C2/documents/D1/completed", map[string]bool{"completed": true}, h...)
	testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeMissingPages)

	w = testutil.Request(t, engine, http.MethodPost, pages+"0", bytes.NewReader(pngPage), append(h, "Content-Type", "image/png")...)
	testutil.AssertStatus(t, w, http.StatusAccepted)

	w = testutil.Request(t, engine, http.MethodPost, "/api/v1/customers/C2/documents/D1/completed", map[string]bool{"completed": true}, h...)
	testutil.AssertStatus(t, w, http.StatusAccepted)
	assert.True(t, testutil.DecodeData[documentapp.DocumentResponse](t, w).Completed)

	w = testutil.Request(t, engine, http.MethodGet, pages+"0", nil, h...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngPage, w.Body.Bytes())

	w = testutil.Request(t, engine, http.MethodDelete, pages+"1", nil, h...)
	testutil.AssertErrorCode(t, w, http.StatusConflict, dto.ErrCodeDocumentCompleted)
}
