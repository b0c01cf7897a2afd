package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "empower-pay/internal/adapter/http/handler"
	redisStorage "empower-pay/internal/adapter/storage/redis"
	"empower-pay/internal/service"
	"empower-pay/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds a full application stack with in-memory repos connected via
// in-memory Redis (miniredis). This exercises the real HTTP layer,
// middleware, handlers, services, and Redis stores end-to-end.

const testAdminPassword = "test-admin-secret"

type testApp struct {
	server       *httptest.Server
	redis        *miniredis.Miniredis
	merchantRepo *inMemoryMerchantRepo
	txRepo       *inMemoryTransactionRepo
	ticketRepo   *inMemoryTicketRepo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	// Start miniredis
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	// Redis stores
	statsCache := redisStorage.NewStatsCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Core services with real implementations
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")

	// In-memory repos
	merchantRepo := newInMemoryMerchantRepo()
	txRepo := newInMemoryTransactionRepo()
	ticketRepo := newInMemoryTicketRepo()
	auditRepo := newInMemoryAuditRepo()
	transactor := newInMemoryTransactor()

	// Business services
	log := logger.New("debug", false)
	rate := decimal.RequireFromString("0.01")
	authSvc := service.NewAuthService(merchantRepo, hashSvc, tokenSvc, "+233", log)
	ledgerSvc := service.NewLedgerService(merchantRepo, txRepo, ticketRepo, transactor, statsCache, rate, log)
	reportingSvc := service.NewReportingService(merchantRepo, txRepo, ticketRepo, statsCache, log)
	ticketSvc := service.NewTicketService(ticketRepo, merchantRepo, log)
	auditSvc := service.NewAuditService(auditRepo, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		LedgerSvc:      ledgerSvc,
		ReportingSvc:   reportingSvc,
		TicketSvc:      ticketSvc,
		TokenSvc:       tokenSvc,
		AdminPassword:  testAdminPassword,
		RateLimitStore: rateLimitStore,
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server:       server,
		redis:        mr,
		merchantRepo: merchantRepo,
		txRepo:       txRepo,
		ticketRepo:   ticketRepo,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_RegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	// Register
	resp := app.register(t, "+233241112233", "Adwoa Provisions")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var regResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&regResp))
	data := regResp["data"].(map[string]interface{})
	assert.NotEmpty(t, data["merchant_id"])
	assert.Equal(t, "+233241112233", data["business_phone"])

	// Login
	loginBody, _ := json.Marshal(map[string]string{
		"business_phone": "+233241112233",
		"password":       "StrongPass123!",
	})
	resp2, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp2.Body.Close()

	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	var loginResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&loginResp))
	loginData := loginResp["data"].(map[string]interface{})
	assert.NotEmpty(t, loginData["token"])
}

func TestIntegration_DuplicatePhone(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp := app.register(t, "+233241112233", "Adwoa Provisions")
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Same phone again
	resp2 := app.register(t, "+233241112233", "Copycat Ventures")
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)

	var errResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&errResp))
	assert.Equal(t, "LEDG_004", errResp["error_code"])
}

func TestIntegration_LoginWrongCredentials(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	loginBody, _ := json.Marshal(map[string]string{
		"business_phone": "+233200000000",
		"password":       "wrong",
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var errResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "AUTH_001", errResp["error_code"])
}

func TestIntegration_PaymentEndToEnd(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.registerAndLogin(t, "+233241112233", "Adwoa Provisions")

	// Record a payment of GHS 250
	payBody, _ := json.Marshal(map[string]interface{}{
		"customer_name":   "Kofi Boateng",
		"customer_number": "+233209998877",
		"network":         "MTN",
		"amount":          250,
	})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/payments", bytes.NewReader(payBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "payment response: %s", string(bodyBytes))

	var payResp map[string]interface{}
	require.NoError(t, json.Unmarshal(bodyBytes, &payResp))
	payData := payResp["data"].(map[string]interface{})
	assert.Regexp(t, `^KS1-\d{3}-\d{3}$`, payData["transaction_id"])
	assert.Equal(t, "250", payData["amount"])
	assert.Equal(t, "2.5", payData["commission"])
	assert.Equal(t, "247.5", payData["net_to_merchant"])
	assert.Equal(t, "Adwoa Provisions", payData["business_name"])

	// The ledger shows it
	ledgerReq, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/ledger", nil)
	ledgerReq.Header.Set("Authorization", "Bearer "+token)
	ledgerResp, err := http.DefaultClient.Do(ledgerReq)
	require.NoError(t, err)
	defer ledgerResp.Body.Close()

	var ledger map[string]interface{}
	require.NoError(t, json.NewDecoder(ledgerResp.Body).Decode(&ledger))
	ledgerData := ledger["data"].(map[string]interface{})
	assert.Equal(t, float64(1), ledgerData["count"])

	// The cached aggregates agree with the ledger
	check := app.verifyAggregates(t, "+233241112233")
	assert.Equal(t, true, check["consistent"])
	assert.Equal(t, float64(1), check["cached_count"])
	assert.Equal(t, "250", check["cached_volume"])
}

func TestIntegration_ResetCodeSingleUse(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.registerAndLogin(t, "+233241112233", "Adwoa Provisions")

	// Admin issues a reset code
	issueBody, _ := json.Marshal(map[string]string{"business_phone": "+233241112233"})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/admin/reset-codes", bytes.NewReader(issueBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Password", testAdminPassword)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var issueResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&issueResp))
	code := issueResp["data"].(map[string]interface{})["code"].(string)
	assert.Regexp(t, `^KS1-\d{3}-\d{3}$`, code)

	// Redeem the code
	resetBody, _ := json.Marshal(map[string]string{
		"business_phone": "+233241112233",
		"code":           code,
		"new_password":   "EvenStronger456!",
	})
	resp2, err := http.Post(app.server.URL+"/api/v1/auth/reset-password", "application/json", bytes.NewReader(resetBody))
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	// Second redemption fails: the code is consumed
	resp3, err := http.Post(app.server.URL+"/api/v1/auth/reset-password", "application/json", bytes.NewReader(resetBody))
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp3.StatusCode)

	// The new password works
	loginBody, _ := json.Marshal(map[string]string{
		"business_phone": "+233241112233",
		"password":       "EvenStronger456!",
	})
	resp4, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp4.Body.Close()
	assert.Equal(t, http.StatusOK, resp4.StatusCode)
}

func TestIntegration_DisputeRoundTrip(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.registerAndLogin(t, "+233241112233", "Adwoa Provisions")
	txID := app.recordPayment(t, token, 120)

	// Flag
	flagBody, _ := json.Marshal(map[string]string{"notes": "Customer claims double charge"})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/admin/transactions/"+txID+"/dispute", bytes.NewReader(flagBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Password", testAdminPassword)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	flagged, err := app.txRepo.GetByID(t.Context(), txID)
	require.NoError(t, err)
	assert.True(t, flagged.DisputeFlag)
	assert.False(t, flagged.Resolved)
	assert.Equal(t, "Customer claims double charge", flagged.Notes)

	// Resolve
	req2, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/admin/transactions/"+txID+"/resolve", nil)
	req2.Header.Set("X-Admin-Password", testAdminPassword)
	resp2, err := http.DefaultClient.Do(req2)
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	resolved, err := app.txRepo.GetByID(t.Context(), txID)
	require.NoError(t, err)
	assert.True(t, resolved.DisputeFlag)
	assert.True(t, resolved.Resolved)
}

func TestIntegration_DeleteTransactionReversesAggregates(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.registerAndLogin(t, "+233241112233", "Adwoa Provisions")
	txID := app.recordPayment(t, token, 100)
	app.recordPayment(t, token, 60)

	req, _ := http.NewRequest(http.MethodDelete, app.server.URL+"/api/v1/admin/transactions/"+txID, nil)
	req.Header.Set("X-Admin-Password", testAdminPassword)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	check := app.verifyAggregates(t, "+233241112233")
	assert.Equal(t, true, check["consistent"])
	assert.Equal(t, float64(1), check["cached_count"])
	assert.Equal(t, "60", check["cached_volume"])
}

func TestIntegration_CascadeDelete(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.registerAndLogin(t, "+233241112233", "Adwoa Provisions")
	app.recordPayment(t, token, 250)

	// File a support ticket too
	ticketBody, _ := json.Marshal(map[string]string{"issue": "Settlement delayed"})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/support", bytes.NewReader(ticketBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Delete the merchant
	delReq, _ := http.NewRequest(http.MethodDelete, app.server.URL+"/api/v1/admin/merchants/+233241112233", nil)
	delReq.Header.Set("X-Admin-Password", testAdminPassword)
	delResp, err := http.DefaultClient.Do(delReq)
	require.NoError(t, err)
	delResp.Body.Close()
	require.Equal(t, http.StatusOK, delResp.StatusCode)

	// No orphans remain
	m, err := app.merchantRepo.GetByPhone(t.Context(), "+233241112233")
	require.NoError(t, err)
	assert.Nil(t, m)

	txns, err := app.txRepo.ListByPhone(t.Context(), "+233241112233")
	require.NoError(t, err)
	assert.Empty(t, txns)

	tickets, err := app.ticketRepo.ListUnresolved(t.Context())
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestIntegration_AdminOverview_FilterKeepsStatsGlobal(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	tokenA := app.registerAndLoginNetwork(t, "+233241112233", "Adwoa Provisions", "MTN")
	tokenB := app.registerAndLoginNetwork(t, "+233209998877", "Kojo Electronics", "Telecel")
	app.recordPayment(t, tokenA, 250)
	app.recordPayment(t, tokenB, 100)

	req, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/admin/overview?network=Telecel", nil)
	req.Header.Set("X-Admin-Password", testAdminPassword)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	data := body["data"].(map[string]interface{})

	// Lists narrowed to the Telecel merchant
	merchants := data["merchants"].([]interface{})
	require.Len(t, merchants, 1)
	assert.Equal(t, "Kojo Electronics", merchants[0].(map[string]interface{})["business_name"])

	// Stats still cover the whole platform
	stats := data["stats"].(map[string]interface{})
	assert.Equal(t, float64(2), stats["total_merchants"])
	assert.Equal(t, float64(2), stats["total_transactions"])
	assert.Equal(t, "350", stats["total_volume"])
	assert.Equal(t, "3.5", stats["total_commission"])
}

func TestIntegration_ProfileUpdateKeepsHistoricalSnapshots(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.registerAndLogin(t, "+233241112233", "Adwoa Provisions")
	txID := app.recordPayment(t, token, 75)

	// Rename the business
	updBody, _ := json.Marshal(map[string]string{"business_name": "Adwoa Provisions Ltd"})
	req, _ := http.NewRequest(http.MethodPut, app.server.URL+"/api/v1/merchants/me", bytes.NewReader(updBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The merchant row carries the new name
	m, err := app.merchantRepo.GetByPhone(t.Context(), "+233241112233")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Adwoa Provisions Ltd", m.BusinessName)

	// The historical transaction keeps its write-time snapshot
	tx, err := app.txRepo.GetByID(t.Context(), txID)
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, "Adwoa Provisions", tx.BusinessName)
}

func TestIntegration_AdminUnauthorized(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	req, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/admin/overview", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req2, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/admin/overview", nil)
	req2.Header.Set("X-Admin-Password", "guess")
	resp2, err := http.DefaultClient.Do(req2)
	require.NoError(t, err)
	defer resp2.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestIntegration_JWT_Unauthorized(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	req, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/ledger", nil)
	// No Authorization header
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// --- Helpers ---

func (a *testApp) register(t *testing.T, phone, businessName string) *http.Response {
	t.Helper()
	return a.registerNetwork(t, phone, businessName, "MTN")
}

func (a *testApp) registerNetwork(t *testing.T, phone, businessName, network string) *http.Response {
	t.Helper()
	regBody, _ := json.Marshal(map[string]interface{}{
		"business_phone": phone,
		"password":       "StrongPass123!",
		"business_name":  businessName,
		"owner_name":     "Adwoa Mensah",
		"owner_dob":      "1995-04-12",
		"network":        network,
		"category":       "Retail",
		"location":       "Kumasi",
		"since":          2019,
	})
	resp, err := http.Post(a.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	return resp
}

func (a *testApp) registerAndLogin(t *testing.T, phone, businessName string) string {
	t.Helper()
	return a.registerAndLoginNetwork(t, phone, businessName, "MTN")
}

func (a *testApp) registerAndLoginNetwork(t *testing.T, phone, businessName, network string) string {
	t.Helper()
	resp := a.registerNetwork(t, phone, businessName, network)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	loginBody, _ := json.Marshal(map[string]string{
		"business_phone": phone,
		"password":       "StrongPass123!",
	})
	resp2, err := http.Post(a.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp2.Body.Close()

	bodyBytes, _ := io.ReadAll(resp2.Body)
	var loginResp map[string]interface{}
	require.NoError(t, json.Unmarshal(bodyBytes, &loginResp))
	data := loginResp["data"].(map[string]interface{})
	return data["token"].(string)
}

func (a *testApp) recordPayment(t *testing.T, token string, amount int) string {
	t.Helper()
	payBody, _ := json.Marshal(map[string]interface{}{
		"customer_name":   "Kofi Boateng",
		"customer_number": "+233209998877",
		"network":         "MTN",
		"amount":          amount,
	})
	req, _ := http.NewRequest(http.MethodPost, a.server.URL+"/api/v1/payments", bytes.NewReader(payBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "payment response: %s", string(bodyBytes))

	var payResp map[string]interface{}
	require.NoError(t, json.Unmarshal(bodyBytes, &payResp))
	return payResp["data"].(map[string]interface{})["transaction_id"].(string)
}

func (a *testApp) verifyAggregates(t *testing.T, phone string) map[string]interface{} {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, a.server.URL+"/api/v1/admin/merchants/"+phone+"/verify", nil)
	req.Header.Set("X-Admin-Password", testAdminPassword)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["data"].(map[string]interface{})
}
