package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/mandipulse/internal/domain/dto"
	"github.com/guttosm/mandipulse/internal/domain/models"
	"github.com/guttosm/mandipulse/internal/pricing"
	"github.com/guttosm/mandipulse/internal/service"
	"github.com/guttosm/mandipulse/internal/storage"
	"github.com/guttosm/mandipulse/internal/upstream"
)

type mockPriceService struct {
	records []models.PriceRecord
	trend   *models.Trend
	err     error
	last    models.PriceQuery
}

func (m *mockPriceService) GetPrices(_ context.Context, q models.PriceQuery) ([]models.PricePoint, error) {
	m.last = q
	if m.trend == nil {
		return nil, m.err
	}
	return m.trend.Points, m.err
}

func (m *mockPriceService) GetRecords(_ context.Context, q models.PriceQuery) ([]models.PriceRecord, error) {
	m.last = q
	return m.records, m.err
}

func (m *mockPriceService) GetTrend(_ context.Context, q models.PriceQuery) (*models.Trend, error) {
	m.last = q
	return m.trend, m.err
}

var _ service.PriceService = (*mockPriceService)(nil)

type mockAssistant struct {
	resp *dto.AssistantResponse
	err  error
}

func (m *mockAssistant) Ask(context.Context, dto.AssistantRequest) (*dto.AssistantResponse, error) {
	return m.resp, m.err
}

type mockAuth struct {
	token string
	user  *models.User
	err   error
}

func (m *mockAuth) Signup(context.Context, string, string, string) (string, *models.User, error) {
	return m.token, m.user, m.err
}
func (m *mockAuth) Login(context.Context, string, string) (string, error) { return m.token, m.err }
func (m *mockAuth) Me(context.Context, string) (*models.User, error)      { return m.user, m.err }
func (m *mockAuth) VerifyToken(tok string) (string, error) {
	if tok != "good" {
		return "", service.ErrInvalidToken
	}
	return "u1", nil
}

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(h, RouterConfig{})
}

func doRequest(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("invalid error json: %v", err)
	}
	return e.Code
}

func TestGetPrices_TableDriven(t *testing.T) {
	cases := []struct {
		name   string
		svc    *mockPriceService
		query  string
		status int
		code   string
		assert func(t *testing.T, body []byte)
	}{
		{name: "bad limit", svc: &mockPriceService{}, query: "/api/prices?limit=abc", status: http.StatusBadRequest},
		{name: "zero limit", svc: &mockPriceService{}, query: "/api/prices?limit=0", status: http.StatusBadRequest},
		{name: "negative offset", svc: &mockPriceService{}, query: "/api/prices?offset=-1", status: http.StatusBadRequest},
		{name: "bad from", svc: &mockPriceService{}, query: "/api/prices?from=01/03/2024", status: http.StatusBadRequest},
		{name: "bad to", svc: &mockPriceService{}, query: "/api/prices?to=2024-02-30x", status: http.StatusBadRequest},
		{
			name:   "service date error",
			svc:    &mockPriceService{err: &pricing.MalformedDateError{Input: "x", Reason: "bad"}},
			query:  "/api/prices",
			status: http.StatusBadRequest,
			code:   "invalid_date",
		},
		{
			name:   "missing key",
			svc:    &mockPriceService{err: &upstream.MissingCredentialError{Service: "agmarknet", Key: "DATA_GOV_API_KEY"}},
			query:  "/api/prices?commodity=Wheat",
			status: http.StatusInternalServerError,
			code:   "missing_api_key",
		},
		{
			name:   "upstream error",
			svc:    &mockPriceService{err: &upstream.Error{Service: "agmarknet", Status: 503, Body: "down"}},
			query:  "/api/prices?commodity=Wheat",
			status: http.StatusBadGateway,
			code:   "upstream_error",
		},
		{
			name:   "timeout",
			svc:    &mockPriceService{err: upstream.ErrCancelled},
			query:  "/api/prices",
			status: http.StatusGatewayTimeout,
			code:   "upstream_timeout",
		},
		{
			name:   "empty result is an array",
			svc:    &mockPriceService{},
			query:  "/api/prices?commodity=Wheat",
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				if string(body) != `{"records":[]}` {
					t.Fatalf("unexpected body %s", body)
				}
			},
		},
		{
			name:   "passthrough records",
			svc:    &mockPriceService{records: []models.PriceRecord{{"arrival_date": "01/03/2024", "market": "Azadpur"}}},
			query:  "/api/prices?commodity=Wheat&from=2024-03-01&to=2024-03-31&limit=10&offset=5",
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var out dto.RecordsResponse
				if err := json.Unmarshal(body, &out); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if len(out.Records) != 1 || out.Records[0]["market"] != "Azadpur" {
					t.Fatalf("unexpected body %s", body)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouter(NewHandler(tc.svc, nil, nil))
			w := doRequest(r, http.MethodGet, tc.query, "", nil)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, w.Code, w.Body.String())
			}
			if tc.code != "" && errorCode(t, w.Body.Bytes()) != tc.code {
				t.Fatalf("unexpected error code in %s", w.Body.String())
			}
			if tc.assert != nil {
				tc.assert(t, w.Body.Bytes())
			}
		})
	}
}

func TestGetPrices_BindsQuery(t *testing.T) {
	svc := &mockPriceService{}
	r := setupRouter(NewHandler(svc, nil, nil))
	w := doRequest(r, http.MethodGet, "/api/prices?commodity=Wheat&state=Punjab&market=Khanna&from=2024-03-01&limit=10&offset=5", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	want := models.PriceQuery{Commodity: "Wheat", State: "Punjab", Market: "Khanna", From: "2024-03-01", Limit: 10, Offset: 5}
	if svc.last != want {
		t.Fatalf("got %+v want %+v", svc.last, want)
	}
}

func TestGetSeries(t *testing.T) {
	t.Run("no trend serializes null", func(t *testing.T) {
		pts := []models.PricePoint{{Date: "2024-03-01", ModalAvg: 0}, {Date: "2024-03-02", ModalAvg: 50}}
		svc := &mockPriceService{trend: &models.Trend{Points: pts, Latest: &pts[1], Previous: &pts[0]}}
		w := doRequest(setupRouter(NewHandler(svc, nil, nil)), http.MethodGet, "/api/prices/series", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d", w.Code)
		}
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
			t.Fatalf("json: %v", err)
		}
		if string(raw["change_pct"]) != "null" {
			t.Fatalf("change_pct = %s", raw["change_pct"])
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		svc := &mockPriceService{err: &upstream.TransportError{Service: "agmarknet", Err: errors.New("reset")}}
		w := doRequest(setupRouter(NewHandler(svc, nil, nil)), http.MethodGet, "/api/prices/series", "", nil)
		if w.Code != http.StatusBadGateway || errorCode(t, w.Body.Bytes()) != "upstream_unreachable" {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
	})
}

func TestAsk(t *testing.T) {
	cases := []struct {
		name   string
		svc    *mockAssistant
		body   string
		status int
		code   string
	}{
		{name: "invalid json", svc: &mockAssistant{}, body: `{"type":`, status: http.StatusBadRequest, code: "invalid_json_body"},
		{name: "ok", svc: &mockAssistant{resp: &dto.AssistantResponse{Response: "Sow in November.", Confidence: 85}}, body: `{"type":"text","content":"wheat?"}`, status: http.StatusOK},
		{name: "missing key", svc: &mockAssistant{err: &upstream.MissingCredentialError{Service: "groq", Key: "GROQ_API_KEY"}}, body: `{}`, status: http.StatusInternalServerError, code: "missing_api_key"},
		{name: "upstream 429", svc: &mockAssistant{err: &upstream.Error{Service: "groq", Status: 429}}, body: `{}`, status: http.StatusBadGateway, code: "upstream_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouter(NewHandler(nil, tc.svc, nil))
			w := doRequest(r, http.MethodPost, "/api/ai", tc.body, nil)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, w.Code, w.Body.String())
			}
			if tc.code != "" && errorCode(t, w.Body.Bytes()) != tc.code {
				t.Fatalf("unexpected body %s", w.Body.String())
			}
			if tc.status == http.StatusOK {
				var out dto.AssistantResponse
				if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.Confidence != 85 {
					t.Fatalf("unexpected body %s", w.Body.String())
				}
			}
		})
	}
}

func TestAuthRoutes(t *testing.T) {
	user := &models.User{ID: "u1", Name: "Ramesh", Email: "farmer@email.com", PasswordHash: "hash"}
	cases := []struct {
		name    string
		svc     *mockAuth
		method  string
		path    string
		body    string
		headers map[string]string
		status  int
		message string
	}{
		{name: "signup ok", svc: &mockAuth{token: "t", user: user}, method: http.MethodPost, path: "/api/auth/signup", body: `{"name":"Ramesh","email":"farmer@email.com","password":"secret1"}`, status: http.StatusCreated},
		{name: "signup duplicate", svc: &mockAuth{err: storage.ErrEmailTaken}, method: http.MethodPost, path: "/api/auth/signup", body: `{"name":"a","email":"a@b.c","password":"secret1"}`, status: http.StatusConflict},
		{name: "signup invalid", svc: &mockAuth{err: &service.ValidationError{Field: "password", Reason: "too short"}}, method: http.MethodPost, path: "/api/auth/signup", body: `{}`, status: http.StatusBadRequest},
		{name: "signup bad json", svc: &mockAuth{}, method: http.MethodPost, path: "/api/auth/signup", body: `nope`, status: http.StatusBadRequest},
		{name: "login ok", svc: &mockAuth{token: "t"}, method: http.MethodPost, path: "/api/auth/login", body: `{"email":"a@b.c","password":"x"}`, status: http.StatusOK},
		{name: "login invalid", svc: &mockAuth{err: service.ErrInvalidCredentials}, method: http.MethodPost, path: "/api/auth/login", body: `{"email":"a@b.c","password":"x"}`, status: http.StatusUnauthorized, message: "Invalid credentials"},
		{name: "me without token", svc: &mockAuth{user: user}, method: http.MethodGet, path: "/api/auth/me", status: http.StatusUnauthorized},
		{name: "me ok", svc: &mockAuth{user: user}, method: http.MethodGet, path: "/api/auth/me", headers: map[string]string{"Authorization": "Bearer good"}, status: http.StatusOK},
		{name: "me gone", svc: &mockAuth{err: storage.ErrNotFound}, method: http.MethodGet, path: "/api/auth/me", headers: map[string]string{"Authorization": "Bearer good"}, status: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouter(NewHandler(nil, nil, tc.svc))
			w := doRequest(r, tc.method, tc.path, tc.body, tc.headers)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, w.Code, w.Body.String())
			}
			if strings.Contains(w.Body.String(), "hash") {
				t.Fatalf("password hash leaked: %s", w.Body.String())
			}
			if tc.message != "" {
				var e dto.ErrorResponse
				_ = json.Unmarshal(w.Body.Bytes(), &e)
				if e.Message != tc.message {
					t.Fatalf("message=%q", e.Message)
				}
			}
		})
	}
}
