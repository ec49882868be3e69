package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/splitpay/internal/auth"
	"github.com/mmynk/splitpay/internal/config"
	"github.com/mmynk/splitpay/internal/ledger"
	"github.com/mmynk/splitpay/internal/storage/sqlite"
	"github.com/mmynk/splitpay/internal/transfer"
)

func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitpay-api-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		Bind:        "127.0.0.1:0",
		CORSOrigins: []string{"*"},
		JWTSecret:   "test-secret",
	}
	led := ledger.New(store, transfer.Noop{})
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)

	return New(cfg, led, authenticator, jwtManager, store).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// registerUser registers an account and returns its session token and user id.
func registerUser(t *testing.T, h http.Handler, email, wallet string) (token, userID string) {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":          email,
		"display_name":   "Test User",
		"wallet_address": wallet,
		"password":       "correct-horse",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}

	var session struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decodeResponse(t, rec, &session)
	if session.Token == "" || session.User.ID == "" {
		t.Fatalf("register response missing token or user id: %s", rec.Body.String())
	}
	return session.Token, session.User.ID
}

func TestRegisterAndLogin(t *testing.T) {
	h := newTestAPI(t)

	token, _ := registerUser(t, h, "alice@example.com", "0xalice")
	if token == "" {
		t.Fatal("no token issued on registration")
	}

	// Duplicate email is a conflict.
	rec := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "correct-horse",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register returned %d, want 409", rec.Code)
	}

	// Weak password is rejected up front.
	rec = doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "bob@example.com",
		"password": "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("weak password returned %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login returned %d, want 401", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "correct-horse",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("login returned %d, want 200", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/users/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("users/me returned %d: %s", rec.Code, rec.Body.String())
	}
	var me struct {
		Email         string `json:"email"`
		WalletAddress string `json:"wallet_address"`
	}
	decodeResponse(t, rec, &me)
	if me.Email != "alice@example.com" || me.WalletAddress != "0xalice" {
		t.Errorf("users/me = %+v", me)
	}
}

func TestAuthRequired(t *testing.T) {
	h := newTestAPI(t)

	for _, path := range []string{"/api/bills", "/api/users/me"} {
		rec := doJSON(t, h, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token returned %d, want 401", path, rec.Code)
		}
	}

	rec := doJSON(t, h, http.MethodGet, "/api/bills", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/bills with garbage token returned %d, want 401", rec.Code)
	}
}

func TestBillLifecycle(t *testing.T) {
	h := newTestAPI(t)
	orgToken, orgID := registerUser(t, h, "org@example.com", "0xorg")

	rec := doJSON(t, h, http.MethodPost, "/api/bills", orgToken, map[string]any{
		"title":         "Dinner",
		"currency":      "USD",
		"total_display": "45.00",
		"split_policy":  "equal",
		"participants": []map[string]string{
			{"id": "alice", "name": "Alice", "contact": "+1-555-0100"},
			{"id": "bob", "name": "Bob"},
			{"id": "carol", "name": "Carol"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bill returned %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		BillID string `json:"bill_id"`
	}
	decodeResponse(t, rec, &created)
	if created.BillID == "" {
		t.Fatal("no bill_id in create response")
	}
	billPath := "/api/bills/" + created.BillID

	// Detail carries the organizer and the nominal total in minor units.
	rec = doJSON(t, h, http.MethodGet, billPath, orgToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get bill returned %d: %s", rec.Code, rec.Body.String())
	}
	var detail struct {
		Organizer string `json:"organizer"`
		Total     struct {
			Amount int64 `json:"amount"`
		} `json:"total"`
		ParticipantCount int  `json:"participant_count"`
		Completed        bool `json:"completed"`
	}
	decodeResponse(t, rec, &detail)
	if detail.Organizer != orgID || detail.Total.Amount != 4500 || detail.ParticipantCount != 3 {
		t.Errorf("bill detail = %+v", detail)
	}

	// Withdrawing before everyone settles is a state conflict.
	rec = doJSON(t, h, http.MethodPost, billPath+"/withdraw", orgToken, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("early withdraw returned %d, want 409", rec.Code)
	}

	for _, p := range []string{"alice", "bob"} {
		rec = doJSON(t, h, http.MethodPost, billPath+"/payments", orgToken, map[string]any{
			"participant_id": p,
			"amount":         1500,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("payment for %s returned %d: %s", p, rec.Code, rec.Body.String())
		}
	}

	// carol pays via the display form and overpays.
	rec = doJSON(t, h, http.MethodPost, billPath+"/payments", orgToken, map[string]any{
		"participant_id": "carol",
		"amount_display": "16.00",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("carol's payment returned %d: %s", rec.Code, rec.Body.String())
	}
	var payment struct {
		Status    string `json:"status"`
		Completed bool   `json:"completed"`
	}
	decodeResponse(t, rec, &payment)
	if payment.Status != "overpaid" || !payment.Completed {
		t.Errorf("final payment = %+v, want overpaid/completed", payment)
	}

	rec = doJSON(t, h, http.MethodGet, billPath+"/status", orgToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("bill status returned %d: %s", rec.Code, rec.Body.String())
	}
	var status struct {
		ParticipantIDs []string `json:"participant_ids"`
		Statuses       []string `json:"statuses"`
	}
	decodeResponse(t, rec, &status)
	want := []string{"paid", "paid", "overpaid"}
	for i, s := range status.Statuses {
		if s != want[i] {
			t.Errorf("statuses[%d] (%s) = %s, want %s", i, status.ParticipantIDs[i], s, want[i])
		}
	}

	rec = doJSON(t, h, http.MethodPost, billPath+"/withdraw", orgToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("withdraw returned %d: %s", rec.Code, rec.Body.String())
	}
	var withdrawal struct {
		Collected struct {
			Amount int64 `json:"amount"`
		} `json:"collected"`
	}
	decodeResponse(t, rec, &withdrawal)
	if withdrawal.Collected.Amount != 4600 {
		t.Errorf("collected = %d, want 4600", withdrawal.Collected.Amount)
	}

	rec = doJSON(t, h, http.MethodPost, billPath+"/withdraw", orgToken, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("second withdraw returned %d, want 409", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/bills", orgToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list bills returned %d: %s", rec.Code, rec.Body.String())
	}
	var list struct {
		BillIDs []string `json:"bill_ids"`
	}
	decodeResponse(t, rec, &list)
	if len(list.BillIDs) != 1 || list.BillIDs[0] != created.BillID {
		t.Errorf("bill list = %v, want [%s]", list.BillIDs, created.BillID)
	}
}

func TestWithdrawForbiddenForNonOrganizer(t *testing.T) {
	h := newTestAPI(t)
	orgToken, _ := registerUser(t, h, "org@example.com", "")
	otherToken, otherID := registerUser(t, h, "other@example.com", "")

	rec := doJSON(t, h, http.MethodPost, "/api/bills", orgToken, map[string]any{
		"title":        "Solo",
		"currency":     "USD",
		"total":        500,
		"split_policy": "equal",
		"participants": []map[string]string{{"id": otherID}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bill returned %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		BillID string `json:"bill_id"`
	}
	decodeResponse(t, rec, &created)

	rec = doJSON(t, h, http.MethodPost, "/api/bills/"+created.BillID+"/payments", otherToken, map[string]any{
		"participant_id": otherID,
		"amount":         500,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("payment returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/api/bills/"+created.BillID+"/withdraw", otherToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-organizer withdraw returned %d, want 403", rec.Code)
	}
}

func TestCreateBillErrors(t *testing.T) {
	h := newTestAPI(t)
	token, _ := registerUser(t, h, "org@example.com", "")

	tests := []struct {
		name     string
		body     map[string]any
		wantCode int
	}{
		{
			name: "missing currency",
			body: map[string]any{
				"title":        "x",
				"total":        100,
				"split_policy": "equal",
				"participants": []map[string]string{{"id": "a"}},
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "missing amount",
			body: map[string]any{
				"title":        "x",
				"currency":     "USD",
				"split_policy": "equal",
				"participants": []map[string]string{{"id": "a"}},
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "sub-minor-unit total",
			body: map[string]any{
				"title":         "x",
				"currency":      "USD",
				"total_display": "1.005",
				"split_policy":  "equal",
				"participants":  []map[string]string{{"id": "a"}},
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "manual shares do not sum to total",
			body: map[string]any{
				"title":        "x",
				"currency":     "USD",
				"total":        4500,
				"split_policy": "manual",
				"participants": []map[string]any{
					{"id": "a", "share": 2000},
					{"id": "b", "share": 1500},
				},
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "duplicate participants",
			body: map[string]any{
				"title":        "x",
				"currency":     "USD",
				"total":        100,
				"split_policy": "equal",
				"participants": []map[string]string{{"id": "a"}, {"id": "a"}},
			},
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/bills", token, tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("create bill returned %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestBillNotFound(t *testing.T) {
	h := newTestAPI(t)
	token, _ := registerUser(t, h, "org@example.com", "")

	for _, path := range []string{"/api/bills/missing", "/api/bills/missing/status"} {
		rec := doJSON(t, h, http.MethodGet, path, token, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s returned %d, want 404", path, rec.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz returned %d", rec.Code)
	}
	var body map[string]string
	decodeResponse(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("healthz body = %v", body)
	}
}

func TestAmountFrom(t *testing.T) {
	minor := func(v int64) *int64 { return &v }

	tests := []struct {
		name    string
		minor   *int64
		display string
		want    int64
		wantErr bool
	}{
		{name: "minor units", minor: minor(4500), want: 4500},
		{name: "display decimal", display: "45.00", want: 4500},
		{name: "minor wins when both set", minor: minor(100), display: "45.00", want: 100},
		{name: "neither", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := amountFrom(tt.minor, tt.display, "USD")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("amountFrom failed: %v", err)
			}
			if got.Amount != tt.want {
				t.Errorf("amountFrom = %d, want %d", got.Amount, tt.want)
			}
		})
	}
}
