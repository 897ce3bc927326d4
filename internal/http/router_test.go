package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/subx/internal/clock"
	"github.com/MrJamesThe3rd/subx/internal/events"
	apihttp "github.com/MrJamesThe3rd/subx/internal/http"
	"github.com/MrJamesThe3rd/subx/internal/http/admin"
	"github.com/MrJamesThe3rd/subx/internal/http/plots"
	purchasehttp "github.com/MrJamesThe3rd/subx/internal/http/purchase"
	"github.com/MrJamesThe3rd/subx/internal/http/referrals"
	"github.com/MrJamesThe3rd/subx/internal/http/users"
	"github.com/MrJamesThe3rd/subx/internal/http/webhook"
	"github.com/MrJamesThe3rd/subx/internal/importer"
	"github.com/MrJamesThe3rd/subx/internal/payment"
	"github.com/MrJamesThe3rd/subx/internal/plot"
	"github.com/MrJamesThe3rd/subx/internal/portfolio"
	"github.com/MrJamesThe3rd/subx/internal/purchase"
	"github.com/MrJamesThe3rd/subx/internal/reconcile"
	"github.com/MrJamesThe3rd/subx/internal/referral"
	"github.com/MrJamesThe3rd/subx/internal/testutil/memstore"
)

const secret = "whsec_test"

type refs struct {
	mu sync.Mutex
	n  int
}

func (r *refs) NewReference() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.n++

	return fmt.Sprintf("SUBX-%d", r.n)
}

type api struct {
	handler  http.Handler
	plots    *plot.Service
	clock    *clock.Manual
	verifier *payment.WebhookVerifier
}

func newAPI(t *testing.T) *api {
	t.Helper()

	st := memstore.New()
	clk := clock.NewManual(time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC))

	plotSvc := plot.NewService(st, st)
	portfolioSvc := portfolio.NewService(st)
	referralSvc := referral.NewService(st, st, decimal.RequireFromString("0.05"), clk, nil)

	dispatcher := events.NewInProcess(nil, events.WithRetry(1, 0))
	dispatcher.Subscribe("referral-credit", referralSvc.HandlePurchaseFinalized)

	purchaseSvc, err := purchase.NewService(purchase.ServiceConfig{
		Repository:      st,
		Transactor:      st,
		Inventory:       plotSvc,
		Portfolios:      portfolioSvc,
		Payments:        payment.NewSandbox("http://localhost:8080/checkout"),
		Events:          dispatcher,
		References:      &refs{},
		Clock:           clk,
		ReservationTTL:  30 * time.Minute,
		AmountTolerance: decimal.RequireFromString("0.01"),
	})
	require.NoError(t, err)

	job := reconcile.NewJob(st, st, portfolioSvc, referralSvc, clk, nil)
	verifier := payment.NewWebhookVerifier(secret)

	handler := apihttp.New(apihttp.Handlers{
		Plots:     plots.NewHandler(plotSvc, importer.NewService(plotSvc), nil),
		Purchases: purchasehttp.NewHandler(purchaseSvc, nil),
		Webhook:   webhook.NewHandler(verifier, purchaseSvc, nil),
		Users:     users.NewHandler(portfolioSvc, purchaseSvc, nil),
		Referrals: referrals.NewHandler(referralSvc, nil),
		Admin:     admin.NewHandler(job, purchaseSvc, nil),
	}, apihttp.Options{})

	return &api{handler: handler, plots: plotSvc, clock: clk, verifier: verifier}
}

func (a *api) createPlot(t *testing.T, total int, price int64) uuid.UUID {
	t.Helper()

	p, err := a.plots.Create(context.Background(), plot.CreateParams{
		Name: "Lekki Gardens", TotalSqm: total, PricePerSqm: decimal.NewFromInt(price),
	})
	require.NoError(t, err)

	return p.ID
}

func (a *api) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return a.serve(t, req)
}

func (a *api) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}

	return rec, out
}

func (a *api) webhook(t *testing.T, body string, signature string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook/payment", strings.NewReader(body))
	req.Header.Set(payment.SignatureHeader, signature)

	return a.serve(t, req)
}

func (a *api) pay(t *testing.T, reference string, kobo int64) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	body := fmt.Sprintf(`{"event":"charge.success","data":{"reference":%q,"amount":%d,"currency":"NGN"}}`, reference, kobo)

	return a.webhook(t, body, a.verifier.Sign([]byte(body)))
}

func reserveBody(plotID uuid.UUID, buyer string, sqm any) string {
	return fmt.Sprintf(`{"buyerId":%q,"plotId":%q,"sqm":%v}`, buyer, plotID, sqm)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)

	rec, body := a.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestReserve(t *testing.T) {
	a := newAPI(t)
	plotID := a.createPlot(t, 100, 5000)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{name: "invalid plot id", body: `{"buyerId":"u1","plotId":"nope","sqm":5}`, wantStatus: http.StatusBadRequest, wantError: "InvalidPlotId"},
		{name: "fractional sqm", body: reserveBody(plotID, "u1", 2.5), wantStatus: http.StatusBadRequest, wantError: "InvalidSqm"},
		{name: "zero sqm", body: reserveBody(plotID, "u1", 0), wantStatus: http.StatusBadRequest, wantError: "InvalidSqm"},
		{name: "missing buyer", body: reserveBody(plotID, "", 5), wantStatus: http.StatusBadRequest, wantError: "InvalidBuyerId"},
		{name: "unknown plot", body: reserveBody(uuid.New(), "u1", 5), wantStatus: http.StatusNotFound, wantError: "PlotNotFound"},
		{name: "unknown field", body: `{"buyerId":"u1","plotId":"x","sqm":1,"coupon":"FREE"}`, wantStatus: http.StatusBadRequest, wantError: "InvalidRequestBody"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := a.do(t, http.MethodPost, "/purchases/reserve", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, body["error"])
		})
	}

	t.Run("success", func(t *testing.T) {
		rec, body := a.do(t, http.MethodPost, "/purchases/reserve", reserveBody(plotID, "u1", 5))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		assert.Equal(t, "25000", body["amount"])
		assert.Equal(t, "SUBX-1", body["paymentReference"])
		assert.Equal(t, "http://localhost:8080/checkout/SUBX-1", body["paymentRedirectUrl"])
		assert.NotEmpty(t, body["reservationId"])
		assert.NotEmpty(t, body["expiresAt"])
	})

	t.Run("insufficient", func(t *testing.T) {
		rec, body := a.do(t, http.MethodPost, "/purchases/reserve", reserveBody(plotID, "u2", 96))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "InsufficientSqmAvailable", body["error"])
		assert.EqualValues(t, 96, body["requested"])
		assert.EqualValues(t, 95, body["available"])
	})
}

func TestPurchaseFlow(t *testing.T) {
	a := newAPI(t)
	plotID := a.createPlot(t, 100, 5000)

	rec, _ := a.do(t, http.MethodPost, "/referrals", `{"referrerId":"ref","referredUserId":"u1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, reserved := a.do(t, http.MethodPost, "/purchases/reserve", reserveBody(plotID, "u1", 5))
	require.Equal(t, http.StatusOK, rec.Code)

	reference := reserved["paymentReference"].(string)

	rec, ack := a.pay(t, reference, 2500000)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, ack["success"])

	// A gateway retry is acknowledged without a second ownership.
	rec, ack = a.pay(t, reference, 2500000)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, ack["success"])

	rec, res := a.do(t, http.MethodGet, "/purchases/"+reserved["reservationId"].(string), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", res["status"])

	rec, pf := a.do(t, http.MethodGet, "/users/u1/portfolio", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 5, pf["totalSqm"])
	assert.EqualValues(t, 1, pf["totalPlots"])
	assert.Equal(t, "25000", pf["portfolioValue"])

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/u1/ownerships", nil))

	var owned []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &owned))
	require.Len(t, owned, 1)
	assert.Equal(t, "5", owned[0]["percentage"])

	rec, wallet := a.do(t, http.MethodGet, "/users/ref/wallet", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1250", wallet["balance"])

	rec, status := a.do(t, http.MethodGet, "/plots/"+plotID.String()+"/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 95, status["availableSqm"])
	assert.Equal(t, "5", status["soldPercentage"])

	rec, report := a.do(t, http.MethodPost, "/admin/reconcile", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, report["autoFixed"])
	assert.EqualValues(t, 0, report["manualReview"])
}

func TestWebhook(t *testing.T) {
	a := newAPI(t)

	tests := []struct {
		name        string
		body        string
		signature   func(body string) string
		wantStatus  int
		wantSuccess any
		wantError   string
	}{
		{
			name:       "bad signature",
			body:       `{"event":"charge.success","data":{"reference":"SUBX-1","amount":100}}`,
			signature:  func(string) string { return strings.Repeat("ab", 64) },
			wantStatus: http.StatusBadRequest,
			wantError:  "InvalidSignature",
		},
		{
			name:       "missing signature",
			body:       `{"event":"charge.success","data":{"reference":"SUBX-1","amount":100}}`,
			signature:  func(string) string { return "" },
			wantStatus: http.StatusBadRequest,
			wantError:  "InvalidSignature",
		},
		{
			name:       "malformed payload",
			body:       `{"event":`,
			signature:  func(b string) string { return a.verifier.Sign([]byte(b)) },
			wantStatus: http.StatusBadRequest,
			wantError:  "MalformedPayload",
		},
		{
			name:       "charge without reference",
			body:       `{"event":"charge.success","data":{"amount":100}}`,
			signature:  func(b string) string { return a.verifier.Sign([]byte(b)) },
			wantStatus: http.StatusBadRequest,
			wantError:  "MalformedPayload",
		},
		{
			name:        "unrecognized event",
			body:        `{"event":"transfer.success","data":{"reference":"T-1","amount":100}}`,
			signature:   func(b string) string { return a.verifier.Sign([]byte(b)) },
			wantStatus:  http.StatusOK,
			wantSuccess: true,
		},
		{
			name:        "unknown reference",
			body:        `{"event":"charge.success","data":{"reference":"SUBX-404","amount":100}}`,
			signature:   func(b string) string { return a.verifier.Sign([]byte(b)) },
			wantStatus:  http.StatusOK,
			wantSuccess: false,
			wantError:   "ReservationNotFound",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := a.webhook(t, tt.body, tt.signature(tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantSuccess != nil {
				assert.Equal(t, tt.wantSuccess, body["success"])
			}

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
}

func TestWebhook_AmountMismatchIsAcknowledged(t *testing.T) {
	a := newAPI(t)
	plotID := a.createPlot(t, 100, 5000)

	_, reserved := a.do(t, http.MethodPost, "/purchases/reserve", reserveBody(plotID, "u1", 5))

	rec, ack := a.pay(t, reserved["paymentReference"].(string), 100)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, ack["success"])
	assert.Equal(t, "PaymentAmountMismatch", ack["error"])

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/incidents", nil))

	var incidents []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &incidents))
	require.Len(t, incidents, 1)
	assert.Equal(t, "amount_mismatch", incidents[0]["kind"])
}

func TestExpireAndCancel(t *testing.T) {
	a := newAPI(t)
	plotID := a.createPlot(t, 10, 100)

	_, first := a.do(t, http.MethodPost, "/purchases/reserve", reserveBody(plotID, "u1", 4))
	_, second := a.do(t, http.MethodPost, "/purchases/reserve", reserveBody(plotID, "u2", 6))

	rec, cancelled := a.do(t, http.MethodPost, "/purchases/"+second["reservationId"].(string)+"/cancel", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", cancelled["status"])

	rec, body := a.do(t, http.MethodPost, "/purchases/"+second["reservationId"].(string)+"/cancel", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ReservationNotActive", body["error"])

	a.clock.Advance(31 * time.Minute)

	rec, expired := a.do(t, http.MethodPost, "/admin/expire", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, expired["expired"])

	rec, res := a.do(t, http.MethodGet, "/purchases/"+first["reservationId"].(string), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "expired", res["status"])

	rec, status := a.do(t, http.MethodGet, "/plots/"+plotID.String()+"/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 10, status["availableSqm"])

	rec, ack := a.pay(t, first["paymentReference"].(string), 40000)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, ack["success"])
	assert.Equal(t, "IntegrityConflict", ack["error"])
}

func TestPlots_CreateAndImport(t *testing.T) {
	a := newAPI(t)

	rec, created := a.do(t, http.MethodPost, "/plots", `{"name":"Epe Hills","totalSqm":120,"pricePerSqm":"3250.50"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 120, created["availableSqm"])

	rec, body := a.do(t, http.MethodPost, "/plots", `{"name":"Epe Hills","totalSqm":120,"pricePerSqm":"1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DuplicatePlotName", body["error"])

	rec, body = a.do(t, http.MethodPost, "/plots", `{"name":"Tiny","totalSqm":0,"pricePerSqm":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidPlot", body["error"])

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "register.yaml")
	require.NoError(t, err)

	_, err = fw.Write([]byte("plots:\n  - name: Lekki Phase 1\n    total_sqm: 500\n    price_per_sqm: \"5000\"\n  - name: Ibeju Farm\n    total_sqm: 80\n    price_per_sqm: 1200\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/plots/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec, imported := a.serve(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2, imported["imported"])

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plots", nil))

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 3)

	rec, body = a.do(t, http.MethodGet, "/plots/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PlotNotFound", body["error"])
}

func TestReferrals(t *testing.T) {
	a := newAPI(t)

	rec, body := a.do(t, http.MethodPost, "/referrals", `{"referrerId":"u1","referredUserId":"u1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "SelfReferral", body["error"])

	rec, _ = a.do(t, http.MethodPost, "/referrals", `{"referrerId":"ref","referredUserId":"u1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body = a.do(t, http.MethodPost, "/referrals", `{"referrerId":"other","referredUserId":"u1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "AlreadyReferred", body["error"])

	rec, body = a.do(t, http.MethodPost, "/referrals/rewards/"+uuid.NewString()+"/pay", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "RewardNotFound", body["error"])

	rec, wallet := a.do(t, http.MethodGet, "/users/nobody/wallet", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", wallet["balance"])
}
