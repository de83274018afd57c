package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/Freeeeeet/slot_swapper/internal/repository/memory"
	"github.com/Freeeeeet/slot_swapper/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	testSecret = []byte("test-secret")
	testNow    = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
)

type apiEnv struct {
	handler http.Handler
	users   *service.UserService
}

func newAPIEnv(t *testing.T, opts Options) *apiEnv {
	t.Helper()
	store := memory.NewStore()
	stores := service.Stores{
		Tx:           store,
		Slots:        store.Slots(),
		SwapRequests: store.SwapRequests(),
		Users:        store.Users(),
	}
	logger := zap.NewNop()

	opts.Users = service.NewUserService(stores, logger)
	opts.Slots = service.NewSlotService(stores, logger)
	opts.Swaps = service.NewSwapService(stores, logger)
	opts.JWTSecret = testSecret
	opts.Logger = logger
	opts.Now = func() time.Time { return testNow }

	return &apiEnv{handler: NewServer(opts).Handler(), users: opts.Users}
}

func (e *apiEnv) token(t *testing.T, name string) string {
	t.Helper()
	user, err := e.users.CreateUser(context.Background(), name, name, "")
	require.NoError(t, err)
	token, err := IssueToken(testSecret, user.ID, time.Hour, testNow)
	require.NoError(t, err)
	return token
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

func (e *apiEnv) swappableSlot(t *testing.T, token, title string, startHour int) model.Slot {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/slots", token, map[string]any{
		"title":      title,
		"start_time": testNow.Add(time.Duration(startHour) * time.Hour),
		"end_time":   testNow.Add(time.Duration(startHour+1) * time.Hour),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	slot := decodeData[model.Slot](t, rec)

	rec = e.do(t, http.MethodPut, "/api/slots/"+slot.ID.String(), token, map[string]any{"status": "SWAPPABLE"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeData[model.Slot](t, rec)
}

func TestHealth(t *testing.T) {
	env := newAPIEnv(t, Options{})
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthentication(t *testing.T) {
	env := newAPIEnv(t, Options{})

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/slots", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/slots", "garbage", nil).Code)

	stranger, err := IssueToken(testSecret, uuid.New(), time.Hour, testNow)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/slots", stranger, nil).Code)

	forged, err := IssueToken([]byte("other"), uuid.New(), time.Hour, testNow)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/slots", forged, nil).Code)

	user, err := env.users.CreateUser(context.Background(), "late", "Late", "")
	require.NoError(t, err)
	expired, err := IssueToken(testSecret, user.ID, time.Hour, testNow.Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/slots", expired, nil).Code)

	ok := env.token(t, "ann")
	rec := env.do(t, http.MethodGet, "/api/slots", ok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[[]model.Slot](t, rec))
}

func TestSlotCRUDStatusCodes(t *testing.T) {
	env := newAPIEnv(t, Options{})
	ann := env.token(t, "ann")
	bob := env.token(t, "bob")

	rec := env.do(t, http.MethodPost, "/api/slots", ann, map[string]any{
		"title":      "Focus",
		"start_time": testNow,
		"end_time":   testNow.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	slot := decodeData[model.Slot](t, rec)
	assert.Equal(t, model.SlotStatusBusy, slot.Status)

	overlap := env.do(t, http.MethodPost, "/api/slots", ann, map[string]any{
		"title":      "Clash",
		"start_time": testNow.Add(30 * time.Minute),
		"end_time":   testNow.Add(2 * time.Hour),
	})
	assert.Equal(t, http.StatusBadRequest, overlap.Code)

	path := "/api/slots/" + slot.ID.String()
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, bob, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, path, bob, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/slots/not-a-uuid", ann, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, path, ann, map[string]any{"status": "SWAP_PENDING"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, path, ann, map[string]any{"status": "WHATEVER"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, path, ann, map[string]any{"colour": "red"}).Code)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, ann, nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, ann, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, ann, nil).Code)
}

func TestSwapFlowOverHTTP(t *testing.T) {
	env := newAPIEnv(t, Options{})
	ann := env.token(t, "ann")
	bob := env.token(t, "bob")

	mine := env.swappableSlot(t, ann, "Mine", 1)
	theirs := env.swappableSlot(t, bob, "Theirs", 5)

	rec := env.do(t, http.MethodGet, "/api/swappable-slots", ann, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	market := decodeData[[]model.Slot](t, rec)
	require.Len(t, market, 1)
	assert.Equal(t, theirs.ID, market[0].ID)

	body := map[string]string{"my_slot_id": mine.ID.String(), "their_slot_id": theirs.ID.String()}
	rec = env.do(t, http.MethodPost, "/api/swap-request", ann, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	req := decodeData[model.SwapRequest](t, rec)
	assert.Equal(t, model.SwapRequestStatusPending, req.Status)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/swap-request", ann, body).Code)

	rec = env.do(t, http.MethodGet, "/api/swap-requests/incoming", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]model.SwapRequest](t, rec), 1)

	respondPath := "/api/swap-response/" + req.ID.String()
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, respondPath, ann, map[string]bool{"accepted": true}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, respondPath, bob, map[string]any{}).Code)

	rec = env.do(t, http.MethodPost, respondPath, bob, map[string]bool{"accepted": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeData[service.SwapResult](t, rec)
	assert.Equal(t, model.SwapRequestStatusAccepted, result.Request.Status)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, respondPath, bob, map[string]bool{"accepted": false}).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, "/api/slots/"+mine.ID.String(), ann, nil).Code)

	rec = env.do(t, http.MethodGet, "/api/swap-requests/outgoing", ann, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	outgoing := decodeData[[]model.SwapRequest](t, rec)
	require.Len(t, outgoing, 1)
	assert.Equal(t, model.SwapRequestStatusAccepted, outgoing[0].Status)
}

func TestSelfSwapIsBadRequest(t *testing.T) {
	env := newAPIEnv(t, Options{})
	ann := env.token(t, "ann")
	a := env.swappableSlot(t, ann, "One", 1)
	b := env.swappableSlot(t, ann, "Two", 3)

	rec := env.do(t, http.MethodPost, "/api/swap-request", ann, map[string]string{
		"my_slot_id":    a.ID.String(),
		"their_slot_id": b.ID.String(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot swap with your own slot")
}

func TestCalendarExport(t *testing.T) {
	env := newAPIEnv(t, Options{})
	ann := env.token(t, "ann")

	rec := env.do(t, http.MethodGet, "/api/calendar.ics", ann, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	env.swappableSlot(t, ann, "Exported", 2)

	rec = env.do(t, http.MethodGet, "/api/calendar.ics", ann, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar"))
	assert.Contains(t, rec.Body.String(), "SUMMARY:Exported")
}

func TestWriteRateLimit(t *testing.T) {
	env := newAPIEnv(t, Options{WriteRate: 0.001, WriteBurst: 1})
	ann := env.token(t, "ann")

	body := map[string]any{"title": "First", "start_time": testNow, "end_time": testNow.Add(time.Hour)}
	assert.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/slots", ann, body).Code)

	body["title"] = "Second"
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodPost, "/api/slots", ann, body).Code)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/slots", ann, nil).Code, "reads are not limited")
}

func TestStatusFor(t *testing.T) {
	tests := map[service.Kind]int{
		service.KindValidation:       http.StatusBadRequest,
		service.KindInvalidOperation: http.StatusBadRequest,
		service.KindForbidden:        http.StatusForbidden,
		service.KindNotFound:         http.StatusNotFound,
		service.KindConflict:         http.StatusConflict,
		service.KindInvalidState:     http.StatusConflict,
		service.KindInternal:         http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, statusFor(kind), string(kind))
	}
}
