package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/brandprices-backend/pkg/errors"
)

type fakeIdempotencyStore struct {
	data       map[string]string
	reserveErr error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{data: map[string]string{}}
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func (f *fakeIdempotencyStore) Load(_ context.Context, key string) (string, error) {
	return f.data[key], nil
}

func (f *fakeIdempotencyStore) Reserve(_ context.Context, key, marker string, _ time.Duration) (bool, error) {
	if f.reserveErr != nil {
		return false, f.reserveErr
	}
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = marker
	return true, nil
}

func (f *fakeIdempotencyStore) Save(_ context.Context, key, record string, _ time.Duration) error {
	f.data[key] = record
	return nil
}

func (f *fakeIdempotencyStore) Release(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func postWithKey(target, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	return req
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	return payload.Error.Code
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = fmt.Fprintf(w, `{"data":{"priceId":%d}}`, calls)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, postWithKey("/api/prices/price", "key-1", `{"brandId":1}`))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, postWithKey("/api/prices/price", "key-1", `{"brandId":1}`))

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, "true", second.Header().Get(ReplayHeader))
	assert.Empty(t, first.Header().Get(ReplayHeader))
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	store := newFakeIdempotencyStore()
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("/api/brands", "key-2", `{"name":"A"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postWithKey("/api/brands", "key-2", `{"name":"B"}`))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeIdempotency), errorCode(t, rec))
}

func TestIdempotencyReportsInFlightRequest(t *testing.T) {
	store := newFakeIdempotencyStore()
	var inner *httptest.ResponseRecorder
	var handler http.Handler
	handler = Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inner == nil {
			inner = httptest.NewRecorder()
			handler.ServeHTTP(inner, postWithKey("/api/brands", "key-4", `{"name":"A"}`))
		}
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("/api/brands", "key-4", `{"name":"A"}`))

	require.NotNil(t, inner)
	assert.Equal(t, http.StatusConflict, inner.Code)
	assert.Equal(t, string(pkgerrors.CodeConflict), errorCode(t, inner))
}

func TestIdempotencyPassesThroughWithoutKey(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), postWithKey("/api/prices/price", "", `{}`))
	}
	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}

func TestIdempotencyReleasesOnServerErrors(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("/api/prices/price", "key-3", `{}`))
	assert.Empty(t, store.data)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postWithKey("/api/prices/price", "key-3", `{}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyStoreFailureIsDependencyError(t *testing.T) {
	store := newFakeIdempotencyStore()
	store.reserveErr = errors.New("connection refused")
	handler := Idempotency(store, time.Hour, nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postWithKey("/api/brands", "key-5", `{}`))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestIdempotencyRejectsOversizedKey(t *testing.T) {
	handler := Idempotency(newFakeIdempotencyStore(), time.Hour, nil)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postWithKey("/api/brands", strings.Repeat("k", maxIdempotencyKeyLen+1), `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdempotencyDisabledWithoutStore(t *testing.T) {
	handler := Idempotency(nil, time.Hour, nil)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postWithKey("/api/brands", "key-6", `{}`))
	assert.Equal(t, http.StatusOK, rec.Code)
}
