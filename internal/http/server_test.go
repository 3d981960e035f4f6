package httpapi

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"piaopiao-backend-go/internal/config"
	"piaopiao-backend-go/internal/messaging"
	"piaopiao-backend-go/internal/services"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const channelSecret = "test-channel-secret"

type fakeDispatcher struct {
	mu      sync.Mutex
	events  []messaging.Event
	pushes  [][2]string
	pushErr error
}

func (f *fakeDispatcher) HandleEvents(_ context.Context, events []messaging.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
}

func (f *fakeDispatcher) PushSummary(_ context.Context, projectID, groupID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if projectID == "" || groupID == "" {
		return services.ErrBadRequest(services.MsgMissingPushTargets)
	}
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes = append(f.pushes, [2]string{projectID, groupID})
	return nil
}

func newTestServer(t *testing.T, cfg config.Config) (*Server, *fakeDispatcher) {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cfg.ChannelSecret = channelSecret
	dispatcher := &fakeDispatcher{}
	return NewServer(db, cfg, dispatcher, zap.NewNop()), dispatcher
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	_, _ = mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

const textEventBody = `{"destination":"Ubot","events":[{"type":"message","mode":"active","timestamp":1741745400000,"webhookEventId":"e1","deliveryContext":{"isRedelivery":false},"replyToken":"r1","source":{"type":"group","groupId":"G1","userId":"U1"},"message":{"type":"text","id":"m1","quoteToken":"q","text":"本週結算"}}]}`

func TestCallback(t *testing.T) {
	srv, dispatcher := newTestServer(t, config.Config{})
	handler := srv.Router()

	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewBufferString(textEventBody))
	req.Header.Set("X-Line-Signature", sign(textEventBody))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, "本週結算", dispatcher.events[0].Text)
	assert.Equal(t, "G1", dispatcher.events[0].GroupID)
}

func TestCallbackBadSignature(t *testing.T) {
	srv, dispatcher := newTestServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewBufferString(textEventBody))
	req.Header.Set("X-Line-Signature", "bm90LWEtc2lnbmF0dXJl")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, dispatcher.events)
}

func postSummary(t *testing.T, handler http.Handler, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/send_project_summary", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSendProjectSummary(t *testing.T) {
	srv, dispatcher := newTestServer(t, config.Config{})
	handler := srv.Router()

	rec := postSummary(t, handler, `{"project_id":"P1","group_id":"G1"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, [][2]string{{"P1", "G1"}}, dispatcher.pushes)

	rec = postSummary(t, handler, `{"project_id":"P1"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, services.MsgMissingPushTargets, body.Message)
	assert.False(t, body.Success)

	rec = postSummary(t, handler, `not json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	dispatcher.pushErr = services.ErrNotFound(services.MsgProjectNotFound)
	rec = postSummary(t, handler, `{"project_id":"P404","group_id":"G1"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendProjectSummaryRequiresToken(t *testing.T) {
	srv, dispatcher := newTestServer(t, config.Config{SummaryAPISecret: "push-secret"})
	handler := srv.Router()

	rec := postSummary(t, handler, `{"project_id":"P1","group_id":"G1"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postSummary(t, handler, `{"project_id":"P1","group_id":"G1"}`, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, dispatcher.pushes)

	token, _, err := srv.Tokens.CreatePushToken("scheduler", time.Now())
	require.NoError(t, err)
	rec = postSummary(t, handler, `{"project_id":"P1","group_id":"G1"}`, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, dispatcher.pushes, 1)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var sample services.HealthSample
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sample))
	assert.Equal(t, "ok", sample.Database)
}

func TestHealthDatabaseDown(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{})
	require.NoError(t, srv.DB.Close())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
