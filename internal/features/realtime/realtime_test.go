package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	users_middleware "untitledone/internal/features/users/middleware"
	users_testing "untitledone/internal/features/users/testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PublishNotification_WhenUserConnected_ClientReceivesEvent(t *testing.T) {
	alice := users_testing.NewTestUser("alice")
	hub := NewHub(slog.Default())
	server := newRealtimeTestServer(t, hub, users_testing.TokenUsers{"alice-token": alice})

	conn := dialRealtime(t, server, "alice-token")
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	publisher := NewPublisher(NewLocalBroker(hub))
	require.NoError(t, publisher.PublishNotification(context.Background(), alice.ID, map[string]string{"id": "n1"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(message, &envelope))
	assert.Equal(t, EventTypeNotification, envelope.Type)
	assert.JSONEq(t, `{"id":"n1"}`, string(envelope.Data))
}

func Test_PublishNotification_ForOtherUser_IsNotDelivered(t *testing.T) {
	hub := NewHub(slog.Default())

	delivered := hub.Deliver(uuid.New(), []byte(`{}`))

	assert.Zero(t, delivered)
}

func Test_Connect_WithoutToken_ReturnsUnauthorized(t *testing.T) {
	hub := NewHub(slog.Default())
	server := newRealtimeTestServer(t, hub, users_testing.TokenUsers{})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func Test_Client_WhenPingSent_RepliesWithPong(t *testing.T) {
	alice := users_testing.NewTestUser("alice")
	hub := NewHub(slog.Default())
	server := newRealtimeTestServer(t, hub, users_testing.TokenUsers{"alice-token": alice})

	conn := dialRealtime(t, server, "alice-token")
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(message), `"type":"pong"`)
}

func Test_Hub_WhenClientDisconnects_Unregisters(t *testing.T) {
	alice := users_testing.NewTestUser("alice")
	hub := NewHub(slog.Default())
	server := newRealtimeTestServer(t, hub, users_testing.TokenUsers{"alice-token": alice})

	conn := dialRealtime(t, server, "alice-token")
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func Test_RedisBroker_WhenPublished_EveryInstanceDelivers(t *testing.T) {
	redisServer := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := &recordingDeliverer{}
	second := &recordingDeliverer{}
	firstBroker := startRedisBroker(t, ctx, redisServer, first)
	secondBroker := startRedisBroker(t, ctx, redisServer, second)

	userID := uuid.New()
	publisher := NewPublisher(firstBroker)
	require.NoError(t, publisher.PublishNotification(ctx, userID, map[string]string{"id": "n1"}))

	for _, deliverer := range []*recordingDeliverer{first, second} {
		require.Eventually(t, func() bool { return deliverer.count() == 1 }, 2*time.Second, 10*time.Millisecond)

		recipient, message := deliverer.last()
		assert.Equal(t, userID, recipient)
		assert.Contains(t, string(message), `"type":"notification"`)
	}

	require.NoError(t, secondBroker.Ping(ctx))
}

func Test_RedisBroker_WithMalformedPayload_SkipsIt(t *testing.T) {
	deliverer := &recordingDeliverer{}
	broker := &RedisBroker{deliverer: deliverer, logger: slog.Default()}

	broker.handle("not json")

	assert.Zero(t, deliverer.count())
}

func Test_NewRedisBroker_WithInvalidURL_ReturnsError(t *testing.T) {
	_, err := NewRedisBroker("://nope", &recordingDeliverer{}, slog.Default())

	assert.Error(t, err)
}

func startRedisBroker(
	t *testing.T,
	ctx context.Context,
	redisServer *miniredis.Miniredis,
	deliverer Deliverer,
) *RedisBroker {
	t.Helper()

	broker, err := NewRedisBroker("redis://"+redisServer.Addr(), deliverer, slog.Default())
	require.NoError(t, err)
	require.NoError(t, broker.Start(ctx))
	t.Cleanup(func() { _ = broker.Close() })

	return broker
}

func newRealtimeTestServer(t *testing.T, hub *Hub, tokens users_testing.TokenUsers) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	protected := router.Group("/api/v1")
	protected.Use(users_middleware.AuthMiddleware(tokens))
	NewRealtimeController(hub, "", slog.Default()).RegisterRoutes(protected)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Shutdown()
		server.Close()
	})

	return server
}

func dialRealtime(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func wsURL(server *httptest.Server, token string) string {
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/notifications/ws"
	if token != "" {
		url += "?access_token=" + token
	}

	return url
}

type recordingDeliverer struct {
	mu         sync.Mutex
	recipients []uuid.UUID
	messages   [][]byte
}

func (d *recordingDeliverer) Deliver(userID uuid.UUID, message []byte) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.recipients = append(d.recipients, userID)
	d.messages = append(d.messages, message)
	return 1
}

func (d *recordingDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.messages)
}

func (d *recordingDeliverer) last() (uuid.UUID, []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.recipients[len(d.recipients)-1], d.messages[len(d.messages)-1]
}
