package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bikerental/internal/config"
	apierrors "bikerental/internal/errors"
	"bikerental/internal/services"
	"bikerental/internal/shared/testutil"
	"bikerental/pkg/contracts/domain"
	"bikerental/pkg/contracts/events"
)

// MockViewProvider is a mock for the ViewProvider interface
type MockViewProvider struct {
	mock.Mock
}

func (m *MockViewProvider) Menu() []domain.MenuItem {
	return m.Called().Get(0).([]domain.MenuItem)
}

func (m *MockViewProvider) GetView(ctx context.Context, name string) (*domain.ViewResponse, error) {
	args := m.Called(ctx, name)
	if v := args.Get(0); v != nil {
		return v.(*domain.ViewResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

var testMenu = []domain.MenuItem{
	{Slug: "season", Title: "Musim", Order: 1},
	{Slug: "weekday", Title: "Hari", Order: 2},
	{Slug: "hour", Title: "Jam", Order: 3},
	{Slug: "year", Title: "Tahun", Order: 4},
}

type testEnv struct {
	server *httptest.Server
	hub    *Hub
	views  *MockViewProvider
	logs   *testutil.BufferedSlogHandler
}

func newTestEnv(t *testing.T, allowedOrigins ...string) *testEnv {
	t.Helper()

	// Session goroutines may outlive the test, so the handler must not log to t
	logs := testutil.NewBufferedSlogHandler(nil)
	logger := testLogger(logs)

	views := new(MockViewProvider)
	views.On("Menu").Return(testMenu).Maybe()

	hub := NewHub(logger, nil)
	handler := NewHandler(hub, views, config.Default().WebSocket, allowedOrigins, logger)
	server := httptest.NewServer(handler)

	t.Cleanup(func() {
		hub.Stop()
		server.Close()
	})

	return &testEnv{server: server, hub: hub, views: views, logs: logs}
}

func (e *testEnv) url() string {
	return "ws" + strings.TrimPrefix(e.server.URL, "http")
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(e.url(), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// dialPastMenu connects and consumes the menu message
func (e *testEnv) dialPastMenu(t *testing.T) *websocket.Conn {
	t.Helper()

	conn := e.dial(t)
	_, msgType := readMessage(t, conn)
	require.Equal(t, events.MessageTypeMenu, msgType)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) ([]byte, events.MessageType) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var base events.BaseMessage
	require.NoError(t, json.Unmarshal(data, &base))
	return data, base.Type
}

func readError(t *testing.T, conn *websocket.Conn) events.ErrorMessage {
	t.Helper()

	data, msgType := readMessage(t, conn)
	require.Equal(t, events.MessageTypeError, msgType, string(data))

	var msg events.ErrorMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func send(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

func TestHandler_SendsMenuOnConnect(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)

	data, msgType := readMessage(t, conn)
	require.Equal(t, events.MessageTypeMenu, msgType)

	var menu events.MenuMessage
	require.NoError(t, json.Unmarshal(data, &menu))
	assert.Equal(t, "Dashboard Analisis Penyewaan Sepeda", menu.Data.Title)
	assert.Equal(t, "Jumlah Penyewaan Sepeda", menu.Data.Header)
	assert.Equal(t, "Pilih opsi:", menu.Data.Prompt)
	assert.Equal(t, "season", menu.Data.Default)
	assert.Equal(t, testMenu, menu.Data.Items)
	assert.NotEmpty(t, menu.SessionID)
}

func TestHandler_SelectView(t *testing.T) {
	env := newTestEnv(t)
	view := &domain.ViewResponse{
		View:         "season",
		Title:        "Jumlah Penyewaan Sepeda Berdasarkan Musim",
		Table:        domain.TableKindDaily,
		KeyColumn:    domain.ColumnSeason,
		ValueColumns: []string{domain.ColumnTotalRentals},
		Rows: []domain.AggregateRow{
			{Key: "3", Values: map[string]int64{domain.ColumnTotalRentals: 10643}},
		},
	}
	env.views.On("GetView", mock.Anything, "season").Return(view, nil)

	conn := env.dialPastMenu(t)
	send(t, conn, events.ClientMessage{ID: "r1", Type: events.MessageTypeSelectView, View: "season"})

	data, msgType := readMessage(t, conn)
	require.Equal(t, events.MessageTypeView, msgType)

	var msg events.ViewMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "r1", msg.RequestID)
	require.NotNil(t, msg.Data)
	assert.Equal(t, "season", msg.Data.View)
	assert.Equal(t, int64(10643), msg.Data.Rows[0].Values[domain.ColumnTotalRentals])

	env.views.AssertExpectations(t)
}

func TestHandler_ViewFailuresKeepSessionOpen(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "unknown view", err: services.ErrUnknownView, wantCode: CodeViewNotFound},
		{name: "aggregation failure", err: apierrors.NewAggregationError("column missing", nil), wantCode: CodeAggregationFailed},
		{name: "tables not loaded", err: apierrors.NewDataLoadError("daily table not loaded", nil), wantCode: CodeDataUnavailable},
		{name: "other failure", err: errors.New("boom"), wantCode: CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.views.On("GetView", mock.Anything, "broken").Return(nil, tt.err)

			conn := env.dialPastMenu(t)
			send(t, conn, events.ClientMessage{ID: "r2", Type: events.MessageTypeSelectView, View: "broken"})

			msg := readError(t, conn)
			assert.Equal(t, tt.wantCode, msg.Error.Code)
			assert.Equal(t, "r2", msg.RequestID)
			assert.Equal(t, "broken", msg.Error.View)
			assert.False(t, msg.Error.Fatal)

			send(t, conn, events.ClientMessage{ID: "p1", Type: events.MessageTypePing})
			_, msgType := readMessage(t, conn)
			assert.Equal(t, events.MessageTypePong, msgType)
		})
	}
}

func TestHandler_InvalidMessages(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantCode string
	}{
		{name: "not json", payload: "{not json", wantCode: CodeInvalidMessage},
		{name: "unknown type", payload: `{"type":"delete_view","view":"season"}`, wantCode: CodeUnknownMessageType},
		{name: "missing view", payload: `{"type":"select_view"}`, wantCode: CodeInvalidMessage},
		{name: "path in view name", payload: `{"type":"select_view","view":"../season"}`, wantCode: CodeInvalidMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			conn := env.dialPastMenu(t)

			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)))

			msg := readError(t, conn)
			assert.Equal(t, tt.wantCode, msg.Error.Code)
			env.views.AssertNotCalled(t, "GetView", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_PingPong(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dialPastMenu(t)

	send(t, conn, events.ClientMessage{ID: "p9", Type: events.MessageTypePing})

	data, msgType := readMessage(t, conn)
	require.Equal(t, events.MessageTypePong, msgType)

	var base events.BaseMessage
	require.NoError(t, json.Unmarshal(data, &base))
	assert.Equal(t, "p9", base.ID)
}

func TestHandler_CheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		wantOK  bool
	}{
		{name: "allowed origin", allowed: []string{"http://dashboard.example"}, origin: "http://dashboard.example", wantOK: true},
		{name: "wildcard", allowed: []string{"*"}, origin: "http://anywhere.example", wantOK: true},
		{name: "foreign origin", allowed: []string{"http://dashboard.example"}, origin: "http://evil.example", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.allowed...)

			header := http.Header{}
			header.Set("Origin", tt.origin)
			conn, resp, err := websocket.DefaultDialer.Dial(env.url(), header)
			if resp != nil && resp.Body != nil {
				defer resp.Body.Close()
			}

			if !tt.wantOK {
				require.Error(t, err)
				require.NotNil(t, resp)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
				assert.True(t, env.logs.ContainsMessage("websocket origin rejected"))
				return
			}

			require.NoError(t, err)
			conn.Close()
		})
	}
}

func TestHandler_SameHostOriginAllowed(t *testing.T) {
	env := newTestEnv(t)

	header := http.Header{}
	header.Set("Origin", env.server.URL)
	conn, resp, err := websocket.DefaultDialer.Dial(env.url(), header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	conn.Close()
}
