package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExpoSendReportsDeadTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg PushMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		require.Len(t, msg.To, 2)

		resp := pushResponse{Data: []PushTicket{
			{Status: "ok", ID: "ticket-1"},
		}}
		resp.Data = append(resp.Data, PushTicket{Status: "error", Message: "gone"})
		resp.Data[1].Details.Error = "DeviceNotRegistered"

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewExpoClient(server.URL, 5*time.Second, 0, zap.NewNop())
	dead, err := client.Send(context.Background(), []string{"alive", "dead"}, "Hi", "Body")
	require.NoError(t, err)
	assert.Equal(t, []string{"dead"}, dead)
}

func TestExpoSendRetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pushResponse{Data: []PushTicket{{Status: "ok"}}})
	}))
	defer server.Close()

	client := NewExpoClient(server.URL, 5*time.Second, 2, zap.NewNop())
	dead, err := client.Send(context.Background(), []string{"token"}, "Hi", "Body")
	require.NoError(t, err)
	assert.Empty(t, dead)
	assert.Equal(t, 2, calls)
}

func TestExpoSendStopsOnClientError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewExpoClient(server.URL, 5*time.Second, 5, zap.NewNop())
	_, err := client.Send(context.Background(), []string{"token"}, "Hi", "Body")
	require.Error(t, err)
	assert.Equal(t, 1, calls) // 4xx is not retried
}
