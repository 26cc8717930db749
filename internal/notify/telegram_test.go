package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSend(t *testing.T) {
	var got sendMessageBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegram(TelegramConfig{BotToken: "TOKEN", ChatID: "-100", BaseURL: srv.URL, PerSec: 1000})
	require.NoError(t, tg.Send(context.Background(), "<b>hello</b>"))

	assert.Equal(t, "-100", got.ChatID)
	assert.Equal(t, "<b>hello</b>", got.Text)
	assert.Equal(t, "HTML", got.ParseMode)
}

func TestTelegramNon200IsErrorNotRetry(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	tg := NewTelegram(TelegramConfig{BotToken: "T", ChatID: "1", BaseURL: srv.URL, PerSec: 1000})
	err := tg.Send(context.Background(), "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int64(1), requests.Load(), "a failed send must not be retried")
}

func TestTelegramLimitersAreIndependent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	mk := func() *Telegram {
		return NewTelegram(TelegramConfig{
			BotToken: "T", ChatID: "1", BaseURL: srv.URL,
			Timeout: 100 * time.Millisecond, Burst: 1, PerSec: 0.001,
		})
	}
	busy := mk()
	idle := mk()

	ctx := context.Background()
	require.NoError(t, busy.Send(ctx, "first"))
	err := busy.Send(ctx, "second")
	require.Error(t, err, "the second send exhausts this sink's limiter")
	assert.Contains(t, err.Error(), "rate limit")

	// A different sink has its own limiter and is unaffected.
	assert.NoError(t, idle.Send(ctx, "other account"))
}

func TestTelegramTimeoutIsBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	tg := NewTelegram(TelegramConfig{BotToken: "T", ChatID: "1", BaseURL: srv.URL, Timeout: 50 * time.Millisecond, PerSec: 1000})
	start := time.Now()
	err := tg.Send(context.Background(), "body")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond, "send must respect its timeout budget")
}
