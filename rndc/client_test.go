package rndc

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_PrimaryOK(t *testing.T) {
	var backupHits int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "text/xml; charset=utf-8", r.Header.Get("Content-Type"))
		assert.Equal(t, SOAPAction, r.Header.Get("SOAPAction"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "<x/>", string(body))
		w.Write([]byte("<ingresoid>1</ingresoid>"))
	}))
	defer primary.Close()
	backup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&backupHits, 1)
	}))
	defer backup.Close()

	res := NewClient(primary.URL, backup.URL, time.Second, nil).Send(context.Background(), "<x/>")
	require.True(t, res.Success)
	assert.Equal(t, "<ingresoid>1</ingresoid>", res.RawBody)
	assert.Equal(t, primary.URL, res.Endpoint)
	assert.Zero(t, atomic.LoadInt32(&backupHits))
}

func TestSend_FailoverOnHTTPError(t *testing.T) {
	var order []string
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "primary")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()
	backup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "backup")
		w.Write([]byte("<ingresoid>999</ingresoid>"))
	}))
	defer backup.Close()

	res := NewClient(primary.URL, backup.URL, time.Second, nil).Send(context.Background(), "<x/>")
	require.True(t, res.Success)
	assert.Equal(t, "<ingresoid>999</ingresoid>", res.RawBody)
	assert.Equal(t, backup.URL, res.Endpoint)
	assert.Equal(t, []string{"primary", "backup"}, order)
}

func TestSend_FailoverOnNetworkError(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	backup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer backup.Close()

	res := NewClient(deadURL, backup.URL, time.Second, nil).Send(context.Background(), "<x/>")
	require.True(t, res.Success)
	assert.Equal(t, "ok", res.RawBody)
}

func TestSend_FailoverOnTimeout(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	backup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("backup"))
	}))
	defer backup.Close()

	res := NewClient(slow.URL, backup.URL, 100*time.Millisecond, nil).Send(context.Background(), "<x/>")
	require.True(t, res.Success)
	assert.Equal(t, "backup", res.RawBody)
}

func TestSend_BothFail(t *testing.T) {
	var hits int32
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer failing.Close()

	res := NewClient(failing.URL, failing.URL, time.Second, nil).Send(context.Background(), "<x/>")
	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "primary:")
	assert.Contains(t, res.ErrorMessage, "backup:")
	assert.Contains(t, res.ErrorMessage, "502")
	// one attempt per endpoint, no retries
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestSend_NoBackupConfigured(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	res := NewClient(failing.URL, "", time.Second, nil).Send(context.Background(), "<x/>")
	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "no backup endpoint")
}

func TestSnippet_KeepsRunesWhole(t *testing.T) {
	// 'x' shifts every two-byte rune so byte 200 falls inside one.
	body := "x" + strings.Repeat("ñ", 150)
	got := snippet([]byte(body))
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), 203)

	assert.Equal(t, "error interno", snippet([]byte("  error interno \n")))
}

func TestSend_HTTPErrorBodyStaysValidUTF8(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "x"+strings.Repeat("á", 300))
	}))
	defer srv.Close()

	res := NewClient(srv.URL, "", time.Second, nil).Send(context.Background(), "<root/>")
	require.False(t, res.Success)
	assert.True(t, utf8.ValidString(res.ErrorMessage))
	assert.Contains(t, res.ErrorMessage, "HTTP 500")
}
