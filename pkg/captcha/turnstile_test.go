package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudialoqatr/lost-found-helper-sub000/config"
)

type capturedRequest struct {
	form        url.Values
	contentType string
}

func newTestServer(t *testing.T, success bool, seen *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err == nil {
			seen.form = r.PostForm
		}
		seen.contentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": success})
	}))
}

func TestTurnstileVerifier_Success(t *testing.T) {
	var seen capturedRequest
	srv := newTestServer(t, true, &seen)
	defer srv.Close()

	v, err := NewTurnstileVerifier(&config.CaptchaConfig{VerifyURL: srv.URL, SecretKey: "secret"})
	require.NoError(t, err)

	ok, err := v.Verify(context.Background(), "valid", "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, "secret", seen.form.Get("secret"))
	assert.Equal(t, "valid", seen.form.Get("response"))
	assert.Equal(t, "203.0.113.7", seen.form.Get("remoteip"))
	assert.Equal(t, "application/x-www-form-urlencoded", seen.contentType)
}

func TestTurnstileVerifier_Rejected(t *testing.T) {
	var seen capturedRequest
	srv := newTestServer(t, false, &seen)
	defer srv.Close()

	v, err := NewTurnstileVerifier(&config.CaptchaConfig{VerifyURL: srv.URL, SecretKey: "secret"})
	require.NoError(t, err)

	ok, err := v.Verify(context.Background(), "bad", "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTurnstileVerifier_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	v, err := NewTurnstileVerifier(&config.CaptchaConfig{VerifyURL: srv.URL, SecretKey: "secret"})
	require.NoError(t, err)

	ok, err := v.Verify(context.Background(), "token", "")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestTurnstileVerifier_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	v, err := NewTurnstileVerifier(&config.CaptchaConfig{
		VerifyURL: srv.URL,
		SecretKey: "secret",
		Timeout:   20 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), "token", "")
	assert.Error(t, err)
}

func TestNewTurnstileVerifier_MissingSecret(t *testing.T) {
	_, err := NewTurnstileVerifier(&config.CaptchaConfig{})
	assert.ErrorIs(t, err, ErrMissingSecret)
}
