package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartbites/backend/config"
)

// newFakeOllama streams the given lines with the given status
func newFakeOllama(t *testing.T, status int, lines ...string) (*httptest.Server, *map[string]interface{}) {
	t.Helper()
	received := map[string]interface{}{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(status)
		for _, line := range lines {
			_, _ = w.Write([]byte(line + "\n"))
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}))
	t.Cleanup(server.Close)
	return server, &received
}

func newTestInferenceService(baseURL string) *InferenceService {
	return NewInferenceService(config.OllamaConfig{
		BaseURL: baseURL,
		Model:   "llava",
		Timeout: 2 * time.Second,
	}, zap.NewNop())
}

func TestInferenceService_Generate(t *testing.T) {
	ctx := context.Background()
	payload := PromptPayload{Model: "llava", Prompt: "Suggest a meal"}

	t.Run("should concatenate streamed fragments", func(t *testing.T) {
		server, received := newFakeOllama(t, http.StatusOK,
			`{"response":"Hel","done":false}`,
			``,
			`{"response":"lo","done":false}`,
			`{"response":"","done":true}`,
		)

		result, err := newTestInferenceService(server.URL).Generate(ctx, payload)
		require.NoError(t, err)
		assert.Equal(t, "Hello", result.Text)
		assert.Equal(t, http.StatusOK, result.StatusCode)

		assert.Equal(t, "llava", (*received)["model"])
		assert.Equal(t, "Suggest a meal", (*received)["prompt"])
		assert.NotContains(t, *received, "images")
	})

	t.Run("should send the image when present", func(t *testing.T) {
		server, received := newFakeOllama(t, http.StatusOK, `{"response":"A salad","done":true}`)

		withImage := payload
		withImage.Images = []string{"aGVsbG8="}
		_, err := newTestInferenceService(server.URL).Generate(ctx, withImage)
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"aGVsbG8="}, (*received)["images"])
	})

	t.Run("should collapse doubled newlines and trim", func(t *testing.T) {
		server, _ := newFakeOllama(t, http.StatusOK,
			`{"response":"\n Line one\n\n"}`,
			`{"response":"Line two\n\n","done":true}`,
		)

		result, err := newTestInferenceService(server.URL).Generate(ctx, payload)
		require.NoError(t, err)
		assert.Equal(t, "Line one\nLine two", result.Text)
	})

	t.Run("should pass the upstream status through", func(t *testing.T) {
		server, _ := newFakeOllama(t, http.StatusAccepted, `{"response":"ok","done":true}`)

		result, err := newTestInferenceService(server.URL).Generate(ctx, payload)
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, result.StatusCode)
	})

	t.Run("should fail on a fragment without a response", func(t *testing.T) {
		server, _ := newFakeOllama(t, http.StatusOK,
			`{"response":"partial"}`,
			`{"done":true}`,
		)

		result, err := newTestInferenceService(server.URL).Generate(ctx, payload)
		assert.Nil(t, result)
		var inferenceErr *InferenceError
		require.True(t, errors.As(err, &inferenceErr))
	})

	t.Run("should surface the upstream error text", func(t *testing.T) {
		server, _ := newFakeOllama(t, http.StatusNotFound, `{"error":"model \"llava\" not found"}`)

		_, err := newTestInferenceService(server.URL).Generate(ctx, payload)
		require.Error(t, err)
		assert.Equal(t, `model "llava" not found`, err.Error())
	})

	t.Run("should fail on malformed JSON", func(t *testing.T) {
		server, _ := newFakeOllama(t, http.StatusOK, `{"response":`)

		_, err := newTestInferenceService(server.URL).Generate(ctx, payload)
		var inferenceErr *InferenceError
		assert.True(t, errors.As(err, &inferenceErr))
	})

	t.Run("should fail when the server is unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := newTestInferenceService(url).Generate(ctx, payload)
		var inferenceErr *InferenceError
		assert.True(t, errors.As(err, &inferenceErr))
	})

	t.Run("should read fragments larger than the default scanner buffer", func(t *testing.T) {
		long := strings.Repeat("a", 200<<10)
		server, _ := newFakeOllama(t, http.StatusOK, `{"response":"`+long+`","done":true}`)

		result, err := newTestInferenceService(server.URL).Generate(ctx, payload)
		require.NoError(t, err)
		assert.Len(t, result.Text, len(long))
	})
}

func TestCleanInferenceText(t *testing.T) {
	assert.Equal(t, "a\nb", CleanInferenceText("  a\n\nb\n"))
	assert.Equal(t, "a\n\nb", CleanInferenceText("a\n\n\n\nb"))
	assert.Empty(t, CleanInferenceText("\n\n"))
}

func TestInferenceService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	assert.NoError(t, newTestInferenceService(server.URL).Ping(context.Background()))
}
