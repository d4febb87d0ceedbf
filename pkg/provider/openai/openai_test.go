package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castforge/castforge/pkg/podcast"
	"github.com/castforge/castforge/pkg/provider"
)

func outlineServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)

		outline := provider.Outline{
			Title: "Test Episode",
			Sections: []provider.OutlineSection{
				{Heading: "Opening", Bullets: []string{"hook"}},
			},
		}
		content, _ := json.Marshal(outline)

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": string(content)}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerator_GenerateOutline(t *testing.T) {
	srv := outlineServer(t)
	defer srv.Close()

	gen := NewGenerator(Config{APIKey: "test-key", BaseURL: srv.URL})

	res, err := gen.GenerateOutline(context.Background(), provider.OutlineRequest{
		Input: podcast.Input{Topic: "go testing", Language: "en"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Test Episode", res.Outline.Title)
	require.NotNil(t, res.Usage)
	assert.Equal(t, 30, res.Usage.TotalTokens)
}

func TestGenerator_MissingKeyIsConfigError(t *testing.T) {
	gen := NewGenerator(Config{})
	_, err := gen.GenerateOutline(context.Background(), provider.OutlineRequest{})
	assert.True(t, provider.IsConfigError(err))

	synth := NewSynthesizer(Config{})
	_, err = synth.Speak(context.Background(), provider.SpeechRequest{Text: "hi"})
	assert.True(t, provider.IsConfigError(err))
}

func TestGenerator_HTTPErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	gen := NewGenerator(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := gen.GenerateOutline(context.Background(), provider.OutlineRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 429")
}

func TestGenerator_FencedJSONTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := "```json\n{\"title\":\"Fenced\",\"sections\":[{\"heading\":\"A\",\"bullets\":[]}]}\n```"
		resp := map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": content}}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	gen := NewGenerator(Config{APIKey: "k", BaseURL: srv.URL})
	res, err := gen.GenerateOutline(context.Background(), provider.OutlineRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Fenced", res.Outline.Title)
}

func TestSynthesizer_Speak(t *testing.T) {
	mp3 := []byte{0xff, 0xfb, 0x90, 0x00, 0x01}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/speech", r.URL.Path)

		var req speechAPIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mp3", req.ResponseFormat)
		assert.Equal(t, "alloy", req.Voice)

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(mp3)
	}))
	defer srv.Close()

	synth := NewSynthesizer(Config{APIKey: "k", BaseURL: srv.URL})
	res, err := synth.Speak(context.Background(), provider.SpeechRequest{Text: "hello world"})
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", res.MIMEType)
	assert.Equal(t, mp3, res.Audio)
}

func TestSynthesizer_EmptyAudioIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	synth := NewSynthesizer(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := synth.Speak(context.Background(), provider.SpeechRequest{Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty audio")
}
