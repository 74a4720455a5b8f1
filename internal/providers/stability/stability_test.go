package stability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edugate/internal/core"
	"edugate/internal/providers"
)

func TestGenerateImage(t *testing.T) {
	var got textToImageRequest
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"artifacts":[{"base64":"cG5n","seed":1,"finishReason":"SUCCESS"}]}`))
	}))
	defer server.Close()

	p := New(providers.Config{APIKey: "sk-stab", BaseURL: server.URL, Size: "768x512"}, providers.Options{})
	img, err := p.GenerateImage(context.Background(), "a labelled plant cell")

	require.NoError(t, err)
	assert.Equal(t, "cG5n", img)
	assert.Equal(t, "/generation/"+defaultEngine+"/text-to-image", gotPath)
	assert.Equal(t, "Bearer sk-stab", gotAuth)
	require.Len(t, got.TextPrompts, 1)
	assert.Equal(t, "a labelled plant cell", got.TextPrompts[0].Text)
	assert.Equal(t, 768, got.Width)
	assert.Equal(t, 512, got.Height)
}

func TestGenerateImage_MissingArtifact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"artifacts":[],"id":"x"}`))
	}))
	defer server.Close()

	p := New(providers.Config{BaseURL: server.URL}, providers.Options{})
	_, err := p.GenerateImage(context.Background(), "x")

	var gwErr *core.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, core.ErrorTypeUpstreamFormat, gwErr.Type)
	assert.Contains(t, gwErr.Message, "artifacts.0.base64")
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in     string
		w, h   int
		wantOK bool
	}{
		{in: "1024x1024", w: 1024, h: 1024, wantOK: true},
		{in: "768X512", w: 768, h: 512, wantOK: true},
		{in: "", wantOK: false},
		{in: "big", wantOK: false},
		{in: "0x10", wantOK: false},
	}
	for _, tt := range tests {
		w, h, ok := parseSize(tt.in)
		if ok != tt.wantOK || (ok && (w != tt.w || h != tt.h)) {
			t.Errorf("parseSize(%q) = %d, %d, %v", tt.in, w, h, ok)
		}
	}
}
