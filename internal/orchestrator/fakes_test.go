package orchestrator

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"edugate/internal/core"
)

const goodLesson = `Title: How Plants Make Food

## Introduction
Photosynthesis is the process green plants use to turn sunlight into food they can store.

**Explanation:** Leaves capture light with chlorophyll and combine water with carbon dioxide to make sugar.

Analogy: A leaf works like a tiny kitchen where sunlight is the stove and water is an ingredient.

Recap - Plants use light, water and air to make sugar and release the oxygen we breathe.

Quiz: What gas do plants release during photosynthesis?`

type reply struct {
	text string
	err  error
}

type fakeText struct {
	mu      sync.Mutex
	replies []reply
	calls   int
	prompts []string
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeText) Generate(ctx context.Context, prompt string) (string, error) {
	if f.entered != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	r := f.replies[min(f.calls, len(f.replies)-1)]
	f.calls++
	return r.text, r.err
}

func (f *fakeText) Name() string  { return "fake-text" }
func (f *fakeText) Model() string { return "fake-model" }

func (f *fakeText) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSpeech struct {
	mu       sync.Mutex
	err      error
	audio    []byte
	calls    int
	requests []core.SpeechRequest
}

func (f *fakeSpeech) Synthesize(_ context.Context, req core.SpeechRequest) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.audio == nil {
		return []byte("ID3-audio"), nil
	}
	return f.audio, nil
}

type fakeRecognizer struct {
	mu     sync.Mutex
	calls  int
	locale string
	audio  []byte
	text   string
	err    error
}

func (f *fakeRecognizer) Transcribe(_ context.Context, audio []byte, languageCode string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.locale = languageCode
	f.audio = audio
	return f.text, f.err
}

type fakeImage struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	image   string
	err     error
}

func (f *fakeImage) GenerateImage(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.image, f.err
}

type fixture struct {
	svc    *Service
	text   *fakeText
	speech *fakeSpeech
	recog  *fakeRecognizer
	image  *fakeImage
}

func newFixture(t *testing.T, cfg Config, replies ...reply) *fixture {
	t.Helper()
	if len(replies) == 0 {
		replies = []reply{{text: goodLesson}}
	}
	f := &fixture{
		text:   &fakeText{replies: replies},
		speech: &fakeSpeech{},
		recog:  &fakeRecognizer{text: " hello teacher "},
		image:  &fakeImage{image: "aW1hZ2U="},
	}
	svc, err := New(Deps{Collaborators: Collaborators{
		Text:        f.text,
		Speech:      f.speech,
		Recognition: f.recog,
		Image:       f.image,
	}}, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	f.svc = svc
	return f
}
