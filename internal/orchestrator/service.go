// Package orchestrator implements the lesson, doubt, audio, diagram and
// transcription flows: validate, derive the cache key, look up, fetch on
// miss, post-process, store and respond.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"edugate/internal/cache"
	"edugate/internal/core"
	"edugate/internal/voice"
)

// TTLs holds the cache lifetime of every resource.
type TTLs struct {
	Lesson      time.Duration
	LessonAudio time.Duration
	Doubt       time.Duration
	DoubtAudio  time.Duration
	Audio       time.Duration
	Diagram     time.Duration
}

// DefaultTTLs returns the standard cache lifetimes.
func DefaultTTLs() TTLs {
	return TTLs{
		Lesson:      7 * 24 * time.Hour,
		LessonAudio: time.Hour,
		Doubt:       time.Hour,
		DoubtAudio:  time.Hour,
		Audio:       24 * time.Hour,
		Diagram:     7 * 24 * time.Hour,
	}
}

// Config tunes the orchestration flows.
type Config struct {
	TTLs TTLs

	// MaxLessonAttempts bounds lesson generation attempts before falling back.
	MaxLessonAttempts int
	// MinLessonChars is the shortest generated lesson considered usable.
	MinLessonChars int
	// MinParagraphChars is the shortest paragraph kept when parsing a lesson.
	MinParagraphChars int
	// MaxNarrationChars is the narration budget; longer text is truncated.
	MaxNarrationChars int
	// WordsPerMinute drives the spoken duration estimate.
	WordsPerMinute int
	// MaxAudioBytes bounds decoded transcription uploads.
	MaxAudioBytes int
}

// DefaultConfig returns the standard orchestration settings.
func DefaultConfig() Config {
	return Config{
		TTLs:              DefaultTTLs(),
		MaxLessonAttempts: 2,
		MinLessonChars:    200,
		MinParagraphChars: 40,
		MaxNarrationChars: 3000,
		WordsPerMinute:    150,
		MaxAudioBytes:     10 << 20,
	}
}

// Collaborators are the upstream generative services.
type Collaborators struct {
	Text        core.TextGenerator
	Speech      core.SpeechSynthesizer
	Recognition core.SpeechRecognizer
	Image       core.ImageGenerator
}

// Hooks receive orchestration events. Nil hooks are skipped.
type Hooks struct {
	OnCacheLookup    func(resource core.Resource, hit bool)
	OnFallback       func(ctx context.Context, resource core.Resource)
	OnDiagramSkipped func(ctx context.Context)
	OnAudioFailure   func(ctx context.Context, resource core.Resource, err error)
}

// Deps are the collaborators and infrastructure a Service is built from.
type Deps struct {
	Collaborators
	Cache  *cache.Backend
	Keyer  *cache.Keyer
	Voices *voice.Catalog
	Hooks  Hooks
}

// Service holds every cache and counter. It is built once at startup and
// shared by all requests.
type Service struct {
	cfg    Config
	collab Collaborators
	keyer  *cache.Keyer
	voices *voice.Catalog
	hooks  Hooks

	lessons      cache.Store[*core.LessonRecord]
	lessonAudio  cache.Store[*core.AudioRecord]
	doubts       cache.Store[*core.DoubtAnswerRecord]
	doubtAudio   cache.Store[*core.AudioRecord]
	audio        cache.Store[*core.AudioRecord]
	diagrams     cache.Store[*core.DiagramRecord]
	counters     map[core.Resource]*counters
	inflight     singleflight.Group
	closeStoreFn []func() error
}

// New creates a Service. Zero-valued Config fields take their defaults.
func New(deps Deps, cfg Config) (*Service, error) {
	c := deps.Collaborators
	switch {
	case c.Text == nil:
		return nil, errors.New("text collaborator is required")
	case c.Speech == nil:
		return nil, errors.New("speech collaborator is required")
	case c.Recognition == nil:
		return nil, errors.New("recognition collaborator is required")
	case c.Image == nil:
		return nil, errors.New("image collaborator is required")
	}

	cfg = withDefaults(cfg)

	backend := deps.Cache
	if backend == nil {
		var err error
		if backend, err = cache.NewBackend(context.Background(), cache.BackendConfig{Type: cache.TypeMemory}); err != nil {
			return nil, fmt.Errorf("failed to create cache backend: %w", err)
		}
	}
	keyer := deps.Keyer
	if keyer == nil {
		keyer = cache.NewKeyer(nil)
	}
	voices := deps.Voices
	if voices == nil {
		voices = voice.NewCatalog(nil)
	}

	s := &Service{
		cfg:         cfg,
		collab:      c,
		keyer:       keyer,
		voices:      voices,
		hooks:       deps.Hooks,
		lessons:     cache.Open[*core.LessonRecord](backend, core.ResourceLesson, cfg.TTLs.Lesson),
		lessonAudio: cache.Open[*core.AudioRecord](backend, core.ResourceLessonAudio, cfg.TTLs.LessonAudio),
		doubts:      cache.Open[*core.DoubtAnswerRecord](backend, core.ResourceDoubt, cfg.TTLs.Doubt),
		doubtAudio:  cache.Open[*core.AudioRecord](backend, core.ResourceDoubtAudio, cfg.TTLs.DoubtAudio),
		audio:       cache.Open[*core.AudioRecord](backend, core.ResourceAudio, cfg.TTLs.Audio),
		diagrams:    cache.Open[*core.DiagramRecord](backend, core.ResourceDiagram, cfg.TTLs.Diagram),
		counters:    make(map[core.Resource]*counters),
	}
	for _, r := range []core.Resource{
		core.ResourceLesson, core.ResourceLessonAudio, core.ResourceDoubt, core.ResourceDoubtAudio,
		core.ResourceAudio, core.ResourceDiagram, core.ResourceTranscribe,
	} {
		s.counters[r] = &counters{}
	}
	s.closeStoreFn = []func() error{
		s.lessons.Close, s.lessonAudio.Close, s.doubts.Close,
		s.doubtAudio.Close, s.audio.Close, s.diagrams.Close,
	}
	return s, nil
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	setDuration := func(v *time.Duration, d time.Duration) {
		if *v <= 0 {
			*v = d
		}
	}
	setInt := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	setDuration(&cfg.TTLs.Lesson, def.TTLs.Lesson)
	setDuration(&cfg.TTLs.LessonAudio, def.TTLs.LessonAudio)
	setDuration(&cfg.TTLs.Doubt, def.TTLs.Doubt)
	setDuration(&cfg.TTLs.DoubtAudio, def.TTLs.DoubtAudio)
	setDuration(&cfg.TTLs.Audio, def.TTLs.Audio)
	setDuration(&cfg.TTLs.Diagram, def.TTLs.Diagram)
	setInt(&cfg.MaxLessonAttempts, def.MaxLessonAttempts)
	setInt(&cfg.MinLessonChars, def.MinLessonChars)
	setInt(&cfg.MinParagraphChars, def.MinParagraphChars)
	setInt(&cfg.MaxNarrationChars, def.MaxNarrationChars)
	setInt(&cfg.WordsPerMinute, def.WordsPerMinute)
	setInt(&cfg.MaxAudioBytes, def.MaxAudioBytes)
	return cfg
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Close stops the stores' background sweepers.
func (s *Service) Close() error {
	var errs []error
	for _, closeFn := range s.closeStoreFn {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
