package orchestrator

import (
	"context"
	"fmt"

	"edugate/internal/core"
	"edugate/internal/relevance"
)

// CacheReport describes the counters and cache sizes of one resource.
type CacheReport struct {
	Resource core.Resource         `json:"resource"`
	Stats    core.Stats            `json:"stats"`
	Entries  map[core.Resource]int `json:"entries,omitempty"`
	// Narration holds the counters of the dependent audio resource, if any.
	Narration *core.Stats `json:"narration,omitempty"`
}

type sizedStore interface {
	Len(ctx context.Context) (int, error)
	Flush(ctx context.Context) (int, error)
}

// stores returns the caches owned by resource, primary first.
// Lesson and doubt own their narration audio caches.
func (s *Service) stores(resource core.Resource) (map[core.Resource]sizedStore, error) {
	switch resource {
	case core.ResourceLesson:
		return map[core.Resource]sizedStore{core.ResourceLesson: s.lessons, core.ResourceLessonAudio: s.lessonAudio}, nil
	case core.ResourceDoubt:
		return map[core.Resource]sizedStore{core.ResourceDoubt: s.doubts, core.ResourceDoubtAudio: s.doubtAudio}, nil
	case core.ResourceAudio:
		return map[core.Resource]sizedStore{core.ResourceAudio: s.audio}, nil
	case core.ResourceDiagram:
		return map[core.Resource]sizedStore{core.ResourceDiagram: s.diagrams}, nil
	case core.ResourceTranscribe:
		return map[core.Resource]sizedStore{}, nil
	default:
		return nil, core.NewNotFoundError(fmt.Sprintf("unknown resource: %s", resource))
	}
}

func narrationOf(resource core.Resource) core.Resource {
	switch resource {
	case core.ResourceLesson:
		return core.ResourceLessonAudio
	case core.ResourceDoubt:
		return core.ResourceDoubtAudio
	default:
		return ""
	}
}

// Report returns the counters and cache sizes for resource.
func (s *Service) Report(ctx context.Context, resource core.Resource) (*CacheReport, error) {
	stores, err := s.stores(resource)
	if err != nil {
		return nil, err
	}

	report := &CacheReport{
		Resource: resource,
		Stats:    s.Stats(resource),
		Entries:  make(map[core.Resource]int, len(stores)),
	}
	for r, store := range stores {
		n, err := store.Len(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s cache: %w", r, err)
		}
		report.Entries[r] = n
	}
	if narration := narrationOf(resource); narration != "" {
		stats := s.Stats(narration)
		report.Narration = &stats
	}
	return report, nil
}

// FlushCache clears every cache owned by resource and returns how many
// entries each lost. Counters are not reset.
func (s *Service) FlushCache(ctx context.Context, resource core.Resource) (map[core.Resource]int, error) {
	stores, err := s.stores(resource)
	if err != nil {
		return nil, err
	}

	cleared := make(map[core.Resource]int, len(stores))
	for r, store := range stores {
		n, err := store.Flush(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to flush %s cache: %w", r, err)
		}
		cleared[r] = n
	}
	return cleared, nil
}

// EvictDiagramKey removes one diagram entry by its cache key.
func (s *Service) EvictDiagramKey(ctx context.Context, key string) (bool, error) {
	return s.diagrams.Delete(ctx, key)
}

// EvictDiagram removes the diagrams cached for topic, grade and language in
// every style and returns how many were removed.
func (s *Service) EvictDiagram(ctx context.Context, topic string, grade int, language string) (int, error) {
	removed := 0
	for _, style := range relevance.Styles {
		ok, err := s.diagrams.Delete(ctx, s.DiagramKey(topic, grade, language, style))
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}
