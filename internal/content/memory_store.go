package content

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is the in-process content store (the production site keeps
// page config and the media index as JSON blobs; this is the same idea
// behind an interface).
type MemoryStore struct {
	mu    sync.RWMutex
	pages map[string]map[string]string
	media *MediaIndex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pages: make(map[string]map[string]string)}
}

func (s *MemoryStore) SavePage(_ context.Context, slug string, rows map[string]string) error {
	cp := make(map[string]string, len(rows))
	for k, v := range rows {
		cp[k] = v
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[slug] = cp
	return nil
}

func (s *MemoryStore) GetPage(_ context.Context, slug string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.pages[slug]
	if !ok {
		return nil, ErrPageNotFound
	}
	cp := make(map[string]string, len(rows))
	for k, v := range rows {
		cp[k] = v
	}
	return cp, nil
}

func (s *MemoryStore) ListPages(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.pages))
	for slug := range s.pages {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) SaveIndex(_ context.Context, idx *MediaIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *idx
	cp.Entries = append([]ObjectInfo(nil), idx.Entries...)
	s.media = &cp
	return nil
}

func (s *MemoryStore) GetIndex(_ context.Context) (*MediaIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.media == nil {
		return nil, nil
	}
	cp := *s.media
	cp.Entries = append([]ObjectInfo(nil), s.media.Entries...)
	return &cp, nil
}

var (
	_ PageStore  = (*MemoryStore)(nil)
	_ MediaStore = (*MemoryStore)(nil)
)
