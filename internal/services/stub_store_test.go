package services

import (
	"context"
	"sort"
	"sync"
)

// stubStore keeps datasets and jobs in maps and hands out copies, the way
// the API memory store does.
type stubStore struct {
	mu       sync.Mutex
	datasets map[string]*Dataset
	jobs     map[string]*Job
}

func newStubStore() *stubStore {
	return &stubStore{datasets: map[string]*Dataset{}, jobs: map[string]*Job{}}
}

func (s *stubStore) AddDataset(d *Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.datasets[d.ID] = &cp
	return nil
}

func (s *stubStore) GetDataset(id string) (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.datasets[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (s *stubStore) ListDatasets(tenantID string) ([]*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*Dataset{}
	for _, d := range s.datasets {
		if d.TenantID == tenantID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubStore) DeleteDataset(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.datasets[id]
	delete(s.datasets, id)
	return ok, nil
}

func (s *stubStore) SaveJob(j *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *j
	s.jobs[j.ID] = &cp
	return nil
}

func (s *stubStore) GetJob(id string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

// inlineQueue runs tasks immediately, or rejects them with err.
type inlineQueue struct {
	err error
}

func (q *inlineQueue) Submit(t Task) error {
	if q.err != nil {
		return q.err
	}
	return t.Run(context.Background())
}
