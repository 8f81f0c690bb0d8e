package api

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/soaringjerry/Rasch/internal/rasch"
)

type Tenant struct {
	ID   string
	Name string
}

type User struct {
	ID        string
	Email     string
	PassHash  []byte
	TenantID  string
	CreatedAt time.Time
}

type Dataset struct {
	ID           string
	TenantID     string
	Name         string
	PersonLabels []string
	ItemLabels   []string
	Responses    [][]float64
	CreatedAt    time.Time
}

type Job struct {
	ID           string
	TenantID     string
	DatasetID    string
	DatasetName  string
	PersonLabels []string
	ItemLabels   []string
	PersonScores []float64
	ItemScores   []float64
	Status       string
	Error        string
	SubmittedAt  time.Time
	StartedAt    time.Time
	FinishedAt   time.Time
	Result       *rasch.Result
	Reliability  float64
}

// memoryStore keeps everything in process memory. Records are copied on
// the way in and out; slices inside them are treated as immutable.
type memoryStore struct {
	mu           sync.RWMutex
	tenants      map[string]*Tenant
	usersByEmail map[string]*User
	datasets     map[string]*Dataset
	jobs         map[string]*Job
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		tenants:      map[string]*Tenant{},
		usersByEmail: map[string]*User{},
		datasets:     map[string]*Dataset{},
		jobs:         map[string]*Job{},
	}
}

func (s *memoryStore) AddTenant(t *Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tenants[t.ID] = &cp
}

func (s *memoryStore) AddUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.usersByEmail[strings.ToLower(u.Email)] = &cp
}

func (s *memoryStore) FindUserByEmail(email string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

func (s *memoryStore) AddDataset(d *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.datasets[d.ID] = &cp
}

func (s *memoryStore) GetDataset(id string) *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.datasets[id]
	if !ok {
		return nil
	}
	cp := *d
	return &cp
}

func (s *memoryStore) ListDatasetsByTenant(tid string) []*Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Dataset{}
	for _, d := range s.datasets {
		if d.TenantID == tid {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *memoryStore) DeleteDataset(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[id]; !ok {
		return false
	}
	delete(s.datasets, id)
	return true
}

func (s *memoryStore) SaveJob(j *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *j
	s.jobs[j.ID] = &cp
}

func (s *memoryStore) GetJob(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil
	}
	cp := *j
	return &cp
}
