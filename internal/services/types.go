package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soaringjerry/Rasch/internal/rasch"
)

type Tenant struct {
	ID   string
	Name string
}

// User is an examiner account; every examiner owns one tenant.
type User struct {
	ID        string
	Email     string
	PassHash  []byte
	TenantID  string
	CreatedAt time.Time
}

// Dataset is an uploaded persons × items response matrix. Responses are
// stored binarized.
type Dataset struct {
	ID           string
	TenantID     string
	Name         string
	PersonLabels []string
	ItemLabels   []string
	Responses    [][]float64
	CreatedAt    time.Time
}

type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job tracks one estimation run of a dataset. Labels and raw scores are
// snapshotted at submission so a job outlives its dataset.
type Job struct {
	ID           string
	TenantID     string
	DatasetID    string
	DatasetName  string
	PersonLabels []string
	ItemLabels   []string
	PersonScores []float64
	ItemScores   []float64
	Status       JobStatus
	Error        string
	SubmittedAt  time.Time
	StartedAt    time.Time
	FinishedAt   time.Time
	Result       *rasch.Result
	Reliability  float64
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
