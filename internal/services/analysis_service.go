package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/soaringjerry/Rasch/internal/metrics"
	"github.com/soaringjerry/Rasch/internal/rasch"
)

type AnalysisStore interface {
	GetDataset(id string) (*Dataset, error)
	SaveJob(j *Job) error
	GetJob(id string) (*Job, error)
}

// TaskQueue accepts background work without blocking.
type TaskQueue interface {
	Submit(t Task) error
}

type AnalysisConfig struct {
	Options rasch.Options
	// SubmitRate is submissions per second per tenant; <= 0 disables the limit.
	SubmitRate  float64
	SubmitBurst int
}

type AnalysisService struct {
	store  AnalysisStore
	queue  TaskQueue
	cfg    AnalysisConfig
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

type MeasureRow struct {
	Index      int             `json:"index" yaml:"index"`
	Label      string          `json:"label" yaml:"label"`
	RawScore   int             `json:"raw_score" yaml:"raw_score"`
	Measure    float64         `json:"measure" yaml:"measure"`
	InfitMNSQ  float64         `json:"infit_mnsq" yaml:"infit_mnsq"`
	OutfitMNSQ float64         `json:"outfit_mnsq" yaml:"outfit_mnsq"`
	InfitZ     float64         `json:"infit_z" yaml:"infit_z"`
	OutfitZ    float64         `json:"outfit_z" yaml:"outfit_z"`
	Status     rasch.FitStatus `json:"status" yaml:"status"`
}

type AnalysisSummary struct {
	JobID       string           `json:"job_id,omitempty" yaml:"job_id,omitempty"`
	DatasetID   string           `json:"dataset_id,omitempty" yaml:"dataset_id,omitempty"`
	DatasetName string           `json:"dataset_name" yaml:"dataset_name"`
	Empty       bool             `json:"empty" yaml:"empty"`
	Iterations  int              `json:"iterations" yaml:"iterations"`
	Converged   bool             `json:"converged" yaml:"converged"`
	KR20        float64          `json:"kr20" yaml:"kr20"`
	Persons     []MeasureRow     `json:"persons" yaml:"persons"`
	Items       []MeasureRow     `json:"items" yaml:"items"`
	WrightMap   *rasch.WrightMap `json:"wright_map,omitempty" yaml:"wright_map,omitempty"`
}

type JobView struct {
	ID          string     `json:"id"`
	DatasetID   string     `json:"dataset_id"`
	Status      JobStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Iterations  int        `json:"iterations,omitempty"`
	Converged   bool       `json:"converged"`
}

func NewAnalysisService(store AnalysisStore, queue TaskQueue, cfg AnalysisConfig, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		store:    store,
		queue:    queue,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		limiters: map[string]*rate.Limiter{},
	}
}

// Submit snapshots the dataset and queues its estimation.
func (s *AnalysisService) Submit(tenantID, datasetID string) (*Job, error) {
	job, m, err := s.prepare(tenantID, datasetID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveJob(job); err != nil {
		return nil, err
	}
	jobID := job.ID
	err = s.queue.Submit(Task{ID: jobID, Run: func(ctx context.Context) error {
		return s.execute(ctx, jobID, m)
	}})
	if err != nil {
		job.Status = JobFailed
		job.Error = err.Error()
		job.FinishedAt = s.now()
		_ = s.store.SaveJob(job)
		if errors.Is(err, ErrQueueFull) {
			return nil, NewTooManyRequestsError("analysis queue is full")
		}
		return nil, NewUnavailableError("analysis workers unavailable")
	}
	s.logger.Info("analysis queued", "job_id", jobID, "dataset_id", datasetID, "tenant_id", tenantID)
	return job, nil
}

// RunSync estimates in the calling goroutine and returns the finished job.
func (s *AnalysisService) RunSync(tenantID, datasetID string) (*Job, error) {
	job, m, err := s.prepare(tenantID, datasetID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveJob(job); err != nil {
		return nil, err
	}
	if err := s.execute(context.Background(), job.ID, m); err != nil {
		return nil, err
	}
	return s.store.GetJob(job.ID)
}

func (s *AnalysisService) Job(tenantID, jobID string) (*Job, error) {
	j, err := s.store.GetJob(jobID)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, NewNotFoundError("analysis not found")
	}
	if j.TenantID != tenantID {
		return nil, NewForbiddenError("forbidden")
	}
	return j, nil
}

func (s *AnalysisService) Summary(tenantID, jobID string) (*AnalysisSummary, error) {
	j, err := s.Job(tenantID, jobID)
	if err != nil {
		return nil, err
	}
	return SummarizeJob(j)
}

func (s *AnalysisService) prepare(tenantID, datasetID string) (*Job, *rasch.ResponseMatrix, error) {
	if tenantID == "" {
		return nil, nil, NewUnauthorizedError("unauthorized")
	}
	d, err := s.store.GetDataset(datasetID)
	if err != nil {
		return nil, nil, err
	}
	if d == nil {
		return nil, nil, NewNotFoundError("dataset not found")
	}
	if d.TenantID != tenantID {
		return nil, nil, NewForbiddenError("forbidden")
	}
	if !s.limiter(tenantID).Allow() {
		return nil, nil, NewTooManyRequestsError("too many analyses, retry later")
	}
	m, err := rasch.NewResponseMatrix(d.Responses)
	if err != nil {
		return nil, nil, NewInvalidError(err.Error())
	}
	job := &Job{
		ID:           "a" + shortID(11),
		TenantID:     tenantID,
		DatasetID:    d.ID,
		DatasetName:  d.Name,
		PersonLabels: append([]string(nil), d.PersonLabels...),
		ItemLabels:   append([]string(nil), d.ItemLabels...),
		PersonScores: m.PersonScores(),
		ItemScores:   m.ItemScores(),
		Status:       JobQueued,
		SubmittedAt:  s.now(),
	}
	return job, m, nil
}

func (s *AnalysisService) execute(ctx context.Context, jobID string, m *rasch.ResponseMatrix) error {
	job, err := s.store.GetJob(jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return NewNotFoundError("analysis not found")
	}
	if err := ctx.Err(); err != nil {
		return s.fail(job, err)
	}
	job.Status = JobRunning
	job.StartedAt = s.now()
	if err := s.store.SaveJob(job); err != nil {
		return err
	}

	start := time.Now()
	res, err := rasch.Run(m, s.cfg.Options)
	if err != nil {
		metrics.ObserveEstimation(metrics.OutcomeFailed, 0, 0, time.Since(start))
		return s.fail(job, err)
	}
	persons, items := m.Dims()
	metrics.ObserveEstimation(estimationOutcome(res), res.Iterations(), persons*items, time.Since(start))

	job.Result = res
	job.Reliability = KR20(m)
	job.Status = JobDone
	job.FinishedAt = s.now()
	s.logger.Info("analysis finished",
		"job_id", job.ID,
		"persons", persons,
		"items", items,
		"iterations", res.Iterations(),
		"converged", res.Converged(),
		"elapsed", time.Since(start))
	return s.store.SaveJob(job)
}

func (s *AnalysisService) fail(job *Job, cause error) error {
	job.Status = JobFailed
	job.Error = cause.Error()
	job.FinishedAt = s.now()
	if err := s.store.SaveJob(job); err != nil {
		return err
	}
	return cause
}

func (s *AnalysisService) limiter(tenantID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[tenantID]
	if !ok {
		limit := rate.Inf
		if s.cfg.SubmitRate > 0 {
			limit = rate.Limit(s.cfg.SubmitRate)
		}
		burst := s.cfg.SubmitBurst
		if burst <= 0 {
			burst = 1
		}
		l = rate.NewLimiter(limit, burst)
		s.limiters[tenantID] = l
	}
	return l
}

func estimationOutcome(res *rasch.Result) string {
	switch {
	case res.IsEmpty():
		return metrics.OutcomeEmpty
	case res.Converged():
		return metrics.OutcomeConverged
	default:
		return metrics.OutcomeCapped
	}
}

// View is the API form of a job.
func (j *Job) View() JobView {
	v := JobView{
		ID:          j.ID,
		DatasetID:   j.DatasetID,
		Status:      j.Status,
		Error:       j.Error,
		SubmittedAt: j.SubmittedAt,
	}
	if !j.StartedAt.IsZero() {
		t := j.StartedAt
		v.StartedAt = &t
	}
	if !j.FinishedAt.IsZero() {
		t := j.FinishedAt
		v.FinishedAt = &t
	}
	if j.Result != nil {
		v.Iterations = j.Result.Iterations()
		v.Converged = j.Result.Converged()
	}
	return v
}

// SummarizeJob builds the report of a finished job.
func SummarizeJob(j *Job) (*AnalysisSummary, error) {
	switch j.Status {
	case JobDone:
	case JobFailed:
		return nil, NewInvalidError("analysis failed: " + j.Error)
	default:
		return nil, NewConflictError("analysis not finished")
	}
	sum := Summarize(j.DatasetName, j.PersonLabels, j.ItemLabels, j.PersonScores, j.ItemScores, j.Result, j.Reliability)
	sum.JobID = j.ID
	sum.DatasetID = j.DatasetID
	return sum, nil
}

// Summarize lays out a result as labelled person and item rows. Uncomputed
// mean-squares are shown as rasch.DefaultDisplayMNSQ; the status still
// reflects the raw value.
func Summarize(name string, personLabels, itemLabels []string, personScores, itemScores []float64, res *rasch.Result, kr20 float64) *AnalysisSummary {
	sum := &AnalysisSummary{DatasetName: name, KR20: kr20, Persons: []MeasureRow{}, Items: []MeasureRow{}}
	if res == nil || res.IsEmpty() {
		sum.Empty = true
		return sum
	}
	abilities := res.Abilities()
	difficulties := res.Difficulties()
	sum.Iterations = res.Iterations()
	sum.Converged = res.Converged()
	sum.Persons = measureRows(personLabels, personScores, abilities, res.PersonFit(), "P")
	sum.Items = measureRows(itemLabels, itemScores, difficulties, res.ItemFit(), "I")
	wm := rasch.NewWrightMap(abilities, difficulties)
	sum.WrightMap = &wm
	return sum
}

func measureRows(labels []string, scores, measures []float64, fit rasch.PopulationFit, prefix string) []MeasureRow {
	rows := make([]MeasureRow, len(measures))
	for i, v := range measures {
		label := prefix + strconv.Itoa(i+1)
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}
		raw := 0
		if i < len(scores) {
			raw = int(scores[i])
		}
		rows[i] = MeasureRow{
			Index:      i + 1,
			Label:      label,
			RawScore:   raw,
			Measure:    v,
			InfitMNSQ:  rasch.DisplayMNSQ(fit.InfitMNSQ[i]),
			OutfitMNSQ: rasch.DisplayMNSQ(fit.OutfitMNSQ[i]),
			InfitZ:     fit.InfitZ[i],
			OutfitZ:    fit.OutfitZ[i],
			Status: worstStatus(
				rasch.ClassifyFit(fit.InfitMNSQ[i], fit.InfitZ[i]),
				rasch.ClassifyFit(fit.OutfitMNSQ[i], fit.OutfitZ[i]),
			),
		}
	}
	return rows
}

var statusSeverity = map[rasch.FitStatus]int{
	rasch.FitUndetermined: 0,
	rasch.FitProductive:   1,
	rasch.FitOverfit:      2,
	rasch.FitUnderfit:     3,
}

func worstStatus(a, b rasch.FitStatus) rasch.FitStatus {
	if statusSeverity[b] > statusSeverity[a] {
		return b
	}
	return a
}
