package api

import "github.com/soaringjerry/Rasch/internal/services"

type analysisStoreAdapter struct {
	store Store
}

func newAnalysisStoreAdapter(store Store) *analysisStoreAdapter {
	return &analysisStoreAdapter{store: store}
}

func (a *analysisStoreAdapter) GetDataset(id string) (*services.Dataset, error) {
	return convertAPIDataset(a.store.GetDataset(id)), nil
}

func (a *analysisStoreAdapter) SaveJob(j *services.Job) error {
	if j == nil {
		return services.NewInvalidError("job required")
	}
	a.store.SaveJob(&Job{
		ID:           j.ID,
		TenantID:     j.TenantID,
		DatasetID:    j.DatasetID,
		DatasetName:  j.DatasetName,
		PersonLabels: j.PersonLabels,
		ItemLabels:   j.ItemLabels,
		PersonScores: j.PersonScores,
		ItemScores:   j.ItemScores,
		Status:       string(j.Status),
		Error:        j.Error,
		SubmittedAt:  j.SubmittedAt,
		StartedAt:    j.StartedAt,
		FinishedAt:   j.FinishedAt,
		Result:       j.Result,
		Reliability:  j.Reliability,
	})
	return nil
}

func (a *analysisStoreAdapter) GetJob(id string) (*services.Job, error) {
	j := a.store.GetJob(id)
	if j == nil {
		return nil, nil
	}
	return &services.Job{
		ID:           j.ID,
		TenantID:     j.TenantID,
		DatasetID:    j.DatasetID,
		DatasetName:  j.DatasetName,
		PersonLabels: j.PersonLabels,
		ItemLabels:   j.ItemLabels,
		PersonScores: j.PersonScores,
		ItemScores:   j.ItemScores,
		Status:       services.JobStatus(j.Status),
		Error:        j.Error,
		SubmittedAt:  j.SubmittedAt,
		StartedAt:    j.StartedAt,
		FinishedAt:   j.FinishedAt,
		Result:       j.Result,
		Reliability:  j.Reliability,
	}, nil
}

var _ services.AnalysisStore = (*analysisStoreAdapter)(nil)
