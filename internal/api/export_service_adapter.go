package api

import "github.com/soaringjerry/Rasch/internal/services"

// exportStoreAdapter reads jobs through the analysis adapter; exports
// never touch datasets.
type exportStoreAdapter struct {
	jobs *analysisStoreAdapter
}

func newExportStoreAdapter(store Store) services.ExportStore {
	return &exportStoreAdapter{jobs: newAnalysisStoreAdapter(store)}
}

func (a *exportStoreAdapter) GetJob(id string) (*services.Job, error) {
	return a.jobs.GetJob(id)
}

var _ services.ExportStore = (*exportStoreAdapter)(nil)
