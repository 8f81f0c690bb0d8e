package api

import "github.com/soaringjerry/Rasch/internal/services"

type datasetStoreAdapter struct {
	store Store
}

func newDatasetStoreAdapter(store Store) services.DatasetStore {
	return &datasetStoreAdapter{store: store}
}

func (a *datasetStoreAdapter) AddDataset(d *services.Dataset) error {
	if d == nil {
		return services.NewInvalidError("dataset required")
	}
	a.store.AddDataset(&Dataset{
		ID:           d.ID,
		TenantID:     d.TenantID,
		Name:         d.Name,
		PersonLabels: d.PersonLabels,
		ItemLabels:   d.ItemLabels,
		Responses:    d.Responses,
		CreatedAt:    d.CreatedAt,
	})
	return nil
}

func (a *datasetStoreAdapter) GetDataset(id string) (*services.Dataset, error) {
	return convertAPIDataset(a.store.GetDataset(id)), nil
}

func (a *datasetStoreAdapter) ListDatasets(tenantID string) ([]*services.Dataset, error) {
	ds := a.store.ListDatasetsByTenant(tenantID)
	out := make([]*services.Dataset, 0, len(ds))
	for _, d := range ds {
		out = append(out, convertAPIDataset(d))
	}
	return out, nil
}

func (a *datasetStoreAdapter) DeleteDataset(id string) (bool, error) {
	return a.store.DeleteDataset(id), nil
}

func convertAPIDataset(d *Dataset) *services.Dataset {
	if d == nil {
		return nil
	}
	return &services.Dataset{
		ID:           d.ID,
		TenantID:     d.TenantID,
		Name:         d.Name,
		PersonLabels: d.PersonLabels,
		ItemLabels:   d.ItemLabels,
		Responses:    d.Responses,
		CreatedAt:    d.CreatedAt,
	}
}

var _ services.DatasetStore = (*datasetStoreAdapter)(nil)
