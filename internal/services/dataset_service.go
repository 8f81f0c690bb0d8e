package services

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/soaringjerry/Rasch/internal/rasch"
)

type DatasetStore interface {
	AddDataset(d *Dataset) error
	GetDataset(id string) (*Dataset, error)
	ListDatasets(tenantID string) ([]*Dataset, error)
	DeleteDataset(id string) (bool, error)
}

type DatasetService struct {
	store DatasetStore
	now   func() time.Time
}

// DatasetInput is the JSON form of an upload.
type DatasetInput struct {
	Name         string      `json:"name"`
	PersonLabels []string    `json:"person_labels,omitempty"`
	ItemLabels   []string    `json:"item_labels,omitempty"`
	Responses    [][]float64 `json:"responses"`
}

type DatasetView struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Persons      int         `json:"persons"`
	Items        int         `json:"items"`
	PersonLabels []string    `json:"person_labels"`
	ItemLabels   []string    `json:"item_labels"`
	Responses    [][]float64 `json:"responses,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

func NewDatasetService(store DatasetStore) *DatasetService {
	return &DatasetService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create validates and binarizes the matrix before storing it. Missing
// labels default to P1..Pn and I1..Ik.
func (s *DatasetService) Create(tenantID string, in DatasetInput) (*Dataset, error) {
	if tenantID == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, NewInvalidError("name required")
	}
	m, err := rasch.NewResponseMatrix(in.Responses)
	if err != nil {
		return nil, NewInvalidError(err.Error())
	}
	persons, items := m.Dims()
	if m.IsEmpty() {
		// an empty matrix is stored as such; its labels carry no meaning
		in.PersonLabels, in.ItemLabels = nil, nil
	}
	personLabels, err := resolveLabels(in.PersonLabels, persons, "P", "person_labels")
	if err != nil {
		return nil, err
	}
	itemLabels, err := resolveLabels(in.ItemLabels, items, "I", "item_labels")
	if err != nil {
		return nil, err
	}
	d := &Dataset{
		ID:           shortID(12),
		TenantID:     tenantID,
		Name:         name,
		PersonLabels: personLabels,
		ItemLabels:   itemLabels,
		Responses:    m.Rows(),
		CreatedAt:    s.now(),
	}
	if err := s.store.AddDataset(d); err != nil {
		return nil, err
	}
	return d, nil
}

// CreateFromCSV ingests a spreadsheet export; see ParseResponsesCSV.
func (s *DatasetService) CreateFromCSV(tenantID, name string, r io.Reader) (*Dataset, error) {
	parsed, err := ParseResponsesCSV(r)
	if err != nil {
		return nil, NewInvalidError(err.Error())
	}
	return s.Create(tenantID, DatasetInput{
		Name:         name,
		PersonLabels: parsed.PersonLabels,
		ItemLabels:   parsed.ItemLabels,
		Responses:    parsed.Rows,
	})
}

func (s *DatasetService) Get(tenantID, id string) (*Dataset, error) {
	d, err := s.store.GetDataset(id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, NewNotFoundError("dataset not found")
	}
	if d.TenantID != tenantID {
		return nil, NewForbiddenError("forbidden")
	}
	return d, nil
}

func (s *DatasetService) List(tenantID string) ([]*Dataset, error) {
	if tenantID == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	return s.store.ListDatasets(tenantID)
}

func (s *DatasetService) Delete(tenantID, id string) error {
	if _, err := s.Get(tenantID, id); err != nil {
		return err
	}
	ok, err := s.store.DeleteDataset(id)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("dataset not found")
	}
	return nil
}

// View renders a dataset for the API; responses are included only when
// full is set.
func (d *Dataset) View(full bool) DatasetView {
	v := DatasetView{
		ID:           d.ID,
		Name:         d.Name,
		Persons:      len(d.PersonLabels),
		Items:        len(d.ItemLabels),
		PersonLabels: d.PersonLabels,
		ItemLabels:   d.ItemLabels,
		CreatedAt:    d.CreatedAt,
	}
	if full {
		v.Responses = d.Responses
	}
	return v
}

func resolveLabels(labels []string, n int, prefix, field string) ([]string, error) {
	if len(labels) == 0 {
		out := make([]string, n)
		for i := range out {
			out[i] = prefix + strconv.Itoa(i+1)
		}
		return out, nil
	}
	if len(labels) != n {
		return nil, NewInvalidError(field + " length mismatch")
	}
	out := make([]string, n)
	for i, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			l = prefix + strconv.Itoa(i+1)
		}
		out[i] = l
	}
	return out, nil
}
