package api

type Store interface {
	AddTenant(t *Tenant)
	AddUser(u *User)
	FindUserByEmail(email string) *User

	AddDataset(d *Dataset)
	GetDataset(id string) *Dataset
	ListDatasetsByTenant(tid string) []*Dataset
	DeleteDataset(id string) bool

	SaveJob(j *Job)
	GetJob(id string) *Job
}

var _ Store = (*memoryStore)(nil)
