package services

import "github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"

// JobDirectory is the read-only list of jobs an assessment may be attached to
type JobDirectory struct {
	jobs  []models.Job
	index map[string]int
}

func NewJobDirectory(jobs []models.Job) *JobDirectory {
	d := &JobDirectory{index: make(map[string]int, len(jobs))}
	for _, j := range jobs {
		if _, dup := d.index[j.ID]; dup {
			continue
		}
		d.index[j.ID] = len(d.jobs)
		d.jobs = append(d.jobs, j)
	}
	return d
}

func (d *JobDirectory) Lookup(id string) (models.Job, bool) {
	if d == nil {
		return models.Job{}, false
	}
	i, ok := d.index[id]
	if !ok {
		return models.Job{}, false
	}
	return d.jobs[i], true
}

// Jobs returns the jobs in the order they were supplied
func (d *JobDirectory) Jobs() []models.Job {
	if d == nil {
		return nil
	}
	out := make([]models.Job, len(d.jobs))
	copy(out, d.jobs)
	return out
}
