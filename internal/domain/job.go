package domain

// JobStatus tracks one input file through the queue.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobError      JobStatus = "error"
)

// Job is one unit of queue work: a single input file.
type Job struct {
	ID     string    `json:"fileId"`
	Name   string    `json:"fileName"`
	Status JobStatus `json:"status"`
}

// QueueState is the persisted checkpoint: the ordered job list plus the
// index of the next job to run.
type QueueState struct {
	Jobs   []Job
	Cursor int
}

// Normalize applies the reload rules: the cursor is clamped to
// [0, len(Jobs)] and any job left processing by an interrupted run goes
// back to pending so it is retried from scratch.
func (s *QueueState) Normalize() {
	if s.Cursor < 0 {
		s.Cursor = 0
	}
	if s.Cursor > len(s.Jobs) {
		s.Cursor = len(s.Jobs)
	}
	for i := range s.Jobs {
		if s.Jobs[i].Status == JobProcessing {
			s.Jobs[i].Status = JobPending
		}
	}
}

// Exhausted reports whether there is nothing left to run.
func (s *QueueState) Exhausted() bool {
	return len(s.Jobs) == 0 || s.Cursor >= len(s.Jobs)
}

// Counts tallies jobs by status.
func (s *QueueState) Counts() map[JobStatus]int {
	counts := make(map[JobStatus]int, 4)
	for _, j := range s.Jobs {
		counts[j.Status]++
	}
	return counts
}
