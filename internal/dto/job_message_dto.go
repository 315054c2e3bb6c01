package dto

// JobMessage is the queue payload asking a worker to run one ingestion job.
type JobMessage struct {
	Kind string `json:"kind"`
	Key  string `json:"key"`
}
