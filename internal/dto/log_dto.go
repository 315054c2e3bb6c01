package dto

// LogListResponse uses a string id: log ids are hashes of the log line.
type LogListResponse struct {
	Id        string `json:"id"`
	Level     string `json:"level"`
	Module    string `json:"module"`
	Message   string `json:"message"`
	JobKey    string `json:"job_key,omitempty"`
	CreatedAt string `json:"created_at"`
}

type LogDetailResponse struct {
	LogListResponse
	Details map[string]interface{} `json:"details"`
}
