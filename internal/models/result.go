package models

type StatusResponse struct {
	Status  string `json:"status"`
	System  string `json:"system"`
	Version string `json:"version"`
}

type AgentStatusResponse struct {
	Agent  string `json:"agent"`
	Status string `json:"status"`
}

type UpdateResponse struct {
	ID      string `json:"id"`
	Updated bool   `json:"updated"`
}

type DeleteResponse struct {
	Status  string `json:"status"`
	Deleted bool   `json:"deleted"`
	JobID   string `json:"job_id"`
}

// AnalyzeResponse wraps the analyze result. A too-short description comes
// back with Status "error" and a 200.
type AnalyzeResponse struct {
	Status  string           `json:"status"`
	Message string           `json:"message,omitempty"`
	Data    *JobIntelligence `json:"data,omitempty"`
}
