package api

// AutomateRequest is the body of POST /api/automate.
type AutomateRequest struct {
	Prompt string `json:"prompt"`
}
