package sdk

// Message is a single conversation turn. Role is "user", "assistant" or
// "system".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UploadResumeRequest carries a candidate profile and the resume document.
type UploadResumeRequest struct {
	Name           string
	Role           string
	GitHubUsername string
	// Resume is the raw PDF document.
	Resume []byte
	// ResumeFilename names the uploaded file, "resume.pdf" by default.
	ResumeFilename string
}

// UploadResumeResponse is the service reply to a resume upload.
type UploadResumeResponse struct {
	Success         bool     `json:"success"`
	Message         string   `json:"message"`
	ExtractedSkills []string `json:"extractedSkills"`
}

// HealthReport is the service health summary. Check values are "ok" or
// "error".
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type queryRequest struct {
	Messages []Message `json:"messages"`
}

type queryResponse struct {
	Response string `json:"response"`
}
