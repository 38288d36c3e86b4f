package domain

// SentinelSummary is shown whenever no text could be extracted for summarization.
const SentinelSummary = "No preview or summary available for this file format."

const (
	MessageNoMaterials  = "No materials available. Contact the admin to upload files."
	MessageFileNotFound = "File not found on the server."
	MessageNoAccessLog  = "No access log available yet."
)

type SubmissionState string

const (
	StateIdle    SubmissionState = "idle"
	StateInvalid SubmissionState = "invalid"
	StateValid   SubmissionState = "valid"
)

type Submission struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Material string `json:"material"`
}

type SubmissionOutcome struct {
	State             SubmissionState `json:"state"`
	Material          string          `json:"material,omitempty"`
	Result            RecordResult    `json:"result"`
	Summary           string          `json:"summary,omitempty"`
	DownloadAvailable bool            `json:"download_available"`
	Error             string          `json:"error,omitempty"`
}

type AdminView struct {
	Log AccessLog `json:"log"`
}

type PageView struct {
	Materials []Material        `json:"materials"`
	Outcome   SubmissionOutcome `json:"outcome"`
	Admin     AdminView         `json:"admin"`
}
