package domain

import "strings"

// TaskStatus is the normalized state of an image task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskCompleted TaskStatus = "COMPLETED"
	TaskFailed    TaskStatus = "FAILED"
	TaskUnknown   TaskStatus = "UNKNOWN"
)

// ParseTaskStatus maps a vendor status string onto TaskStatus.
// Vendors report in-progress work under several names; all of them are pending.
func ParseTaskStatus(raw string) TaskStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "COMPLETED", "SUCCEEDED", "SUCCESS":
		return TaskCompleted
	case "FAILED", "ERROR":
		return TaskFailed
	case "PENDING", "CREATED", "IN_PROGRESS", "RUNNING", "QUEUED":
		return TaskPending
	default:
		return TaskUnknown
	}
}

// Terminal reports whether polling stops at this status.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Artifact is one generated image as reported by the provider: either a URL
// or inline base64 data.
type Artifact struct {
	URL    string `json:"url,omitempty"`
	Base64 string `json:"base64,omitempty"`
}

// Locator returns the URL, or a data URI for inline data, or "".
func (a Artifact) Locator() string {
	if u := strings.TrimSpace(a.URL); u != "" {
		return u
	}
	if b := strings.TrimSpace(a.Base64); b != "" {
		if strings.HasPrefix(b, "data:") {
			return b
		}
		return "data:image/png;base64," + b
	}
	return ""
}

// ImageTask is a snapshot of an asynchronous image task.
type ImageTask struct {
	ID        string
	Status    TaskStatus
	Artifacts []Artifact
}

// ResultURL returns the locator of the first usable artifact when the task
// completed. COMPLETED with no usable artifact is not a result.
func (t ImageTask) ResultURL() (string, bool) {
	if t.Status != TaskCompleted {
		return "", false
	}
	for _, a := range t.Artifacts {
		if loc := a.Locator(); loc != "" {
			return loc, true
		}
	}
	return "", false
}
