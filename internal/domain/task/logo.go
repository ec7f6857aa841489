package task

const (
	LogoTaskType      = "LogoTask"
	LogoRetryTaskType = "LogoRetryTask"
)

// Types lists every task type that has its own stream
var Types = []string{LogoTaskType, LogoRetryTaskType}

type LogoTask struct {
	ID           string `json:"id"`            // Trace ID shared by retries
	CategoryPath string `json:"category_path"` // List holding the company
	CompanyName  string `json:"company_name"`
	CompanyURL   string `json:"company_url"` // Page scanned for a logo
}

func (t *LogoTask) TaskType() string {
	return LogoTaskType
}

func (t *LogoTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}

type LogoRetryTask struct {
	LogoTask
	RetryCount int    `json:"retry_count"` // Number of times this company has been retried
	Error      string `json:"error"`       // Error message from the last failure
}

func (t *LogoRetryTask) TaskType() string {
	return LogoRetryTaskType
}

func (t *LogoRetryTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
