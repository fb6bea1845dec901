package entity

import "time"

type TaskStatus string

const (
	TaskStatusCreated  TaskStatus = "created"
	TaskStatusRunning  TaskStatus = "running"
	TaskStatusFinished TaskStatus = "finished"
	TaskStatusFailed   TaskStatus = "failed"
)

// Terminal reports whether the status is absorbing.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusFinished || s == TaskStatusFailed
}

type LLMConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint,omitempty"`
}

type BrowserConfig struct {
	Headless           bool          `json:"headless"`
	DisableSecurity    bool          `json:"disable_security"`
	WindowWidth        int           `json:"window_width"`
	WindowHeight       int           `json:"window_height"`
	HighlightElements  bool          `json:"highlight_elements"`
	WaitForNetworkIdle time.Duration `json:"wait_for_network_idle"`
	MinPageLoadWait    time.Duration `json:"min_page_load_wait"`
	MaxPageLoadWait    time.Duration `json:"max_page_load_wait"`
	MaxSteps           int           `json:"max_steps"`
	FullPageScreenshot bool          `json:"full_page_screenshot"`
	UseVision          bool          `json:"use_vision"`
	SaveRecording      bool          `json:"save_recording"`
	RecordingPath      string        `json:"recording_path,omitempty"`
	AllowedDomains     []string      `json:"allowed_domains,omitempty"`
}

func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:           true,
		WindowWidth:        1280,
		WindowHeight:       1100,
		HighlightElements:  true,
		WaitForNetworkIdle: 3 * time.Second,
		MinPageLoadWait:    500 * time.Millisecond,
		MaxPageLoadWait:    5 * time.Second,
		MaxSteps:           15,
		UseVision:          true,
	}
}

// TaskInvocation is everything a caller supplies to run one task.
type TaskInvocation struct {
	TaskID        string
	Instructions  string
	LLM           LLMConfig
	Browser       BrowserConfig
	SensitiveData map[string]string

	// Force allows re-running a task that already finished or failed.
	Force bool
}

// StepRecord captures one loop iteration. Field names are part of the
// persisted contract and must not change.
type StepRecord struct {
	Step             int    `json:"step"`
	Reasoning        string `json:"reasoning"`
	ChosenActionText string `json:"chosen_action_text"`
}

// ExecutionResult is the structured trace of a task run. Field names are
// part of the persisted contract and must not change.
type ExecutionResult struct {
	Status      TaskStatus   `json:"status"`
	Steps       []StepRecord `json:"steps"`
	URLs        []string     `json:"urls"`
	Screenshots []string     `json:"screenshots"`
	Errors      []string     `json:"errors"`
	Output      string       `json:"output"`
}

func NewExecutionResult() *ExecutionResult {
	return &ExecutionResult{
		Status:      TaskStatusRunning,
		Steps:       []StepRecord{},
		URLs:        []string{},
		Screenshots: []string{},
		Errors:      []string{},
	}
}

// TaskRecord is the stored row for a task.
type TaskRecord struct {
	ID           string
	Instructions string
	Status       TaskStatus
	Result       *ExecutionResult
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
