package model

// DetectionResult is returned by the click-detection operations.
type DetectionResult struct {
	Success bool   `yaml:"success" json:"success"`
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
	Error   string `yaml:"error,omitempty" json:"error,omitempty"`
	Data    any    `yaml:"data,omitempty" json:"data,omitempty"`
}

// Found builds a successful result.
func Found(message string, data any) DetectionResult {
	return DetectionResult{Success: true, Message: message, Data: data}
}

// NotFound builds a failed result.
func NotFound(err string) DetectionResult {
	return DetectionResult{Success: false, Error: err}
}
