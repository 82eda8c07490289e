package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mj1618/docbind/internal/bridge"
	"github.com/mj1618/docbind/internal/command"
	"github.com/mj1618/docbind/internal/output"
	"github.com/mj1618/docbind/internal/platform/memdoc"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Pseudo-steps handled by the batch runner itself.
const (
	stepSleep  = "sleep"
	stepSelect = "select"
)

// eventBuffer bounds the notifications a batch collects.
const eventBuffer = 256

// DoResult is the output of a batch do command.
type DoResult struct {
	OK        bool           `yaml:"ok"               json:"ok"`
	Action    string         `yaml:"action"           json:"action"`
	Steps     int            `yaml:"steps"            json:"steps"`
	Completed int            `yaml:"completed"        json:"completed"`
	Error     string         `yaml:"error,omitempty"  json:"error,omitempty"`
	Results   []StepResult   `yaml:"results"          json:"results"`
	Events    []EventSummary `yaml:"events,omitempty" json:"events,omitempty"`
}

// StepResult is the output for a single step within a batch.
type StepResult struct {
	Step    int         `yaml:"step"              json:"step"`
	OK      bool        `yaml:"ok"                json:"ok"`
	Action  string      `yaml:"action"            json:"action"`
	Error   string      `yaml:"error,omitempty"   json:"error,omitempty"`
	Data    interface{} `yaml:"data,omitempty"    json:"data,omitempty"`
	Elapsed string      `yaml:"elapsed,omitempty" json:"elapsed,omitempty"`
}

// EventSummary is a notification observed during the batch.
type EventSummary struct {
	Event string      `yaml:"event"          json:"event"`
	Data  interface{} `yaml:"data,omitempty" json:"data,omitempty"`
}

var doCmd = &cobra.Command{
	Use:   "do",
	Short: "Execute multiple commands in a batch",
	Long: `Execute a sequence of commands from a YAML list on stdin or --file.

Each step is a command name with its data as a map. Steps execute
sequentially against one document session, and by default execution stops on
the first error. Notifications raised along the way are listed in the result.

Besides the command vocabulary, two steps drive the session itself:
  sleep:  { ms: 200 }                       wait, e.g. for selection detection
  select: { kind: table-cell, element: 2, row: 1, column: 0 }
                                            move the cursor (in-memory documents)

Example:
  docbind do <<'EOF'
  - insert-text: { key: city, title: City }
  - select: { kind: table-cell, element: 2, row: 1, column: 1 }
  - sleep: { ms: 200 }
  - bind-chart-data: { payload: { series: [1, 2, 3] } }
  - get-binding-summary: {}
  EOF`,
	RunE: runDo,
}

func init() {
	rootCmd.AddCommand(doCmd)
	doCmd.Flags().String("file", "", "Read steps from a file instead of stdin")
	doCmd.Flags().Bool("stop-on-error", true, "Stop execution on first error (default: true)")
}

func runDo(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	stopOnError, _ := cmd.Flags().GetBool("stop-on-error")

	data, err := readInput(path)
	if err != nil {
		return err
	}
	steps, err := parseSteps(data)
	if err != nil {
		return err
	}

	rec := bridge.NewRecorder(eventBuffer)
	sess, err := openSession(cmd.Context(), appConfig, appLogger, sessionOptions{transport: rec})
	if err != nil {
		return err
	}
	defer sess.Close()
	sess.plugin.Start(cmd.Context())

	result := runSteps(cmd.Context(), sess, steps, stopOnError)
	for _, n := range rec.Drain() {
		result.Events = append(result.Events, EventSummary{Event: n.Event, Data: n.Data})
	}
	if err := output.Print(result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("%s", result.Error)
	}
	return nil
}

// parseSteps decodes a YAML list of single-key step maps.
func parseSteps(data []byte) ([]map[string]interface{}, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no steps provided, pipe a YAML list of commands")
	}
	var steps []map[string]interface{}
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("failed to parse YAML steps: %w", err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("no steps provided, expected a YAML list of commands")
	}
	return steps, nil
}

func runSteps(ctx context.Context, sess *session, steps []map[string]interface{}, stopOnError bool) DoResult {
	results := make([]StepResult, 0, len(steps))
	completed := 0
	var lastErr string

	for i, step := range steps {
		stepNum := i + 1
		if len(step) != 1 {
			errMsg := fmt.Sprintf("step %d: expected exactly one command key, got %d", stepNum, len(step))
			results = append(results, StepResult{Step: stepNum, Error: errMsg})
			lastErr = errMsg
			if stopOnError {
				break
			}
			continue
		}

		for action, params := range step {
			start := time.Now()
			res, err := executeStep(ctx, sess, action, params)
			res.Step = stepNum
			res.Action = action
			res.Elapsed = time.Since(start).Round(time.Millisecond).String()
			if err != nil {
				res.Error = err.Error()
				lastErr = fmt.Sprintf("step %d: %s", stepNum, err.Error())
			} else {
				res.OK = true
				completed++
			}
			results = append(results, res)
		}
		if stopOnError && lastErr != "" {
			break
		}
	}

	return DoResult{
		OK:        lastErr == "",
		Action:    "do",
		Steps:     len(steps),
		Completed: completed,
		Error:     lastErr,
		Results:   results,
	}
}

func executeStep(ctx context.Context, sess *session, action string, params interface{}) (StepResult, error) {
	switch action {
	case stepSleep:
		return executeSleep(ctx, params)
	case stepSelect:
		return executeSelect(sess, params)
	}
	resp := sess.Dispatch(ctx, command.Request{Command: action, Data: params})
	if !resp.OK {
		return StepResult{}, fmt.Errorf("%s", resp.Error)
	}
	return StepResult{Data: resp.Data}, nil
}

func executeSleep(ctx context.Context, params interface{}) (StepResult, error) {
	ms := 0
	if m, ok := params.(map[string]interface{}); ok {
		if n, ok := m["ms"].(int); ok {
			ms = n
		}
	}
	if ms <= 0 {
		return StepResult{}, fmt.Errorf("sleep requires ms > 0")
	}
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return StepResult{}, nil
	case <-ctx.Done():
		return StepResult{}, ctx.Err()
	}
}

func executeSelect(sess *session, params interface{}) (StepResult, error) {
	if sess.doc == nil {
		return StepResult{}, fmt.Errorf("select is only available for in-memory documents")
	}
	// round-trip through YAML so the step map uses the fixture field names
	b, err := yaml.Marshal(params)
	if err != nil {
		return StepResult{}, fmt.Errorf("invalid selection: %w", err)
	}
	var sel memdoc.Selection
	if err := yaml.Unmarshal(b, &sel); err != nil {
		return StepResult{}, fmt.Errorf("invalid selection: %w", err)
	}
	if sel.Kind == "" {
		sel.Kind = memdoc.SelectNone
	}
	sess.doc.Select(sel)
	return StepResult{Data: sel}, nil
}
