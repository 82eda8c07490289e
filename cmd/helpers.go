package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mj1618/docbind/internal/command"
	"github.com/mj1618/docbind/internal/output"
	"gopkg.in/yaml.v3"
)

// parseData decodes a --data value. JSON is accepted since it is valid YAML;
// a bare word stays a string.
func parseData(raw string) (interface{}, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var v interface{}
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("failed to parse --data: %w", err)
	}
	return v, nil
}

// readInput reads path, or stdin when path is "" or "-".
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// dispatchOnce opens a session, runs one command and prints the response.
// A failed command is reported after printing.
func dispatchOnce(ctx context.Context, req command.Request) error {
	sess, err := openSession(ctx, appConfig, appLogger, sessionOptions{})
	if err != nil {
		return err
	}
	defer sess.Close()

	resp := sess.Dispatch(ctx, req)
	if err := output.Print(resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("%s: %s", req.Command, resp.Error)
	}
	return nil
}
