package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/docbind/internal/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeSession struct {
	calls atomic.Int32
	last  command.Request
}

func (f *fakeSession) Dispatch(_ context.Context, req command.Request) command.Response {
	f.calls.Add(1)
	f.last = req
	if req.Command == "boom" {
		return command.Response{Error: command.UnknownCommand}
	}
	return command.Response{OK: true, Data: map[string]any{"command": req.Command}}
}

func (f *fakeSession) Commands() []string {
	return []string{command.InsertText, command.ScanDocument}
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestRegistersToolPerCommand(t *testing.T) {
	s := New(&fakeSession{}, Config{}, zaptest.NewLogger(t))
	assert.Equal(t, []string{command.InsertText, command.ScanDocument, "dispatch", "list-commands"}, s.Tools())
}

func TestHandleCommandPassesPayload(t *testing.T) {
	f := &fakeSession{}
	s := New(f, Config{}, zaptest.NewLogger(t))

	res, err := s.handleCommand(command.InsertText)(context.Background(), callRequest(command.InsertText, map[string]any{"data": map[string]any{"key": "city"}}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "ok: true")
	assert.Equal(t, map[string]any{"key": "city"}, f.last.Data)

	// top-level arguments stand in for data
	_, err = s.handleCommand(command.InsertText)(context.Background(), callRequest(command.InsertText, map[string]any{"text": "hi"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": "hi"}, f.last.Data)
}

func TestHandleDispatch(t *testing.T) {
	f := &fakeSession{}
	s := New(f, Config{}, zaptest.NewLogger(t))

	res, err := s.handleDispatch(context.Background(), callRequest("dispatch", map[string]any{"command": "boom"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), command.UnknownCommand)

	res, err = s.handleDispatch(context.Background(), callRequest("dispatch", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestHandleListCommands(t *testing.T) {
	s := New(&fakeSession{}, Config{}, zaptest.NewLogger(t))
	res, err := s.handleListCommands(context.Background(), callRequest("list-commands", nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), command.ScanDocument)
}

func TestReadOnlyResponsesAreCached(t *testing.T) {
	f := &fakeSession{}
	s := New(f, Config{CacheTTL: time.Minute}, zaptest.NewLogger(t))
	scan := s.handleCommand(command.ScanDocument)
	ctx := context.Background()

	_, _ = scan(ctx, callRequest(command.ScanDocument, nil))
	_, _ = scan(ctx, callRequest(command.ScanDocument, nil))
	assert.EqualValues(t, 1, f.calls.Load())

	// a write clears the cache
	_, _ = s.handleCommand(command.InsertText)(ctx, callRequest(command.InsertText, nil))
	_, _ = scan(ctx, callRequest(command.ScanDocument, nil))
	assert.EqualValues(t, 3, f.calls.Load())

	s.Invalidate()
	_, _ = scan(ctx, callRequest(command.ScanDocument, nil))
	assert.EqualValues(t, 4, f.calls.Load())
}

func TestResponseCache(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewResponseCache(time.Second)
	c.now = func() time.Time { return now }

	calls := 0
	ok := func() command.Response { calls++; return command.Response{OK: true} }
	fail := func() command.Response { calls++; return command.Response{Error: "x"} }
	read := command.Request{Command: command.ScanDocument}

	c.Do(read, ok)
	c.Do(read, ok)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())

	// different data, different entry
	c.Do(command.Request{Command: command.ScanDocument, Data: map[string]any{"x": 1}}, ok)
	assert.Equal(t, 2, calls)

	now = now.Add(2 * time.Second)
	c.Do(read, ok)
	assert.Equal(t, 3, calls)

	c.InvalidateAll()
	c.Do(command.Request{Command: command.DetectChartClick}, fail)
	assert.Zero(t, c.Len())

	c.Do(read, ok)
	c.Do(command.Request{Command: command.BindSelection}, ok)
	assert.Zero(t, c.Len())

	// uncacheable payloads run every time
	ch := command.Request{Command: command.ScanDocument, Data: make(chan int)}
	before := calls
	c.Do(ch, ok)
	c.Do(ch, ok)
	assert.Equal(t, before+2, calls)
}

func TestResponseCacheDisabled(t *testing.T) {
	c := NewResponseCache(0)
	calls := 0
	for i := 0; i < 3; i++ {
		c.Do(command.Request{Command: command.ScanDocument}, func() command.Response { calls++; return command.Response{OK: true} })
	}
	assert.Equal(t, 3, calls)
}

func TestServeRejectsUnknownTransport(t *testing.T) {
	s := New(&fakeSession{}, Config{}, zaptest.NewLogger(t))
	assert.Error(t, s.Serve(Config{Transport: "smoke-signals"}))
}
