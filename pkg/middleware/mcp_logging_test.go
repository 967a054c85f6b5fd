package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serveMCP(t *testing.T, logger *zap.Logger, reqBody, respBody string) *httptest.ResponseRecorder {
	t.Helper()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(respBody))
	})
	rec := httptest.NewRecorder()
	MCPRequestLogger(logger)(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(reqBody)))
	return rec
}

func TestMCPRequestLogger_Success(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	rec := serveMCP(t, zap.New(core),
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_conflicts","arguments":{"project_id":"PRJ-001"}}}`,
		`{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"[]"}]}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, logs.Len())

	req := logs.All()[0]
	assert.Equal(t, "MCP request", req.Message)
	assert.Equal(t, "tools/call", req.ContextMap()["method"])
	assert.Equal(t, "list_conflicts", req.ContextMap()["tool"])

	resp := logs.All()[1]
	assert.Equal(t, "MCP response success", resp.Message)
	assert.Equal(t, "list_conflicts", resp.ContextMap()["tool"])
}

func TestMCPRequestLogger_ErrorResponse(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	serveMCP(t, zap.New(core),
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_project_overview","arguments":{}}}`,
		`{"jsonrpc":"2.0","id":2,"error":{"code":-32602,"message":"project_id is required"}}`)

	require.Equal(t, 2, logs.Len())
	resp := logs.All()[1]
	assert.Equal(t, "MCP response error", resp.Message)
	assert.Equal(t, int64(-32602), resp.ContextMap()["error_code"])
	assert.Equal(t, "project_id is required", resp.ContextMap()["error_message"])
}

func TestMCPRequestLogger_MalformedBodies(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	rec := serveMCP(t, zap.New(core), `not json`, `also not json`)

	assert.Equal(t, "also not json", rec.Body.String())
	for _, entry := range logs.All() {
		assert.NotEqual(t, zapcore.ErrorLevel, entry.Level)
	}
}

func TestMCPRequestLogger_NilLogger(t *testing.T) {
	rec := serveMCP(t, nil, `{}`, `{"ok":true}`)
	assert.Equal(t, `{"ok":true}`, rec.Body.String())
}

func TestSanitizeArguments(t *testing.T) {
	long := strings.Repeat("x", 300)
	question := "What happened on Route Amber? " + strings.Repeat("more detail ", 20)

	got := sanitizeArguments(map[string]interface{}{
		"project_id":   "PRJ-001",
		"api_key":      "abc",
		"ACCESS_TOKEN": "abc",
		"question":     question,
		"notes":        long,
		"limit":        float64(5),
	})

	assert.Equal(t, "PRJ-001", got["project_id"])
	assert.Equal(t, "[REDACTED]", got["api_key"])
	assert.Equal(t, "[REDACTED]", got["ACCESS_TOKEN"])
	assert.Equal(t, float64(5), got["limit"])

	q := got["question"].(string)
	assert.True(t, strings.HasPrefix(q, "What happened on Route Amber?"))
	assert.Less(t, len(q), len(question))

	notes := got["notes"].(string)
	assert.Len(t, notes, maxLoggedArgumentLength+3)
	assert.True(t, strings.HasSuffix(notes, "..."))

	assert.Nil(t, sanitizeArguments(nil))
	assert.Empty(t, sanitizeArguments(map[string]interface{}{}))
}
