package tools

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
)

// trimString removes leading and trailing whitespace from a string.
func trimString(s string) string {
	return strings.TrimSpace(s)
}

// jsonResult marshals v as the text content of a tool result.
func jsonResult(name string, v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s result: %w", name, err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// requireProjectID reads and trims the project_id argument. The second
// return value is non-nil when the argument is missing or blank.
func requireProjectID(req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	projectID, err := req.RequireString("project_id")
	if err != nil {
		return "", NewErrorResult("invalid_parameters", "parameter 'project_id' is required")
	}
	projectID = trimString(projectID)
	if projectID == "" {
		return "", NewErrorResult("invalid_parameters", "parameter 'project_id' cannot be empty")
	}
	return projectID, nil
}
