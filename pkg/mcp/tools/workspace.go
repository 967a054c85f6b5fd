package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
	"github.com/ekaya-inc/clearbrief/pkg/services"
)

// WorkspaceToolDeps contains the dependencies of the workspace tools.
type WorkspaceToolDeps struct {
	Repo     repositories.ProjectRepository
	Projects services.ProjectService
	Overview services.OverviewService
	Chat     services.ChatService
}

// RegisterWorkspaceTools registers the project browsing and assistant tools.
func RegisterWorkspaceTools(s *server.MCPServer, deps *WorkspaceToolDeps) {
	registerListProjectsTool(s, deps)
	registerGetProjectOverviewTool(s, deps)
	registerListConflictsTool(s, deps)
	registerAskAssistantTool(s, deps)
}

func readOnly() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	}
}

func registerListProjectsTool(s *server.MCPServer, deps *WorkspaceToolDeps) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription(
			"List investigation projects with their report counts, verified percentage and conflicts. " +
				"Example: list_projects(query='harbor') returns projects whose name or region contains 'harbor'.",
		),
		mcp.WithString(
			"query",
			mcp.Description("Optional case-insensitive filter on project name or region"),
		),
	}, readOnly()...)
	tool := mcp.NewTool("list_projects", opts...)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list := deps.Projects.List(ctx, trimString(req.GetString("query", "")))
		return jsonResult("list_projects", list.Projects)
	})
}

func registerGetProjectOverviewTool(s *server.MCPServer, deps *WorkspaceToolDeps) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription(
			"Get the overview of a project: KPI stats, the latest updates feed and open conflicts. " +
				"Set military_only to exclude public items from the feed.",
		),
		mcp.WithString(
			"project_id",
			mcp.Required(),
			mcp.Description("Project ID, e.g. PRJ-001"),
		),
		mcp.WithBoolean(
			"military_only",
			mcp.Description("Restrict the feed to military reports (default false)"),
		),
	}, readOnly()...)
	tool := mcp.NewTool("get_project_overview", opts...)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID, errResult := requireProjectID(req)
		if errResult != nil {
			return errResult, nil
		}

		isolation := models.IsolationCombined
		if req.GetBool("military_only", false) {
			isolation = models.IsolationMilitary
		}

		overview, err := deps.Overview.GetOverview(ctx, projectID, isolation)
		if err != nil {
			if result := serviceErrorResult(err); result != nil {
				return result, nil
			}
			return nil, fmt.Errorf("failed to get overview: %w", err)
		}
		return jsonResult("get_project_overview", overview)
	})
}

type listConflictsResult struct {
	ProjectID string            `json:"project_id"`
	Conflicts []models.Conflict `json:"conflicts"`
	Open      int               `json:"open"`
}

func registerListConflictsTool(s *server.MCPServer, deps *WorkspaceToolDeps) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription(
			"List discrepancies between sources in a project with their severity and the items involved. " +
				"Only open conflicts are returned unless include_resolved is true.",
		),
		mcp.WithString(
			"project_id",
			mcp.Required(),
			mcp.Description("Project ID, e.g. PRJ-001"),
		),
		mcp.WithBoolean(
			"include_resolved",
			mcp.Description("Also return resolved conflicts (default false)"),
		),
	}, readOnly()...)
	tool := mcp.NewTool("list_conflicts", opts...)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID, errResult := requireProjectID(req)
		if errResult != nil {
			return errResult, nil
		}

		p, err := deps.Repo.Get(ctx, projectID)
		if err != nil {
			if result := serviceErrorResult(err); result != nil {
				return result, nil
			}
			return nil, fmt.Errorf("failed to get project: %w", err)
		}

		open := p.OpenConflicts()
		conflicts := open
		if req.GetBool("include_resolved", false) {
			conflicts = p.Conflicts
		}
		return jsonResult("list_conflicts", listConflictsResult{
			ProjectID: p.ID,
			Conflicts: append([]models.Conflict{}, conflicts...),
			Open:      len(open),
		})
	})
}

type askAssistantResult struct {
	Answer    string                  `json:"answer"`
	Rule      string                  `json:"rule"`
	Citations []string                `json:"citations"`
	Sources   []services.SourceDetail `json:"sources"`
}

func registerAskAssistantTool(s *server.MCPServer, deps *WorkspaceToolDeps) {
	tool := mcp.NewTool(
		"ask_assistant",
		mcp.WithDescription(
			"Ask the project assistant a question about events, conflicts, verified sources or the latest SPOTREP. "+
				"Returns the answer with the report and item ids it cites. "+
				"Example: ask_assistant(project_id='PRJ-001', question='What conflicts are unresolved?').",
		),
		mcp.WithString(
			"project_id",
			mcp.Required(),
			mcp.Description("Project ID, e.g. PRJ-001"),
		),
		mcp.WithString(
			"question",
			mcp.Required(),
			mcp.Description("Free-text question"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID, errResult := requireProjectID(req)
		if errResult != nil {
			return errResult, nil
		}
		question, err := req.RequireString("question")
		if err != nil {
			return NewErrorResult("invalid_parameters", "parameter 'question' is required"), nil
		}

		exchange, err := deps.Chat.Ask(ctx, projectID, question)
		if err != nil {
			if result := serviceErrorResult(err); result != nil {
				return result, nil
			}
			return nil, fmt.Errorf("failed to ask assistant: %w", err)
		}
		return jsonResult("ask_assistant", askAssistantResult{
			Answer:    exchange.Assistant.Content,
			Rule:      exchange.Rule,
			Citations: nonNil(exchange.Assistant.Citations),
			Sources:   exchange.Sources,
		})
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
