package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/jobtrack/internal/tracker"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	State   *tracker.State
	Version string
}

var kindEnum = mcp.Enum(string(tracker.KindCompanies), string(tracker.KindApplications), string(tracker.KindReferences))

// NewMCPServer creates an MCP server exposing the tracker collections and
// their CSV import and export.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	s := server.NewMCPServer(
		"jobtrack",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("jobtrack keeps a local record of companies, job applications and references, with CSV import and export."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("list_records",
			mcp.WithDescription("List every record of one collection as JSON."),
			mcp.WithString("kind", mcp.Description("Collection to list"), mcp.Required(), kindEnum),
		),
		mcpListRecords(deps),
	)

	s.AddTool(
		mcp.NewTool("save_company",
			mcp.WithDescription("Create a company, or update the company with the given id. Omitted fields keep their current value."),
			mcp.WithString("id", mcp.Description("Existing company id; omit to create")),
			mcp.WithString("name", mcp.Description("Company name (required when creating)")),
			mcp.WithString("websiteUrl", mcp.Description("Company website")),
			mcp.WithString("jobPostUrl", mcp.Description("Job posting URL")),
			mcp.WithString("technologies", mcp.Description("Comma-separated technology list")),
			mcp.WithString("recruiterName", mcp.Description("Recruiter name")),
			mcp.WithString("recruiterEmail", mcp.Description("Recruiter email")),
			mcp.WithString("recruiterPhone", mcp.Description("Recruiter phone")),
			mcp.WithString("notes", mcp.Description("Free-form notes")),
		),
		mcpSaveCompany(deps),
	)

	s.AddTool(
		mcp.NewTool("delete_record",
			mcp.WithDescription("Delete a record by id. Deleting a company also deletes its applications and references."),
			mcp.WithString("kind", mcp.Description("Collection of the record"), mcp.Required(), kindEnum),
			mcp.WithString("id", mcp.Description("Record id"), mcp.Required()),
		),
		mcpDeleteRecord(deps),
	)

	s.AddTool(
		mcp.NewTool("import_csv",
			mcp.WithDescription("Merge a CSV document into a collection. Rows with a known id update that record; other rows are added. Any invalid row rejects the whole document."),
			mcp.WithString("kind", mcp.Description("Collection to import into"), mcp.Required(), kindEnum),
			mcp.WithString("content", mcp.Description("CSV text with a header row"), mcp.Required()),
		),
		mcpImportCSV(deps),
	)

	s.AddTool(
		mcp.NewTool("export_csv",
			mcp.WithDescription("Export one collection as CSV text."),
			mcp.WithString("kind", mcp.Description("Collection to export"), mcp.Required(), kindEnum),
		),
		mcpExportCSV(deps),
	)

	s.AddTool(
		mcp.NewTool("sample_csv",
			mcp.WithDescription("Return an example CSV document showing the import columns of a collection."),
			mcp.WithString("kind", mcp.Description("Collection"), mcp.Required(), kindEnum),
		),
		mcpSampleCSV(),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"tracker://summary",
			"Tracker Summary",
			mcp.WithResourceDescription("Number of records in each collection"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceSummary(deps),
	)

	return s
}

func requireKind(req mcp.CallToolRequest) (tracker.Kind, *mcp.CallToolResult) {
	raw, err := req.RequireString("kind")
	if err != nil {
		return "", mcpError("kind is required")
	}
	kind, err := tracker.ParseKind(raw)
	if err != nil {
		return "", mcpError(err.Error())
	}
	return kind, nil
}

func mcpJSON(v any) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return mcpText(string(b))
}

func mcpListRecords(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, errRes := requireKind(req)
		if errRes != nil {
			return errRes, nil
		}
		records, err := listRecords(deps.State, kind)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpJSON(records), nil
	}
}

func mcpSaveCompany(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var c tracker.Company
		if id := req.GetString("id", ""); id != "" {
			existing, ok := deps.State.Company(id)
			if !ok {
				return mcpError(fmt.Sprintf("company %q not found", id)), nil
			}
			c = existing
		}

		set := func(dst *string, arg string) {
			if v := req.GetString(arg, ""); v != "" {
				*dst = v
			}
		}
		set(&c.Name, "name")
		set(&c.WebsiteURL, "websiteUrl")
		set(&c.JobPostURL, "jobPostUrl")
		set(&c.RecruiterName, "recruiterName")
		set(&c.RecruiterEmail, "recruiterEmail")
		set(&c.RecruiterPhone, "recruiterPhone")
		set(&c.Notes, "notes")
		if v := req.GetString("technologies", ""); v != "" {
			c.Technologies = tracker.SplitList(v, ",")
		}

		if err := c.Validate(); err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpJSON(deps.State.SaveCompany(c)), nil
	}
}

func mcpDeleteRecord(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, errRes := requireKind(req)
		if errRes != nil {
			return errRes, nil
		}
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}

		res, err := deps.State.Delete(kind, id)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		if res.Total() == 0 {
			return mcpError(fmt.Sprintf("%s %q not found", kind, id)), nil
		}
		return mcpText(fmt.Sprintf("Deleted %d companies, %d applications, %d references",
			res.Companies, res.Applications, res.References)), nil
	}
}

func mcpImportCSV(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, errRes := requireKind(req)
		if errRes != nil {
			return errRes, nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}

		res, err := deps.State.Import(kind, content)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpText(fmt.Sprintf("Imported %d %s rows (%d created, %d updated)",
			res.Applied, kind, res.Created, res.Updated)), nil
	}
}

func mcpExportCSV(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, errRes := requireKind(req)
		if errRes != nil {
			return errRes, nil
		}
		f, err := deps.State.Export(kind)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpText(f.Content), nil
	}
}

func mcpSampleCSV() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, errRes := requireKind(req)
		if errRes != nil {
			return errRes, nil
		}
		f, err := tracker.Sample(kind)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpText(f.Content), nil
	}
}

func mcpResourceSummary(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.State.Counts())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal summary: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
