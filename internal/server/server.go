package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/dejo1307/fieldparity/internal/engine"
	"github.com/dejo1307/fieldparity/internal/renderers"
	"github.com/dejo1307/fieldparity/internal/renderers/jsonreport"
	"github.com/dejo1307/fieldparity/internal/renderers/textreport"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and connects it to the parity engine.
type Server struct {
	mcp *mcp.Server
	eng *engine.Engine
}

// New creates a new MCP server wired to the given engine.
func New(eng *engine.Engine, version string) (*Server, error) {
	s := &Server{
		eng: eng,
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "fieldparity",
		Version: version,
	}, nil)

	s.mcp = mcpServer
	s.registerResources()
	s.registerTools()

	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	log.Println("[server] starting MCP server on stdio transport")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// registerResources adds MCP resources for the last report.
func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         "parity://report/last",
		Name:        "Last Parity Report",
		Description: "Every resource checked by the last run, as JSON",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		content, err := s.lastReportJSON(ctx)
		if err != nil {
			return nil, err
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: req.Params.URI, Text: string(content), MIMEType: "application/json"},
			},
		}, nil
	})

	s.mcp.AddResource(&mcp.Resource{
		URI:         "parity://report/results",
		Name:        "Parity Results",
		Description: "Per-resource results of the last run in JSONL format",
		MIMEType:    "application/jsonl",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		store := s.eng.Store()
		if store.Last() == nil {
			return nil, fmt.Errorf("no report available (run check_parity first)")
		}
		var buf bytes.Buffer
		if err := store.WriteJSONL(&buf); err != nil {
			return nil, err
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: req.Params.URI, Text: buf.String(), MIMEType: "application/jsonl"},
			},
		}, nil
	})
}

// checkParityArgs are the arguments for the check_parity tool.
type checkParityArgs struct {
	Resources    []string `json:"resources,omitempty" jsonschema:"Resources to check (e.g. runs, messages). Defaults to the curated list."`
	IncludeExtra bool     `json:"include_extra,omitempty" jsonschema:"Also list fields present only in the C++ headers"`
	ShowAll      bool     `json:"show_all,omitempty" jsonschema:"Include resources without differences"`
}

// listResourcesArgs are the arguments for the list_resources tool.
type listResourcesArgs struct {
	Resources []string `json:"resources,omitempty" jsonschema:"Resources to resolve. Defaults to the curated list."`
}

// resourceResultArgs are the arguments for the get_resource_result tool.
type resourceResultArgs struct {
	Resource string `json:"resource" jsonschema:"Resource name from the last report (e.g. runs)"`
}

// registerTools adds MCP tools for running checks and inspecting resolution.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "check_parity",
		Description: "Compare field names declared in the TypeScript reference definitions with the C++ header structs, per resource. Reports fields missing from the headers and, optionally, extra ones.",
	}, s.handleCheckParity)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_resources",
		Description: "Show which reference files and which header each resource resolves to, without comparing fields.",
	}, s.handleListResources)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_resource_result",
		Description: "Return the stored result of one resource from the last parity check, with the files used and its missing and extra fields, as JSON.",
	}, s.handleResourceResult)
}

func (s *Server) handleCheckParity(ctx context.Context, req *mcp.CallToolRequest, args checkParityArgs) (*mcp.CallToolResult, any, error) {
	report, err := s.eng.Check(ctx, args.Resources)
	if err != nil {
		return errorResult(fmt.Sprintf("parity check failed: %v", err)), nil, nil
	}

	artifacts, err := textreport.New(renderers.Options{
		ShowAll:      args.ShowAll,
		IncludeExtra: args.IncludeExtra,
	}).Render(ctx, report)
	if err != nil {
		return errorResult(fmt.Sprintf("rendering failed: %v", err)), nil, nil
	}

	text := string(artifacts[0].Content)
	if text == "" {
		text = "No differences found.\n"
	}
	text += fmt.Sprintf("\n%d resources checked, %d with missing fields.", report.Meta.ResourceCount, report.Meta.FailingCount)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func (s *Server) handleListResources(ctx context.Context, req *mcp.CallToolRequest, args listResourcesArgs) (*mcp.CallToolResult, any, error) {
	located, err := s.eng.Locate(args.Resources)
	if err != nil {
		return errorResult(fmt.Sprintf("resolution failed: %v", err)), nil, nil
	}

	data, err := json.MarshalIndent(located, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to marshal results: %v", err)), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

func (s *Server) handleResourceResult(ctx context.Context, req *mcp.CallToolRequest, args resourceResultArgs) (*mcp.CallToolResult, any, error) {
	if args.Resource == "" {
		return errorResult("resource is required"), nil, nil
	}

	store := s.eng.Store()
	if store.Last() == nil {
		return errorResult("no report available (run check_parity first)"), nil, nil
	}
	res, ok := store.ByResource(args.Resource)
	if !ok {
		return errorResult(fmt.Sprintf("resource %q was not part of the last check (%d resources checked)", args.Resource, store.Count())), nil, nil
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to marshal result: %v", err)), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

func (s *Server) lastReportJSON(ctx context.Context) ([]byte, error) {
	report := s.eng.Store().Last()
	if report == nil {
		return nil, errors.New("no report available (run check_parity first)")
	}
	artifacts, err := jsonreport.New(renderers.Options{ShowAll: true, IncludeExtra: true}).Render(ctx, report)
	if err != nil {
		return nil, err
	}
	return artifacts[0].Content, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
