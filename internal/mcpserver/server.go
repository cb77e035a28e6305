// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the lending ledger as tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/liber/internal/lending"
)

// Server wraps the MCP server with lending tools.
type Server struct {
	mcp *server.MCPServer
	svc *lending.Service
}

// New creates a new MCP server with all lending tools registered.
func New(svc *lending.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Liber",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("list_books",
		mcp.WithDescription("List the catalog, or search it by a substring of title, author, or ISBN."),
		mcp.WithString("query", mcp.Description("Optional search term (empty for the full catalog)")),
	), s.listBooks)

	s.mcp.AddTool(mcp.NewTool("issue_book",
		mcp.WithDescription("Lend one copy of a book to a borrower, creating an open loan."),
		mcp.WithNumber("book_id", mcp.Required(), mcp.Description("ID of the book to issue")),
		mcp.WithString("borrower_name", mcp.Required(), mcp.Description("Borrower's name")),
		mcp.WithString("borrower_class", mcp.Description("Borrower's class or affiliation")),
		mcp.WithString("borrower_contact", mcp.Description("Borrower's contact details")),
		mcp.WithNumber("days", mcp.Description("Loan period in days (default 14)")),
	), s.issueBook)

	s.mcp.AddTool(mcp.NewTool("return_book",
		mcp.WithDescription("Close an open loan and put the copy back on the shelf."),
		mcp.WithNumber("loan_id", mcp.Required(), mcp.Description("ID of the loan to close")),
	), s.returnBook)

	s.mcp.AddTool(mcp.NewTool("loan_history",
		mcp.WithDescription("List all loans, open and closed, newest first."),
	), s.loanHistory)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listBooks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	books, err := s.svc.ListBooks(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(books, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) issueBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bookID, err := req.RequireInt("book_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("borrower_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	loan, err := s.svc.IssueBook(ctx, int64(bookID), lending.IssueInput{
		BorrowerName:    name,
		BorrowerClass:   req.GetString("borrower_class", ""),
		BorrowerContact: req.GetString("borrower_contact", ""),
		Days:            req.GetInt("days", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("issued: loan %d, due %s", loan.ID, loan.DueDate)), nil
}

func (s *Server) returnBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loanID, err := req.RequireInt("loan_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	loan, err := s.svc.ReturnBook(ctx, int64(loanID))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("returned: loan %d on %s", loan.ID, *loan.ReturnDate)), nil
}

func (s *Server) loanHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loans, err := s.svc.ListLoans(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(loans, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
