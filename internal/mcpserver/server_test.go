package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/liber/internal/lending"
	"github.com/starford/liber/internal/testutil"
)

func testServer(t *testing.T) (*Server, *lending.Service) {
	t.Helper()
	db := testutil.TestDB(t)
	svc := lending.NewService(db)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_books":
		result, err = srv.listBooks(ctx, req)
	case "issue_book":
		result, err = srv.issueBook(ctx, req)
	case "return_book":
		result, err = srv.returnBook(ctx, req)
	case "loan_history":
		result, err = srv.loanHistory(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func addBook(t *testing.T, svc *lending.Service, title string, copies int) int64 {
	t.Helper()
	book, err := svc.AddBook(context.Background(), lending.BookInput{
		Title:  title,
		Author: "Author",
		Copies: copies,
	})
	if err != nil {
		t.Fatal(err)
	}
	return book.ID
}

func TestListBooks(t *testing.T) {
	srv, svc := testServer(t)
	addBook(t, svc, "Dune", 2)
	addBook(t, svc, "Hyperion", 1)

	r := callTool(t, srv, "list_books", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Dune") || !strings.Contains(text, "Hyperion") {
		t.Errorf("list result = %q", text)
	}

	r = callTool(t, srv, "list_books", map[string]interface{}{"query": "hyp"})
	text = resultText(r)
	if strings.Contains(text, "Dune") || !strings.Contains(text, "Hyperion") {
		t.Errorf("filtered result = %q", text)
	}
}

func TestIssueAndReturn(t *testing.T) {
	srv, svc := testServer(t)
	bookID := addBook(t, svc, "Dune", 1)

	r := callTool(t, srv, "issue_book", map[string]interface{}{
		"book_id":       float64(bookID),
		"borrower_name": "Alice",
		"days":          float64(7),
	})
	if r.IsError {
		t.Fatalf("issue failed: %q", resultText(r))
	}
	if !strings.HasPrefix(resultText(r), "issued: loan 1") {
		t.Errorf("issue result = %q", resultText(r))
	}

	// Last copy is out; a second issue reports an error result.
	r = callTool(t, srv, "issue_book", map[string]interface{}{
		"book_id":       float64(bookID),
		"borrower_name": "Bob",
	})
	if !r.IsError {
		t.Error("expected error when no copies remain")
	}

	r = callTool(t, srv, "return_book", map[string]interface{}{"loan_id": float64(1)})
	if r.IsError {
		t.Fatalf("return failed: %q", resultText(r))
	}
	if !strings.HasPrefix(resultText(r), "returned: loan 1") {
		t.Errorf("return result = %q", resultText(r))
	}
}

func TestIssueBook_MissingArguments(t *testing.T) {
	srv, svc := testServer(t)
	addBook(t, svc, "Dune", 1)

	r := callTool(t, srv, "issue_book", map[string]interface{}{"book_id": float64(1)})
	if !r.IsError {
		t.Error("expected error without borrower_name")
	}

	r = callTool(t, srv, "issue_book", map[string]interface{}{"borrower_name": "Alice"})
	if !r.IsError {
		t.Error("expected error without book_id")
	}
}

func TestReturnBook_Missing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "return_book", map[string]interface{}{"loan_id": float64(42)})
	if !r.IsError {
		t.Error("expected error for unknown loan")
	}
}

func TestLoanHistory(t *testing.T) {
	srv, svc := testServer(t)
	bookID := addBook(t, svc, "Dune", 1)

	if _, err := svc.IssueBook(context.Background(), bookID, lending.IssueInput{BorrowerName: "Alice"}); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "loan_history", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Alice") || !strings.Contains(text, "Dune") {
		t.Errorf("history = %q", text)
	}
}
