package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/askdb/askdb/db"
)

// fakeDatabase scripts the db layer.
type fakeDatabase struct {
	schema    db.SchemaDescriptor
	schemaErr error
	result    *db.Result
	selectErr error

	selectCalls []string
}

func (f *fakeDatabase) Schema(context.Context) (db.SchemaDescriptor, error) {
	if f.schemaErr != nil {
		return nil, f.schemaErr
	}
	return f.schema, nil
}

func (f *fakeDatabase) Select(_ context.Context, sqlText string) (*db.Result, error) {
	f.selectCalls = append(f.selectCalls, sqlText)
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.result, nil
}

// fakeProvider replays scripted replies in order.
type fakeProvider struct {
	replies []string
	errs    []error
	calls   int
	systems []string
	users   []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, system, user string) (string, error) {
	i := f.calls
	f.calls++
	f.systems = append(f.systems, system)
	f.users = append(f.users, user)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(database Database, provider *fakeProvider) *Service {
	return NewService(database, provider, testLogger(), 0)
}

func TestAskHappyPath(t *testing.T) {
	rows := []map[string]any{
		{"id": int64(1), "name": "Ada", "country": "Germany"},
		{"id": int64(2), "name": "Max", "country": "Germany"},
	}
	database := &fakeDatabase{
		schema: testSchema(),
		result: &db.Result{Columns: []string{"id", "name", "country"}, Rows: rows},
	}
	provider := &fakeProvider{replies: []string{
		`{"sql": "SELECT * FROM customers WHERE country = 'Germany';", "error": ""}`,
		`{"summary": "There are 2 customers from Germany."}`,
	}}

	ex := newTestService(database, provider).Ask(context.Background(), "Show me all customers from Germany", "en")

	if ex.Err != nil {
		t.Fatalf("Ask() error = %v", ex.Err)
	}
	if ex.SQL != "SELECT * FROM customers WHERE country = 'Germany';" {
		t.Fatalf("SQL = %q", ex.SQL)
	}
	if len(ex.Rows) != 2 || ex.Rows[0]["name"] != "Ada" {
		t.Fatalf("Rows = %v", ex.Rows)
	}
	if ex.Answer != "There are 2 customers from Germany." {
		t.Fatalf("Answer = %q", ex.Answer)
	}
	if len(database.selectCalls) != 1 || database.selectCalls[0] != ex.SQL {
		t.Fatalf("select calls = %v", database.selectCalls)
	}
}

func TestAskModelRefusal(t *testing.T) {
	const reason = "Only read-only SELECT queries are allowed. This request cannot be fulfilled."
	database := &fakeDatabase{schema: testSchema()}
	provider := &fakeProvider{replies: []string{
		`{"sql": null, "error": "` + reason + `"}`,
	}}

	ex := newTestService(database, provider).Ask(context.Background(), "Delete all orders", "en")

	if ex.Err == nil || ex.Err.Message != reason {
		t.Fatalf("Err = %v, want message %q", ex.Err, reason)
	}
	if ex.SQL != "" {
		t.Fatalf("SQL = %q, want empty", ex.SQL)
	}
	if len(ex.Rows) != 0 {
		t.Fatalf("Rows = %v, want empty", ex.Rows)
	}
	if ex.Answer != "" {
		t.Fatalf("Answer = %q, want empty", ex.Answer)
	}
	if len(database.selectCalls) != 0 {
		t.Fatal("refused request must not reach the database")
	}
}

func TestAskUnsafeSQLNeverExecutes(t *testing.T) {
	database := &fakeDatabase{schema: testSchema()}
	provider := &fakeProvider{replies: []string{
		`{"sql": "DROP TABLE customers", "error": ""}`,
	}}

	ex := newTestService(database, provider).Ask(context.Background(), "tidy up", "en")

	if ex.Err == nil || ex.Err.Kind != KindUnsafeQuery {
		t.Fatalf("Err = %v, want UnsafeQuery", ex.Err)
	}
	if len(database.selectCalls) != 0 {
		t.Fatal("unsafe SQL must never reach the database")
	}
}

func TestAskEmptyGeneration(t *testing.T) {
	database := &fakeDatabase{schema: testSchema()}
	provider := &fakeProvider{replies: []string{`{"sql": null, "error": ""}`}}

	ex := newTestService(database, provider).Ask(context.Background(), "hm", "en")

	if ex.Err == nil || ex.Err.Kind != KindEmptyGeneration {
		t.Fatalf("Err = %v, want EmptyGeneration", ex.Err)
	}
}

func TestAskSchemaUnavailable(t *testing.T) {
	database := &fakeDatabase{schemaErr: errors.New("connection refused")}
	provider := &fakeProvider{}

	ex := newTestService(database, provider).Ask(context.Background(), "anything", "en")

	if ex.Err == nil || ex.Err.Kind != KindDatabaseUnavailable {
		t.Fatalf("Err = %v, want DatabaseUnavailable", ex.Err)
	}
	if provider.calls != 0 {
		t.Fatal("model must not be called when the schema fetch fails")
	}
}

func TestAskLLMFailure(t *testing.T) {
	database := &fakeDatabase{schema: testSchema()}
	provider := &fakeProvider{errs: []error{errors.New("timeout")}}

	ex := newTestService(database, provider).Ask(context.Background(), "anything", "en")

	if ex.Err == nil || ex.Err.Kind != KindLLMFailure {
		t.Fatalf("Err = %v, want LLMFailure", ex.Err)
	}
}

func TestAskQueryExecutionErrorKeepsSQL(t *testing.T) {
	database := &fakeDatabase{
		schema:    testSchema(),
		selectErr: errors.New(`relation "customerz" does not exist`),
	}
	provider := &fakeProvider{replies: []string{
		`{"sql": "SELECT * FROM customerz", "error": ""}`,
	}}

	ex := newTestService(database, provider).Ask(context.Background(), "customers?", "en")

	if ex.Err == nil || ex.Err.Kind != KindQueryExecution {
		t.Fatalf("Err = %v, want QueryExecutionError", ex.Err)
	}
	if ex.Err.SQL != "SELECT * FROM customerz" {
		t.Fatalf("Err.SQL = %q, triggering SQL must be preserved", ex.Err.SQL)
	}
	if ex.SQL != "SELECT * FROM customerz" {
		t.Fatalf("SQL = %q, partial result must survive", ex.SQL)
	}
}

func TestAskZeroRowsStillSummarized(t *testing.T) {
	database := &fakeDatabase{
		schema: testSchema(),
		result: &db.Result{Columns: []string{"id"}, Rows: []map[string]any{}},
	}
	provider := &fakeProvider{replies: []string{
		`{"sql": "SELECT * FROM customers WHERE country = 'Atlantis'", "error": ""}`,
		`{"summary": "No matching customers were found."}`,
	}}

	ex := newTestService(database, provider).Ask(context.Background(), "customers from Atlantis", "en")

	if ex.Err != nil {
		t.Fatalf("Ask() error = %v", ex.Err)
	}
	if ex.Answer == "" {
		t.Fatal("zero-row result must still produce a summary")
	}
}

func TestAskSummaryFallsBackToRawText(t *testing.T) {
	database := &fakeDatabase{
		schema: testSchema(),
		result: &db.Result{Columns: []string{"id"}, Rows: []map[string]any{{"id": int64(1)}}},
	}
	provider := &fakeProvider{replies: []string{
		`{"sql": "SELECT id FROM customers", "error": ""}`,
		`One customer exists.`,
	}}

	ex := newTestService(database, provider).Ask(context.Background(), "how many customers?", "en")

	if ex.Err != nil {
		t.Fatalf("Ask() error = %v", ex.Err)
	}
	if ex.Answer != "One customer exists." {
		t.Fatalf("Answer = %q", ex.Answer)
	}
}

func TestAskDeterministicPrompts(t *testing.T) {
	run := func() (*fakeProvider, Exchange) {
		database := &fakeDatabase{
			schema: testSchema(),
			result: &db.Result{Columns: []string{"id"}, Rows: []map[string]any{}},
		}
		provider := &fakeProvider{replies: []string{
			`{"sql": "SELECT id FROM customers", "error": ""}`,
			`{"summary": "None."}`,
		}}
		ex := newTestService(database, provider).Ask(context.Background(), "list customers", "en")
		return provider, ex
	}

	p1, ex1 := run()
	p2, ex2 := run()

	if ex1.SQL != ex2.SQL {
		t.Fatalf("SQL differs: %q vs %q", ex1.SQL, ex2.SQL)
	}
	if p1.systems[0] != p2.systems[0] || p1.users[0] != p2.users[0] {
		t.Fatal("identical requests produced different prompts")
	}
}
