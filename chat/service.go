// service.go sequences one chat exchange: schema fetch, SQL generation,
// the read-only gate, execution, and answer formulation. Strictly linear,
// short-circuiting into a terminal error on the first failed step.
package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/askdb/askdb/ai"
	"github.com/askdb/askdb/db"
)

// Database is the subset of the db layer the pipeline needs.
type Database interface {
	Schema(ctx context.Context) (db.SchemaDescriptor, error)
	Select(ctx context.Context, sqlText string) (*db.Result, error)
}

// Exchange is the transient state of one request. It is created at
// request start and discarded at response; no cross-request state is
// kept here.
type Exchange struct {
	Question string
	Language string
	SQL      string
	Rows     []map[string]any
	Answer   string
	Err      *Error
}

// Service runs the pipeline. Safe for concurrent use: all per-request
// state lives in the Exchange.
type Service struct {
	db         Database
	provider   ai.Provider
	logger     *slog.Logger
	llmTimeout time.Duration
}

// NewService wires the pipeline dependencies. llmTimeout bounds each
// model call independently; zero disables the bound.
func NewService(database Database, provider ai.Provider, logger *slog.Logger, llmTimeout time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: database, provider: provider, logger: logger, llmTimeout: llmTimeout}
}

// Ask answers one question. The returned Exchange always has Rows
// non-nil; on failure Err is set and later fields stay empty, except
// that SQL survives an execution failure for diagnostics.
func (s *Service) Ask(ctx context.Context, question, language string) Exchange {
	ex := Exchange{Question: question, Language: language, Rows: []map[string]any{}}

	schema, err := s.db.Schema(ctx)
	if err != nil {
		ex.Err = newError(KindDatabaseUnavailable, "database is unavailable", err)
		s.logStep(ctx, "schema", ex.Err)
		return ex
	}

	raw, err := s.complete(ctx, "generate_sql", ConversionSystemPrompt(schema), ConversionUserPrompt(question, language))
	if err != nil {
		ex.Err = newError(KindLLMFailure, "SQL generation failed", err)
		s.logStep(ctx, "generate_sql", ex.Err)
		return ex
	}

	sqlText, refusal, decErr := decodeGeneration(raw)
	if decErr != nil {
		ex.Err = decErr
		s.logStep(ctx, "generate_sql", ex.Err)
		return ex
	}
	if refusal != "" {
		ex.Err = &Error{Kind: KindModelRefusal, Message: refusal}
		s.logger.InfoContext(ctx, "model declined request", slog.String("reason", refusal))
		return ex
	}

	if guardErr := ValidateReadOnly(sqlText); guardErr != nil {
		ex.Err = guardErr
		s.logStep(ctx, "guard", ex.Err)
		return ex
	}
	ex.SQL = sqlText

	result, err := s.db.Select(ctx, sqlText)
	if err != nil {
		ex.Err = &Error{Kind: KindQueryExecution, Message: "query execution failed: " + err.Error(), SQL: sqlText, cause: err}
		s.logStep(ctx, "execute", ex.Err)
		return ex
	}
	ex.Rows = result.Rows
	if result.Truncated {
		s.logger.WarnContext(ctx, "query result truncated by row cap", slog.String("sql", sqlText))
	}

	raw, err = s.complete(ctx, "summarize", SummarySystemPrompt(language), SummaryUserPrompt(question, result.Rows))
	if err != nil {
		ex.Err = newError(KindLLMFailure, "answer formulation failed", err)
		s.logStep(ctx, "summarize", ex.Err)
		return ex
	}
	ex.Answer = decodeSummary(raw)

	return ex
}

// complete runs one model call under its own deadline and records the
// transcript.
func (s *Service) complete(ctx context.Context, op, system, user string) (string, error) {
	if s.llmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.llmTimeout)
		defer cancel()
	}

	ai.LogRequest(op, s.provider.Name(), map[string]string{"System": system, "User": user})
	start := time.Now()
	raw, err := s.provider.Complete(ctx, system, user)
	modelCallDurationSeconds.WithLabelValues(op, s.provider.Name()).Observe(time.Since(start).Seconds())
	ai.LogResponse(op, raw, err)
	return raw, err
}

func (s *Service) logStep(ctx context.Context, step string, err *Error) {
	s.logger.ErrorContext(ctx, "chat step failed",
		slog.String("step", step),
		slog.String("kind", string(err.Kind)),
		slog.Any("error", err),
	)
}
