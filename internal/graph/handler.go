package graph

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/blogql/internal/telemetry/metrics"
	"github.com/2beens/blogql/internal/telemetry/tracing"
	"github.com/2beens/blogql/pkg"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxRequestBodySize = 1 << 20

type requestBody struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

type Handler struct {
	schema         graphql.Schema
	metricsManager *metrics.Manager
}

func NewHandler(schema graphql.Schema, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		schema:         schema,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/graphql", handler.handleGraphQL).Methods("POST", "GET", "OPTIONS")
}

func (handler *Handler) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "graphql.handle")
	defer span.End()

	req, err := readRequest(w, r)
	if err != nil {
		span.SetStatus(codes.Error, "bad-request")
		writeErrors(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Query == "" {
		span.SetStatus(codes.Error, "missing-query")
		writeErrors(w, http.StatusBadRequest, "must provide query string")
		return
	}

	operation := operationType(req.Query, req.OperationName)
	span.SetAttributes(
		attribute.String("graphql.operation.type", operation),
		attribute.String("graphql.operation.name", req.OperationName),
	)
	if operation == ast.OperationTypeMutation && r.Method != http.MethodPost {
		span.SetStatus(codes.Error, "mutation-over-get")
		writeErrors(w, http.StatusMethodNotAllowed, "can only perform a mutation operation from a POST request")
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         handler.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})

	outcome := "ok"
	if result.HasErrors() {
		outcome = "error"
		span.SetStatus(codes.Error, "graphql-errors")
	} else {
		span.SetStatus(codes.Ok, "ok")
	}
	if handler.metricsManager != nil {
		handler.metricsManager.CounterGraphQLOperations.WithLabelValues(operation, outcome).Inc()
	}

	resJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("marshal graphql result: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resJson)
}

func readRequest(w http.ResponseWriter, r *http.Request) (*requestBody, error) {
	req := &requestBody{}
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if vars := q.Get("variables"); vars != "" {
			if err := json.UnmarshalFromString(vars, &req.Variables); err != nil {
				return nil, err
			}
		}
		return req, nil
	}

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize)).Decode(req); err != nil {
		return nil, err
	}
	return req, nil
}

// operationType returns the type of the operation that will be executed,
// or "unknown" when the document cannot be parsed.
func operationType(query, operationName string) string {
	doc, err := parser.Parse(parser.ParseParams{
		Source: query,
	})
	if err != nil {
		return "unknown"
	}

	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName == "" || (op.Name != nil && op.Name.Value == operationName) {
			return op.Operation
		}
	}
	return "unknown"
}

func writeErrors(w http.ResponseWriter, status int, message string) {
	resJson, err := json.Marshal(map[string]interface{}{
		"errors": []gqlerrors.FormattedError{
			gqlerrors.NewFormattedError(message),
		},
	})
	if err != nil {
		http.Error(w, message, status)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resJson, status)
}
