package github

import (
	"context"
	"encoding/json"
)

// Transport sends one GraphQL document to the host.
//
// A transport returns an error only for transport-level failures (non-2xx
// responses, timeouts, connection errors). Errors reported by the GraphQL
// layer come back in Response.Errors.
type Transport interface {
	Do(ctx context.Context, operation, query string, variables map[string]any) (*Response, error)
}

// Request is the GraphQL request body.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// Response is the GraphQL response envelope.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError is one entry of the GraphQL errors array.
type GraphQLError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

func newRequest(query string, variables map[string]any) *Request {
	if variables == nil {
		variables = map[string]any{}
	}
	return &Request{Query: query, Variables: variables}
}
