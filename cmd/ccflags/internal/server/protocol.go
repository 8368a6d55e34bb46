// Package server exposes a Resolver to editor hosts as newline-delimited
// JSON-RPC 2.0 over a pair of streams (normally stdin and stdout).
package server

import (
	"encoding/json"
	"fmt"
)

// JSON-RPC 2.0 version string.
const JSONRPCVersion = "2.0"

// JSON-RPC 2.0 error codes.
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Request represents a JSON-RPC 2.0 request. A nil ID marks a
// notification, which gets no response.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// NewRequest creates a new JSON-RPC request.
func NewRequest(id int64, method string, params any) (*Request, error) {
	req := &Request{
		JSONRPC: JSONRPCVersion,
		ID:      &id,
		Method:  method,
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
		req.Params = data
	}
	return req, nil
}

// NewResponse creates a successful JSON-RPC response.
func NewResponse(id *int64, result any) (*Response, error) {
	resp := &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
	}
	if result == nil {
		// result must be present on success, even if null
		resp.Result = json.RawMessage("null")
		return resp, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	resp.Result = data
	return resp, nil
}

// NewErrorResponse creates an error JSON-RPC response.
func NewErrorResponse(id *int64, code int, message string, data any) *Response {
	resp := &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
		},
	}
	if data != nil {
		if d, err := json.Marshal(data); err == nil {
			resp.Error.Data = d
		}
	}
	return resp
}

// Methods served.
const (
	MethodPing           = "ping"
	MethodFlagsGet       = "flags/get"
	MethodDatabaseReload = "database/reload"
	MethodCacheClear     = "cache/clear"
	MethodShutdown       = "shutdown"
)

// PingResult is the response to ping.
type PingResult struct {
	Pong    bool   `json:"pong"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// FlagsGetParams are the parameters of flags/get.
type FlagsGetParams struct {
	Filename string `json:"filename"`
}

// FlagsGetResult is the response to flags/get. Its first two fields are the
// host contract; Source is informational.
type FlagsGetResult struct {
	Flags   []string `json:"flags"`
	DoCache bool     `json:"do_cache"`
	Source  string   `json:"source,omitempty"`
}

// DatabaseReloadResult is the response to database/reload.
type DatabaseReloadResult struct {
	Reloaded bool   `json:"reloaded"`
	Path     string `json:"path,omitempty"`
	Entries  int    `json:"entries"`
}

// CacheClearResult is the response to cache/clear.
type CacheClearResult struct {
	Cleared bool `json:"cleared"`
}

// ShutdownResult is the response to shutdown.
type ShutdownResult struct {
	Message string `json:"message"`
}
