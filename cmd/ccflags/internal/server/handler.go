package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/albertocavalcante/ccflags/internal/log"
	"github.com/albertocavalcante/ccflags/pkg/compdb"
	"github.com/albertocavalcante/ccflags/pkg/resolver"
)

// Resolver is the part of *resolver.Resolver the handler uses.
type Resolver interface {
	Resolve(filename string) (resolver.Result, resolver.Source)
	Reload() bool
	Invalidate()
	Database() *compdb.Database
}

// Handler dispatches requests to the resolver.
type Handler struct {
	mu        sync.RWMutex
	resolver  Resolver
	version   string
	startTime time.Time

	// onShutdown is called after a shutdown response is built.
	onShutdown func()
}

// NewHandler creates a handler for r.
func NewHandler(r Resolver, version string) *Handler {
	return &Handler{
		resolver:  r,
		version:   version,
		startTime: time.Now(),
	}
}

// SetResolver replaces the resolver used for subsequent requests.
func (h *Handler) SetResolver(r Resolver) {
	h.mu.Lock()
	h.resolver = r
	h.mu.Unlock()
}

// Resolver returns the current resolver.
func (h *Handler) Resolver() Resolver {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.resolver
}

// HandleRequest dispatches req. It returns nil for notifications.
func (h *Handler) HandleRequest(req *Request) *Response {
	if req.ID != nil {
		log.V(log.VerbosityDebug).Debug("handling request", "method", req.Method, "id", *req.ID)
	} else {
		log.V(log.VerbosityDebug).Debug("handling notification", "method", req.Method)
	}

	if req.JSONRPC != JSONRPCVersion || req.Method == "" {
		if req.ID == nil {
			return nil
		}
		return NewErrorResponse(req.ID, ErrCodeInvalidRequest, "Invalid request", nil)
	}

	var resp *Response
	switch req.Method {
	case MethodPing:
		resp = h.reply(req, PingResult{
			Pong:    true,
			Version: h.version,
			Uptime:  time.Since(h.startTime).Round(time.Millisecond).String(),
		})
	case MethodFlagsGet:
		resp = h.handleFlagsGet(req)
	case MethodDatabaseReload:
		resp = h.handleDatabaseReload(req)
	case MethodCacheClear:
		h.Resolver().Invalidate()
		resp = h.reply(req, CacheClearResult{Cleared: true})
	case MethodShutdown:
		resp = h.reply(req, ShutdownResult{Message: "shutting down"})
		if h.onShutdown != nil {
			h.onShutdown()
		}
	default:
		resp = NewErrorResponse(req.ID, ErrCodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil)
	}

	if req.ID == nil {
		return nil
	}
	return resp
}

func (h *Handler) handleFlagsGet(req *Request) *Response {
	var params FlagsGetParams
	if len(req.Params) == 0 {
		return NewErrorResponse(req.ID, ErrCodeInvalidParams, "Invalid params", "filename is required")
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return NewErrorResponse(req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
	}
	if params.Filename == "" {
		return NewErrorResponse(req.ID, ErrCodeInvalidParams, "Invalid params", "filename is required")
	}

	res, src := h.Resolver().Resolve(params.Filename)
	return h.reply(req, FlagsGetResult{
		Flags:   res.Flags,
		DoCache: res.DoCache,
		Source:  string(src),
	})
}

func (h *Handler) handleDatabaseReload(req *Request) *Response {
	r := h.Resolver()
	reloaded := r.Reload()
	db := r.Database()
	return h.reply(req, DatabaseReloadResult{
		Reloaded: reloaded,
		Path:     db.Path(),
		Entries:  db.Len(),
	})
}

func (h *Handler) reply(req *Request, result any) *Response {
	resp, err := NewResponse(req.ID, result)
	if err != nil {
		return NewErrorResponse(req.ID, ErrCodeInternalError, "Failed to create response", nil)
	}
	return resp
}
