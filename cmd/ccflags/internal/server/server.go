package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/albertocavalcante/ccflags/internal/log"
)

// MaxMessageSize bounds a single request line.
const MaxMessageSize = 4 * 1024 * 1024

// Server reads requests from one stream and writes responses to another.
// Each message is one line of JSON.
type Server struct {
	handler *Handler
	in      io.Reader
	out     io.Writer

	writeMu sync.Mutex

	shutdownOnce sync.Once
	shutdown     chan struct{}
}

// New creates a server answering requests with h.
func New(h *Handler, in io.Reader, out io.Writer) *Server {
	s := &Server{
		handler:  h,
		in:       in,
		out:      out,
		shutdown: make(chan struct{}),
	}
	h.onShutdown = s.RequestShutdown
	return s
}

// Serve processes requests until the input ends, a shutdown request is
// handled, or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	logger := log.Component("server")

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(s.in)
		scanner.Buffer(make([]byte, 64*1024), MaxMessageSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-s.shutdown:
				return
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	logger.Info("serving", "protocol", "jsonrpc-2.0")
	for {
		select {
		case <-ctx.Done():
			logger.Info("context cancelled, stopping")
			return nil
		case <-s.shutdown:
			logger.Info("shutdown requested")
			return nil
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("failed to read request: %w", err)
			}
			logger.Debug("input closed")
			return nil
		case line := <-lines:
			if len(line) == 0 {
				continue
			}
			if err := s.handleLine(line); err != nil {
				return err
			}
			select {
			case <-s.shutdown:
				logger.Info("shutdown requested")
				return nil
			default:
			}
		}
	}
}

func (s *Server) handleLine(line []byte) error {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		log.Component("server").Debug("failed to decode request", "error", err)
		return s.send(NewErrorResponse(nil, ErrCodeParseError, "Parse error", nil))
	}
	if resp := s.handler.HandleRequest(&req); resp != nil {
		return s.send(resp)
	}
	return nil
}

func (s *Server) send(resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	data = append(data, '\n')

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.out.Write(data); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// RequestShutdown makes Serve return after the current request.
func (s *Server) RequestShutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
}
