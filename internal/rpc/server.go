// Package rpc exposes the HTTP API as line-delimited JSON-RPC 2.0 over an
// arbitrary reader/writer pair, normally stdin/stdout. Gateway hosts spawn
// the binary in plugin mode and speak this protocol to it.
package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"slideclaw/internal/logging"
)

const (
	jsonRPCVersion = "2.0"
	rpcErrorCode   = -32000
	maxMessageSize = 10 * 1024 * 1024
)

// Request is an incoming JSON-RPC call. A nil ID marks a notification and
// suppresses the response.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is the reply for a single request.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *ErrorPayload   `json:"error,omitempty"`
}

// ErrorPayload is the JSON-RPC error object.
type ErrorPayload struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Handler processes the params of one method call.
type Handler func(ctx context.Context, params json.RawMessage) (interface{}, *Error)

// Error is a handler-level failure turned into an ErrorPayload.
type Error struct {
	Message string
	Data    interface{}
}

// Server reads newline-delimited requests and writes one response line per
// request carrying an ID. Requests are handled in order.
type Server struct {
	reader   *bufio.Reader
	writer   *bufio.Writer
	mu       sync.Mutex
	handlers map[string]Handler
}

func NewServer(r io.Reader, w io.Writer) *Server {
	return &Server{
		reader:   bufio.NewReader(r),
		writer:   bufio.NewWriter(w),
		handlers: make(map[string]Handler),
	}
}

// Register binds a method name to a handler. Must be called before Serve.
func (s *Server) Register(method string, handler Handler) {
	s.handlers[method] = handler
}

// Serve processes requests until the reader is exhausted. EOF is a clean
// shutdown; any other read error is returned.
func (s *Server) Serve(ctx context.Context) error {
	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			logging.RPCError("read failed: %v", err)
			return err
		}
		if len(line) > maxMessageSize {
			s.sendError(nil, "message too large", nil)
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.sendError(nil, "invalid json", nil)
			continue
		}
		if req.JSONRPC != jsonRPCVersion {
			s.sendError(req.ID, "invalid jsonrpc version", nil)
			continue
		}
		handler, ok := s.handlers[req.Method]
		if !ok {
			s.sendError(req.ID, fmt.Sprintf("method not found: %s", req.Method), nil)
			continue
		}
		s.handleRequest(ctx, req, handler)
	}
}

func (s *Server) handleRequest(ctx context.Context, req Request, handler Handler) {
	result, rpcErr := handler(ctx, req.Params)
	if req.ID == nil {
		return
	}
	if rpcErr != nil {
		logging.RPCError("%s failed: %s", req.Method, rpcErr.Message)
		s.sendError(req.ID, rpcErr.Message, rpcErr.Data)
		return
	}
	logging.RPC("%s handled", req.Method)
	s.send(Response{JSONRPC: jsonRPCVersion, ID: req.ID, Result: result})
}

func (s *Server) sendError(id json.RawMessage, message string, data interface{}) {
	s.send(Response{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   &ErrorPayload{Code: rpcErrorCode, Message: message, Data: data},
	})
}

func (s *Server) send(payload interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = s.writer.Write(append(data, '\n'))
	_ = s.writer.Flush()
}
