package server

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/time/rate"

	"github.com/bastiangx/codeflow/pkg/runner"
	"github.com/bastiangx/codeflow/pkg/suggest"
)

// Error codes sent in CompletionError.
const (
	CodeInvalidRequest = 400
	CodeUnknownCommand = 404
	CodeRateLimited    = 429
	CodeInternal       = 500
)

var (
	errInvalidRequest = errors.New("invalid request")
	errUnknownCommand = errors.New("unknown command")
	errRateLimited    = errors.New("rate limited")
	errRunnerDisabled = errors.New("code runner is disabled")
)

// Options bounds what a client may ask for.
type Options struct {
	DefaultLimit int     // used when a request has no limit
	MaxLimit     int     // requests above this are clamped
	MaxPrefix    int     // longer prefixes are rejected
	RateLimit    float64 // requests per second, 0 disables limiting
	Burst        int
}

// DefaultOptions match the [server] config defaults.
func DefaultOptions() Options {
	return Options{
		DefaultLimit: suggest.DefaultMaxResults,
		MaxLimit:     64,
		MaxPrefix:    60,
	}
}

// Server handles the IPC for code completions
type Server struct {
	engine  suggest.Suggester
	runner  runner.Runner
	opts    Options
	limiter *rate.Limiter

	dec *msgpack.Decoder
	enc *msgpack.Encoder
}

// NewServer creates a completion server using stdin/stdout for IPC.
// run may be nil, in which case "run" requests fail.
func NewServer(engine suggest.Suggester, run runner.Runner, opts Options) *Server {
	return NewServerIO(engine, run, opts, os.Stdin, os.Stdout)
}

// NewServerIO creates a completion server on the given streams.
func NewServerIO(engine suggest.Suggester, run runner.Runner, opts Options, r io.Reader, w io.Writer) *Server {
	def := DefaultOptions()
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = def.DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = def.MaxLimit
	}
	if opts.MaxPrefix <= 0 {
		opts.MaxPrefix = def.MaxPrefix
	}

	s := &Server{
		engine: engine,
		runner: run,
		opts:   opts,
		dec:    msgpack.NewDecoder(r),
		enc:    msgpack.NewEncoder(w),
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = max(1, int(opts.RateLimit))
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return s
}

// Start sends the ready message and serves requests until the input ends or
// ctx is cancelled. Requests are handled one at a time, in order.
func (s *Server) Start(ctx context.Context) error {
	log.Debug("Starting server.")
	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			s.sendError("", errors.Wrap(errInvalidRequest, err.Error()))
			continue
		}

		if req.ID == "" {
			req.ID = uuid.New().String()
		}

		resp, err := s.handleRequest(ctx, req)
		if err != nil {
			log.Debugf("request %s failed: %v", req.ID, err)
			s.sendError(req.ID, err)
			continue
		}
		if err := s.send(resp); err != nil {
			return err
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req Request) (any, error) {
	if s.limiter != nil && !s.limiter.Allow() {
		return nil, errRateLimited
	}

	switch req.Command {
	case "complete":
		return s.handleComplete(req)
	case "symbols":
		return s.handleSymbols(req)
	case "stats":
		return s.handleStats(req), nil
	case "accept":
		return s.handleAccept(req)
	case "run":
		return s.handleRun(ctx, req)
	case "health":
		return StatusResponse{ID: req.ID, Status: "ok"}, nil
	default:
		return nil, errors.Wrapf(errUnknownCommand, "%q", req.Command)
	}
}

func (s *Server) handleComplete(req Request) (any, error) {
	if err := s.checkPrefix(req.Prefix); err != nil {
		return nil, err
	}

	ref := suggest.ContextRef{Name: req.Context}
	switch req.ContextKind {
	case "":
	case "var":
		ref.Kind = suggest.ContextVariable
	case "type":
		ref.Kind = suggest.ContextType
	default:
		return nil, errors.Wrapf(errInvalidRequest, "unknown context kind %q", req.ContextKind)
	}

	start := time.Now()
	if req.Code != "" {
		s.engine.UpdateSymbols(req.Code)
	}
	suggestions := s.engine.Suggest(suggest.Query{
		Prefix:     req.Prefix,
		Context:    ref,
		Code:       req.Code,
		Cursor:     req.Cursor,
		MaxResults: s.limit(req.Limit),
	})
	return s.completionResponse(req.ID, suggestions, time.Since(start)), nil
}

func (s *Server) handleSymbols(req Request) (any, error) {
	if err := s.checkPrefix(req.Prefix); err != nil {
		return nil, err
	}
	start := time.Now()
	if req.Code != "" {
		s.engine.UpdateSymbols(req.Code)
	}
	suggestions := s.engine.CompleteSymbols(req.Prefix, s.limit(req.Limit))
	return s.completionResponse(req.ID, suggestions, time.Since(start)), nil
}

func (s *Server) handleStats(req Request) StatsResponse {
	st := s.engine.Stats()
	return StatsResponse{
		ID:                req.ID,
		SymbolCount:       st.SymbolCount,
		IncludedLibraries: st.IncludedLibraries,
		SymbolTable:       st.SymbolTable,
		CatalogTypes:      st.CatalogTypes,
		TrieWords:         st.TrieWords,
	}
}

func (s *Server) handleAccept(req Request) (any, error) {
	if req.Word == "" {
		return nil, errors.Wrap(errInvalidRequest, "missing 'w' parameter")
	}
	return AcceptResponse{ID: req.ID, Accepted: s.engine.Accept(req.Word)}, nil
}

func (s *Server) handleRun(ctx context.Context, req Request) (any, error) {
	if s.runner == nil {
		return nil, errRunnerDisabled
	}
	if req.Code == "" {
		return nil, errors.Wrap(errInvalidRequest, "missing 'code' parameter")
	}
	res, err := s.runner.Run(ctx, req.Code)
	if err != nil {
		return nil, errors.Wrap(err, "run failed")
	}
	return RunResponse{
		ID:        req.ID,
		Success:   res.Success,
		Output:    res.Output,
		Error:     res.Error,
		ExitCode:  res.ExitCode,
		TimeTaken: res.Duration.Milliseconds(),
	}, nil
}

func (s *Server) checkPrefix(prefix string) error {
	if len(prefix) > s.opts.MaxPrefix {
		return errors.Wrapf(errInvalidRequest, "prefix exceeds maximum length of %d characters", s.opts.MaxPrefix)
	}
	return nil
}

func (s *Server) limit(requested int) int {
	if requested < 1 {
		return s.opts.DefaultLimit
	}
	return min(requested, s.opts.MaxLimit)
}

func (s *Server) completionResponse(id string, suggestions []suggest.Suggestion, elapsed time.Duration) CompletionResponse {
	out := make([]CompletionSuggestion, len(suggestions))
	for i, sg := range suggestions {
		out[i] = CompletionSuggestion{
			Word:        sg.Text,
			Kind:        sg.Kind,
			Description: sg.Description,
			Score:       sg.Score,
			Rank:        uint16(i + 1),
		}
	}
	return CompletionResponse{
		ID:          id,
		Suggestions: out,
		Count:       len(out),
		TimeTaken:   elapsed.Microseconds(),
	}
}

func (s *Server) send(v any) error {
	if err := s.enc.Encode(v); err != nil {
		log.Errorf("Encoding response: %v", err)
		return errors.Wrap(err, "failed to write response")
	}
	return nil
}

func (s *Server) sendError(id string, err error) {
	_ = s.send(CompletionError{ID: id, Error: err.Error(), Code: errorCode(err)})
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, errInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, errUnknownCommand):
		return CodeUnknownCommand
	case errors.Is(err, errRateLimited):
		return CodeRateLimited
	}
	return CodeInternal
}
