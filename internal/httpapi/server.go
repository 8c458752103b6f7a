// Package httpapi is the reference HTTP surface for numcalc: a single
// POST /eval endpoint over the four standard backends, rate-limited per
// remote address and gzip-aware.
package httpapi

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	kgzip "github.com/klauspost/compress/gzip"
	"golang.org/x/time/rate"

	"github.com/fieldcraft/numcalc/internal/rlog"
	"github.com/fieldcraft/numcalc/pkg/numcalc"
	"github.com/fieldcraft/numcalc/pkg/numcalc/backends"
)

// EvalRequest is the POST /eval request body: {expression, type,
// variables}. Type selects the numeric backend and defaults to "float"
// when omitted.
type EvalRequest struct {
	Expression string            `json:"expression"`
	Type       string            `json:"type,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
}

// EvalResponse is the POST /eval response body: {result, error}, exactly one
// of which is populated.
type EvalResponse struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Server evaluates expressions over HTTP against any of the four standard
// backends, one token bucket limiter per remote address.
type Server struct {
	floatCtx   *numcalc.Context[float64]
	integerCtx *numcalc.Context[*big.Int]
	decimalCtx *numcalc.Context[*big.Float]
	complexCtx *numcalc.Context[complex128]

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	rateLimit rate.Limit
	burst     int
}

// NewServer builds a Server with its own wired contexts for every standard
// backend and a per-client rate limit of rps requests/sec, burst capacity
// burst.
func NewServer(rps float64, burst int) *Server {
	return &Server{
		floatCtx:   backends.NewFloatContext(false),
		integerCtx: backends.NewIntegerContext(false),
		decimalCtx: backends.NewDecimalContext(false),
		complexCtx: backends.NewComplexContext(false),
		limiters:   make(map[string]*rate.Limiter),
		rateLimit:  rate.Limit(rps),
		burst:      burst,
	}
}

// Handler returns the configured http.Handler (just /eval for now; a
// reference deployment is expected to mount this under its own mux).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/eval", s.handleEval)
	return mux
}

func (s *Server) limiterFor(remote string) *rate.Limiter {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[host]
	if !ok {
		l = rate.NewLimiter(s.rateLimit, s.burst)
		s.limiters[host] = l
	}
	return l
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !s.limiterFor(r.RemoteAddr).Allow() {
		s.writeJSON(w, r, http.StatusTooManyRequests, EvalResponse{Error: "too many requests"})
		return
	}

	var req EvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, EvalResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	start := time.Now()
	result, err := s.evalTyped(req)
	rlog.TRACE("httpapi: eval %q (type=%q) took %s", req.Expression, req.Type, time.Since(start))
	if err != nil {
		s.writeJSON(w, r, http.StatusUnprocessableEntity, EvalResponse{Error: err.Error()})
		return
	}

	s.writeJSON(w, r, http.StatusOK, EvalResponse{Result: result})
}

// evalTyped dispatches req.Expression to the backend named by req.Type
// (default "float"), clones that backend's context, binds req.Variables,
// and returns the formatted result.
func (s *Server) evalTyped(req EvalRequest) (string, error) {
	switch strings.ToLower(req.Type) {
	case "", "float":
		return evalAndFormat(s.floatCtx, req.Expression, req.Variables, func(v float64) string {
			return strconv.FormatFloat(v, 'g', -1, 64)
		})
	case "integer":
		return evalAndFormat(s.integerCtx, req.Expression, req.Variables, func(v *big.Int) string {
			return v.String()
		})
	case "decimal", "bigdecimal":
		return evalAndFormat(s.decimalCtx, req.Expression, req.Variables, func(v *big.Float) string {
			return v.Text('g', 34)
		})
	case "complex":
		return evalAndFormat(s.complexCtx, req.Expression, req.Variables, formatComplex)
	default:
		return "", &numcalc.EvalError{Kind: numcalc.MalformedExpression, Message: fmt.Sprintf("unknown type %q (want float, integer, decimal, or complex)", req.Type)}
	}
}

// evalAndFormat clones base, binds vars parsed through its own backend, runs
// the expression, and renders the result with format.
func evalAndFormat[T any](base *numcalc.Context[T], expression string, vars map[string]string, format func(T) string) (string, error) {
	ctx := base.Clone()
	for name, lit := range vars {
		v, err := ctx.Backend.Parse(lit)
		if err != nil {
			return "", &numcalc.EvalError{Kind: numcalc.MalformedExpression, Message: fmt.Sprintf("variable %q: %s", name, err.Error())}
		}
		ctx.SetVariable(name, v)
	}
	result, err := numcalc.Eval(expression, ctx)
	if err != nil {
		return "", err
	}
	return format(result), nil
}

func formatComplex(v complex128) string {
	re, im := real(v), imag(v)
	if im == 0 {
		return strconv.FormatFloat(re, 'g', -1, 64)
	}
	sign := "+"
	if im < 0 {
		sign = "-"
		im = -im
	}
	return fmt.Sprintf("%s%s%si", strconv.FormatFloat(re, 'g', -1, 64), sign, strconv.FormatFloat(im, 'g', -1, 64))
}

// writeJSON encodes body as JSON, gzip-compressing the response with
// klauspost/compress/gzip when the client's Accept-Encoding allows it.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	payload, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "internal error encoding response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if !acceptsGzip(r) {
		w.WriteHeader(status)
		_, _ = w.Write(payload)
		return
	}

	w.Header().Set("Content-Encoding", "gzip")
	w.WriteHeader(status)
	gz := kgzip.NewWriter(w)
	_, _ = gz.Write(payload)
	_ = gz.Close()
}

// acceptsGzip reports whether the client's Accept-Encoding allows gzip.
func acceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}
