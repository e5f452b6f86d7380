package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v84/github"
)

// Poller resolves a statistics endpoint into a decoded payload.
type Poller interface {
	GetWithPolling(ctx context.Context, endpoint Endpoint, v any) error
}

// Requester is the subset of *github.Client the poller needs.
type Requester interface {
	NewRequest(method, urlStr string, body any, opts ...github.RequestOption) (*http.Request, error)
	Do(ctx context.Context, req *http.Request, v any) (*github.Response, error)
}

// PollPolicy bounds how long the poller waits for GitHub to finish computing.
type PollPolicy struct {
	// MaxAttempts is the maximum number of requests per call, including the first.
	MaxAttempts int
	// InitialInterval is the wait after the first 202 response.
	InitialInterval time.Duration
	// MaxInterval caps a single wait.
	MaxInterval time.Duration
	// MaxElapsed caps the total time spent waiting. Zero disables the cap.
	MaxElapsed time.Duration
	// Multiplier is the factor by which the wait grows after each 202.
	Multiplier float64
	// RandomizationFactor adds jitter to each wait. Zero makes waits deterministic.
	RandomizationFactor float64
}

// DefaultPollPolicy returns the default polling policy.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		MaxAttempts:         10,
		InitialInterval:     1 * time.Second,
		MaxInterval:         16 * time.Second,
		MaxElapsed:          2 * time.Minute,
		Multiplier:          2.0,
		RandomizationFactor: 0.2,
	}
}

func (p PollPolicy) normalized() PollPolicy {
	def := DefaultPollPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = def.InitialInterval
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = p.InitialInterval
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	if p.RandomizationFactor < 0 || p.RandomizationFactor >= 1 {
		p.RandomizationFactor = 0
	}
	return p
}

// backOff returns a fresh schedule that stops after MaxAttempts-1 waits
// or once MaxElapsed has passed, whichever comes first.
func (p PollPolicy) backOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.MaxElapsedTime = p.MaxElapsed
	exp.Multiplier = p.Multiplier
	exp.RandomizationFactor = p.RandomizationFactor

	b := backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1))
	b.Reset()
	return b
}

type pollOutcome int

const (
	outcomeReady pollOutcome = iota
	outcomePending
	outcomeFailed
)

// StatisticsPoller issues GET requests against a statistics endpoint until GitHub
// stops answering 202 Accepted. It keeps no state between calls and is safe for
// concurrent use.
type StatisticsPoller struct {
	client Requester
	policy PollPolicy
	logger *log.Logger
}

// NewStatisticsPoller creates a poller. Invalid policy fields fall back to defaults.
func NewStatisticsPoller(client Requester, policy PollPolicy, logger *log.Logger) *StatisticsPoller {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &StatisticsPoller{
		client: client,
		policy: policy.normalized(),
		logger: logger,
	}
}

// maxDiagnosticBody caps how much of an unexpected response body is kept in an error.
const maxDiagnosticBody = 512

// GetWithPolling decodes the endpoint's payload into v once it is ready.
// v must be a non-nil pointer. A 204 or an empty 200 leaves v untouched and
// counts as ready. v is only written on success.
func (p *StatisticsPoller) GetWithPolling(ctx context.Context, endpoint Endpoint, v any) error {
	if err := endpoint.validate(); err != nil {
		return err
	}
	if target := reflect.ValueOf(v); target.Kind() != reflect.Pointer || target.IsNil() {
		return invalidArgument("target", fmt.Sprintf("must be a non-nil pointer, got %T", v))
	}

	schedule := p.policy.backOff()
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return cancelled(endpoint, attempt-1, err)
		}

		outcome, err := p.attempt(ctx, endpoint, v)
		switch outcome {
		case outcomeReady:
			if attempt > 1 {
				p.logger.Printf("  %s ready after %d attempts", endpoint, attempt)
			}
			return nil
		case outcomeFailed:
			return err
		}

		wait := schedule.NextBackOff()
		if wait == backoff.Stop {
			return &StatsError{
				Kind:     KindExhausted,
				Endpoint: endpoint.String(),
				Attempts: attempt,
				Message:  "statistics are still being computed",
			}
		}
		p.logger.Printf("  %s is still being computed (attempt %d), retrying in %s", endpoint, attempt, wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return cancelled(endpoint, attempt, ctx.Err())
		case <-timer.C:
		}
	}
}

func (p *StatisticsPoller) attempt(ctx context.Context, endpoint Endpoint, v any) (pollOutcome, error) {
	req, err := p.client.NewRequest(http.MethodGet, endpoint.Path(), nil)
	if err != nil {
		return outcomeFailed, &StatsError{Kind: KindTransport, Endpoint: endpoint.String(), Err: err}
	}

	// The body is buffered so that v is never touched by a failed attempt.
	var body json.RawMessage
	resp, err := p.client.Do(ctx, req, &body)
	if err != nil {
		return classify(ctx, endpoint, resp, err)
	}

	status := statusOf(resp)
	switch status {
	case http.StatusOK, http.StatusNoContent:
		if err := decodeInto(body, v); err != nil {
			return outcomeFailed, &StatsError{Kind: KindDecode, Endpoint: endpoint.String(), StatusCode: status, Err: err}
		}
		return outcomeReady, nil
	case http.StatusAccepted:
		return outcomePending, nil
	}
	return outcomeFailed, &StatsError{
		Kind:       KindHTTPStatus,
		Endpoint:   endpoint.String(),
		StatusCode: status,
		Message:    diagnosticBody(body),
	}
}

// decodeInto unmarshals raw into a fresh value and stores it in v only when decoding succeeds.
// An empty body leaves v untouched.
func decodeInto(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	target := reflect.ValueOf(v).Elem()
	fresh := reflect.New(target.Type())
	if err := json.Unmarshal(raw, fresh.Interface()); err != nil {
		return err
	}
	target.Set(fresh.Elem())
	return nil
}

func diagnosticBody(raw json.RawMessage) string {
	body := strings.TrimSpace(string(raw))
	if len(body) > maxDiagnosticBody {
		body = body[:maxDiagnosticBody] + "..."
	}
	return body
}

// classify maps an error returned by go-github onto a poll outcome.
func classify(ctx context.Context, endpoint Endpoint, resp *github.Response, err error) (pollOutcome, error) {
	var accepted *github.AcceptedError
	if errors.As(err, &accepted) {
		return outcomePending, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return outcomeFailed, cancelled(endpoint, 0, ctxErr)
	}

	statsErr := &StatsError{Endpoint: endpoint.String(), Err: err}
	status := statusOf(resp)
	var errResp *github.ErrorResponse
	switch {
	case errors.As(err, &errResp):
		statsErr.Kind = KindHTTPStatus
		statsErr.Message = errResp.Message
		if errResp.Response != nil {
			status = errResp.Response.StatusCode
		}
	case status >= 200 && status < 300:
		statsErr.Kind = KindDecode
	case status != 0:
		statsErr.Kind = KindHTTPStatus
	default:
		statsErr.Kind = KindTransport
	}
	statsErr.StatusCode = status
	return outcomeFailed, statsErr
}

func statusOf(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

func cancelled(endpoint Endpoint, attempts int, err error) *StatsError {
	return &StatsError{Kind: KindCancelled, Endpoint: endpoint.String(), Attempts: attempts, Err: err}
}

// Fetch polls the endpoint and decodes the ready payload into a T.
// On error the zero T is returned, never a partially decoded value.
func Fetch[T any](ctx context.Context, p Poller, endpoint Endpoint) (T, error) {
	var out T
	if err := p.GetWithPolling(ctx, endpoint, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
