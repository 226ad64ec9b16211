// Package query issues SPARQL queries through the proxy and composes the
// client-side components into a session.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/ports"
)

// Client performs one query exchange and classifies its outcome. It holds
// no mutable state and may be shared between sessions.
type Client struct {
	Transport ports.QueryTransport
	Guard     ports.QueryGuard
	Prompter  ports.ConfirmationPrompter
	Logger    ports.Logger
	// Strict rejects queries whose form cannot be inferred.
	Strict bool
	// Clock is used for elapsed-time measurement; defaults to time.Now.
	Clock func() time.Time
}

// Execute submits queryText. Failures are reported in the outcome, never as errors.
func (c *Client) Execute(ctx context.Context, queryText string, format domain.ResponseFormat, endpoint domain.Endpoint) domain.QueryOutcome {
	if strings.TrimSpace(queryText) == "" {
		return domain.Failed(domain.FromSentinel(domain.KindValidation, domain.ErrEmptyQuery), 0)
	}
	if c.Transport == nil {
		return domain.Failed(domain.NewError(domain.KindTransport, "no query transport configured"), 0)
	}

	req := domain.QueryRequest{Text: queryText, Format: format, Endpoint: endpoint}
	if req.Format == "" {
		req.Format = domain.FormatJSON
	}
	form := req.Form()

	if c.Strict && form == domain.FormUnknown {
		return domain.Failed(domain.FromSentinel(domain.KindValidation, domain.ErrUnknownForm), 0)
	}
	if failure := c.guard(queryText); failure != nil {
		return domain.Failed(failure, 0)
	}

	c.debug("dispatching query", map[string]interface{}{
		"form":       string(form),
		"endpoint":   endpoint.URL,
		"repository": endpoint.Repository,
	})

	start := c.now()
	resp, err := c.Transport.Query(ctx, req)
	elapsed := c.now().Sub(start).Milliseconds()

	outcome := classify(resp, err, elapsed, true)
	if !outcome.Success {
		c.debug("query failed", map[string]interface{}{
			"kind":       string(outcome.Failure.Kind),
			"elapsed_ms": elapsed,
		})
	}
	return outcome
}

// TestConnection runs the liveness probe. The probe payload is passed through uninterpreted.
func (c *Client) TestConnection(ctx context.Context, endpoint domain.Endpoint) domain.ProbeResult {
	if c.Transport == nil {
		return domain.ProbeResult{Outcome: domain.Failed(domain.NewError(domain.KindTransport, "no query transport configured"), 0)}
	}
	start := c.now()
	resp, err := c.Transport.TestConnection(ctx, endpoint)
	elapsed := c.now().Sub(start).Milliseconds()

	outcome := classify(resp, err, elapsed, false)
	msg := resp.Detail
	if msg == "" {
		if outcome.Success {
			msg = "connection successful"
		} else {
			msg = outcome.Failure.Message
		}
	}
	return domain.ProbeResult{Outcome: outcome, Message: msg}
}

// ListRepositories asks the proxy for the store's repositories.
func (c *Client) ListRepositories(ctx context.Context, endpointURL string) domain.QueryOutcome {
	if c.Transport == nil {
		return domain.Failed(domain.NewError(domain.KindTransport, "no query transport configured"), 0)
	}
	start := c.now()
	resp, err := c.Transport.ListRepositories(ctx, endpointURL)
	return classify(resp, err, c.now().Sub(start).Milliseconds(), true)
}

// classify maps a transport exchange onto the error taxonomy. requirePayload
// treats a missing result payload as a malformed envelope.
func classify(resp ports.TransportResponse, err error, elapsed int64, requirePayload bool) domain.QueryOutcome {
	if err != nil {
		msg := fmt.Sprintf("connection failed after %dms", elapsed)
		var classified ports.ClassifiedError
		if errors.As(err, &classified) {
			msg += ": " + classified.Category()
		}
		return domain.Failed(domain.WrapError(domain.KindTransport, msg, err), elapsed)
	}
	if resp.Status < 200 || resp.Status > 299 {
		msg := fmt.Sprintf("proxy returned HTTP %d", resp.Status)
		if resp.Detail != "" {
			msg += ": " + resp.Detail
		}
		return domain.Failed(domain.NewError(domain.KindTransport, msg), elapsed)
	}
	if !resp.Success {
		msg := resp.Detail
		if msg == "" {
			msg = "query failed"
		}
		return domain.Failed(domain.NewError(domain.KindApplication, msg), elapsed)
	}
	if requirePayload && resp.Payload == nil {
		return domain.Failed(domain.NewError(domain.KindTransport, "malformed response: missing results"), elapsed)
	}
	return domain.Succeeded(resp.Payload, elapsed)
}

// guard returns a validation error when the query is blocked or the user
// declines a confirmation.
func (c *Client) guard(queryText string) *domain.Error {
	if c.Guard == nil {
		return nil
	}
	verdict, err := c.Guard.Evaluate(queryText)
	if err != nil {
		return domain.WrapError(domain.KindValidation, "query guard evaluation failed", err)
	}

	switch verdict.Action {
	case domain.GuardBlock:
		return blocked(verdict, "blocked")
	case domain.GuardConfirm:
		if c.Prompter == nil || !c.Prompter.Enabled() {
			return blocked(verdict, "needs confirmation")
		}
		ok, err := c.Prompter.Confirm(verdict, queryText)
		if err != nil {
			return domain.WrapError(domain.KindValidation, "confirmation failed", err)
		}
		if !ok {
			return blocked(verdict, "declined")
		}
	}
	return nil
}

func blocked(verdict domain.GuardVerdict, how string) *domain.Error {
	msg := "query " + how + " by guard rule"
	if len(verdict.Reasons) > 0 {
		msg += ": " + strings.Join(verdict.Reasons, "; ")
	}
	return domain.WrapError(domain.KindValidation, msg, domain.ErrBlockedQuery)
}

func (c *Client) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

func (c *Client) debug(msg string, fields map[string]interface{}) {
	if c.Logger != nil {
		c.Logger.Debug(msg, fields)
	}
}
