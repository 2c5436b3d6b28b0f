package http_api

import (
	"context"
	"net/http"
	"runtime/debug"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/core-coin/capwatch/internal/models"
	"github.com/core-coin/capwatch/pkg/validation"
)

// WebhookResponse summarises one webhook delivery
type WebhookResponse struct {
	Received int      `json:"received"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// webhook is a handler for the /webhook endpoint.
// It accepts a single Helius transaction or an array of them and runs each through the pipeline.
// Any pipeline error answers 502 so the sender redelivers.
func (s *HTTPServer) webhook(c *gin.Context) {
	requestID := c.GetString(requestIDKey)
	log := s.logger.With("request_id", requestID)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		log.Warnw("Failed to read webhook body", "error", err)
		s.respond(c, http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	events, err := models.DecodeInboundEvents(body)
	if err != nil {
		log.Warnw("Invalid webhook payload", "error", err)
		s.respond(c, http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	if err := validateEvents(events); err != nil {
		log.Warnw("Rejected webhook payload", "error", err, "events", len(events))
		s.respond(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Debugw("Webhook received", "events", len(events))

	// The pipeline runs to completion even if the sender hangs up.
	ctx := context.WithoutCancel(c.Request.Context())
	errs := s.processEvents(ctx, events)

	resp := WebhookResponse{Received: len(events)}
	for _, err := range errs {
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, err.Error())
		}
	}

	if resp.Failed > 0 {
		log.Warnw("Webhook processed with failures", "received", resp.Received, "failed", resp.Failed)
		s.respond(c, http.StatusBadGateway, resp)
		return
	}

	s.respond(c, http.StatusOK, resp)
}

// processEvents runs events concurrently, bounded by maxConcurrentEvents.
// The returned slice is index-aligned with events.
func (s *HTTPServer) processEvents(ctx context.Context, events []*models.InboundEvent) []error {
	errs := make([]error, len(events))
	sem := make(chan struct{}, s.maxConcurrentEvents)
	var wg sync.WaitGroup

	for i, event := range events {
		wg.Add(1)
		sem <- struct{}{} // Acquire semaphore

		go func(i int, event *models.InboundEvent) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore

			errs[i] = s.safeProcess(ctx, event)
		}(i, event)
	}

	wg.Wait()
	return errs
}

// safeProcess runs one event with panic recovery; a panic becomes that event's error.
func (s *HTTPServer) safeProcess(ctx context.Context, event *models.InboundEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("Event processing panicked",
				"signature", event.Signature,
				"panic", r,
				"stack", string(debug.Stack()))
			err = errors.Errorf("processing event %s panicked: %v", event.Signature, r)
		}
	}()
	return s.capwatch.ProcessEvent(ctx, event)
}

// health is a handler for the /healthz endpoint.
func (s *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) respond(c *gin.Context, status int, body interface{}) {
	if s.metrics != nil {
		s.metrics.IncWebhookRequest(status)
	}
	c.JSON(status, body)
}

// validateEvents rejects the whole delivery if any event is malformed.
// Only the signature and the primary mint are checked: later transfer records
// never reach the pipeline. Events without transfers are valid here; the
// pipeline skips them.
func validateEvents(events []*models.InboundEvent) error {
	for i, event := range events {
		if err := validation.ValidateSignature(event.Signature); err != nil {
			return errors.Wrapf(err, "event %d", i)
		}
		mint, ok := event.PrimaryMint()
		if !ok {
			continue
		}
		if err := validation.ValidateMint(mint); err != nil {
			return errors.Wrapf(err, "event %d primary transfer", i)
		}
	}
	return nil
}
