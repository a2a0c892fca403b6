// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat holds the session and transcript state of a document
// conversation.
//
// The [Controller] is mutated only from the UI event loop. Submitting a
// document or a query returns a [Pending] request whose Run method
// performs the backend call off the loop; the resulting [Outcome] is
// handed back to [Controller.Apply] on the loop. No locks are involved:
// the only state crossing goroutines is the immutable Pending and
// Outcome values.
//
// Two counters guard against stale responses:
//
//   - The upload generation increments on every document submission.
//     An upload outcome whose generation is not current was superseded
//     by a later submission and is discarded, so the session identifier
//     always belongs to the most recently submitted document.
//   - The session epoch increments whenever the session identifier is
//     set or cleared. A "session expired" answer clears the session only
//     if the query was sent under the current epoch; an expiry report
//     for a session that has already been replaced must not tear down
//     its successor.
//
// The transcript is append-only. The "Processing PDF..." notice is not a
// transcript entry; it lives in a single slot that the upload outcome
// clears, so notices never accumulate across overlapping uploads.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/bureau-foundation/docdesk/lib/clock"
	"github.com/bureau-foundation/docdesk/lib/docqa"
	"github.com/bureau-foundation/docdesk/lib/document"
)

// Backend is the question-answering service.
type Backend interface {
	Upload(ctx context.Context, name string, data []byte) (docqa.SessionID, error)
	Query(ctx context.Context, session docqa.SessionID, query string) (string, error)
}

// PreviewFunc surfaces a local preview of a submitted document. It runs
// synchronously inside SubmitDocument, before the upload starts.
type PreviewFunc func(source document.Source) error

// Config holds the controller's collaborators. Backend is required;
// the rest default to no preview, the wall clock and a discarding
// logger.
type Config struct {
	Backend Backend
	Preview PreviewFunc
	Clock   clock.Clock
	Logger  *slog.Logger
}

// Controller is the session/chat state machine.
type Controller struct {
	backend Backend
	preview PreviewFunc
	clock   clock.Clock
	logger  *slog.Logger

	state   State
	session docqa.SessionID

	generation uint64
	epoch      uint64
	sequence   uint64

	// pendingQueries counts queries submitted but not yet applied.
	pendingQueries int

	transcript  []Message
	notice      string
	lastFailure Failure
	document    document.Source
}

// NewController creates a controller in the NoSession state.
func NewController(config Config) *Controller {
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		backend: config.Backend,
		preview: config.Preview,
		clock:   config.Clock,
		logger:  config.Logger,
	}
}

// State returns the session state.
func (controller *Controller) State() State {
	return controller.state
}

// Session returns the active session identifier, empty unless the state
// is SessionActive.
func (controller *Controller) Session() docqa.SessionID {
	return controller.session
}

// AwaitingAnswer reports whether any submitted query has not been
// answered yet.
func (controller *Controller) AwaitingAnswer() bool {
	return controller.pendingQueries > 0
}

// PendingQueries returns the number of unanswered queries.
func (controller *Controller) PendingQueries() int {
	return controller.pendingQueries
}

// CanQuery reports whether SubmitQuery would accept non-blank text.
func (controller *Controller) CanQuery() bool {
	return controller.state == SessionActive
}

// Transcript returns a copy of the transcript.
func (controller *Controller) Transcript() []Message {
	return append([]Message(nil), controller.transcript...)
}

// Len returns the number of transcript entries.
func (controller *Controller) Len() int {
	return len(controller.transcript)
}

// Notice returns the transient notice, empty when none is shown.
func (controller *Controller) Notice() string {
	return controller.notice
}

// LastFailure returns the classification of the most recent failed
// operation. A later success resets it to FailureNone.
func (controller *Controller) LastFailure() Failure {
	return controller.lastFailure
}

// Document returns the most recently submitted document, false before
// the first submission.
func (controller *Controller) Document() (document.Source, bool) {
	return controller.document, controller.generation > 0
}

// SubmitDocument starts an upload of source, superseding any upload
// still in flight. The preview is surfaced first and does not wait for
// the backend; a preview error is logged and the upload proceeds.
func (controller *Controller) SubmitDocument(source document.Source) *Pending {
	if controller.preview != nil {
		if err := controller.preview(source); err != nil {
			controller.logger.Warn("document preview failed",
				"document", source.Name,
				"digest", source.ShortDigest(),
				"error", err,
			)
		}
	}

	controller.generation++
	controller.sequence++
	if controller.session != "" {
		controller.epoch++
	}
	controller.session = ""
	controller.state = Uploading
	controller.notice = NoticeProcessing
	controller.document = source

	controller.logger.Debug("uploading document",
		"document", source.Name,
		"digest", source.ShortDigest(),
		"bytes", len(source.Data),
		"generation", controller.generation,
	)

	backend := controller.backend
	name, data := source.Name, source.Data
	return &Pending{
		operation:  OperationUpload,
		generation: controller.generation,
		sequence:   controller.sequence,
		clock:      controller.clock,
		call: func(ctx context.Context) (docqa.SessionID, string, error) {
			session, err := backend.Upload(ctx, name, data)
			return session, "", err
		},
	}
}

// SubmitQuery appends text to the transcript as a user message and
// returns the pending backend request. It returns nil, touching
// nothing, when text is blank or no session is active.
func (controller *Controller) SubmitQuery(text string) *Pending {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if controller.state != SessionActive {
		controller.logger.Debug("query ignored without an active session", "state", controller.state)
		return nil
	}

	controller.sequence++
	controller.pendingQueries++
	controller.append(User, text, OperationQuery, controller.sequence)

	backend := controller.backend
	session := controller.session
	return &Pending{
		operation: OperationQuery,
		epoch:     controller.epoch,
		sequence:  controller.sequence,
		clock:     controller.clock,
		call: func(ctx context.Context) (docqa.SessionID, string, error) {
			answer, err := backend.Query(ctx, session, text)
			return session, answer, err
		},
	}
}

// Apply folds a completed request into the controller state. It never
// returns an error: every failure becomes a transcript message and a
// state transition.
func (controller *Controller) Apply(outcome Outcome) {
	switch outcome.operation {
	case OperationUpload:
		controller.applyUpload(outcome)
	case OperationQuery:
		controller.applyQuery(outcome)
	}
}

func (controller *Controller) applyUpload(outcome Outcome) {
	if outcome.generation != controller.generation {
		controller.logger.Debug("discarding superseded upload result",
			"generation", outcome.generation,
			"current", controller.generation,
			"error", outcome.err,
		)
		return
	}

	controller.notice = ""
	if outcome.err != nil {
		controller.state = NoSession
		controller.lastFailure = UploadFailed
		controller.append(Assistant, MessageUploadFailed, OperationUpload, outcome.sequence)
		controller.logger.Warn("document upload failed",
			"document", controller.document.Name,
			"elapsed", outcome.elapsed,
			"error", outcome.err,
		)
		return
	}

	controller.session = outcome.session
	controller.epoch++
	controller.state = SessionActive
	controller.lastFailure = FailureNone
	controller.append(Assistant, MessageUploadSucceeded, OperationUpload, outcome.sequence)
	controller.logger.Info("document processed",
		"document", controller.document.Name,
		"digest", controller.document.ShortDigest(),
		"elapsed", outcome.elapsed,
	)
}

func (controller *Controller) applyQuery(outcome Outcome) {
	if controller.pendingQueries > 0 {
		controller.pendingQueries--
	}

	switch {
	case outcome.err == nil:
		controller.lastFailure = FailureNone
		controller.append(Assistant, outcome.answer, OperationQuery, outcome.sequence)
		controller.logger.Debug("query answered", "elapsed", outcome.elapsed)

	case errors.Is(outcome.err, docqa.ErrSessionExpired) && outcome.epoch == controller.epoch:
		controller.session = ""
		controller.epoch++
		controller.state = NoSession
		controller.lastFailure = QuerySessionExpired
		controller.append(Assistant, MessageSessionExpired, OperationQuery, outcome.sequence)
		controller.logger.Warn("session expired", "error", outcome.err)

	default:
		// Includes expiry reports for a session that has since been
		// replaced or already cleared.
		controller.lastFailure = QueryFailed
		controller.append(Assistant, MessageQueryFailed, OperationQuery, outcome.sequence)
		controller.logger.Warn("query failed",
			"elapsed", outcome.elapsed,
			"stale_session", outcome.epoch != controller.epoch,
			"error", outcome.err,
		)
	}
}

func (controller *Controller) append(sender Sender, text string, operation Operation, sequence uint64) {
	controller.transcript = append(controller.transcript, Message{
		Sender:    sender,
		Text:      text,
		Operation: operation,
		Sequence:  sequence,
		At:        controller.clock.Now(),
	})
}

// Pending is a submitted request that has not run yet. Run is safe to
// call from any goroutine; it touches no controller state.
type Pending struct {
	operation  Operation
	generation uint64
	epoch      uint64
	sequence   uint64
	clock      clock.Clock
	call       func(ctx context.Context) (docqa.SessionID, string, error)
}

// Operation returns the kind of request.
func (pending *Pending) Operation() Operation {
	return pending.operation
}

// Run performs the backend call and captures its result.
func (pending *Pending) Run(ctx context.Context) Outcome {
	started := pending.clock.Now()
	session, answer, err := pending.call(ctx)
	return Outcome{
		operation:  pending.operation,
		generation: pending.generation,
		epoch:      pending.epoch,
		sequence:   pending.sequence,
		session:    session,
		answer:     answer,
		err:        err,
		elapsed:    pending.clock.Now().Sub(started),
	}
}

// Outcome is the result of a Pending request, to be applied on the
// event loop.
type Outcome struct {
	operation  Operation
	generation uint64
	epoch      uint64
	sequence   uint64
	session    docqa.SessionID
	answer     string
	err        error
	elapsed    time.Duration
}

// Operation returns the kind of request that produced the outcome.
func (outcome Outcome) Operation() Operation {
	return outcome.operation
}

// Err returns the backend error, nil on success.
func (outcome Outcome) Err() error {
	return outcome.err
}
