// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bureau-foundation/docdesk/lib/clock"
	"github.com/bureau-foundation/docdesk/lib/docqa"
	"github.com/bureau-foundation/docdesk/lib/document"
)

// fakeBackend answers uploads and queries from per-name/per-query
// tables and records every call.
type fakeBackend struct {
	sessions  map[string]docqa.SessionID
	uploadErr error

	answers  map[string]string
	queryErr error

	uploads []string
	queries []string
}

func (backend *fakeBackend) Upload(_ context.Context, name string, _ []byte) (docqa.SessionID, error) {
	backend.uploads = append(backend.uploads, name)
	if backend.uploadErr != nil {
		return "", backend.uploadErr
	}
	return backend.sessions[name], nil
}

func (backend *fakeBackend) Query(_ context.Context, session docqa.SessionID, query string) (string, error) {
	backend.queries = append(backend.queries, string(session)+":"+query)
	if backend.queryErr != nil {
		return "", backend.queryErr
	}
	return backend.answers[query], nil
}

func newTestController(backend *fakeBackend) *Controller {
	return NewController(Config{
		Backend: backend,
		Clock:   clock.Fake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
	})
}

// activate runs a successful upload so the controller holds session.
func activate(t *testing.T, controller *Controller, backend *fakeBackend, session docqa.SessionID) {
	t.Helper()
	if backend.sessions == nil {
		backend.sessions = map[string]docqa.SessionID{}
	}
	name := string(session) + ".pdf"
	backend.sessions[name] = session
	pending := controller.SubmitDocument(document.NewSource(name, []byte("%PDF-1.4")))
	controller.Apply(pending.Run(context.Background()))
	if controller.State() != SessionActive || controller.Session() != session {
		t.Fatalf("activate: state %v session %q", controller.State(), controller.Session())
	}
}

func lastMessage(t *testing.T, controller *Controller) Message {
	t.Helper()
	transcript := controller.Transcript()
	if len(transcript) == 0 {
		t.Fatal("transcript is empty")
	}
	return transcript[len(transcript)-1]
}

func TestUploadSuccess(t *testing.T) {
	backend := &fakeBackend{sessions: map[string]docqa.SessionID{"contract.pdf": "abc"}}
	controller := newTestController(backend)

	pending := controller.SubmitDocument(document.NewSource("contract.pdf", []byte("%PDF-1.4")))
	if controller.State() != Uploading {
		t.Fatalf("state during upload: got %v, want %v", controller.State(), Uploading)
	}
	if controller.Notice() != NoticeProcessing {
		t.Fatalf("notice during upload: got %q", controller.Notice())
	}
	if controller.Len() != 0 {
		t.Fatal("processing notice must not enter the transcript")
	}

	controller.Apply(pending.Run(context.Background()))

	transcript := controller.Transcript()
	if len(transcript) != 1 {
		t.Fatalf("transcript length: got %d, want 1", len(transcript))
	}
	if transcript[0].Sender != Assistant || transcript[0].Text != MessageUploadSucceeded {
		t.Fatalf("transcript[0]: %+v", transcript[0])
	}
	if transcript[0].Operation != OperationUpload {
		t.Fatalf("operation tag: got %v", transcript[0].Operation)
	}
	if controller.State() != SessionActive || controller.Session() != "abc" {
		t.Fatalf("state %v session %q", controller.State(), controller.Session())
	}
	if controller.Notice() != "" {
		t.Fatalf("notice after upload: got %q", controller.Notice())
	}
}

func TestUploadFailure(t *testing.T) {
	backend := &fakeBackend{uploadErr: errors.New("connection refused")}
	controller := newTestController(backend)

	pending := controller.SubmitDocument(document.NewSource("a.pdf", nil))
	controller.Apply(pending.Run(context.Background()))

	if controller.State() != NoSession {
		t.Fatalf("state: got %v, want %v", controller.State(), NoSession)
	}
	if message := lastMessage(t, controller); message.Text != MessageUploadFailed || message.Sender != Assistant {
		t.Fatalf("last message: %+v", message)
	}
	if controller.Len() != 1 {
		t.Fatalf("transcript length: got %d, want 1", controller.Len())
	}
	if controller.Notice() != "" {
		t.Fatal("notice survived a failed upload")
	}
	if controller.LastFailure() != UploadFailed {
		t.Fatalf("failure: got %v", controller.LastFailure())
	}
}

func TestSubmitDocumentShowsPreviewFirst(t *testing.T) {
	backend := &fakeBackend{sessions: map[string]docqa.SessionID{"a.pdf": "s"}}
	var previewed []string
	var stateAtPreview State = -1
	var controller *Controller
	controller = NewController(Config{
		Backend: backend,
		Preview: func(source document.Source) error {
			previewed = append(previewed, source.Name)
			stateAtPreview = controller.State()
			return errors.New("preview broke")
		},
	})

	pending := controller.SubmitDocument(document.NewSource("a.pdf", nil))
	if len(previewed) != 1 || previewed[0] != "a.pdf" {
		t.Fatalf("preview calls: %v", previewed)
	}
	if stateAtPreview != NoSession {
		t.Fatalf("preview ran in state %v, want before the upload started", stateAtPreview)
	}
	if len(backend.uploads) != 0 {
		t.Fatal("upload ran before Pending.Run")
	}

	controller.Apply(pending.Run(context.Background()))
	if controller.State() != SessionActive {
		t.Fatalf("preview failure blocked the upload: state %v", controller.State())
	}
}

func TestQueryRoundTrip(t *testing.T) {
	backend := &fakeBackend{answers: map[string]string{"What is this about?": "It's a contract."}}
	controller := newTestController(backend)
	activate(t, controller, backend, "abc")

	pending := controller.SubmitQuery("What is this about?")
	if pending == nil {
		t.Fatal("query rejected with an active session")
	}
	user := lastMessage(t, controller)
	if user.Sender != User || user.Text != "What is this about?" {
		t.Fatalf("user message not appended immediately: %+v", user)
	}
	if !controller.AwaitingAnswer() {
		t.Fatal("not awaiting an answer after submit")
	}

	controller.Apply(pending.Run(context.Background()))
	answer := lastMessage(t, controller)
	if answer.Sender != Assistant || answer.Text != "It's a contract." {
		t.Fatalf("answer: %+v", answer)
	}
	if answer.Sequence != user.Sequence {
		t.Fatalf("answer sequence %d does not match question %d", answer.Sequence, user.Sequence)
	}
	if controller.AwaitingAnswer() {
		t.Fatal("still awaiting after the answer arrived")
	}
	if backend.queries[0] != "abc:What is this about?" {
		t.Fatalf("backend saw %q", backend.queries[0])
	}
}

func TestBlankQueriesAreNoOps(t *testing.T) {
	backend := &fakeBackend{}
	controller := newTestController(backend)
	activate(t, controller, backend, "abc")
	before := controller.Len()

	for _, text := range []string{"", "   ", "\t\n"} {
		if pending := controller.SubmitQuery(text); pending != nil {
			t.Errorf("SubmitQuery(%q) returned a request", text)
		}
	}
	if controller.Len() != before {
		t.Fatalf("transcript changed: %d -> %d", before, controller.Len())
	}
	if len(backend.queries) != 0 {
		t.Fatal("blank query reached the backend")
	}
}

func TestQueryWithoutSessionIsNoOp(t *testing.T) {
	backend := &fakeBackend{}
	controller := newTestController(backend)

	if controller.SubmitQuery("hello") != nil {
		t.Fatal("query accepted in NoSession")
	}

	controller.SubmitDocument(document.NewSource("a.pdf", nil))
	if controller.SubmitQuery("hello") != nil {
		t.Fatal("query accepted while uploading")
	}
	if controller.Len() != 0 {
		t.Fatalf("transcript length: got %d, want 0", controller.Len())
	}
}

func TestQuerySessionExpired(t *testing.T) {
	backend := &fakeBackend{queryErr: fmt.Errorf("%w: invalid session", docqa.ErrSessionExpired)}
	controller := newTestController(backend)
	activate(t, controller, backend, "abc")

	controller.Apply(controller.SubmitQuery("X").Run(context.Background()))

	if message := lastMessage(t, controller); message.Text != MessageSessionExpired {
		t.Fatalf("last message: %q", message.Text)
	}
	if controller.State() != NoSession || controller.Session() != "" {
		t.Fatalf("state %v session %q after expiry", controller.State(), controller.Session())
	}
	if controller.LastFailure() != QuerySessionExpired {
		t.Fatalf("failure: got %v", controller.LastFailure())
	}

	before := controller.Len()
	if controller.SubmitQuery("Y") != nil || controller.Len() != before {
		t.Fatal("query accepted after expiry")
	}
}

func TestQueryGenericFailureKeepsSession(t *testing.T) {
	backend := &fakeBackend{queryErr: &docqa.StatusError{Operation: "query", StatusCode: 500}}
	controller := newTestController(backend)
	activate(t, controller, backend, "abc")

	controller.Apply(controller.SubmitQuery("X").Run(context.Background()))

	if message := lastMessage(t, controller); message.Text != MessageQueryFailed {
		t.Fatalf("last message: %q", message.Text)
	}
	if controller.State() != SessionActive || controller.Session() != "abc" {
		t.Fatalf("session lost on generic failure: %v %q", controller.State(), controller.Session())
	}
	if controller.LastFailure() != QueryFailed {
		t.Fatalf("failure: got %v", controller.LastFailure())
	}

	backend.queryErr = nil
	backend.answers = map[string]string{"X": "retry worked"}
	controller.Apply(controller.SubmitQuery("X").Run(context.Background()))
	if lastMessage(t, controller).Text != "retry worked" || controller.LastFailure() != FailureNone {
		t.Fatal("retry after generic failure did not succeed")
	}
}

func TestRapidDocumentSubmissionsLastSubmittedWins(t *testing.T) {
	backend := &fakeBackend{sessions: map[string]docqa.SessionID{"first.pdf": "s1", "second.pdf": "s2"}}
	controller := newTestController(backend)

	first := controller.SubmitDocument(document.NewSource("first.pdf", nil))
	second := controller.SubmitDocument(document.NewSource("second.pdf", nil))

	// The second upload completes first, then the superseded one.
	secondOutcome := second.Run(context.Background())
	firstOutcome := first.Run(context.Background())
	controller.Apply(secondOutcome)
	controller.Apply(firstOutcome)

	if controller.Session() != "s2" {
		t.Fatalf("session: got %q, want s2", controller.Session())
	}
	transcript := controller.Transcript()
	if len(transcript) != 1 || transcript[0].Text != MessageUploadSucceeded {
		t.Fatalf("transcript: %+v", transcript)
	}
	if controller.Notice() != "" {
		t.Fatalf("notice left behind: %q", controller.Notice())
	}
	if source, ok := controller.Document(); !ok || source.Name != "second.pdf" {
		t.Fatalf("document: %q %v", source.Name, ok)
	}
}

func TestRapidDocumentSubmissionsInOrder(t *testing.T) {
	backend := &fakeBackend{sessions: map[string]docqa.SessionID{"first.pdf": "s1", "second.pdf": "s2"}}
	controller := newTestController(backend)

	first := controller.SubmitDocument(document.NewSource("first.pdf", nil))
	second := controller.SubmitDocument(document.NewSource("second.pdf", nil))

	controller.Apply(first.Run(context.Background()))
	if controller.State() != Uploading || controller.Session() != "" {
		t.Fatalf("superseded upload applied: state %v session %q", controller.State(), controller.Session())
	}
	if controller.Notice() != NoticeProcessing {
		t.Fatal("notice cleared by a superseded upload")
	}
	controller.Apply(second.Run(context.Background()))
	if controller.Session() != "s2" || controller.Len() != 1 {
		t.Fatalf("session %q transcript %d", controller.Session(), controller.Len())
	}
}

func TestStaleExpiryDoesNotClearNewSession(t *testing.T) {
	backend := &fakeBackend{}
	controller := newTestController(backend)
	activate(t, controller, backend, "old")

	backend.queryErr = docqa.ErrSessionExpired
	stale := controller.SubmitQuery("question for the old document")
	outcome := stale.Run(context.Background())
	backend.queryErr = nil

	activate(t, controller, backend, "new")
	controller.Apply(outcome)

	if controller.State() != SessionActive || controller.Session() != "new" {
		t.Fatalf("stale expiry tore down the new session: %v %q", controller.State(), controller.Session())
	}
	if message := lastMessage(t, controller); message.Text != MessageQueryFailed {
		t.Fatalf("last message: %q", message.Text)
	}
}

func TestOverlappingQueriesAppendInArrivalOrder(t *testing.T) {
	backend := &fakeBackend{answers: map[string]string{"one": "answer one", "two": "answer two"}}
	controller := newTestController(backend)
	activate(t, controller, backend, "abc")

	first := controller.SubmitQuery("one")
	second := controller.SubmitQuery("two")
	if controller.PendingQueries() != 2 {
		t.Fatalf("pending queries: got %d, want 2", controller.PendingQueries())
	}

	controller.Apply(second.Run(context.Background()))
	controller.Apply(first.Run(context.Background()))

	var texts []string
	for _, message := range controller.Transcript()[1:] {
		texts = append(texts, message.Text)
	}
	want := []string{"one", "two", "answer two", "answer one"}
	if fmt.Sprint(texts) != fmt.Sprint(want) {
		t.Fatalf("transcript: got %q, want %q", texts, want)
	}
	if controller.AwaitingAnswer() {
		t.Fatal("still awaiting after both answers")
	}
}

func TestHistorySurvivesReupload(t *testing.T) {
	backend := &fakeBackend{answers: map[string]string{"q": "a"}}
	controller := newTestController(backend)
	activate(t, controller, backend, "one")
	controller.Apply(controller.SubmitQuery("q").Run(context.Background()))

	activate(t, controller, backend, "two")
	if controller.Len() != 4 {
		t.Fatalf("transcript length: got %d, want 4", controller.Len())
	}
}

func TestTimestampsComeFromClock(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	backend := &fakeBackend{sessions: map[string]docqa.SessionID{"a.pdf": "s"}}
	controller := NewController(Config{Backend: backend, Clock: fake})

	pending := controller.SubmitDocument(document.NewSource("a.pdf", nil))
	fake.Advance(3 * time.Second)
	controller.Apply(pending.Run(context.Background()))

	want := time.Date(2026, 3, 1, 9, 0, 3, 0, time.UTC)
	if at := lastMessage(t, controller).At; !at.Equal(want) {
		t.Fatalf("timestamp: got %v, want %v", at, want)
	}
}
