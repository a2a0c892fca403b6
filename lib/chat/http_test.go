// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/docdesk/lib/clock"
	"github.com/bureau-foundation/docdesk/lib/docqa"
	"github.com/bureau-foundation/docdesk/lib/document"
	"github.com/bureau-foundation/docdesk/lib/testutil"
)

// gatedBackend is an HTTP backend whose uploads block until the test
// opens the gate for that file name. Sessions are "session-<stem>";
// the session of "stale.pdf" is unknown to the query endpoint.
type gatedBackend struct {
	gates   map[string]chan struct{}
	arrived chan string
}

func newGatedBackend(t *testing.T, names ...string) (*gatedBackend, *docqa.Client) {
	t.Helper()
	backend := &gatedBackend{
		gates:   make(map[string]chan struct{}),
		arrived: make(chan string, len(names)),
	}
	for _, name := range names {
		backend.gates[name] = make(chan struct{})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload/", backend.upload)
	mux.HandleFunc("POST /query/", backend.query)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := docqa.NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return backend, client
}

func (backend *gatedBackend) upload(writer http.ResponseWriter, request *http.Request) {
	_, header, err := request.FormFile("file")
	if err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}
	gate, ok := backend.gates[header.Filename]
	if !ok {
		http.Error(writer, "unexpected file", http.StatusInternalServerError)
		return
	}
	backend.arrived <- header.Filename
	select {
	case <-gate:
	case <-request.Context().Done():
		return
	}
	stem := strings.TrimSuffix(header.Filename, ".pdf")
	json.NewEncoder(writer).Encode(map[string]any{"user_id": "session-" + stem, "chunks": 3})
}

func (backend *gatedBackend) query(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		UserID string `json:"user_id"`
		Query  string `json:"query"`
	}
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		http.Error(writer, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if body.UserID == "session-stale" {
		http.Error(writer, "unknown session", http.StatusBadRequest)
		return
	}
	json.NewEncoder(writer).Encode(map[string]string{"answer": "echo: " + body.Query})
}

// runAsync runs pending off the test goroutine, as the workspace does,
// and delivers the outcome on the returned channel.
func runAsync(pending *Pending) <-chan Outcome {
	outcomes := make(chan Outcome, 1)
	go func() {
		outcomes <- pending.Run(context.Background())
	}()
	return outcomes
}

func TestSupersededUploadOverHTTP(t *testing.T) {
	backend, client := newGatedBackend(t, "first.pdf", "second.pdf")
	controller := NewController(Config{
		Backend: client,
		Clock:   clock.Fake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
	})

	first := runAsync(controller.SubmitDocument(document.NewSource("first.pdf", []byte("%PDF-1.4 a"))))
	second := runAsync(controller.SubmitDocument(document.NewSource("second.pdf", []byte("%PDF-1.4 b"))))
	testutil.RequireReceive(t, backend.arrived, 5*time.Second, "first upload to arrive")
	testutil.RequireReceive(t, backend.arrived, 5*time.Second, "second upload to arrive")

	// The newer upload answers first; the superseded one answers later
	// and must not replace its session.
	close(backend.gates["second.pdf"])
	controller.Apply(testutil.RequireReceive(t, second, 5*time.Second, "second outcome"))
	close(backend.gates["first.pdf"])
	controller.Apply(testutil.RequireReceive(t, first, 5*time.Second, "first outcome"))

	if controller.State() != SessionActive || controller.Session() != "session-second" {
		t.Fatalf("state %v session %q, want session-second", controller.State(), controller.Session())
	}
	if controller.Len() != 1 || controller.Notice() != "" {
		t.Fatalf("transcript %d notice %q", controller.Len(), controller.Notice())
	}

	query := controller.SubmitQuery("what is it?")
	if query == nil {
		t.Fatal("query refused with an active session")
	}
	controller.Apply(testutil.RequireReceive(t, runAsync(query), 5*time.Second, "query outcome"))

	transcript := controller.Transcript()
	want := []struct {
		sender Sender
		text   string
	}{
		{Assistant, MessageUploadSucceeded},
		{User, "what is it?"},
		{Assistant, "echo: what is it?"},
	}
	if len(transcript) != len(want) {
		t.Fatalf("transcript: %+v", transcript)
	}
	for index, entry := range want {
		if transcript[index].Sender != entry.sender || transcript[index].Text != entry.text {
			t.Errorf("entry %d: got %s %q, want %s %q", index,
				transcript[index].Sender.Label(), transcript[index].Text, entry.sender.Label(), entry.text)
		}
	}
}

func TestSessionExpiryOverHTTP(t *testing.T) {
	backend, client := newGatedBackend(t, "stale.pdf")
	close(backend.gates["stale.pdf"])
	controller := NewController(Config{
		Backend: client,
		Clock:   clock.Fake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
	})

	upload := runAsync(controller.SubmitDocument(document.NewSource("stale.pdf", []byte("%PDF-1.4"))))
	controller.Apply(testutil.RequireReceive(t, upload, 5*time.Second, "upload outcome"))
	if controller.Session() != "session-stale" {
		t.Fatalf("session: %q", controller.Session())
	}

	query := runAsync(controller.SubmitQuery("still there?"))
	controller.Apply(testutil.RequireReceive(t, query, 5*time.Second, "query outcome"))

	if controller.State() != NoSession || controller.Session() != "" {
		t.Fatalf("state %v session %q after expiry", controller.State(), controller.Session())
	}
	if last := controller.Transcript()[controller.Len()-1]; last.Text != MessageSessionExpired {
		t.Fatalf("last message: %q", last.Text)
	}
	if controller.SubmitQuery("again?") != nil {
		t.Fatal("query accepted after expiry")
	}
}
