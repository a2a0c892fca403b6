// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import "time"

// Fixed transcript texts.
const (
	NoticeProcessing       = "Processing PDF..."
	MessageUploadSucceeded = "PDF processed. Ask me anything!"
	MessageUploadFailed    = "Upload failed. Try again."
	MessageSessionExpired  = "Session expired. Please re-upload the PDF."
	MessageQueryFailed     = "Error retrieving answer."
)

// State is the session state of the controller.
type State int

const (
	// NoSession is the initial state and the state after an upload
	// failure or session expiry. Queries are not accepted.
	NoSession State = iota

	// Uploading means a document upload is in flight.
	Uploading

	// SessionActive means the backend holds a processed document and
	// queries are accepted.
	SessionActive
)

func (state State) String() string {
	switch state {
	case NoSession:
		return "no-session"
	case Uploading:
		return "uploading"
	case SessionActive:
		return "session-active"
	default:
		return "unknown"
	}
}

// Sender identifies who a transcript entry belongs to.
type Sender int

const (
	User Sender = iota
	Assistant
)

// Label is the transcript label for the sender.
func (sender Sender) Label() string {
	if sender == User {
		return "You"
	}
	return "Bot"
}

// Operation tags a transcript entry with the operation that produced
// it.
type Operation int

const (
	OperationUpload Operation = iota + 1
	OperationQuery
)

func (operation Operation) String() string {
	switch operation {
	case OperationUpload:
		return "upload"
	case OperationQuery:
		return "query"
	default:
		return "none"
	}
}

// Message is one transcript entry.
type Message struct {
	Sender    Sender
	Text      string
	Operation Operation

	// Sequence is the number of the operation that produced the entry.
	// A user message and the answer to it share a sequence number.
	Sequence uint64

	At time.Time
}

// Failure classifies the most recent failed operation.
type Failure int

const (
	FailureNone Failure = iota

	// UploadFailed is any network or server error during upload.
	UploadFailed

	// QuerySessionExpired is the backend reporting the session as no
	// longer valid.
	QuerySessionExpired

	// QueryFailed is any other query error.
	QueryFailed
)

func (failure Failure) String() string {
	switch failure {
	case FailureNone:
		return "none"
	case UploadFailed:
		return "upload-failed"
	case QuerySessionExpired:
		return "query-session-expired"
	case QueryFailed:
		return "query-failed"
	default:
		return "unknown"
	}
}
