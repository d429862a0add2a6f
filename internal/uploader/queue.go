package uploader

import (
	"strings"

	"github.com/akhilmv/statementiq/internal/transaction"
)

// MaxFileSize is the largest statement the parse service accepts.
const MaxFileSize = 10 * 1024 * 1024

// Status is the lifecycle state of a queue entry. Exactly one applies at any
// time; success and error are terminal.
type Status string

const (
	StatusPending       Status = "pending"
	StatusProcessing    Status = "processing"
	StatusNeedsPassword Status = "needs-password"
	StatusSuccess       Status = "success"
	StatusError         Status = "error"
)

// File is the opaque upload payload plus the metadata validated client-side.
type File struct {
	Name string
	Size int64
	Data []byte
}

// QueueEntry is one file's record within a batch. Password, Err and Result
// are payloads of their corresponding status and are cleared on every
// transition that leaves that status, so a success entry can never carry a
// stale error message.
type QueueEntry struct {
	File     File
	Status   Status
	Password string
	Err      string
	Result   *transaction.Statement
}

func (e *QueueEntry) markProcessing() {
	e.Status = StatusProcessing
	e.Err = ""
}

func (e *QueueEntry) markNeedsPassword() {
	e.Status = StatusNeedsPassword
	e.Err = ""
	e.Password = ""
}

func (e *QueueEntry) markPendingWithPassword(password string) {
	e.Status = StatusPending
	e.Password = password
	e.Err = ""
}

func (e *QueueEntry) markSuccess(result *transaction.Statement) {
	e.Status = StatusSuccess
	e.Result = result
	e.Err = ""
	e.Password = ""
}

func (e *QueueEntry) markError(msg string) {
	e.Status = StatusError
	e.Err = msg
	e.Result = nil
	e.Password = ""
}

// validate applies the client-side checks that must reject a file before any
// network call: extension and size.
func validate(f File) string {
	if !strings.HasSuffix(strings.ToLower(f.Name), ".pdf") {
		return "Only PDF files are accepted."
	}

	if f.Size > MaxFileSize {
		return "File size exceeds 10MB limit."
	}

	return ""
}
