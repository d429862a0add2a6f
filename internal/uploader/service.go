// Package uploader drives a batch of statement files through the remote
// parse service, one file at a time. The pipeline pauses when a file needs a
// password and resumes on user input; a batch produces at most one combined
// result, and only once every entry has been resolved.
package uploader

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/akhilmv/statementiq/internal/parseclient"
	"github.com/akhilmv/statementiq/internal/transaction"
)

var (
	// ErrBatchInProgress is returned when a new batch is submitted while a
	// previous batch still has a file in flight.
	ErrBatchInProgress = errors.New("a batch is already being processed")

	// ErrNoFiles is returned for an empty batch.
	ErrNoFiles = errors.New("no files to process")

	// ErrEntryProcessing is returned when removing the entry currently in flight.
	ErrEntryProcessing = errors.New("entry is currently processing")
)

//go:generate mockgen -source=service.go -destination=parser_mock.go -package=uploader
type Parser interface {
	Parse(ctx context.Context, filename string, data []byte, password string) (*transaction.Statement, error)
}

// Service is the upload orchestrator for one batch owner (a session or a TUI
// run). All methods are safe for concurrent use; the processing loop itself
// runs in the calling goroutine with exactly one file in flight.
type Service struct {
	parser   Parser
	onResult func(*transaction.Statement)

	mu         sync.Mutex
	queue      []*QueueEntry
	cursor     int  // next index the loop will examine
	awaiting   int  // index paused on a password challenge, -1 if none
	processing bool // mutual exclusion around the per-file loop
	finalized  bool // combined result already emitted for this batch
}

// NewService creates an orchestrator. onResult receives the combined
// statement of a fully resolved batch, at most once per batch; it may be nil.
func NewService(parser Parser, onResult func(*transaction.Statement)) *Service {
	return &Service{
		parser:   parser,
		onResult: onResult,
		awaiting: -1,
	}
}

// State is a point-in-time copy of the queue for rendering.
type State struct {
	Entries    []QueueEntry
	Awaiting   int // index awaiting a password, -1 if none
	Processing bool
	Finalized  bool
	// Banner carries the batch-level message shown while finalization is
	// blocked by failed entries.
	Banner string
}

// Snapshot returns a copy of the current queue state.
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Entries:    make([]QueueEntry, len(s.queue)),
		Awaiting:   s.awaiting,
		Processing: s.processing,
		Finalized:  s.finalized,
	}

	for i, e := range s.queue {
		st.Entries[i] = *e

		if e.Status == StatusError {
			st.Banner = "Remove failed files to proceed."
		}
	}

	return st
}

// Enqueue replaces the queue with a fresh batch and processes it from the
// first file. It returns once the batch has completed, failed per-file, or
// paused on a password challenge. Submitting while a previous batch is still
// mid-flight is suppressed with ErrBatchInProgress.
func (s *Service) Enqueue(ctx context.Context, files []File) error {
	if len(files) == 0 {
		return ErrNoFiles
	}

	s.mu.Lock()

	if s.processing {
		s.mu.Unlock()
		return ErrBatchInProgress
	}

	s.queue = make([]*QueueEntry, len(files))
	for i, f := range files {
		s.queue[i] = &QueueEntry{File: f, Status: StatusPending}
	}

	s.cursor = 0
	s.awaiting = -1
	s.finalized = false
	s.processing = true
	s.mu.Unlock()

	slog.Info("starting batch", "files", len(files))

	s.process(ctx)

	return nil
}

// SubmitPassword attaches a password to the entry paused on a challenge and
// re-enters the pipeline at that entry. A no-op when the input is empty or
// nothing is waiting.
func (s *Service) SubmitPassword(ctx context.Context, password string) {
	if password == "" {
		return
	}

	s.mu.Lock()

	if s.awaiting < 0 || s.processing {
		s.mu.Unlock()
		return
	}

	s.queue[s.awaiting].markPendingWithPassword(password)
	s.cursor = s.awaiting
	s.awaiting = -1

	// Resuming is an explicit re-entry: the guard is re-asserted here rather
	// than assumed to still be held from before the pause.
	s.processing = true
	s.mu.Unlock()

	s.process(ctx)
}

// Skip abandons the entry paused on a password challenge, marking it failed,
// and resumes the pipeline at the next index.
func (s *Service) Skip(ctx context.Context) {
	s.mu.Lock()

	if s.awaiting < 0 || s.processing {
		s.mu.Unlock()
		return
	}

	s.queue[s.awaiting].markError("Skipped by user")
	s.cursor = s.awaiting + 1
	s.awaiting = -1
	s.processing = true
	s.mu.Unlock()

	s.process(ctx)
}

// Remove deletes the entry at index. The entry currently in flight cannot be
// removed. Removal re-evaluates the finalization gate, and resumes the
// pipeline when the removed entry was the paused one and unresolved entries
// remain behind it.
func (s *Service) Remove(ctx context.Context, index int) error {
	s.mu.Lock()

	if index < 0 || index >= len(s.queue) {
		s.mu.Unlock()
		return errors.New("index out of range")
	}

	if s.queue[index].Status == StatusProcessing {
		s.mu.Unlock()
		return ErrEntryProcessing
	}

	removedPaused := index == s.awaiting

	s.queue = append(s.queue[:index], s.queue[index+1:]...)

	if index < s.cursor {
		s.cursor--
	}

	switch {
	case removedPaused:
		s.awaiting = -1
		s.cursor = index
	case index < s.awaiting:
		s.awaiting--
	}

	result := s.checkAndFinalizeLocked()

	resume := removedPaused && !s.processing && result == nil && s.hasUnresolvedLocked()
	if resume {
		s.processing = true
	}

	s.mu.Unlock()

	s.emit(result)

	if resume {
		s.process(ctx)
	}

	return nil
}

// process is the per-file loop. The caller must have set the processing
// guard; the guard is cleared on every exit, including the pause-for-password
// path, since pausing is a legitimate exit rather than loop termination.
func (s *Service) process(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.processing = false
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()

		if s.cursor >= len(s.queue) {
			s.mu.Unlock()
			break
		}

		entry := s.queue[s.cursor]

		// Terminal entries are skipped on re-entry: successes idempotently,
		// errors because recovery is user-driven, never an automatic retry.
		if entry.Status == StatusSuccess || entry.Status == StatusError {
			s.cursor++
			s.mu.Unlock()

			continue
		}

		if msg := validate(entry.File); msg != "" {
			entry.markError(msg)
			s.cursor++
			s.mu.Unlock()

			slog.Warn("file rejected", "file", entry.File.Name, "reason", msg)

			continue
		}

		entry.markProcessing()
		file := entry.File
		password := entry.Password
		index := s.cursor
		s.mu.Unlock()

		slog.Info("processing file", "index", index, "file", file.Name)

		result, err := s.parser.Parse(ctx, file.Name, file.Data, password)

		s.mu.Lock()

		switch {
		case err == nil:
			entry.markSuccess(result)
			s.cursor++

		case errors.Is(err, parseclient.ErrPasswordRequired):
			entry.markNeedsPassword()
			s.awaiting = s.indexOfLocked(entry)
			s.mu.Unlock()

			slog.Info("paused for password", "file", file.Name)

			return

		default:
			entry.markError(errorMessage(err))
			s.cursor++

			slog.Warn("file failed", "file", file.Name, "error", err)
		}

		s.mu.Unlock()
	}

	s.mu.Lock()
	s.awaiting = -1
	result := s.checkAndFinalizeLocked()
	s.mu.Unlock()

	s.emit(result)
}

// checkAndFinalizeLocked applies the all-or-nothing gate: a combined result
// is produced iff no entry failed, nothing is unresolved, and at least one
// entry succeeded. Partial batches must never leak an incomplete report.
func (s *Service) checkAndFinalizeLocked() *transaction.Statement {
	if s.finalized {
		return nil
	}

	var (
		hasErrors  bool
		hasPending bool
		successes  []*transaction.Statement
	)

	for _, e := range s.queue {
		switch e.Status {
		case StatusError:
			hasErrors = true
		case StatusPending, StatusProcessing, StatusNeedsPassword:
			hasPending = true
		case StatusSuccess:
			successes = append(successes, e.Result)
		}
	}

	if hasErrors || hasPending || len(successes) == 0 {
		return nil
	}

	s.finalized = true
	s.awaiting = -1

	return combine(successes)
}

// combine merges per-file results in file-submission order.
func combine(results []*transaction.Statement) *transaction.Statement {
	combined := &transaction.Statement{Bank: results[0].Bank}

	names := make([]string, 0, len(results))

	for _, r := range results {
		names = append(names, r.FileName)
		combined.Transactions = append(combined.Transactions, r.Transactions...)
		combined.Analytics.TotalCreditPaise += r.Analytics.TotalCreditPaise
		combined.Analytics.TotalDebitPaise += r.Analytics.TotalDebitPaise
		combined.Analytics.NetCashFlowPaise += r.Analytics.NetCashFlowPaise
		combined.Analytics.FlaggedCount += r.Analytics.FlaggedCount
	}

	combined.FileName = strings.Join(names, ", ")

	return combined
}

func (s *Service) emit(result *transaction.Statement) {
	if result == nil || s.onResult == nil {
		return
	}

	slog.Info("batch finalized", "transactions", len(result.Transactions))
	s.onResult(result)
}

func (s *Service) hasUnresolvedLocked() bool {
	for _, e := range s.queue {
		if e.Status == StatusPending || e.Status == StatusNeedsPassword {
			return true
		}
	}

	return false
}

func (s *Service) indexOfLocked(entry *QueueEntry) int {
	for i, e := range s.queue {
		if e == entry {
			return i
		}
	}

	return -1
}

// errorMessage converts a parse failure into the short string surfaced on the
// queue entry: the server's message where it gave one, otherwise a generic
// fallback for transport failures.
func errorMessage(err error) string {
	var apiErr *parseclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}

	if err != nil && err.Error() != "" {
		return err.Error()
	}

	return "Failed to process"
}
