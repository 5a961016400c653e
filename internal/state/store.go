// Package state holds the client-side synchronization state between the UI
// and the remote collection. The Store is a plain state container with pure
// transition methods, so the contract can be tested without any rendering
// layer attached.
package state

import (
	"errors"

	"github.com/equipctl/equipctl/internal/model"
)

// Phase is the lifecycle of a single action. Each action moves strictly
// Idle -> InFlight -> Succeeded|Failed, and back to InFlight on the next
// invocation.
type Phase int

const (
	Idle Phase = iota
	InFlight
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case InFlight:
		return "in-flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Action tracks the phase of one action kind. One instance exists per kind
// (list, create, remove) instead of a shared busy flag, so combinations
// like "not busy but stale message" cannot be misread.
type Action struct {
	Phase Phase
}

// ErrRemoveInFlight is returned when a delete is requested while another
// one is still outstanding. A single in-flight delete blocks all delete
// affordances, not just the targeted row.
var ErrRemoveInFlight = errors.New("ya hay una eliminación en curso")

// Store owns all transient UI state. It is bound to one component instance
// and must only be mutated from a single logical thread of control (the
// event loop); it carries no locking on purpose.
type Store struct {
	// Records is replaced wholesale on every successful list; the only
	// incremental change is the optimistic removal applied on delete.
	Records []model.Equipment

	Draft model.Draft

	// DeletingID is the id of the record currently being deleted, empty
	// when no delete is outstanding.
	DeletingID string

	// At most one of these is meaningful at a time; last write wins.
	ErrorMessage   string
	SuccessMessage string

	List   Action
	Create Action
	Remove Action
}

// New returns an empty store.
func New() *Store {
	return &Store{Records: []model.Equipment{}}
}

// Busy reports whether any request to the backend is outstanding.
func (s *Store) Busy() bool {
	return s.List.Phase == InFlight || s.Create.Phase == InFlight || s.Remove.Phase == InFlight
}

// CanRemove reports whether a new delete may be started.
func (s *Store) CanRemove() bool {
	return s.DeletingID == ""
}

// BeginList marks a list fetch as outstanding.
func (s *Store) BeginList() {
	s.List.Phase = InFlight
}

// ListSucceeded replaces the records wholesale and clears any error. The
// success message, if present, is left alone.
func (s *Store) ListSucceeded(records []model.Equipment) {
	s.List.Phase = Succeeded
	if records == nil {
		records = []model.Equipment{}
	}
	s.Records = records
	s.ErrorMessage = ""
}

// ListFailed empties the records so a failed refresh never leaves stale
// rows on display.
func (s *Store) ListFailed(msg string) {
	s.List.Phase = Failed
	s.Records = []model.Equipment{}
	s.ErrorMessage = msg
}

// BeginCreate clears both messages and validates the draft. A validation
// failure is terminal for the attempt: the caller must not issue a network
// request when an error is returned.
func (s *Store) BeginCreate() error {
	s.ErrorMessage = ""
	s.SuccessMessage = ""
	if err := s.Draft.Validate(); err != nil {
		s.Create.Phase = Failed
		s.ErrorMessage = err.Error()
		return err
	}
	s.Create.Phase = InFlight
	return nil
}

// CreateSucceeded records the success message and resets the draft to
// empty strings. The caller is expected to run list() once afterwards to
// resynchronize.
func (s *Store) CreateSucceeded(msg string) {
	s.Create.Phase = Succeeded
	s.SuccessMessage = msg
	s.Draft = model.Draft{}
}

// CreateFailed surfaces the error and leaves the draft untouched so the
// user does not lose input.
func (s *Store) CreateFailed(msg string) {
	s.Create.Phase = Failed
	s.ErrorMessage = msg
}

// BeginRemove marks the record as being deleted. Only one delete may be in
// flight at a time.
func (s *Store) BeginRemove(id string) error {
	if !s.CanRemove() {
		return ErrRemoveInFlight
	}
	s.ErrorMessage = ""
	s.SuccessMessage = ""
	s.DeletingID = id
	s.Remove.Phase = InFlight
	return nil
}

// RemoveSucceeded applies the optimistic local removal immediately; the
// reconciling list that follows replaces the records with server truth.
// Without the local step a full refresh alone was observed to leave a
// transient blank row.
func (s *Store) RemoveSucceeded(msg string) {
	s.Remove.Phase = Succeeded
	s.SuccessMessage = msg

	kept := make([]model.Equipment, 0, len(s.Records))
	for _, rec := range s.Records {
		if rec.ID.String() != s.DeletingID {
			kept = append(kept, rec)
		}
	}
	s.Records = kept
	s.DeletingID = ""
}

// RemoveFailed surfaces the error and leaves the records unchanged. There
// is no rollback to perform because nothing was removed optimistically on
// the failure path.
func (s *Store) RemoveFailed(msg string) {
	s.Remove.Phase = Failed
	s.ErrorMessage = msg
	s.DeletingID = ""
}
