// Package accessflow sequences the visitor-side access experience for a
// link token: fetch metadata, decide public versus gated, collect gate
// input, request access, land on a file or an error. It is independent of
// any UI framework; hosts dispatch events into it and render its state.
package accessflow

import (
	"context"
	"errors"
)

// State is the client-visible access state
type State int

const (
	// StateLoading means the metadata fetch is in flight or pending.
	StateLoading State = iota
	// StateGate means visitor input (password and/or visitor fields) is
	// required before access can be requested.
	StateGate
	// StateFile means a signed file descriptor has been obtained.
	StateFile
	// StateError is terminal until an explicit Retry.
	StateError
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateGate:
		return "gate"
	case StateFile:
		return "file"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// LinkMeta is the gate-decision payload returned by the metadata endpoint
type LinkMeta struct {
	IsPasswordProtected bool
	VisitorFields       []string
	File                *SignedFile
}

// SignedFile is a short-lived file descriptor
type SignedFile struct {
	SignedURL  string
	FileName   string
	Size       int64
	FileType   string
	DocumentID string
}

// AccessRequest is a gate submission
type AccessRequest struct {
	Password  string
	FirstName string
	LastName  string
	Email     string
	Metadata  map[string]interface{}
}

// Client is the transport the flow drives. Implementations talk to the link
// service's HTTP surface.
type Client interface {
	FetchMeta(ctx context.Context, token string) (*LinkMeta, error)
	SubmitAccess(ctx context.Context, token string, req AccessRequest) (*SignedFile, error)
}

var (
	// ErrMissingSignedFile reports metadata that claims no gate yet carries
	// no file descriptor. Treated as a backend contract violation, never
	// silently passed through.
	ErrMissingSignedFile = errors.New("accessflow: ungated link metadata missing signed file")
	// ErrGateNotOpen reports a submission outside the gate state.
	ErrGateNotOpen = errors.New("accessflow: no gate awaiting submission")
	// ErrGateAlreadySubmitted reports a second submission for the same gate
	// instance.
	ErrGateAlreadySubmitted = errors.New("accessflow: gate already submitted for this resolution")
)

// Flow is the access state machine for one link token. It performs no
// automatic retries: every failure is terminal until Retry.
type Flow struct {
	client Client
	token  string

	state         State
	meta          *LinkMeta
	file          *SignedFile
	err           error
	gateOpened    bool
	gateSubmitted bool
}

// New creates a flow for a link token, starting in the loading state
func New(client Client, token string) *Flow {
	return &Flow{
		client: client,
		token:  token,
		state:  StateLoading,
	}
}

// State returns the current state
func (f *Flow) State() State { return f.state }

// Meta returns the last fetched metadata, if any
func (f *Flow) Meta() *LinkMeta { return f.meta }

// File returns the signed file descriptor once in the file state
func (f *Flow) File() *SignedFile { return f.file }

// Err returns the failure that produced the error state
func (f *Flow) Err() error { return f.err }

// Resolve fetches metadata and applies the transition rules. A gate opens at
// most once per resolution; refreshing metadata while already gated keeps
// the existing gate instead of reopening it.
func (f *Flow) Resolve(ctx context.Context) State {
	if f.state == StateLoading {
		meta, err := f.client.FetchMeta(ctx, f.token)
		if err != nil {
			return f.fail(err)
		}
		f.meta = meta
	}

	return f.apply()
}

func (f *Flow) apply() State {
	meta := f.meta
	if meta == nil {
		return f.fail(ErrMissingSignedFile)
	}

	gated := meta.IsPasswordProtected || len(meta.VisitorFields) > 0
	if !gated {
		if meta.File == nil {
			return f.fail(ErrMissingSignedFile)
		}
		f.file = meta.File
		f.state = StateFile
		return f.state
	}

	if f.gateOpened {
		return f.state
	}
	f.gateOpened = true
	f.state = StateGate
	return f.state
}

// SubmitGate submits visitor input for an open gate, exactly once per
// resolution. On success the flow lands on the returned file descriptor.
func (f *Flow) SubmitGate(ctx context.Context, req AccessRequest) (State, error) {
	if f.state != StateGate {
		return f.state, ErrGateNotOpen
	}
	if f.gateSubmitted {
		return f.state, ErrGateAlreadySubmitted
	}
	f.gateSubmitted = true

	file, err := f.client.SubmitAccess(ctx, f.token, req)
	if err != nil {
		return f.fail(err), err
	}

	f.file = file
	f.state = StateFile
	return f.state, nil
}

// Retry unconditionally discards all per-resolution state, including the
// gate guard, and re-resolves from loading.
func (f *Flow) Retry(ctx context.Context) State {
	f.state = StateLoading
	f.meta = nil
	f.file = nil
	f.err = nil
	f.gateOpened = false
	f.gateSubmitted = false

	return f.Resolve(ctx)
}

func (f *Flow) fail(err error) State {
	f.err = err
	f.state = StateError
	return f.state
}
