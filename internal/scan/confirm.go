package scan

// Confirmation is the outcome of a human review pass over the candidate
// list. The review stage only ever removes entries, never adds.
type Confirmation struct {
	Files          []FileDescriptor
	SuppressedExts []string // extensions excluded for this run only
	Canceled       bool     // abort the scan before any oracle call
}

// Confirmer reviews the candidate list before anything is submitted.
// Implementations: the interactive terminal prompt, and AcceptAll for
// non-interactive runs.
type Confirmer interface {
	Confirm(files []FileDescriptor) (Confirmation, error)
}

// AcceptAll passes every candidate through unchanged.
type AcceptAll struct{}

func (AcceptAll) Confirm(files []FileDescriptor) (Confirmation, error) {
	return Confirmation{Files: files}, nil
}
