package highlight

import "errors"

// Error kinds raised by the engine. None of them aborts a restoration pass.
var (
	// ErrNotSurroundable: the range crosses a boundary the mutator cannot wrap.
	ErrNotSurroundable = errors.New("range is not surroundable")
	// ErrNoMatch: no acceptable occurrence of the anchor in the text model.
	ErrNoMatch = errors.New("no matching occurrence")
	// ErrAlreadyPresent: a container with the anchor id already exists.
	ErrAlreadyPresent = errors.New("highlight already present")
	// ErrInvalidColorIndex: the colour index is outside the palette.
	ErrInvalidColorIndex = errors.New("invalid color index")
	// ErrInvalidAnchor: empty text or context longer than the window.
	ErrInvalidAnchor = errors.New("invalid anchor")
	// ErrEmptySelection: nothing but whitespace was selected.
	ErrEmptySelection = errors.New("empty selection")
	// ErrContainerNotFound: no container carries the requested id.
	ErrContainerNotFound = errors.New("highlight container not found")
	// ErrAnchorNotFound: the store holds no anchor with the requested id.
	ErrAnchorNotFound = errors.New("anchor not found")
	// ErrPassCancelled: a newer pass superseded this one.
	ErrPassCancelled = errors.New("restoration pass cancelled")
)
