package uploader

import (
	"context"
)

// FileInput is the file picker: whatever the user has currently selected
type FileInput interface {
	Selected() []File
}

// ModeSelector reports the duplicate mode chosen at the moment of dispatch
type ModeSelector interface {
	Value() DuplicateMode
}

// FileList is a fixed selection
type FileList []File

// Selected returns the list itself
func (l FileList) Selected() []File { return l }

// StaticMode is a selector that never changes
type StaticMode DuplicateMode

// Value returns the mode
func (m StaticMode) Value() DuplicateMode { return DuplicateMode(m) }

// Binding wires a picker and a mode selector to a Dispatcher. A binding with
// a missing picker or selector is inert.
type Binding struct {
	dispatcher *Dispatcher
	input      FileInput
	selector   ModeSelector
	creds      CredentialSource
}

// Bind attaches the change handler. Passing a nil input or selector yields a
// disabled binding whose OnChange does nothing.
func Bind(d *Dispatcher, input FileInput, selector ModeSelector, creds CredentialSource) *Binding {
	if creds == nil {
		creds = StaticCredential{}
	}
	b := &Binding{dispatcher: d, creds: creds}
	if d == nil || input == nil || selector == nil {
		d.logDisabled()
		return b
	}
	b.input = input
	b.selector = selector
	return b
}

// Enabled reports whether the binding will react to changes
func (b *Binding) Enabled() bool {
	return b.input != nil && b.selector != nil
}

// OnChange runs one dispatch for the current selection. The selector and
// credential are read now, not when the binding was created.
func (b *Binding) OnChange(ctx context.Context) (*Report, error) {
	if !b.Enabled() {
		return &Report{}, nil
	}

	files := b.input.Selected()
	if len(files) == 0 {
		return &Report{}, nil
	}

	mode := b.selector.Value()

	cred, err := b.creds.Credential(ctx)
	if err != nil {
		if b.dispatcher.requireCSRF {
			b.dispatcher.logger.Error(ctx).Err(err).Msg("Failed to read CSRF credential")
			b.dispatcher.notifier.Alert(ctx, MsgNetworkError)
			return &Report{}, &TransportError{Err: err}
		}
		b.dispatcher.logger.Warn(ctx).Err(err).Msg("Failed to read CSRF credential; continuing without it")
		cred = Credential{}
	}

	return b.dispatcher.Dispatch(ctx, files, mode, cred)
}

func (d *Dispatcher) logDisabled() {
	if d == nil {
		return
	}
	d.logger.Debug(context.Background()).Msg("File picker or duplicate selector missing; uploads disabled")
}
