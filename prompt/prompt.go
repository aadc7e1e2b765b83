// Package prompt provides signing.Delegate implementations for the
// prompt trust action: automatic answers for batch use and an interactive
// terminal prompt.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/packsure/signing"
)

// AutoAccept answers every trust prompt with "continue".
type AutoAccept struct{}

// ConfirmUnsigned implements signing.Delegate.
func (AutoAccept) ConfirmUnsigned(context.Context, signing.PromptRequest) (bool, error) {
	return true, nil
}

// ConfirmUntrusted implements signing.Delegate.
func (AutoAccept) ConfirmUntrusted(context.Context, signing.PromptRequest) (bool, error) {
	return true, nil
}

// AutoReject answers every trust prompt with "reject".
type AutoReject struct{}

// ConfirmUnsigned implements signing.Delegate.
func (AutoReject) ConfirmUnsigned(context.Context, signing.PromptRequest) (bool, error) {
	return false, nil
}

// ConfirmUntrusted implements signing.Delegate.
func (AutoReject) ConfirmUntrusted(context.Context, signing.PromptRequest) (bool, error) {
	return false, nil
}

// Terminal asks trust questions on a terminal-style reader/writer pair.
// Answers are y/yes (case-insensitive) to continue; anything else rejects.
// Prompts from concurrent validation calls are serialized.
type Terminal struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a terminal delegate, typically around os.Stdin and
// os.Stderr.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// ConfirmUnsigned implements signing.Delegate.
func (t *Terminal) ConfirmUnsigned(ctx context.Context, req signing.PromptRequest) (bool, error) {
	return t.confirm(ctx, fmt.Sprintf("%s@%s from %s is not signed. Continue anyway?",
		req.Package, req.Version, req.Registry))
}

// ConfirmUntrusted implements signing.Delegate.
func (t *Terminal) ConfirmUntrusted(ctx context.Context, req signing.PromptRequest) (bool, error) {
	return t.confirm(ctx, fmt.Sprintf("%s@%s from %s is signed by an untrusted entity. Continue anyway?",
		req.Package, req.Version, req.Registry))
}

func (t *Terminal) confirm(ctx context.Context, question string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	if _, err := fmt.Fprintf(t.out, "%s [y/N]: ", question); err != nil {
		return false, err
	}

	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Ensure the delegates implement signing.Delegate.
var (
	_ signing.Delegate = AutoAccept{}
	_ signing.Delegate = AutoReject{}
	_ signing.Delegate = (*Terminal)(nil)
)
