package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that a descriptor matched nothing. It is a non-fatal
// outcome: callers fall through to their next strategy instead of aborting.
var ErrNotFound = errors.New("browser: element not found")

// NodeRef identifies one rendered element by structural descriptor and match
// position. Refs stay valid only as long as the document keeps the same shape,
// which is exactly why the extraction layer re-resolves them per operation.
type NodeRef struct {
	Selector string
	Index    int
}

// Querier is the document query capability consumed by the extraction core.
// Implementations must distinguish not-found (ErrNotFound) from capability
// failures (timeouts, navigation errors), which are fatal to a run.
//
// A descendant argument scopes the operation to the first match of that
// selector under the referenced node; the empty string targets the node itself.
type Querier interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	FindAll(ctx context.Context, selector string) ([]NodeRef, error)
	ReadText(ctx context.Context, ref NodeRef, descendant string) (string, error)
	ReadAttribute(ctx context.Context, ref NodeRef, descendant, name string) (string, error)
	Click(ctx context.Context, ref NodeRef, descendant string) error
	ScrollContainer(ctx context.Context, selector string, delta int) error
	Evaluate(ctx context.Context, expr string, out any) error
}

// Fatal reports whether err should terminate the whole run rather than
// degrade a single field or entity.
func Fatal(err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
