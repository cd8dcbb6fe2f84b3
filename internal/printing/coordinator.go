package printing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jretamal/comanda-pos/internal/model"
	"github.com/jretamal/comanda-pos/internal/order"
)

// ErrNoNewItems signals that every line of the order has already
// been sent to the kitchen.  The caller decides whether to abort or
// explicitly reprint everything; the coordinator never silently
// turns a reprint into a full resend.
var ErrNoNewItems = errors.New("no new items to print")

// ErrNoPrintersSucceeded means every configured target failed.  No
// items are marked sent in that case, so a retry fires the same
// unsent set again.
var ErrNoPrintersSucceeded = errors.New("no printers succeeded")

// TargetError reports a per-target transport failure.  Partial
// failure is not an error for the dispatch as a whole.
type TargetError struct {
	Target string
	Err    error
}

func (e TargetError) Error() string { return fmt.Sprintf("printer %s: %v", e.Target, e.Err) }

// ItemMarker is the slice of the store the coordinator needs to
// persist sent-to-kitchen flags after a confirmed dispatch.
type ItemMarker interface {
	MarkItemsPrinted(ctx context.Context, orderID string, itemIDs []string) error
}

// Coordinator decides which item subset goes to which printer class
// and marks items sent only on confirmed delivery.  It is injected
// with its printer client and item marker — no process-wide printer
// registry.
type Coordinator struct {
	client  Client
	marker  ItemMarker
	timeout time.Duration // per-target dispatch deadline
	now     func() time.Time
}

// NewCoordinator constructs a Coordinator.  timeout bounds each
// individual target so a hung device cannot block the others.
func NewCoordinator(client Client, marker ItemMarker, timeout time.Duration) *Coordinator {
	if client == nil || marker == nil {
		panic("nil dependency passed to printing.NewCoordinator")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Coordinator{client: client, marker: marker, timeout: timeout, now: time.Now}
}

// BuildKitchenTicket selects the lines not yet sent to the kitchen.
// Returns ErrNoNewItems when the selection is empty.
func (c *Coordinator) BuildKitchenTicket(o *model.Order) ([]model.OrderItem, error) {
	items := order.UnprintedItems(o)
	if len(items) == 0 {
		return nil, ErrNoNewItems
	}
	return items, nil
}

// Dispatch sends one payload to every target independently.  Each
// target gets its own bounded context; one offline device neither
// blocks nor fails the others.  It returns the targets that accepted
// the payload and the per-target failures.  Only when every target
// fails is ErrNoPrintersSucceeded returned.
func (c *Coordinator) Dispatch(ctx context.Context, payload []byte, targets []string) ([]string, []TargetError, error) {
	if len(targets) == 0 {
		return nil, nil, ErrNoPrintersSucceeded
	}
	var mu sync.Mutex
	var wg sync.WaitGroup
	var succeeded []string
	var failed []TargetError
	for _, target := range targets {
		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			tctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			err := c.client.Print(tctx, target, payload)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, TargetError{Target: target, Err: err})
				return
			}
			succeeded = append(succeeded, target)
		}(target)
	}
	wg.Wait()
	if len(succeeded) == 0 {
		return nil, failed, ErrNoPrintersSucceeded
	}
	return succeeded, failed, nil
}

// PrintKitchen fires the unsent lines of an order at the kitchen
// printer class.  On at least one confirmed delivery it marks
// exactly the dispatched lines as sent — in the store and on the
// in-memory order — and never any line outside the dispatched set.
// When everything fails nothing is marked, so the retry is
// idempotent.
func (c *Coordinator) PrintKitchen(ctx context.Context, o *model.Order, targets []string) ([]string, []TargetError, error) {
	items, err := c.BuildKitchenTicket(o)
	if err != nil {
		return nil, nil, err
	}
	payload := FormatKitchenTicket(o, items, c.now())
	succeeded, failed, err := c.Dispatch(ctx, payload, targets)
	if err != nil {
		return nil, failed, err
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	if err := c.marker.MarkItemsPrinted(ctx, o.ID, ids); err != nil {
		return succeeded, failed, err
	}
	order.MarkPrinted(o, ids)
	return succeeded, failed, nil
}

// PrintReceipt renders the full order — print history does not
// matter for the customer copy — and dispatches it to the counter
// printer class.  No sent flags are touched.
func (c *Coordinator) PrintReceipt(ctx context.Context, o *model.Order, targets []string) ([]string, []TargetError, error) {
	payload := FormatCustomerReceipt(o, c.now())
	return c.Dispatch(ctx, payload, targets)
}
