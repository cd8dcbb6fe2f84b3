package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jretamal/comanda-pos/internal/printing"
)

// PrintHandler exposes ticket printing.  Targets come from
// configuration, one list per printer class; the coordinator fans a
// ticket out to every device in the class and needs just one of them
// to accept.
type PrintHandler struct {
	Orders         OrderStore
	Coordinator    *printing.Coordinator
	Agent          printing.Client
	KitchenTargets []string // kitchen printer class
	CounterTargets []string // counter/receipt printer class
}

// NewPrintHandler constructs a PrintHandler.
func NewPrintHandler(orders OrderStore, coord *printing.Coordinator, agent printing.Client, kitchen, counter []string) *PrintHandler {
	if orders == nil || coord == nil || agent == nil {
		panic("nil dependency passed to NewPrintHandler")
	}
	return &PrintHandler{Orders: orders, Coordinator: coord, Agent: agent, KitchenTargets: kitchen, CounterTargets: counter}
}

// printReport is the JSON shape of a dispatch outcome.  Failures are
// listed per target so the operator knows which device to check;
// partial failure is not an error.
type printReport struct {
	Printed    []string          `json:"printed"`
	Failed     map[string]string `json:"failed,omitempty"`
	NoNewItems bool              `json:"no_new_items,omitempty"`
}

func report(succeeded []string, failed []printing.TargetError) printReport {
	r := printReport{Printed: succeeded}
	if len(failed) > 0 {
		r.Failed = make(map[string]string, len(failed))
		for _, f := range failed {
			r.Failed[f.Target] = f.Err.Error()
		}
	}
	return r
}

// Kitchen handles POST /v1/orders/:id/print/kitchen.  Only the lines
// not yet sent are fired; when everything has been sent the handler
// reports no_new_items and prints nothing, unless the caller
// explicitly asked for a full reprint with ?reprint=all.  A full
// reprint never re-marks anything: the lines are already flagged.
func (h *PrintHandler) Kitchen(c echo.Context) error {
	ctx := c.Request().Context()
	o, err := h.Orders.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	succeeded, failed, err := h.Coordinator.PrintKitchen(ctx, o, h.KitchenTargets)
	if errors.Is(err, printing.ErrNoNewItems) {
		if c.QueryParam("reprint") != "all" {
			return c.JSON(http.StatusOK, printReport{NoNewItems: true})
		}
		payload := printing.FormatKitchenTicket(o, o.Items, time.Now().UTC())
		succeeded, failed, err = h.Coordinator.Dispatch(ctx, payload, h.KitchenTargets)
	}
	if err != nil {
		if errors.Is(err, printing.ErrNoPrintersSucceeded) {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "no printers succeeded", "failed": report(nil, failed).Failed})
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, report(succeeded, failed))
}

// Receipt handles POST /v1/orders/:id/print/receipt.  The customer
// copy always carries the full item set regardless of print history.
func (h *PrintHandler) Receipt(c echo.Context) error {
	ctx := c.Request().Context()
	o, err := h.Orders.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	succeeded, failed, err := h.Coordinator.PrintReceipt(ctx, o, h.CounterTargets)
	if err != nil {
		if errors.Is(err, printing.ErrNoPrintersSucceeded) {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "no printers succeeded", "failed": report(nil, failed).Failed})
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, report(succeeded, failed))
}

// Printers handles GET /v1/printers, a passthrough to the agent's
// device discovery.
func (h *PrintHandler) Printers(c echo.Context) error {
	devices, err := h.Agent.Printers(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "printer agent unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"printers": devices})
}
