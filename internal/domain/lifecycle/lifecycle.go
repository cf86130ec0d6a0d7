// Package lifecycle holds the allowed status transitions of orders, payouts and
// vendor profiles as finite-state machines.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"github.com/looplab/fsm"
)

// Transition names an event on one of the machines
type Transition string

func (t Transition) String() string { return string(t) }

const (
	OrderPay      Transition = "pay"
	OrderComplete Transition = "complete"
	OrderFail     Transition = "fail"

	PayoutMarkPaid Transition = "mark_paid"
	PayoutCancel   Transition = "cancel"

	VendorApprove Transition = "approve"
	VendorBlock   Transition = "block"
	VendorReset   Transition = "reset"
)

func event(t Transition, dst string, src ...string) fsm.EventDesc {
	return fsm.EventDesc{Name: t.String(), Src: src, Dst: dst}
}

var orderEvents = fsm.Events{
	event(OrderPay, string(entities.OrderStatusPaid), string(entities.OrderStatusPending), string(entities.OrderStatusFailed), string(entities.OrderStatusPaid)),
	event(OrderComplete, string(entities.OrderStatusCompleted), string(entities.OrderStatusPaid), string(entities.OrderStatusCompleted)),
	event(OrderFail, string(entities.OrderStatusFailed), string(entities.OrderStatusPending), string(entities.OrderStatusFailed)),
}

var payoutEvents = fsm.Events{
	event(PayoutMarkPaid, string(entities.PayoutStatusPaid), string(entities.PayoutStatusPending), string(entities.PayoutStatusPaid)),
	event(PayoutCancel, string(entities.PayoutStatusCancelled), string(entities.PayoutStatusPending), string(entities.PayoutStatusCancelled)),
}

var vendorStates = []string{
	string(entities.VendorStatusPending),
	string(entities.VendorStatusApproved),
	string(entities.VendorStatusBlocked),
}

// admins may move a profile between any two states
var vendorEvents = fsm.Events{
	event(VendorApprove, string(entities.VendorStatusApproved), vendorStates...),
	event(VendorBlock, string(entities.VendorStatusBlocked), vendorStates...),
	event(VendorReset, string(entities.VendorStatusPending), vendorStates...),
}

// fire runs one event on a fresh machine. Each event lists its own
// destination as a source, so repeating it is a no-op with changed=false.
func fire(ctx context.Context, current string, events fsm.Events, t Transition) (string, bool, error) {
	machine := fsm.NewFSM(current, events, fsm.Callbacks{})
	if err := machine.Event(ctx, t.String()); err != nil {
		var noTransition fsm.NoTransitionError
		if errors.As(err, &noTransition) {
			return current, false, nil
		}
		return current, false, fmt.Errorf("%w: %s from %s", domainerrors.ErrInvalidTransition, t, current)
	}
	return machine.Current(), true, nil
}

// Order applies t to an order status.
func Order(ctx context.Context, status entities.OrderStatus, t Transition) (entities.OrderStatus, bool, error) {
	next, changed, err := fire(ctx, string(status), orderEvents, t)
	return entities.OrderStatus(next), changed, err
}

// Payout applies t to a payout status. PAID and CANCELLED are terminal.
func Payout(ctx context.Context, status entities.PayoutStatus, t Transition) (entities.PayoutStatus, bool, error) {
	next, changed, err := fire(ctx, string(status), payoutEvents, t)
	return entities.PayoutStatus(next), changed, err
}

// Vendor applies t to a vendor profile status.
func Vendor(ctx context.Context, status entities.VendorStatus, t Transition) (entities.VendorStatus, bool, error) {
	next, changed, err := fire(ctx, string(status), vendorEvents, t)
	return entities.VendorStatus(next), changed, err
}

// VendorTransitionTo returns the event that moves a profile to target.
func VendorTransitionTo(target entities.VendorStatus) (Transition, error) {
	switch target {
	case entities.VendorStatusApproved:
		return VendorApprove, nil
	case entities.VendorStatusBlocked:
		return VendorBlock, nil
	case entities.VendorStatusPending:
		return VendorReset, nil
	default:
		return "", domainerrors.Wrap(domainerrors.ErrValidation, "unknown vendor status")
	}
}
