package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-atef1999/Spotless-sub000/errs"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderRequested, OrderConfirmed, true},
		{OrderRequested, OrderCancelled, true},
		{OrderRequested, OrderPaymentFailed, true},
		{OrderRequested, OrderDelivered, false},
		{OrderConfirmed, OrderInCleaning, true},
		{OrderConfirmed, OrderCancelled, true},
		{OrderConfirmed, OrderRequested, false},
		{OrderInCleaning, OrderDelivered, true},
		{OrderInCleaning, OrderCancelled, false},
		{OrderPaymentFailed, OrderConfirmed, true},
		{OrderPaymentFailed, OrderCancelled, true},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderRequested, false},
		// Same-state writes are allowed (idempotent saves).
		{OrderConfirmed, OrderConfirmed, true},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderSetStatusRejectsInvalid(t *testing.T) {
	o := &Order{Status: OrderRequested}
	err := o.SetStatus(OrderDelivered)
	require.Error(t, err)
	assert.Equal(t, errs.KindState, errs.KindOf(err))
	assert.Equal(t, OrderRequested, o.Status, "failed transition must not change status")

	require.NoError(t, o.SetStatus(OrderConfirmed))
	require.NoError(t, o.SetStatus(OrderInCleaning))
	require.NoError(t, o.SetStatus(OrderDelivered))
}

func TestOrderAssignDriver(t *testing.T) {
	driverID := uuid.New()

	o := &Order{Status: OrderRequested}
	require.NoError(t, o.AssignDriver(driverID))
	require.NotNil(t, o.DriverID)
	assert.Equal(t, driverID, *o.DriverID)

	err := o.AssignDriver(uuid.New())
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))

	delivered := &Order{Status: OrderDelivered}
	err = delivered.AssignDriver(driverID)
	require.Error(t, err)
	assert.Equal(t, errs.KindState, errs.KindOf(err))
}

func TestOrderCanCancel(t *testing.T) {
	for _, st := range []OrderStatus{OrderRequested, OrderConfirmed, OrderPaymentFailed} {
		assert.Truef(t, (&Order{Status: st}).CanCancel(), "status %s", st)
	}
	for _, st := range []OrderStatus{OrderInCleaning, OrderDelivered, OrderCancelled} {
		assert.Falsef(t, (&Order{Status: st}).CanCancel(), "status %s", st)
	}
}
