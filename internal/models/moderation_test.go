package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	statuses := []ProductStatus{ProductStatusPending, ProductStatusPublished, ProductStatusRejected}

	for _, from := range statuses {
		for _, to := range statuses {
			want := from == ProductStatusPending && to != ProductStatusPending
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestPlanTransitionReject(t *testing.T) {
	_, err := PlanTransition(ProductStatusPending, ProductStatusRejected, "")
	assert.ErrorIs(t, err, ErrReasonRequired)

	_, err = PlanTransition(ProductStatusPending, ProductStatusRejected, "   ")
	assert.ErrorIs(t, err, ErrReasonRequired)

	change, err := PlanTransition(ProductStatusPending, ProductStatusRejected, "Fotos borrosas")
	require.NoError(t, err)
	require.NotNil(t, change.Reason)
	assert.Equal(t, "Fotos borrosas", *change.Reason)
}

func TestPlanTransitionTerminalStates(t *testing.T) {
	_, err := PlanTransition(ProductStatusRejected, ProductStatusRejected, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = PlanTransition(ProductStatusPublished, ProductStatusRejected, "late")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = PlanTransition(ProductStatusPublished, ProductStatusPending, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStatusChangeClearsReasonOnPublish(t *testing.T) {
	stale := "old reason"
	p := &Product{Status: ProductStatusPending, RejectionReason: &stale}

	change, err := PlanTransition(p.Status, ProductStatusPublished, "ignored")
	require.NoError(t, err)
	change.ApplyTo(p)

	assert.Equal(t, ProductStatusPublished, p.Status)
	assert.Nil(t, p.RejectionReason)
}

func TestProductPatch(t *testing.T) {
	name := "Faro delantero"
	price := int64(250000)
	p := &Product{Name: "Faro", Price: 1, Brand: "Toyota"}

	patch := ProductPatch{Name: &name, Price: &price}
	patch.Apply(p)

	assert.Equal(t, "Faro delantero", p.Name)
	assert.Equal(t, int64(250000), p.Price)
	assert.Equal(t, "Toyota", p.Brand)
	assert.Len(t, patch.Fields(), 2)
}
