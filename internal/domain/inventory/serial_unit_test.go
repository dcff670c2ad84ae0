package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSerialUnit(t *testing.T) {
	t.Run("creates unit in stock", func(t *testing.T) {
		productID := uuid.New()

		unit, err := NewSerialUnit(productID, "SN-0001")
		require.NoError(t, err)
		assert.Equal(t, productID, unit.ProductID)
		assert.Equal(t, "SN-0001", unit.SerialNumber)
		assert.Equal(t, SerialStatusInStock, unit.Status)
	})

	t.Run("fails with nil product", func(t *testing.T) {
		_, err := NewSerialUnit(uuid.Nil, "SN-0001")
		assert.Error(t, err)
	})

	t.Run("fails with empty serial", func(t *testing.T) {
		_, err := NewSerialUnit(uuid.New(), "")
		assert.Error(t, err)
	})
}

func TestSerialUnit_MarkReturned(t *testing.T) {
	t.Run("sold unit becomes returned", func(t *testing.T) {
		unit, _ := NewSerialUnit(uuid.New(), "SN-0001")
		unit.Status = SerialStatusSold

		assert.True(t, unit.MarkReturned())
		assert.Equal(t, SerialStatusReturned, unit.Status)
	})

	t.Run("non-sold statuses are skipped", func(t *testing.T) {
		for _, status := range []SerialStatus{
			SerialStatusInStock, SerialStatusReserved, SerialStatusReturned, SerialStatusDamaged,
		} {
			unit, _ := NewSerialUnit(uuid.New(), "SN-0001")
			unit.Status = status

			assert.False(t, unit.MarkReturned(), string(status))
			assert.Equal(t, status, unit.Status)
		}
	})

	t.Run("second call is a no-op skip", func(t *testing.T) {
		unit, _ := NewSerialUnit(uuid.New(), "SN-0001")
		unit.Status = SerialStatusSold

		require.True(t, unit.MarkReturned())
		assert.False(t, unit.MarkReturned())
		assert.Equal(t, SerialStatusReturned, unit.Status)
	})
}

func TestSerialUnit_MarkRestocked(t *testing.T) {
	t.Run("returned unit goes back in stock", func(t *testing.T) {
		unit, _ := NewSerialUnit(uuid.New(), "SN-0001")
		unit.Status = SerialStatusReturned

		assert.True(t, unit.MarkRestocked())
		assert.Equal(t, SerialStatusInStock, unit.Status)
	})

	t.Run("non-returned statuses are skipped", func(t *testing.T) {
		for _, status := range []SerialStatus{
			SerialStatusInStock, SerialStatusReserved, SerialStatusSold, SerialStatusDamaged,
		} {
			unit, _ := NewSerialUnit(uuid.New(), "SN-0001")
			unit.Status = status

			assert.False(t, unit.MarkRestocked(), string(status))
			assert.Equal(t, status, unit.Status)
		}
	})
}

func TestSerialStatus_IsValid(t *testing.T) {
	assert.True(t, SerialStatusInStock.IsValid())
	assert.True(t, SerialStatusSold.IsValid())
	assert.True(t, SerialStatusReturned.IsValid())
	assert.False(t, SerialStatus("LOST").IsValid())
}
