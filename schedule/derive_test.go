package schedule

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/tos-network/feecycle/params"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		now   uint64
		raw   uint8
		hours uint8
		fee   uint16
	}{
		{0, 0, 1, 0},
		{105, 7, 17, 0},
		{10, 13, 24, 6000},
		{23, 1, 1, 1000},
		{1000, 253, 6, 1000},
		{^uint64(0) - 9000*24, 6, 22, 6000},
	}
	for _, tt := range tests {
		upd, err := Derive(tt.now, tt.raw)
		if err != nil {
			t.Fatalf("Derive(%d, %d): %v", tt.now, tt.raw, err)
		}
		if upd.DelayHours != tt.hours || upd.FeeBP != tt.fee {
			t.Errorf("Derive(%d, %d) = %+v, want hours %d fee %d", tt.now, tt.raw, upd, tt.hours, tt.fee)
		}
		if upd.DueAt != tt.now+params.HourlySlots*uint64(tt.hours) {
			t.Errorf("Derive(%d, %d) due %d", tt.now, tt.raw, upd.DueAt)
		}
	}
}

func TestDeriveRejectsOutOfBounds(t *testing.T) {
	for _, raw := range []uint8{254, 255} {
		if _, err := Derive(0, raw); !errors.Is(err, ErrRandomResultOutOfBounds) {
			t.Errorf("Derive(0, %d): want ErrRandomResultOutOfBounds, got %v", raw, err)
		}
	}
}

func TestDeriveProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("delay and fee stay on their ladders", prop.ForAll(
		func(now uint64, raw uint8) bool {
			upd, err := Derive(now, raw)
			if err != nil {
				return false
			}
			return upd.DelayHours >= 1 && upd.DelayHours <= 24 &&
				upd.FeeBP%1000 == 0 && upd.FeeBP <= 6000
		},
		gen.UInt64Range(0, 1<<62), gen.UInt8Range(0, 253),
	))

	properties.Property("formula matches and is deterministic", prop.ForAll(
		func(now uint64, raw uint8) bool {
			a, errA := Derive(now, raw)
			b, errB := Derive(now, raw)
			hours := (now+uint64(raw))%24 + 1
			return errA == nil && errB == nil && a == b &&
				uint64(a.DelayHours) == hours &&
				a.DueAt == now+9000*hours &&
				a.FeeBP == uint16(raw%7)*1000
		},
		gen.UInt64Range(0, 1<<62), gen.UInt8Range(0, 253),
	))

	properties.TestingRun(t)
}
