package domain

import (
	"testing"
	"time"
)

func TestSideOrderType(t *testing.T) {
	cases := []struct {
		side Side
		want OrderType
		ok   bool
	}{
		{SideBuy, OrderTypeBuy, true},
		{SideSell, OrderTypeSell, true},
		{SideBuyLimit, OrderTypeBuyLimit, true},
		{SideSellLimit, OrderTypeSellLimit, true},
		{SideBuyStop, OrderTypeBuyStop, true},
		{SideSellStop, OrderTypeSellStop, true},
		{Side("close_by"), 0, false},
	}

	for _, c := range cases {
		got, ok := c.side.OrderType()
		if ok != c.ok {
			t.Errorf("%q.OrderType() ok = %v, want %v", c.side, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("%q.OrderType() = %d, want %d", c.side, got, c.want)
		}
	}
}

func TestOrderTypeIsBuy(t *testing.T) {
	buys := []OrderType{OrderTypeBuy, OrderTypeBuyLimit, OrderTypeBuyStop, OrderTypeBuyStopLimit}
	for _, ot := range buys {
		if !ot.IsBuy() {
			t.Errorf("OrderType(%d).IsBuy() = false, want true", ot)
		}
	}
	sells := []OrderType{OrderTypeSell, OrderTypeSellLimit, OrderTypeSellStop, OrderTypeCloseBy}
	for _, ot := range sells {
		if ot.IsBuy() {
			t.Errorf("OrderType(%d).IsBuy() = true, want false", ot)
		}
	}
}

func TestUnixUTC(t *testing.T) {
	if got := UnixUTC(0); !got.IsZero() {
		t.Errorf("UnixUTC(0) = %v, want zero time", got)
	}
	if got := UnixUTC(-5); !got.IsZero() {
		t.Errorf("UnixUTC(-5) = %v, want zero time", got)
	}

	got := UnixUTC(1704067200)
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("UnixUTC(1704067200) = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("UnixUTC location = %v, want UTC", got.Location())
	}
}

func TestTickFillTimes(t *testing.T) {
	tick := Tick{Time: 1704067200, TimeMsc: 1704067200123, Bid: 1.1000, Ask: 1.1002}
	tick.FillTimes()

	if tick.TimeDT != time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("TimeDT = %v, want 2024-01-01T00:00:00Z", tick.TimeDT)
	}
	if tick.TimeMscDT.Nanosecond() != 123_000_000 {
		t.Errorf("TimeMscDT fraction = %dns, want 123ms", tick.TimeMscDT.Nanosecond())
	}
}

func TestOrderInfoFillTimesZero(t *testing.T) {
	// Orders that never expired or completed must not get derived times.
	o := OrderInfo{TimeSetup: 1704067200}
	o.FillTimes()

	if o.TimeSetupDT.IsZero() {
		t.Error("TimeSetupDT is zero, want derived time")
	}
	if !o.TimeDoneDT.IsZero() {
		t.Errorf("TimeDoneDT = %v, want zero", o.TimeDoneDT)
	}
	if !o.TimeExpirationDT.IsZero() {
		t.Errorf("TimeExpirationDT = %v, want zero", o.TimeExpirationDT)
	}
}
