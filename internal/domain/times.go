package domain

import "time"

// UnixUTC converts a second-precision Unix timestamp to a UTC time.Time.
// Zero and negative timestamps map to the zero time.
func UnixUTC(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// UnixMscUTC converts a millisecond-precision Unix timestamp to a UTC
// time.Time. Zero and negative timestamps map to the zero time.
func UnixMscUTC(msc int64) time.Time {
	if msc <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(msc).UTC()
}

// FillTimes populates the derived DT fields from the raw Unix fields.
func (t *Tick) FillTimes() *Tick {
	t.TimeDT = UnixUTC(t.Time)
	t.TimeMscDT = UnixMscUTC(t.TimeMsc)
	return t
}

// FillTimes populates the derived DT field from the raw Unix field.
func (b *Bar) FillTimes() *Bar {
	b.TimeDT = UnixUTC(b.Time)
	return b
}

// FillTimes populates the derived DT fields from the raw Unix fields.
func (p *PositionInfo) FillTimes() *PositionInfo {
	p.TimeDT = UnixUTC(p.Time)
	p.TimeUpdateDT = UnixUTC(p.TimeUpdate)
	return p
}

// FillTimes populates the derived DT fields from the raw Unix fields.
func (o *OrderInfo) FillTimes() *OrderInfo {
	o.TimeSetupDT = UnixUTC(o.TimeSetup)
	o.TimeDoneDT = UnixUTC(o.TimeDone)
	o.TimeExpirationDT = UnixUTC(o.TimeExpiration)
	return o
}

// FillTimes populates the derived DT fields from the raw Unix fields.
func (d *DealInfo) FillTimes() *DealInfo {
	d.TimeDT = UnixUTC(d.Time)
	d.TimeMscDT = UnixMscUTC(d.TimeMsc)
	return d
}
