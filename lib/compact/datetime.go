package compact

import (
	"fmt"
	"time"
)

// LocalDate is a date without time zone.
type LocalDate struct {
	Year  int32
	Month int8 // 1-12
	Day   int8 // 1-31
}

// LocalTime is a time of day without date and time zone.
type LocalTime struct {
	Hour   int8
	Minute int8
	Second int8
	Nano   int32
}

// LocalDateTime is a date and time without time zone.
type LocalDateTime struct {
	Date LocalDate
	Time LocalTime
}

// OffsetDateTime is a date and time with a fixed offset from UTC.
type OffsetDateTime struct {
	DateTime      LocalDateTime
	OffsetSeconds int32
}

// LocalDateOf returns the date part of t in t's location.
func LocalDateOf(t time.Time) LocalDate {
	return LocalDate{Year: int32(t.Year()), Month: int8(t.Month()), Day: int8(t.Day())}
}

// LocalTimeOf returns the clock part of t in t's location.
func LocalTimeOf(t time.Time) LocalTime {
	return LocalTime{Hour: int8(t.Hour()), Minute: int8(t.Minute()), Second: int8(t.Second()), Nano: int32(t.Nanosecond())}
}

// LocalDateTimeOf returns the wall clock of t in t's location.
func LocalDateTimeOf(t time.Time) LocalDateTime {
	return LocalDateTime{Date: LocalDateOf(t), Time: LocalTimeOf(t)}
}

// OffsetDateTimeOf returns the wall clock of t together with its zone offset.
func OffsetDateTimeOf(t time.Time) OffsetDateTime {
	_, offset := t.Zone()
	return OffsetDateTime{DateTime: LocalDateTimeOf(t), OffsetSeconds: int32(offset)}
}

// In returns the time.Time of the date at midnight in loc.
func (d LocalDate) In(loc *time.Location) time.Time {
	return time.Date(int(d.Year), time.Month(d.Month), int(d.Day), 0, 0, 0, 0, loc)
}

// In returns the time.Time of the date time in loc.
func (d LocalDateTime) In(loc *time.Location) time.Time {
	return time.Date(int(d.Date.Year), time.Month(d.Date.Month), int(d.Date.Day),
		int(d.Time.Hour), int(d.Time.Minute), int(d.Time.Second), int(d.Time.Nano), loc)
}

// Time returns the instant described by o in a fixed zone.
func (o OffsetDateTime) Time() time.Time {
	return o.DateTime.In(time.FixedZone("", int(o.OffsetSeconds)))
}

func (d LocalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (t LocalTime) String() string {
	if t.Nano == 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	}
	return fmt.Sprintf("%02d:%02d:%02d.%09d", t.Hour, t.Minute, t.Second, t.Nano)
}

func (d LocalDateTime) String() string {
	return d.Date.String() + "T" + d.Time.String()
}

func (o OffsetDateTime) String() string {
	if o.OffsetSeconds == 0 {
		return o.DateTime.String() + "Z"
	}
	sign := '+'
	off := o.OffsetSeconds
	if off < 0 {
		sign = '-'
		off = -off
	}
	return fmt.Sprintf("%s%c%02d:%02d", o.DateTime.String(), sign, off/3600, (off%3600)/60)
}

func (d LocalDate) MarshalJSON() ([]byte, error)      { return []byte(`"` + d.String() + `"`), nil }
func (t LocalTime) MarshalJSON() ([]byte, error)      { return []byte(`"` + t.String() + `"`), nil }
func (d LocalDateTime) MarshalJSON() ([]byte, error)  { return []byte(`"` + d.String() + `"`), nil }
func (o OffsetDateTime) MarshalJSON() ([]byte, error) { return []byte(`"` + o.String() + `"`), nil }

// --------------------------------------------------------------------------
// Wire encodings
// --------------------------------------------------------------------------

func writeLocalDate(out *ObjectDataOutput, d LocalDate) {
	out.WriteInt32(d.Year)
	out.WriteInt8(d.Month)
	out.WriteInt8(d.Day)
}

func readLocalDate(in *ObjectDataInput) LocalDate {
	return LocalDate{Year: in.ReadInt32(), Month: in.ReadInt8(), Day: in.ReadInt8()}
}

func writeLocalTime(out *ObjectDataOutput, t LocalTime) {
	out.WriteInt8(t.Hour)
	out.WriteInt8(t.Minute)
	out.WriteInt8(t.Second)
	out.WriteInt32(t.Nano)
}

func readLocalTime(in *ObjectDataInput) LocalTime {
	return LocalTime{Hour: in.ReadInt8(), Minute: in.ReadInt8(), Second: in.ReadInt8(), Nano: in.ReadInt32()}
}

func writeLocalDateTime(out *ObjectDataOutput, d LocalDateTime) {
	writeLocalDate(out, d.Date)
	writeLocalTime(out, d.Time)
}

func readLocalDateTime(in *ObjectDataInput) LocalDateTime {
	date := readLocalDate(in)
	return LocalDateTime{Date: date, Time: readLocalTime(in)}
}

func writeOffsetDateTime(out *ObjectDataOutput, o OffsetDateTime) {
	writeLocalDateTime(out, o.DateTime)
	out.WriteInt32(o.OffsetSeconds)
}

func readOffsetDateTime(in *ObjectDataInput) OffsetDateTime {
	dt := readLocalDateTime(in)
	return OffsetDateTime{DateTime: dt, OffsetSeconds: in.ReadInt32()}
}
