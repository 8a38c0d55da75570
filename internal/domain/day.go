package domain

import (
	"fmt"
	"time"
)

// DateLayout é o formato ISO usado para comparar e trafegar dias.
const DateLayout = "2006-01-02"

// DayWindow devolve [início, fim) do dia civil de t no fuso loc.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// DayKey devolve o dia civil de t em loc no formato ISO.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// SameDay compara apenas a data civil, ignorando o horário.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayKey(a, loc) == DayKey(b, loc)
}

// ParseDay aceita "2006-01-02" (início do dia em loc) ou RFC3339 (instante exato).
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, value, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("data inválida %q: use AAAA-MM-DD", value)
}
