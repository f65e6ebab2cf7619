package field

import (
	"fmt"
	"strings"
	"time"
)

// TimeSuffix names the companion input carrying the time of a date picker
// rendered with ShowTime.
const TimeSuffix = "__time"

// Bind decodes the submitted value for d and forwards it to onChange. Fields
// that were not submitted at all are left untouched, except checkboxes (an
// unchecked box is never sent) and custom controls, which decide for
// themselves. Unknown kinds are ignored.
func Bind(d Descriptor, in Input, onChange ChangeFunc) error {
	if onChange == nil || in == nil {
		return nil
	}

	switch d.Kind {
	case KindText, KindTextArea, KindSelect:
		if raw, ok := in.Value(d.Name); ok {
			onChange(raw)
		}
	case KindPhone:
		raw, ok := in.Value(d.Name)
		if !ok {
			return nil
		}
		onChange(phoneValue(raw))
	case KindDatePicker:
		raw, ok := in.Value(d.Name)
		if !ok {
			return nil
		}
		t, present, err := ParseDate(raw, d.EffectiveDateFormat())
		if err != nil {
			return err
		}
		if !present {
			onChange(nil)
			return nil
		}
		if d.ShowTime {
			if clock, ok := in.Value(d.Name + TimeSuffix); ok && strings.TrimSpace(clock) != "" {
				parsed, err := time.Parse("15:04", strings.TrimSpace(clock))
				if err != nil {
					return fmt.Errorf("field: parse time %q: %w", clock, err)
				}
				t = time.Date(t.Year(), t.Month(), t.Day(), parsed.Hour(), parsed.Minute(), 0, 0, t.Location())
			}
		}
		onChange(t)
	case KindCheckbox:
		raw, ok := in.Value(d.Name)
		onChange(ok && checkedValue(raw))
	case KindCustom:
		if d.Custom != nil && d.Custom.Bind != nil {
			return d.Custom.Bind(in, d.Name, onChange)
		}
		if raw, ok := in.Value(d.Name); ok {
			onChange(raw)
		}
	}
	return nil
}

// phoneValue normalizes raw to E.164. Blank input clears the value; input
// that cannot be parsed is kept verbatim so validation can report it.
func phoneValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	normalized, err := NormalizePhone(trimmed, DefaultRegion)
	if err != nil {
		return trimmed
	}
	return normalized
}

func checkedValue(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "off", "no":
		return false
	default:
		return true
	}
}
