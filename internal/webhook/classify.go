package webhook

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// PayloadKind identifies which record shape an array element carries.
type PayloadKind int

const (
	PayloadUnknown PayloadKind = iota
	PayloadInsights
	PayloadAppointment
	PayloadExpense
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadInsights:
		return "insights"
	case PayloadAppointment:
		return "appointment"
	case PayloadExpense:
		return "expense"
	default:
		return "unknown"
	}
}

// Classify decides the shape of one raw element. Selection order matters:
// insights first, then appointments, then expenses.
func Classify(raw json.RawMessage) PayloadKind {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return PayloadUnknown
	}

	switch {
	case truthy(fields["aiInsights"]):
		return PayloadInsights
	case present(fields["clientName"]):
		return PayloadAppointment
	case present(fields["amount"]) && present(fields["date"]):
		return PayloadExpense
	default:
		return PayloadUnknown
	}
}

// present reports whether a field exists with a non-null value.
func present(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	return len(v) > 0 && !bytes.Equal(v, []byte("null"))
}

// truthy follows JavaScript truthiness for decoded JSON values.
func truthy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if !present(v) {
		return false
	}
	switch v[0] {
	case 'f':
		return false
	case 't', '{', '[':
		return true
	case '"':
		return len(v) > 2
	default:
		n, err := strconv.ParseFloat(string(v), 64)
		return err == nil && n != 0
	}
}
