package spec

import "fmt"

// FunctionEvents is the HTTP view of one function after filtering.
type FunctionEvents struct {
	Function string
	Events   []*HTTPEvent
	// HaltedEarly reports that an event which is not a structured http
	// trigger stopped the scan; events after it were never considered.
	HaltedEarly bool
	// HaltedAt is the index of the event that stopped the scan.
	HaltedAt int
	// HaltReason is a short, loggable explanation.
	HaltReason string
}

// CollectHTTPEvents walks every function in order and keeps the leading run
// of structured http events. The first event that has no http trigger, or
// uses the legacy string shorthand, ends that function's run.
func CollectHTTPEvents(functions []Function) []FunctionEvents {
	out := make([]FunctionEvents, 0, len(functions))
	for _, fn := range functions {
		fe := FunctionEvents{Function: fn.Name, HaltedAt: -1}
		for i, ev := range fn.Events {
			if ev.HTTP != nil {
				fe.Events = append(fe.Events, ev.HTTP)
				continue
			}
			fe.HaltedEarly = true
			fe.HaltedAt = i
			switch {
			case ev.Type == "http":
				fe.HaltReason = fmt.Sprintf("http shorthand %q is not supported", ev.Shorthand)
			case ev.Type == "":
				fe.HaltReason = "event has no trigger"
			default:
				fe.HaltReason = fmt.Sprintf("%s event is not an http trigger", ev.Type)
			}
			break
		}
		out = append(out, fe)
	}
	return out
}
