package payment

// Priority is the fixed provider preference used when the buyer does not pick
// one explicitly.
var Priority = []string{Stripe, PayPal, Creem}

// Select returns the highest-priority enabled provider, or "" when none is
// enabled. Callers must surface "" as a configuration error, not a crash.
func Select(enabled map[string]bool) string {
	for _, name := range Priority {
		if enabled[name] {
			return name
		}
	}
	return ""
}

// Enabled lists the enabled providers in priority order.
func Enabled(enabled map[string]bool) []string {
	var out []string
	for _, name := range Priority {
		if enabled[name] {
			out = append(out, name)
		}
	}
	return out
}
