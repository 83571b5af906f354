package payment

import (
	"reflect"
	"testing"
)

func TestSelectPriority(t *testing.T) {
	cases := []struct {
		name    string
		enabled map[string]bool
		want    string
	}{
		{"all enabled", map[string]bool{Stripe: true, PayPal: true, Creem: true}, Stripe},
		{"stripe off", map[string]bool{PayPal: true, Creem: true}, PayPal},
		{"creem only", map[string]bool{Creem: true}, Creem},
		{"none", map[string]bool{}, ""},
		{"all false", map[string]bool{Stripe: false, PayPal: false}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Select(tc.enabled); got != tc.want {
				t.Fatalf("Select = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEnabledKeepsPriorityOrder(t *testing.T) {
	got := Enabled(map[string]bool{Creem: true, Stripe: true})
	want := []string{Stripe, Creem}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Enabled = %v, want %v", got, want)
	}
}
