package steps

import (
	"testing"

	"github.com/borovskvet/intake-bot/internal/validate"
)

func TestThirteenStepsInFixedOrder(t *testing.T) {
	want := []string{
		"fio", "phone", "telegram", "address", "consent", "animal_type",
		"nickname", "sex", "age_or_dob", "vaccine_type", "vaccine_date",
		"term_months", "channel",
	}
	if Count() != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), Count())
	}
	for i, key := range want {
		d, ok := ByIndex(i)
		if !ok {
			t.Fatalf("missing step %d", i)
		}
		if d.Key != key {
			t.Fatalf("step %d: expected key %s, got %s", i, key, d.Key)
		}
	}
}

func TestFreeTextStepsHaveValidators(t *testing.T) {
	for _, d := range All() {
		switch d.Mode {
		case FreeText:
			if d.Validator == "" {
				t.Fatalf("step %s: free-text step without validator", d.Key)
			}
			if validate.Funcs[d.Validator] == nil {
				t.Fatalf("step %s: unknown validator %s", d.Key, d.Validator)
			}
		case Choice:
			if len(d.Options) == 0 {
				t.Fatalf("step %s: choice step without options", d.Key)
			}
		default:
			t.Fatalf("step %s: unknown mode %s", d.Key, d.Mode)
		}
	}
}

func TestOtherBranchSteps(t *testing.T) {
	for _, key := range []string{"animal_type", "vaccine_type"} {
		d, ok := ByKey(key)
		if !ok {
			t.Fatalf("missing step %s", key)
		}
		if !d.AllowsOther {
			t.Fatalf("step %s: expected AllowsOther", key)
		}
		opt, ok := d.Resolve(d.OtherToken, "")
		if !ok || opt.Token != TokenOther {
			t.Fatalf("step %s: other option not resolvable", key)
		}
	}
	for _, key := range []string{"consent", "sex", "channel"} {
		d, _ := ByKey(key)
		if d.AllowsOther {
			t.Fatalf("step %s: unexpected AllowsOther", key)
		}
	}
}

func TestResolveByTokenAndLabel(t *testing.T) {
	d, _ := ByKey("consent")
	opt, ok := d.Resolve("consent_yes", "")
	if !ok || opt.Value != "Да" {
		t.Fatalf("token resolve failed: %+v", opt)
	}
	opt, ok = d.Resolve("", "✕ Нет")
	if !ok || opt.Value != "Нет" {
		t.Fatalf("label resolve failed: %+v", opt)
	}
	if _, ok := d.Resolve("", "может быть"); ok {
		t.Fatal("expected no resolution for unknown label")
	}
}
