package models

import "testing"

func TestParsePriority(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Priority
		wantErr bool
	}{
		{name: "Empty defaults to low", input: "", want: PriorityLow},
		{name: "Symbol", input: "Medium", want: PriorityMedium},
		{name: "Symbol lower case", input: "high", want: PriorityHigh},
		{name: "Localized label", input: "Средний", want: PriorityMedium},
		{name: "Label with spaces", input: "  Низкий ", want: PriorityLow},
		{name: "Unknown", input: "urgent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePriority(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePriority(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParsePriority(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPriorityLabelRoundTrip(t *testing.T) {
	for _, p := range Priorities() {
		got, err := ParsePriority(p.Label())
		if err != nil {
			t.Fatalf("ParsePriority(%q) error = %v", p.Label(), err)
		}
		if got != p {
			t.Errorf("label %q parsed to %v, want %v", p.Label(), got, p)
		}
	}
}

func TestPriorityNext(t *testing.T) {
	if got := PriorityLow.Next(); got != PriorityMedium {
		t.Errorf("Low.Next() = %v", got)
	}
	if got := PriorityHigh.Next(); got != PriorityLow {
		t.Errorf("High.Next() = %v", got)
	}
	if Priority("bogus").Valid() {
		t.Error("bogus priority reported valid")
	}
}
