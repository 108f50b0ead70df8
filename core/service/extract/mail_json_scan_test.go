package extract

import "testing"

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"unterminated fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"surrounding space", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.in); got != tt.want {
				t.Errorf("StripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFirstCompleteJSON(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"prose around", `Sure! Here it is: {"a":1} hope that helps`, `{"a":1}`, true},
		{"nested", `x {"a":{"b":[1,2,{"c":3}]}} y`, `{"a":{"b":[1,2,{"c":3}]}}`, true},
		{"brace inside string", `{"a":"}{"}`, `{"a":"}{"}`, true},
		{"escaped quote", `{"a":"say \"hi\" {now}"}`, `{"a":"say \"hi\" {now}"}`, true},
		{"array value", `noise [1,2,3] tail`, `[1,2,3]`, true},
		{"first of two", `{"a":1} {"b":2}`, `{"a":1}`, true},
		{"unbalanced", `{"a":1`, "", false},
		{"mismatched", `{"a":[1}`, "", false},
		{"no json", `nothing here`, "", false},
		{"empty", ``, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstCompleteJSON(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("FirstCompleteJSON(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
