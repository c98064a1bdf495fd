package ir

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *Node
		expected int
	}{
		// Type ranking: Null < Bool < Number < String < Array < Object
		{"Null < Bool", Null(), FromBool(false), -1},
		{"Bool < Number", FromBool(true), FromInt(1), -1},
		{"Number < String", FromInt(1), FromString("a"), -1},
		{"String < Array", FromString("a"), FromSlice(nil), -1},
		{"Array < Object", FromSlice(nil), Object(), -1},

		{"false < true", FromBool(false), FromBool(true), -1},
		{"true == true", FromBool(true), FromBool(true), 0},

		{"Int < Int", FromInt(1), FromInt(2), -1},
		{"Int == Float", FromInt(1), FromFloat(1.0), 0},
		{"Float < Float", FromFloat(1.0), FromFloat(2.0), -1},

		{"String < String", FromString("a"), FromString("b"), -1},

		{"Empty == Empty", FromSlice(nil), FromSlice(nil), 0},
		{"Short < Long", FromSlice([]*Node{FromInt(1)}), FromSlice([]*Node{FromInt(1), FromInt(2)}), -1},
		{"Element compare", FromSlice([]*Node{FromInt(1)}), FromSlice([]*Node{FromInt(2)}), -1},

		{"Object field order is irrelevant",
			Object().Set("a", FromInt(1)).Set("b", FromInt(2)),
			Object().Set("b", FromInt(2)).Set("a", FromInt(1)),
			0},
		{"Object key compare",
			Object().Set("a", FromInt(1)),
			Object().Set("b", FromInt(1)),
			-1},
		{"Object value compare",
			Object().Set("a", FromInt(1)),
			Object().Set("a", FromInt(2)),
			-1},
		{"Short object < long object",
			Object().Set("a", FromInt(1)),
			Object().Set("a", FromInt(1)).Set("b", FromInt(2)),
			-1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.expected {
				t.Errorf("Compare() = %v, want %v", got, tt.expected)
			}
			if got := Compare(tt.b, tt.a); got != -tt.expected {
				t.Errorf("Compare(b, a) = %v, want %v", got, -tt.expected)
			}
		})
	}
}
