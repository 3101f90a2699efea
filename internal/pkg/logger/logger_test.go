package logger

import "testing"

func TestTruncateForLog(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short", in: "  hello ", limit: 10, want: "hello"},
		{name: "cut", in: "abcdef", limit: 3, want: "abc..."},
		{name: "runes", in: "日本語テキスト", limit: 2, want: "日本..."},
		{name: "zero limit", in: "abc", limit: 0, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateForLog(tc.in, tc.limit); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	l, err := New(true, true)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if l == nil {
		t.Fatalf("expected logger")
	}
}
