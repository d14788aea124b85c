package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	s := New()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Buy milk", "Buy milk"},
		{"script stripped", "Buy milk<script>alert('x')</script>", "Buy milk"},
		{"tags stripped", "<b>Buy</b> <i>milk</i>", "Buy milk"},
		{"event handler", `<img src=x onerror="alert(1)">Walk dog`, "Walk dog"},
		{"ampersand kept", "Salt & pepper", "Salt & pepper"},
		{"trimmed", "  spaced  ", "spaced"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.Text(tc.in))
		})
	}
}

func TestText_NeverReturnsScriptTag(t *testing.T) {
	out := New().Text(`<scr<script>ipt>alert(1)</script>`)
	assert.NotContains(t, out, "<script")
}

func TestText_EncodedMarkupIsStripped(t *testing.T) {
	out := New().Text("&lt;script&gt;alert(1)&lt;/script&gt;Call mom")
	assert.Equal(t, "Call mom", out)
}
