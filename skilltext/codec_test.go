package skilltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	token := Encode("Send")
	require.Equal(t, "\u2063Send\u2064\u2009 \u2009 \u2009 \u2009 ", token)
	require.Equal(t, len([]rune(token)), EncodedLen("Send"))
	require.Equal(t, 14, EncodedLen("Send"))
}

func TestRangeAt(t *testing.T) {
	// a(0) prefix(1) Send(2-5) suffix(6) padding(7-14) b(15)
	buffer := "a" + Encode("Send") + "b"

	tests := []struct {
		name      string
		text      string
		index     int
		wantFound bool
		want      Range
	}{
		{name: "before any prefix", text: buffer, index: 0},
		{name: "on the prefix", text: buffer, index: 1, wantFound: true, want: Range{1, 15}},
		{name: "inside the label", text: buffer, index: 4, wantFound: true, want: Range{1, 15}},
		{name: "last padding rune", text: buffer, index: 14, wantFound: true, want: Range{1, 15}},
		{name: "right after the token", text: buffer, index: 15, wantFound: true, want: Range{1, 15}},
		{name: "past the token", text: buffer, index: 16},
		{name: "negative index", text: buffer, index: -1},
		{name: "index beyond text", text: buffer, index: 17},
		{name: "empty text", text: "", index: 0},
		{
			name:      "partial padding still belongs to the token",
			text:      "x\u2063Send\u2064\u2009 y",
			index:     8,
			wantFound: true,
			want:      Range{1, 9},
		},
		{
			name:      "no padding at all",
			text:      "\u2063Send\u2064z",
			index:     3,
			wantFound: true,
			want:      Range{0, 6},
		},
		{name: "unterminated token", text: "\u2063Se", index: 2},
		{name: "prefix followed by another prefix", text: "\u2063x" + Encode("Send"), index: 1},
		{
			name:      "token after an orphan prefix",
			text:      "\u2063x" + Encode("Send"),
			index:     3,
			wantFound: true,
			want:      Range{2, 16},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := RangeAt(tt.text, tt.index)
			require.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRangeAtCountsRunes(t *testing.T) {
	text := "héllo " + Encode("Send")
	r, found := RangeAt(text, 7)
	require.True(t, found)
	require.Equal(t, 6, r.Start)
	require.Equal(t, 6+EncodedLen("Send"), r.End)
	require.Equal(t, EncodedLen("Send"), r.Len())
}
