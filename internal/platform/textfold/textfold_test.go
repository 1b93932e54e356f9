package textfold

import "testing"

func TestSearchKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Obuolių sultys", "obuoliu sultys"},
		{"  Žemuogės  ", "zemuoges"},
		{"Müsli über alles", "musli uber alles"},
		{"Café au lait", "cafe au lait"},
		{"šaltibarščiai!!!", "saltibarsciai"},
		{"100% sultys", "100 sultys"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := SearchKey(tc.in); got != tc.want {
			t.Errorf("SearchKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestToASCIIKeepsUnfoldableRunes(t *testing.T) {
	// No ASCII decomposition; the rune survives folding and is stripped by
	// OnlyAlphanumericOrSpaces instead.
	if got := ToASCII("ryžiai 米"); got != "ryziai 米" {
		t.Errorf("ToASCII = %q, want %q", got, "ryziai 米")
	}
	if got := OnlyAlphanumericOrSpaces("ryziai 米"); got != "ryziai " {
		t.Errorf("OnlyAlphanumericOrSpaces = %q, want %q", got, "ryziai ")
	}
}
