package langmeta

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_PT", want: "pt-pt"},
		{in: " EN-us ", want: "en-us"},
		{in: "sr-Cyrl", want: "sr-cyrl"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := canonicalize(tc.in)
		if got != tc.want {
			t.Fatalf("canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestProviderCode(t *testing.T) {
	cases := []struct {
		tag  string
		want string
	}{
		{tag: "fr-FR", want: "fr"},
		{tag: "FR-fr", want: "fr"},
		{tag: "zh-CHS", want: "zh-Hans"},
		{tag: "sr-Cyrl", want: "sr-Cyrl"},
		{tag: "default", want: "en"},
		{tag: "xx-YY", want: ""},
	}

	for _, tc := range cases {
		if got := ProviderCode(tc.tag); got != tc.want {
			t.Fatalf("ProviderCode(%q) = %q, want %q", tc.tag, got, tc.want)
		}
	}
}

func TestNativeName(t *testing.T) {
	t.Run("display name from x/text", func(t *testing.T) {
		if got := NativeName("de-DE"); got == "" || got == "de-DE" {
			t.Fatalf("NativeName(de-DE) = %q, want a display name", got)
		}
	})

	t.Run("unknown passthrough", func(t *testing.T) {
		if got := NativeName("not a tag"); got != "not a tag" {
			t.Fatalf("NativeName() = %q, want passthrough", got)
		}
	})
}

func TestTagsSortedWithoutDefault(t *testing.T) {
	tags := Tags()
	if len(tags) != len(Registry)-1 {
		t.Fatalf("Tags() returned %d tags, want %d", len(tags), len(Registry)-1)
	}
	for i := 1; i < len(tags); i++ {
		if tags[i-1] >= tags[i] {
			t.Fatalf("Tags() not sorted at %d: %q >= %q", i, tags[i-1], tags[i])
		}
	}
	for _, tag := range tags {
		if tag == Default {
			t.Fatal("Tags() contains default")
		}
	}
}
