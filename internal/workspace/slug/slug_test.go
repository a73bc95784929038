package slug

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Awesome Workspace", "my-awesome-workspace"},
		{"Àccènts & Spëcial!", "accents-special"},
		{"Test  Multiple   Spaces", "test-multiple-spaces"},
		{"café", "cafe"},
		{"  --Leading and trailing--  ", "leading-and-trailing"},
		{"a---b", "a-b"},
		{"Tabs\tand\nnewlines", "tabs-and-newlines"},
		{"Acme\u00a0Studio", "acme-studio"},
		{"Acme\u2003Studio", "acme-studio"},
		{"Acme\vStudio", "acme-studio"},
		{"\ufeffAcme Studio", "acme-studio"},
		{"100% Growth", "100-growth"},
		{"Ünïcödé Ñame", "unicode-name"},
		{"!!!", ""},
		{"", ""},
		{"already-a-slug", "already-a-slug"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	inputs := []string{
		"My Awesome Workspace",
		"Àccènts & Spëcial!",
		" - - weird -- input - - ",
		"Crème brûlée Co.",
		"東京 Office",
		"x",
	}
	for _, in := range inputs {
		once := Slugify(in)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify(Slugify(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestUnique(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		existing []string
		want     string
	}{
		{"free", "acme", nil, "acme"},
		{"free with others", "acme", []string{"other", "acme-2"}, "acme"},
		{"taken", "acme", []string{"acme"}, "acme-2"},
		{"gap filled", "acme", []string{"acme", "acme-2", "acme-4"}, "acme-3"},
		{"consecutive", "acme", []string{"acme", "acme-2", "acme-3"}, "acme-4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unique(tt.base, tt.existing); got != tt.want {
				t.Errorf("Unique(%q, %v) = %q, want %q", tt.base, tt.existing, got, tt.want)
			}
		})
	}
}
