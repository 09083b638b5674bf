package textkey

import "testing"

func TestDigits(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"A00012", "00012"},
		{"A-000 12", "00012"},
		{"no digits", ""},
		{"０１２", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := Digits(c.in); got != c.out {
			t.Fatalf("Digits(%q)=%q; want %q", c.in, got, c.out)
		}
	}
}

func TestName(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"王 小明", "王小明"},
		{" Chen\tWei \n", "ChenWei"},
		{"王小明", "王小明"},
	}
	for _, c := range cases {
		if got := Name(c.in); got != c.out {
			t.Fatalf("Name(%q)=%q; want %q", c.in, got, c.out)
		}
	}
}

func TestPhone(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"0912345678", "912345678"},
		{"912345678", "912345678"},
		{"0912-345-678", "912345678"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Phone(c.in); got != c.out {
			t.Fatalf("Phone(%q)=%q; want %q", c.in, got, c.out)
		}
	}
}

func TestDate(t *testing.T) {
	if got := Date("2025/05/01"); got != "2025-05-01" {
		t.Fatalf("Date()=%q", got)
	}
	if got := Date(" 2025-05-01 "); got != "2025-05-01" {
		t.Fatalf("Date()=%q", got)
	}
}

func TestDateUnpadded(t *testing.T) {
	cases := []struct{ in, out string }{
		{"2025/5/1", "2025-05-01"},
		{"2025-5-1", "2025-05-01"},
		{"2025/12/31", "2025-12-31"},
		{"2025/13/01", "2025-13-01"},
		{"next week", "next week"},
	}
	for _, c := range cases {
		if got := Date(c.in); got != c.out {
			t.Fatalf("Date(%q)=%q; want %q", c.in, got, c.out)
		}
	}
}
