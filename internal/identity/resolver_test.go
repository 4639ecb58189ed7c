package identity

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	table := Table{"2507": "linah@yahoo.co.ke", "2399": "cindy@gmail.com"}

	cases := []struct {
		name    string
		contact string
		want    string
		wantErr bool
	}{
		{name: "mapped extension", contact: "2507", want: "linah@yahoo.co.ke"},
		{name: "mapped extension with spaces", contact: " 2399 ", want: "cindy@gmail.com"},
		{name: "raw email", contact: "bob@x.com", want: "bob@x.com"},
		{name: "email without dot in domain", contact: "ops@localhost", want: "ops@localhost"},
		{name: "plain word", contact: "not-an-email", wantErr: true},
		{name: "unknown extension", contact: "9999", wantErr: true},
		{name: "empty", contact: "", wantErr: true},
		{name: "missing local part", contact: "@x.com", wantErr: true},
		{name: "missing domain", contact: "bob@", wantErr: true},
		{name: "inner whitespace", contact: "bob smith@x.com", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(table, tc.contact)
			if tc.wantErr {
				if !errors.Is(err, ErrNotResolvable) {
					t.Fatalf("expected ErrNotResolvable, got %q, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestResolveIsPure(t *testing.T) {
	table := Table{"2507": "linah@yahoo.co.ke"}
	first, _ := Resolve(table, "2507")
	second, _ := Resolve(table, "2507")
	if first != second {
		t.Fatalf("expected repeatable result, got %q then %q", first, second)
	}
	if len(table) != 1 {
		t.Fatalf("resolve must not mutate the table")
	}
}

func TestResolveNilTable(t *testing.T) {
	got, err := Resolve(nil, "bob@x.com")
	if err != nil || got != "bob@x.com" {
		t.Fatalf("expected passthrough email, got %q, %v", got, err)
	}
}

func TestMergeLaterWins(t *testing.T) {
	merged := Merge(Table{"1": "a@x.com", "2": "b@x.com"}, Table{"2": "c@x.com"})
	if merged["1"] != "a@x.com" || merged["2"] != "c@x.com" {
		t.Fatalf("unexpected merge result: %v", merged)
	}
}
