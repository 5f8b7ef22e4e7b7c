package tracker

import "testing"

func TestUpsertReplacesInPlace(t *testing.T) {
	items := []Company{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}}

	got := Upsert(items, Company{ID: "b", Name: "B2"})

	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[1].Name != "B2" {
		t.Errorf("got[1].Name = %q, want B2", got[1].Name)
	}
	if items[1].Name != "B" {
		t.Errorf("input was modified: items[1].Name = %q", items[1].Name)
	}
}

func TestUpsertAppends(t *testing.T) {
	items := []Reference{{ID: "r1"}}

	got := Upsert(items, Reference{ID: "r2"})

	if len(got) != 2 || got[1].ID != "r2" {
		t.Errorf("Upsert = %+v, want r2 appended", got)
	}
}

func TestRemove(t *testing.T) {
	items := []Application{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}

	got := Remove(items, "a2")
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "a3" {
		t.Errorf("Remove = %+v", got)
	}

	same := Remove(items, "missing")
	if len(same) != 3 {
		t.Errorf("Remove(missing) len = %d, want 3", len(same))
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"React;Node", []string{"React", "Node"}},
		{" React ; ;Node; ", []string{"React", "Node"}},
		{";;", []string{}},
	}
	for _, tt := range tests {
		got := SplitList(tt.in, ";")
		if len(got) != len(tt.want) {
			t.Errorf("SplitList(%q) = %q, want %q", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitList(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"Applied", StatusApplied, true},
		{"interview scheduled", StatusInterviewScheduled, true},
		{"  GHOSTED ", StatusGhosted, true},
		{"Hired", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStatus(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseStatus(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"companies":    KindCompanies,
		"Company":      KindCompanies,
		"applications": KindApplications,
		"reference":    KindReferences,
	} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParseKind("contacts"); err == nil {
		t.Error("ParseKind(contacts) should fail")
	}
}
