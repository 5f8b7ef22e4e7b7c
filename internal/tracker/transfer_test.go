package tracker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kalambet/jobtrack/internal/csvio"
	"github.com/kalambet/jobtrack/internal/storage"
)

func TestExportEmptyIsHeaderOnly(t *testing.T) {
	s, _ := newTestState(t)

	f, err := s.Export(KindReferences)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if f.Name != "references.csv" {
		t.Errorf("Name = %q", f.Name)
	}
	if want := "id,companyId,name,contactInfo,relationship,notes"; f.Content != want {
		t.Errorf("Content = %q, want %q", f.Content, want)
	}
}

func TestExportCompanies(t *testing.T) {
	s, _ := newTestState(t)
	s.SaveCompany(Company{
		ID:           "c1",
		Name:         "Acme, Inc",
		Technologies: []string{"Go", "SQL"},
		Notes:        `says "hi"`,
	})

	f, err := s.Export(KindCompanies)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	lines := strings.Split(f.Content, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2:\n%s", len(lines), f.Content)
	}
	want := `c1,"Acme, Inc",,,Go;SQL,,,,"says ""hi"""`
	if lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	src, _ := newTestState(t)
	src.SaveCompany(Company{ID: "c1", Name: "Acme, Inc", WebsiteURL: "https://acme.test", Technologies: []string{"Go", "Rust"}, RecruiterEmail: "r@acme.test"})
	src.SaveCompany(Company{ID: "c2", Name: "Plain"})
	src.SaveApplication(Application{ID: "a1", CompanyID: "c1", JobTitle: "SRE", AppliedDate: "2024-03-01", Status: StatusInterviewing, SalaryExpectation: "$150,000"})
	src.SaveReference(Reference{ID: "r1", CompanyID: "c1", Name: "Pat", ContactInfo: "pat@x.test", Relationship: "Manager"})

	dst, _ := newTestState(t)
	for _, f := range src.ExportAll() {
		kind := Kind(strings.TrimSuffix(f.Name, ".csv"))
		if _, err := dst.Import(kind, f.Content); err != nil {
			t.Fatalf("Import(%s): %v", kind, err)
		}
	}

	if got, want := dst.Companies(), src.Companies(); !reflect.DeepEqual(got, want) {
		t.Errorf("companies:\n got %+v\nwant %+v", got, want)
	}
	if got, want := dst.Applications(), src.Applications(); !reflect.DeepEqual(got, want) {
		t.Errorf("applications:\n got %+v\nwant %+v", got, want)
	}
	if got, want := dst.References(), src.References(); !reflect.DeepEqual(got, want) {
		t.Errorf("references:\n got %+v\nwant %+v", got, want)
	}
}

func TestReimportIsIdempotent(t *testing.T) {
	s, _ := newTestState(t)
	s.SaveCompany(Company{ID: "c1", Name: "Acme"})
	s.SaveApplication(Application{ID: "a1", CompanyID: "c1", JobTitle: "Dev", Status: StatusApplied})

	f, _ := s.Export(KindApplications)
	res, err := s.Import(KindApplications, f.Content)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Updated != 1 || res.Created != 0 {
		t.Errorf("result = %+v, want 1 updated", res)
	}
	if n := len(s.Applications()); n != 1 {
		t.Errorf("applications = %d, want 1", n)
	}
}

func TestImportMergePreservesAbsentFields(t *testing.T) {
	s, _ := newTestState(t)
	s.SaveCompany(Company{ID: "c1", Name: "Old", WebsiteURL: "https://old.test", Notes: "keep me"})

	text := "id,name,websiteUrl\nc1,New,"
	res, err := s.Import(KindCompanies, text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Updated != 1 {
		t.Errorf("Updated = %d, want 1", res.Updated)
	}

	got, _ := s.Company("c1")
	if got.Name != "New" {
		t.Errorf("Name = %q, want New", got.Name)
	}
	if got.WebsiteURL != "https://old.test" {
		t.Errorf("WebsiteURL = %q, empty cell should not overwrite", got.WebsiteURL)
	}
	if got.Notes != "keep me" {
		t.Errorf("Notes = %q, absent column should not overwrite", got.Notes)
	}
}

func TestImportUpdateKeepsStatus(t *testing.T) {
	s, _ := newTestState(t)
	s.SaveApplication(Application{ID: "a1", CompanyID: "c1", JobTitle: "Dev", Status: StatusInterviewing})

	text := "id,companyId,jobTitle,status\na1,c1,Dev2,\na2,c1,Ops,"
	if _, err := s.Import(KindApplications, text); err != nil {
		t.Fatalf("Import: %v", err)
	}

	as := s.Applications()
	if as[0].JobTitle != "Dev2" || as[0].Status != StatusInterviewing {
		t.Errorf("a1 = %+v, want Dev2 still Interviewing", as[0])
	}
	if as[1].Status != StatusApplied {
		t.Errorf("a2 status = %q, new rows default to Applied", as[1].Status)
	}
}

func TestExportAllOrder(t *testing.T) {
	s, _ := newTestState(t)

	files := s.ExportAll()
	if len(files) != len(Kinds) {
		t.Fatalf("files = %d, want %d", len(files), len(Kinds))
	}
	for i, k := range Kinds {
		if files[i].Name != Filename(k) {
			t.Errorf("files[%d] = %q, want %q", i, files[i].Name, Filename(k))
		}
	}
}

func TestImportGeneratesMissingIDs(t *testing.T) {
	s, _ := newTestState(t)

	text := "name,technologies\nFirst,Go\nSecond,"
	res, err := s.Import(KindCompanies, text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Created != 2 {
		t.Errorf("Created = %d, want 2", res.Created)
	}

	cs := s.Companies()
	if cs[0].ID == "" || cs[1].ID == "" || cs[0].ID == cs[1].ID {
		t.Errorf("ids not generated uniquely: %q, %q", cs[0].ID, cs[1].ID)
	}
	if cs[1].Technologies == nil {
		t.Error("Technologies should be an empty list")
	}
}

func TestImportAppliesRowsInOrder(t *testing.T) {
	s, _ := newTestState(t)

	text := "id,name\nc1,First\nc1,Second"
	res, err := s.Import(KindCompanies, text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Created != 1 || res.Updated != 1 {
		t.Errorf("result = %+v", res)
	}
	cs := s.Companies()
	if len(cs) != 1 || cs[0].Name != "Second" {
		t.Errorf("companies = %+v, want one named Second", cs)
	}
}

func TestImportMissingCompanyID(t *testing.T) {
	s, kv := newTestState(t)
	s.SaveReference(Reference{ID: "r0", CompanyID: "c1", Name: "Existing"})
	before, _ := kv.Get("references")

	text := "id,companyId,name\nr1,c1,Good\nr2,,Bad"
	_, err := s.Import(KindReferences, text)
	if err == nil {
		t.Fatal("expected error")
	}

	var ie *ImportError
	if !errors.As(err, &ie) || ie.Kind != KindReferences {
		t.Fatalf("error = %v, want ImportError for references", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if ve.Row != 2 || ve.Field != "companyId" || ve.Message != "missing companyId" {
		t.Errorf("ValidationError = %+v", ve)
	}

	if rs := s.References(); len(rs) != 1 || rs[0].ID != "r0" {
		t.Errorf("references changed: %+v", rs)
	}
	if after, _ := kv.Get("references"); after != before {
		t.Errorf("storage changed:\n before %s\n after  %s", before, after)
	}
}

func TestImportHeaderOnly(t *testing.T) {
	s, _ := newTestState(t)

	_, err := s.Import(KindCompanies, "id,name\n\n")
	var fe *csvio.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want FormatError", err)
	}
}

func TestImportStatus(t *testing.T) {
	s, _ := newTestState(t)

	text := "id,companyId,status\na1,c1,\na2,c1,offer received"
	if _, err := s.Import(KindApplications, text); err != nil {
		t.Fatalf("Import: %v", err)
	}
	as := s.Applications()
	if as[0].Status != StatusApplied {
		t.Errorf("a1 status = %q, want Applied", as[0].Status)
	}
	if as[1].Status != StatusOfferReceived {
		t.Errorf("a2 status = %q, want Offer Received", as[1].Status)
	}

	_, err := s.Import(KindApplications, "id,companyId,status\na3,c1,Hired")
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "status" || ve.Row != 1 {
		t.Errorf("error = %v, want status ValidationError on row 1", err)
	}
	if n := len(s.Applications()); n != 2 {
		t.Errorf("applications = %d, want 2", n)
	}
}

func TestImportUnknownKind(t *testing.T) {
	s, _ := newTestState(t)
	_, err := s.Import(Kind("contacts"), "id\nx")
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("error = %v, want ErrUnknownKind", err)
	}
}

func TestImportPersists(t *testing.T) {
	kv := storage.NewMemory()
	s := Load(kv)

	if _, err := s.Import(KindCompanies, "id,name\nc1,Acme"); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got := Load(kv).Companies(); len(got) != 1 || got[0].Name != "Acme" {
		t.Errorf("reloaded companies = %+v", got)
	}
}

func TestSampleCompaniesImport(t *testing.T) {
	s, _ := newTestState(t)

	f, err := Sample(KindCompanies)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if f.Name != "sample_companies.csv" {
		t.Errorf("Name = %q", f.Name)
	}
	if _, err := s.Import(KindCompanies, f.Content); err != nil {
		t.Fatalf("Import sample: %v", err)
	}

	c, ok := s.Company("company-uuid-1")
	if !ok {
		t.Fatal("company-uuid-1 not imported")
	}
	if want := []string{"JavaScript", "React", "NodeJS"}; !reflect.DeepEqual(c.Technologies, want) {
		t.Errorf("Technologies = %q, want %q", c.Technologies, want)
	}
	if c.Notes != "Great company culture" {
		t.Errorf("Notes = %q", c.Notes)
	}
}

func TestSamplesImportCleanly(t *testing.T) {
	for _, k := range Kinds {
		t.Run(string(k), func(t *testing.T) {
			s, _ := newTestState(t)
			f, err := Sample(k)
			if err != nil {
				t.Fatalf("Sample: %v", err)
			}
			res, err := s.Import(k, f.Content)
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if res.Created != 2 {
				t.Errorf("Created = %d, want 2", res.Created)
			}
		})
	}
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	files := []File{
		{Name: "companies.csv", Content: "id,name"},
		{Name: "references.csv", Content: "id,companyId"},
	}

	paths, err := WriteFiles(context.Background(), dir, files)
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if string(data) != files[i].Content {
			t.Errorf("%s = %q, want %q", p, data, files[i].Content)
		}
	}
}

func TestWriteFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WriteFiles(ctx, t.TempDir(), []File{{Name: "a.csv"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
