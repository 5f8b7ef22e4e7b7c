package tracker

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/jobtrack/internal/storage"
)

// State is the single owner of the three collections. Every mutation
// replaces the in-memory slice and persists the whole collection.
type State struct {
	kv storage.KV

	mu           sync.Mutex
	companies    []Company
	applications []Application
	references   []Reference
}

// Load reads the collections from kv. Unreadable collections start empty.
func Load(kv storage.KV) *State {
	s := &State{
		kv:           kv,
		companies:    storage.Read(kv, KindCompanies.storageKey(), []Company{}),
		applications: storage.Read(kv, KindApplications.storageKey(), []Application{}),
		references:   storage.Read(kv, KindReferences.storageKey(), []Reference{}),
	}
	for i := range s.companies {
		companySchema.finish(&s.companies[i])
	}
	return s
}

// DateLayout is the calendar date format of appliedDate and nextFollowUpDate.
const DateLayout = "2006-01-02"

// now is replaced in tests.
var now = time.Now

// Today is the current local date in DateLayout.
func Today() string { return now().Format(DateLayout) }

// DeleteResult counts the records removed by a delete.
type DeleteResult struct {
	Companies    int `json:"companies"`
	Applications int `json:"applications"`
	References   int `json:"references"`
}

// Total is the number of records removed across all collections.
func (r DeleteResult) Total() int { return r.Companies + r.Applications + r.References }

func (s *State) Companies() []Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]Company, 0, len(s.companies)), s.companies...)
}

func (s *State) Applications() []Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]Application, 0, len(s.applications)), s.applications...)
}

func (s *State) References() []Reference {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]Reference, 0, len(s.references)), s.references...)
}

// Company looks up a company by id.
func (s *State) Company(id string) (Company, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.companies, id); i >= 0 {
		return s.companies[i], true
	}
	return Company{}, false
}

// Counts returns the size of each collection.
func (s *State) Counts() map[Kind]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[Kind]int{
		KindCompanies:    len(s.companies),
		KindApplications: len(s.applications),
		KindReferences:   len(s.references),
	}
}

// SaveCompany adds c, or replaces the company with the same id.
// An empty id is replaced with a fresh one. The stored value is returned.
func (s *State) SaveCompany(c Company) Company {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	companySchema.finish(&c)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies = Upsert(s.companies, c)
	s.persist(KindCompanies)
	return c
}

// SaveApplication adds or replaces a by id. Status defaults to Applied and
// the applied date to today. A status in any letter case is normalised.
func (s *State) SaveApplication(a Application) Application {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if st, ok := ParseStatus(string(a.Status)); ok {
		a.Status = st
	} else if a.Status == "" {
		a.Status = StatusApplied
	}
	if a.AppliedDate == "" {
		a.AppliedDate = Today()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications = Upsert(s.applications, a)
	s.persist(KindApplications)
	return a
}

// SaveReference adds or replaces r by id.
func (s *State) SaveReference(r Reference) Reference {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.references = Upsert(s.references, r)
	s.persist(KindReferences)
	return r
}

// DeleteCompany removes the company and every application and reference
// pointing at it. Collections are persisted in the order companies,
// applications, references.
func (s *State) DeleteCompany(id string) DeleteResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res DeleteResult

	companies := Remove(s.companies, id)
	res.Companies = len(s.companies) - len(companies)
	s.companies = companies
	s.persist(KindCompanies)

	apps := Filter(s.applications, func(a Application) bool { return a.CompanyID != id })
	res.Applications = len(s.applications) - len(apps)
	s.applications = apps
	s.persist(KindApplications)

	refs := Filter(s.references, func(r Reference) bool { return r.CompanyID != id })
	res.References = len(s.references) - len(refs)
	s.references = refs
	s.persist(KindReferences)

	return res
}

func (s *State) DeleteApplication(id string) DeleteResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	apps := Remove(s.applications, id)
	res := DeleteResult{Applications: len(s.applications) - len(apps)}
	s.applications = apps
	s.persist(KindApplications)
	return res
}

func (s *State) DeleteReference(id string) DeleteResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs := Remove(s.references, id)
	res := DeleteResult{References: len(s.references) - len(refs)}
	s.references = refs
	s.persist(KindReferences)
	return res
}

// Delete dispatches to the delete operation of kind.
func (s *State) Delete(kind Kind, id string) (DeleteResult, error) {
	switch kind {
	case KindCompanies:
		return s.DeleteCompany(id), nil
	case KindApplications:
		return s.DeleteApplication(id), nil
	case KindReferences:
		return s.DeleteReference(id), nil
	}
	return DeleteResult{}, ErrUnknownKind
}

// persist writes one collection. Callers hold s.mu.
func (s *State) persist(kind Kind) {
	switch kind {
	case KindCompanies:
		storage.Write(s.kv, kind.storageKey(), s.companies)
	case KindApplications:
		storage.Write(s.kv, kind.storageKey(), s.applications)
	case KindReferences:
		storage.Write(s.kv, kind.storageKey(), s.references)
	}
}
