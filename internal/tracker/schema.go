package tracker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kalambet/jobtrack/internal/csvio"
)

const (
	columnID        = "id"
	columnCompanyID = "companyId"
)

// field maps one CSV column onto a typed struct field. get feeds export;
// set is given a trimmed, non-empty cell on import and validates it.
type field[T any] struct {
	column string
	get    func(T) any
	set    func(*T, string) error
}

// schema is the ordered column layout of one entity type.
type schema[T entity] struct {
	fields          []field[T]
	defaults        map[string]string // filled in on new records when a column is absent or empty
	requiresCompany bool
	finish          func(*T) // optional normalisation after a row is applied
}

func (s schema[T]) columns() []string {
	cols := make([]string, len(s.fields))
	for i, f := range s.fields {
		cols[i] = f.column
	}
	return cols
}

func (s schema[T]) record(v T) csvio.Record {
	rec := make(csvio.Record, len(s.fields))
	for _, f := range s.fields {
		rec[f.column] = f.get(v)
	}
	return rec
}

func (s schema[T]) field(column string) (field[T], bool) {
	for _, f := range s.fields {
		if f.column == column {
			return f, true
		}
	}
	return field[T]{}, false
}

type assignment[T any] struct {
	f     field[T]
	value string
}

// patch is a decoded row: the fields it sets, the defaults it would fill
// on a new record and the id it targets.
type patch[T any] struct {
	id       string
	sets     []assignment[T]
	defaults []assignment[T]
}

func (p patch[T]) apply(dst *T) error {
	for _, a := range p.sets {
		if err := a.f.set(dst, a.value); err != nil {
			return err
		}
	}
	return nil
}

// create builds a new record from the row, defaults first.
func (p patch[T]) create() (T, error) {
	var v T
	for _, a := range p.defaults {
		if err := a.f.set(&v, a.value); err != nil {
			return v, err
		}
	}
	return v, p.apply(&v)
}

// decode turns one header-keyed row into a patch. Empty cells are unset and
// leave the target's existing value alone. row is 1-based for error messages.
func (s schema[T]) decode(fields map[string]string, row int) (patch[T], error) {
	var (
		p          patch[T]
		scratch    T
		hasCompany bool
	)

	for _, f := range s.fields {
		v := strings.TrimSpace(fields[f.column])
		if v == "" {
			if d := s.defaults[f.column]; d != "" {
				p.defaults = append(p.defaults, assignment[T]{f: f, value: d})
			}
			continue
		}
		if err := f.set(&scratch, v); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Row = row
				return patch[T]{}, ve
			}
			return patch[T]{}, &ValidationError{Row: row, Field: f.column, Message: err.Error()}
		}
		p.sets = append(p.sets, assignment[T]{f: f, value: v})

		switch f.column {
		case columnID:
			p.id = v
		case columnCompanyID:
			hasCompany = true
		}
	}

	if s.requiresCompany && !hasCompany {
		return patch[T]{}, &ValidationError{Row: row, Field: columnCompanyID, Message: "missing companyId"}
	}

	if p.id == "" {
		idField, ok := s.field(columnID)
		if !ok {
			return patch[T]{}, fmt.Errorf("schema has no %s column", columnID)
		}
		p.id = uuid.NewString()
		p.sets = append(p.sets, assignment[T]{f: idField, value: p.id})
	}

	return p, nil
}

// text builds a plain string column from a field accessor.
func text[T any](column string, ptr func(*T) *string) field[T] {
	return field[T]{
		column: column,
		get:    func(v T) any { return *ptr(&v) },
		set: func(v *T, s string) error {
			*ptr(v) = s
			return nil
		},
	}
}

// list builds a ";"-separated multi-value column.
func list[T any](column string, ptr func(*T) *[]string) field[T] {
	return field[T]{
		column: column,
		get:    func(v T) any { return *ptr(&v) },
		set: func(v *T, s string) error {
			*ptr(v) = SplitList(s, csvio.ListSeparator)
			return nil
		},
	}
}

// SplitList splits s on sep, trims every token and drops empty ones.
// The result is never nil.
func SplitList(s, sep string) []string {
	out := []string{}
	for _, tok := range strings.Split(s, sep) {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func statusField() field[Application] {
	return field[Application]{
		column: "status",
		get:    func(a Application) any { return string(a.Status) },
		set: func(a *Application, s string) error {
			st, ok := ParseStatus(s)
			if !ok {
				return &ValidationError{Field: "status", Message: fmt.Sprintf("invalid status %q", s)}
			}
			a.Status = st
			return nil
		},
	}
}

var companySchema = schema[Company]{
	fields: []field[Company]{
		text("id", func(c *Company) *string { return &c.ID }),
		text("name", func(c *Company) *string { return &c.Name }),
		text("websiteUrl", func(c *Company) *string { return &c.WebsiteURL }),
		text("jobPostUrl", func(c *Company) *string { return &c.JobPostURL }),
		list("technologies", func(c *Company) *[]string { return &c.Technologies }),
		text("recruiterName", func(c *Company) *string { return &c.RecruiterName }),
		text("recruiterEmail", func(c *Company) *string { return &c.RecruiterEmail }),
		text("recruiterPhone", func(c *Company) *string { return &c.RecruiterPhone }),
		text("notes", func(c *Company) *string { return &c.Notes }),
	},
	finish: func(c *Company) {
		if c.Technologies == nil {
			c.Technologies = []string{}
		}
	},
}

var applicationSchema = schema[Application]{
	fields: []field[Application]{
		text("id", func(a *Application) *string { return &a.ID }),
		text("companyId", func(a *Application) *string { return &a.CompanyID }),
		text("jobTitle", func(a *Application) *string { return &a.JobTitle }),
		text("appliedDate", func(a *Application) *string { return &a.AppliedDate }),
		statusField(),
		text("salaryExpectation", func(a *Application) *string { return &a.SalaryExpectation }),
		text("notes", func(a *Application) *string { return &a.Notes }),
		text("nextFollowUpDate", func(a *Application) *string { return &a.NextFollowUpDate }),
	},
	defaults:        map[string]string{"status": string(StatusApplied)},
	requiresCompany: true,
}

var referenceSchema = schema[Reference]{
	fields: []field[Reference]{
		text("id", func(r *Reference) *string { return &r.ID }),
		text("companyId", func(r *Reference) *string { return &r.CompanyID }),
		text("name", func(r *Reference) *string { return &r.Name }),
		text("contactInfo", func(r *Reference) *string { return &r.ContactInfo }),
		text("relationship", func(r *Reference) *string { return &r.Relationship }),
		text("notes", func(r *Reference) *string { return &r.Notes }),
	},
	requiresCompany: true,
}

// Columns returns the CSV header of kind in export order.
func Columns(kind Kind) ([]string, error) {
	switch kind {
	case KindCompanies:
		return companySchema.columns(), nil
	case KindApplications:
		return applicationSchema.columns(), nil
	case KindReferences:
		return referenceSchema.columns(), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
}
