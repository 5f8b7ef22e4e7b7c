package tracker

import (
	"errors"
	"fmt"
	"strings"
)

// Status is a stage in an application pipeline.
type Status string

const (
	StatusApplied            Status = "Applied"
	StatusAssessment         Status = "Assessment"
	StatusInterviewScheduled Status = "Interview Scheduled"
	StatusInterviewing       Status = "Interviewing"
	StatusOfferReceived      Status = "Offer Received"
	StatusOfferAccepted      Status = "Offer Accepted"
	StatusOfferDeclined      Status = "Offer Declined"
	StatusRejected           Status = "Rejected"
	StatusWithdrawn          Status = "Withdrawn"
	StatusGhosted            Status = "Ghosted"
)

// Statuses lists every pipeline stage in display order.
var Statuses = []Status{
	StatusApplied,
	StatusAssessment,
	StatusInterviewScheduled,
	StatusInterviewing,
	StatusOfferReceived,
	StatusOfferAccepted,
	StatusOfferDeclined,
	StatusRejected,
	StatusWithdrawn,
	StatusGhosted,
}

// ParseStatus matches s against the pipeline stages, ignoring case and
// surrounding whitespace.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

type Company struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	WebsiteURL     string   `json:"websiteUrl"`
	JobPostURL     string   `json:"jobPostUrl"`
	Technologies   []string `json:"technologies"`
	RecruiterName  string   `json:"recruiterName,omitempty"`
	RecruiterEmail string   `json:"recruiterEmail,omitempty"`
	RecruiterPhone string   `json:"recruiterPhone,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// Application is one application process with a company.
type Application struct {
	ID                string `json:"id"`
	CompanyID         string `json:"companyId"`
	JobTitle          string `json:"jobTitle"`
	AppliedDate       string `json:"appliedDate"`
	Status            Status `json:"status"`
	SalaryExpectation string `json:"salaryExpectation,omitempty"`
	Notes             string `json:"notes,omitempty"`
	NextFollowUpDate  string `json:"nextFollowUpDate,omitempty"`
}

// Reference is a professional contact tied to a company.
type Reference struct {
	ID           string `json:"id"`
	CompanyID    string `json:"companyId"`
	Name         string `json:"name"`
	ContactInfo  string `json:"contactInfo"`
	Relationship string `json:"relationship"`
	Notes        string `json:"notes,omitempty"`
}

func (c Company) EntityID() string     { return c.ID }
func (a Application) EntityID() string { return a.ID }
func (r Reference) EntityID() string   { return r.ID }

// Kind names one of the three entity collections.
type Kind string

const (
	KindCompanies    Kind = "companies"
	KindApplications Kind = "applications"
	KindReferences   Kind = "references"
)

// Kinds lists the collections in export order.
var Kinds = []Kind{KindCompanies, KindApplications, KindReferences}

// ErrUnknownKind is returned for a collection name that is not one of Kinds.
var ErrUnknownKind = errors.New("unknown entity type")

// ParseKind accepts a collection name in plural or singular form.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "companies", "company":
		return KindCompanies, nil
	case "applications", "application":
		return KindApplications, nil
	case "references", "reference":
		return KindReferences, nil
	}
	return "", fmt.Errorf("%w %q (want companies, applications or references)", ErrUnknownKind, s)
}

// Title is the display name of the collection.
func (k Kind) Title() string {
	switch k {
	case KindCompanies:
		return "Companies"
	case KindApplications:
		return "Applications"
	case KindReferences:
		return "References"
	}
	return string(k)
}

// storageKey is the key each collection is persisted under.
func (k Kind) storageKey() string { return string(k) }
