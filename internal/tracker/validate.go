package tracker

import "fmt"

// The Validate methods check records entered one at a time (CLI, HTTP, MCP).
// CSV import applies its own per-column rules while decoding.

func (c Company) Validate() error {
	if c.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	return nil
}

func (a Application) Validate() error {
	if a.CompanyID == "" {
		return &ValidationError{Field: columnCompanyID, Message: "missing companyId"}
	}
	if a.JobTitle == "" {
		return &ValidationError{Field: "jobTitle", Message: "jobTitle is required"}
	}
	if a.Status != "" {
		if _, ok := ParseStatus(string(a.Status)); !ok {
			return &ValidationError{Field: "status", Message: fmt.Sprintf("invalid status %q", a.Status)}
		}
	}
	return nil
}

func (r Reference) Validate() error {
	if r.CompanyID == "" {
		return &ValidationError{Field: columnCompanyID, Message: "missing companyId"}
	}
	if r.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	return nil
}
