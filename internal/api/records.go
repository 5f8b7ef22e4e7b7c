package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kalambet/jobtrack/internal/tracker"
)

// listRecords returns the collection of kind as a JSON-encodable slice.
func listRecords(st *tracker.State, kind tracker.Kind) (any, error) {
	switch kind {
	case tracker.KindCompanies:
		return st.Companies(), nil
	case tracker.KindApplications:
		return st.Applications(), nil
	case tracker.KindReferences:
		return st.References(), nil
	}
	return nil, fmt.Errorf("%w %q", tracker.ErrUnknownKind, kind)
}

// errBadJSON marks a request body that is not a JSON record.
var errBadJSON = errors.New("invalid JSON record")

// saveRecord decodes data as a record of kind, validates it and stores it.
// The stored record is returned.
func saveRecord(st *tracker.State, kind tracker.Kind, data []byte) (any, error) {
	switch kind {
	case tracker.KindCompanies:
		var c tracker.Company
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadJSON, err)
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return st.SaveCompany(c), nil
	case tracker.KindApplications:
		var a tracker.Application
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadJSON, err)
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		return st.SaveApplication(a), nil
	case tracker.KindReferences:
		var r tracker.Reference
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadJSON, err)
		}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		return st.SaveReference(r), nil
	}
	return nil, fmt.Errorf("%w %q", tracker.ErrUnknownKind, kind)
}
