package tracker

import (
	"fmt"
	"strings"
)

// Sample rows are literal text, not encoder output, so they also exercise
// quoting the encoder would not produce.
var sampleRows = map[Kind][]string{
	KindCompanies: {
		`company-uuid-1,Sample Tech Inc,https://sampletech.com,https://sampletech.com/careers,"JavaScript;React;NodeJS",John Recruiter,john@sampletech.com,123-456-7890,"Great company culture"`,
		`company-uuid-2,Another Corp,https://anothercorp.com,https://anothercorp.com/jobs/123,"Python;Django;AWS",Jane Hiring,jane@anothercorp.com,,"Fast-paced environment, remote friendly"`,
	},
	KindApplications: {
		`app-uuid-1,company-uuid-1,Frontend Developer,2024-01-15,Applied,"$100,000","Applied through the careers page",2024-01-29`,
		`app-uuid-2,company-uuid-2,Backend Engineer,2024-01-20,Interviewing,,"Second round with the team lead",`,
	},
	KindReferences: {
		`ref-uuid-1,company-uuid-1,Alice Manager,alice@example.com,Former Manager,"Worked together for 3 years"`,
		`ref-uuid-2,company-uuid-2,Bob Colleague,555-123-4567,Colleague,`,
	},
}

// SampleFilename is the sample file name of kind.
func SampleFilename(kind Kind) string { return "sample_" + string(kind) + ".csv" }

// Sample returns a CSV document of kind with the schema header and two
// example rows.
func Sample(kind Kind) (File, error) {
	cols, err := Columns(kind)
	if err != nil {
		return File{}, err
	}
	rows, ok := sampleRows[kind]
	if !ok {
		return File{}, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	lines := append([]string{strings.Join(cols, ",")}, rows...)
	return File{Name: SampleFilename(kind), Content: strings.Join(lines, "\n")}, nil
}
