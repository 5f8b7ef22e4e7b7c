package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/jobtrack/internal/tracker"
)

const unknownCompany = "Unknown Company"

// companyName resolves a company id for display.
func companyName(st *tracker.State, id string) string {
	if c, ok := st.Company(id); ok && c.Name != "" {
		return c.Name
	}
	return unknownCompany
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCompanies(w io.Writer, companies []tracker.Company) error {
	if len(companies) == 0 {
		fmt.Fprintln(w, "No companies yet.")
		return nil
	}
	rows := make([][]string, len(companies))
	for i, c := range companies {
		rows[i] = []string{c.ID, c.Name, strings.Join(c.Technologies, ", "), c.RecruiterName, truncate(c.Notes, 40)}
	}
	return printTable(w, []string{"ID", "NAME", "TECHNOLOGIES", "RECRUITER", "NOTES"}, rows)
}

func writeApplications(w io.Writer, st *tracker.State, apps []tracker.Application) error {
	if len(apps) == 0 {
		fmt.Fprintln(w, "No applications yet.")
		return nil
	}
	rows := make([][]string, len(apps))
	for i, a := range apps {
		rows[i] = []string{a.ID, companyName(st, a.CompanyID), a.JobTitle, a.AppliedDate, string(a.Status), a.NextFollowUpDate}
	}
	return printTable(w, []string{"ID", "COMPANY", "TITLE", "APPLIED", "STATUS", "FOLLOW-UP"}, rows)
}

func writeReferences(w io.Writer, st *tracker.State, refs []tracker.Reference) error {
	if len(refs) == 0 {
		fmt.Fprintln(w, "No references yet.")
		return nil
	}
	rows := make([][]string, len(refs))
	for i, r := range refs {
		rows[i] = []string{r.ID, companyName(st, r.CompanyID), r.Name, r.ContactInfo, r.Relationship}
	}
	return printTable(w, []string{"ID", "COMPANY", "NAME", "CONTACT", "RELATIONSHIP"}, rows)
}

// listRecords prints one collection as a table, or as JSON with asJSON.
func listRecords(w io.Writer, st *tracker.State, kind tracker.Kind, asJSON bool) error {
	switch kind {
	case tracker.KindCompanies:
		if asJSON {
			return printJSON(w, st.Companies())
		}
		return writeCompanies(w, st.Companies())
	case tracker.KindApplications:
		if asJSON {
			return printJSON(w, st.Applications())
		}
		return writeApplications(w, st, st.Applications())
	case tracker.KindReferences:
		if asJSON {
			return printJSON(w, st.References())
		}
		return writeReferences(w, st, st.References())
	}
	return fmt.Errorf("%w %q", tracker.ErrUnknownKind, kind)
}

// deleteRecord removes one record and reports what went with it.
func deleteRecord(st *tracker.State, kind tracker.Kind, id string) error {
	res, err := st.Delete(kind, id)
	if err != nil {
		return err
	}
	if res.Total() == 0 {
		return fmt.Errorf("%s %q not found", kind, id)
	}
	if kind == tracker.KindCompanies {
		printSuccess("Deleted company %s with %d applications and %d references", id, res.Applications, res.References)
		return nil
	}
	printSuccess("Deleted %s %s", strings.TrimSuffix(string(kind), "s"), id)
	return nil
}

// requireCompany rejects records that point at a company that does not exist.
func requireCompany(st *tracker.State, id string) error {
	if _, ok := st.Company(id); !ok {
		return fmt.Errorf("company %q not found", id)
	}
	return nil
}

// collectionCmd builds the add/list/delete group for one collection.
func collectionCmd(kind tracker.Kind, use, short string, add *cobra.Command) *cobra.Command {
	group := &cobra.Command{Use: use, Short: short}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all " + string(kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			return withApp(func(a *app) error {
				return listRecords(cmd.OutOrStdout(), a.state, kind, asJSON)
			})
		},
	}
	list.Flags().Bool("json", false, "print records as JSON")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				return deleteRecord(a.state, kind, args[0])
			})
		},
	}

	group.AddCommand(add, list, del)
	return group
}

// --- company ---

var companyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a company",
	Long: `Add a company, or replace the company with --id.

Examples:
  jobtrack company add --name "Acme" --tech "Go, Postgres" --website https://acme.test
  jobtrack company add --id 3f2a... --name "Acme Corp"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		c := tracker.Company{}
		c.ID, _ = f.GetString("id")
		c.Name, _ = f.GetString("name")
		c.WebsiteURL, _ = f.GetString("website")
		c.JobPostURL, _ = f.GetString("job-post")
		c.RecruiterName, _ = f.GetString("recruiter-name")
		c.RecruiterEmail, _ = f.GetString("recruiter-email")
		c.RecruiterPhone, _ = f.GetString("recruiter-phone")
		c.Notes, _ = f.GetString("notes")
		tech, _ := f.GetString("tech")
		c.Technologies = tracker.SplitList(tech, ",")

		if err := c.Validate(); err != nil {
			return err
		}
		return withApp(func(a *app) error {
			saved := a.state.SaveCompany(c)
			printSuccess("Saved company %s (%s)", saved.Name, saved.ID)
			return nil
		})
	},
}

var companyCmd = collectionCmd(tracker.KindCompanies, "company", "Manage companies", companyAddCmd)

func init() {
	f := companyAddCmd.Flags()
	f.String("id", "", "id of the company to replace")
	f.String("name", "", "company name (required)")
	f.String("website", "", "company website URL")
	f.String("job-post", "", "job posting URL")
	f.String("tech", "", "comma-separated technologies")
	f.String("recruiter-name", "", "recruiter name")
	f.String("recruiter-email", "", "recruiter email")
	f.String("recruiter-phone", "", "recruiter phone")
	f.String("notes", "", "notes")
}

// --- application ---

var applicationAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update an application",
	Long: `Add an application for an existing company, or replace the application with --id.
The applied date defaults to today and the status to Applied.

Statuses: ` + statusList(),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		a := tracker.Application{}
		a.ID, _ = f.GetString("id")
		a.CompanyID, _ = f.GetString("company")
		a.JobTitle, _ = f.GetString("title")
		a.AppliedDate, _ = f.GetString("date")
		status, _ := f.GetString("status")
		a.Status = tracker.Status(status)
		a.SalaryExpectation, _ = f.GetString("salary")
		a.Notes, _ = f.GetString("notes")
		a.NextFollowUpDate, _ = f.GetString("follow-up")

		if err := a.Validate(); err != nil {
			return err
		}
		return withApp(func(ap *app) error {
			if err := requireCompany(ap.state, a.CompanyID); err != nil {
				return err
			}
			saved := ap.state.SaveApplication(a)
			printSuccess("Saved application %s at %s (%s)", saved.JobTitle, companyName(ap.state, saved.CompanyID), saved.ID)
			return nil
		})
	},
}

var applicationCmd = collectionCmd(tracker.KindApplications, "application", "Manage job applications", applicationAddCmd)

func statusList() string {
	names := make([]string, len(tracker.Statuses))
	for i, s := range tracker.Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func init() {
	f := applicationAddCmd.Flags()
	f.String("id", "", "id of the application to replace")
	f.String("company", "", "company id (required)")
	f.String("title", "", "job title (required)")
	f.String("date", "", "applied date, YYYY-MM-DD (default today)")
	f.String("status", "", "pipeline status (default Applied)")
	f.String("salary", "", "salary expectation")
	f.String("notes", "", "notes")
	f.String("follow-up", "", "next follow-up date, YYYY-MM-DD")
}

// --- reference ---

var referenceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a reference",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		r := tracker.Reference{}
		r.ID, _ = f.GetString("id")
		r.CompanyID, _ = f.GetString("company")
		r.Name, _ = f.GetString("name")
		r.ContactInfo, _ = f.GetString("contact")
		r.Relationship, _ = f.GetString("relationship")
		r.Notes, _ = f.GetString("notes")

		if err := r.Validate(); err != nil {
			return err
		}
		return withApp(func(a *app) error {
			if err := requireCompany(a.state, r.CompanyID); err != nil {
				return err
			}
			saved := a.state.SaveReference(r)
			printSuccess("Saved reference %s (%s)", saved.Name, saved.ID)
			return nil
		})
	},
}

var referenceCmd = collectionCmd(tracker.KindReferences, "reference", "Manage references", referenceAddCmd)

func init() {
	f := referenceAddCmd.Flags()
	f.String("id", "", "id of the reference to replace")
	f.String("company", "", "company id (required)")
	f.String("name", "", "reference name (required)")
	f.String("contact", "", "email or phone")
	f.String("relationship", "", "relationship, e.g. Former Manager")
	f.String("notes", "", "notes")
}
