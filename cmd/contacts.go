package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/media-import/internal/importer"
	"github.com/sells-group/media-import/internal/model"
)

var (
	contactsCSV    string
	contactsOutput string
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Import a contact-only CSV against stored companies",
	Long: `Validates every contact row and matches its company against the companies
in the store (exact, case-insensitive, then substring). Rows whose company is
not found are still reported, with a warning.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "contacts")
		if err != nil {
			return err
		}
		defer env.Close()

		data, err := os.ReadFile(contactsCSV)
		if err != nil {
			return eris.Wrapf(err, "contacts: read %s", contactsCSV)
		}

		res, err := runContacts(ctx, env, data, filepath.Base(contactsCSV))
		if err != nil {
			return err
		}
		return writeJSON(contactsOutput, res)
	},
}

// runContacts loads the lookup table, runs the contact-only flow, and
// records the run when a store is configured.
func runContacts(ctx context.Context, env *pipelineEnv, data []byte, fileName string) (*importer.ContactsResult, error) {
	var existing []model.ExistingCompany
	if env.Store != nil {
		companies, err := env.Store.ListCompanies(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "contacts: list companies")
		}
		existing = companies
	}

	res, err := env.Pipeline.ImportContacts(data, fileName, existing)
	if err != nil {
		return nil, eris.Wrapf(err, "contacts: %s", fileName)
	}

	if env.Store != nil {
		run := model.ImportRun{
			FileName: fileName,
			Contacts: res.Summary.Total,
			Errors:   res.Summary.Invalid,
			Warnings: res.Summary.Warnings,
		}
		if err := env.Store.RecordImport(ctx, &run); err != nil {
			return nil, eris.Wrap(err, "contacts: record run")
		}
	}
	return res, nil
}

func init() {
	contactsCmd.Flags().StringVar(&contactsCSV, "csv", "", "path to contact CSV file (required)")
	contactsCmd.Flags().StringVar(&contactsOutput, "output", "", "write the JSON report here instead of stdout")
	_ = contactsCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(contactsCmd)
}
