package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfmeta/internal/crossref"
	"github.com/pdiddy/pdfmeta/pkg/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <doi>",
	Short: "Fetch and print the Crossref record for a DOI",
	Long: `Lookup fetches a single record from Crossref by DOI and prints its
bibliographic fields. Bare DOIs and doi.org URLs are both accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().String("email", "", "contact email for the Crossref polite pool")
	lookupCmd.Flags().Duration("timeout", defaultTimeout, "Crossref request timeout")

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	client := crossref.NewClient(types.CrossrefConfig{
		HTTPConfig: types.HTTPConfig{Timeout: timeout},
		Email:      resolveEmail(email),
	})

	match, err := client.FetchByDOI(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("fetching DOI %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "DOI:     %s\n", match.DOI)
	fmt.Fprintf(out, "Title:   %s\n", match.Title)
	if len(match.Authors) > 0 {
		fmt.Fprintf(out, "Authors: %s\n", strings.Join(match.Authors, "; "))
	}
	if match.Year != "" {
		fmt.Fprintf(out, "Year:    %s\n", match.Year)
	}
	if match.Journal != "" {
		fmt.Fprintf(out, "Journal: %s\n", match.Journal)
	}
	if match.ISBN != "" {
		fmt.Fprintf(out, "ISBN:    %s\n", match.ISBN)
	}
	return nil
}
