package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/buffalographics/fleet-spec-sheet/pdf/metadata"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/spf13/cobra"
)

// VerifyResult is the validation outcome of one file.
type VerifyResult struct {
	File     string `json:"file"`
	Valid    bool   `json:"valid"`
	Pages    int    `json:"pages,omitempty"`
	Title    string `json:"title,omitempty"`
	Producer string `json:"producer,omitempty"`
	Created  string `json:"created,omitempty"`
	Error    string `json:"error,omitempty"`
}

func verifyCmd(g *globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "verify <file.pdf>...",
		Short: "Validate generated PDFs and report their page counts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]*VerifyResult, 0, len(args))
			invalid := 0
			for _, path := range args {
				r := verifyPDF(path)
				if !r.Valid {
					invalid++
				}
				g.logger.Debug("verified", "file", path, "valid", r.Valid, "pages", r.Pages)
				results = append(results, r)
			}

			if asJSON {
				enc := json.NewEncoder(g.stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					if r.Valid {
						fmt.Fprintf(g.stdout, "%s: valid, %d pages", r.File, r.Pages)
						if r.Created != "" {
							fmt.Fprintf(g.stdout, ", created %s", r.Created)
						}
						fmt.Fprintln(g.stdout)
					} else {
						fmt.Fprintf(g.stdout, "%s: INVALID: %s\n", r.File, r.Error)
					}
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d files failed validation", invalid, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output results in JSON format")
	return cmd
}

// verifyPDF validates one file with pdfcpu.
func verifyPDF(path string) *VerifyResult {
	r := &VerifyResult{File: path}

	f, err := os.Open(path)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Valid = true
	r.Pages = ctx.PageCount
	r.Title = ctx.Title
	r.Producer = ctx.Producer
	if t, err := metadata.ParsePDFDate(ctx.CreationDate); err == nil {
		r.Created = t.Format(time.RFC3339)
	}
	return r
}
