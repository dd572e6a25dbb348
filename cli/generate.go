package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/buffalographics/fleet-spec-sheet/details"
	"github.com/buffalographics/fleet-spec-sheet/render"
	"github.com/buffalographics/fleet-spec-sheet/source"
	"github.com/buffalographics/fleet-spec-sheet/specsheet"
	"github.com/spf13/cobra"
)

// ErrNoInput is returned when a command is given no input or several.
var ErrNoInput = errors.New("exactly one of --job, --dir or --zip is required")

// inputOptions selects the artboards and the job details.
type inputOptions struct {
	job   string
	dir   string
	zip   string
	proof string

	customer string
	vehicle  string
	prompt   bool
}

func (o *inputOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.job, "job", "", "YAML job manifest listing the artboards")
	f.StringVar(&o.dir, "dir", "", "directory of exported artboard images")
	f.StringVar(&o.zip, "zip", "", "zip archive of exported artboard images")
	f.StringVar(&o.proof, "proof", "", "proof image added before the --dir or --zip artboards")
	f.StringVar(&o.customer, "customer", "", "customer printed in the details table")
	f.StringVar(&o.vehicle, "vehicle", "", "vehicle printed in the details table")
	f.BoolVar(&o.prompt, "prompt", false, "ask for customer and vehicle on the terminal")
	cmd.MarkFlagsMutuallyExclusive("job", "dir", "zip")
	cmd.MarkFlagsMutuallyExclusive("job", "proof")
	cmd.MarkFlagsMutuallyExclusive("prompt", "customer")
	cmd.MarkFlagsMutuallyExclusive("prompt", "vehicle")
}

// open loads the selected input. The caller closes it.
func (o *inputOptions) open(g *globals) (*source.Input, error) {
	in, err := o.load()
	if err != nil {
		return nil, err
	}
	for _, name := range in.Skipped {
		g.logger.Warn("skipping unreadable PDF", "file", name)
	}
	return in, nil
}

func (o *inputOptions) load() (*source.Input, error) {
	switch {
	case o.job != "":
		job, base, err := source.LoadJob(o.job)
		if err != nil {
			return nil, err
		}
		return job.Input(base)
	case o.dir != "":
		return source.ScanDir(o.dir, o.proof)
	case o.zip != "":
		return source.ScanZip(o.zip, o.proof)
	}
	return nil, ErrNoInput
}

// generator wires a pipeline over in. Explicit flags win over the
// manifest, which wins over the configuration.
func (o *inputOptions) generator(g *globals, in *source.Input) *specsheet.Generator {
	var provider details.Provider = details.Static{Customer: o.customer, Vehicle: o.vehicle}
	if o.prompt {
		provider = details.NewPrompt(g.stdin, g.stderr)
	}

	return &specsheet.Generator{
		Engine:          g.cfg.Sheet.Engine(),
		Details:         provider,
		Images:          in.Images,
		Logger:          g.logger,
		Workers:         g.cfg.Sheet.Workers,
		PageName:        g.cfg.Sheet.PageName,
		DefaultCustomer: firstNonEmpty(in.Details.Customer, g.cfg.Sheet.DefaultCustomer),
		DefaultVehicle:  firstNonEmpty(in.Details.Vehicle, g.cfg.Sheet.DefaultVehicle),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func generateCmd(g *globals) *cobra.Command {
	var (
		in      inputOptions
		out     string
		preview string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the spec sheet PDF",
		Long: "Classify the artboards, lay out the spec sheet pages and write them as a PDF.\n" +
			"Without --out the file is named <date>__<customer>__<vehicle>__Spec_Sheet.pdf.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := in.open(g)
			if err != nil {
				return err
			}
			defer input.Close()

			gen := in.generator(g, input)
			plan, err := gen.Plan(cmd.Context(), input.Boards)
			if err != nil {
				return err
			}

			font := g.cfg.Fonts.Resolver(g.logger).Resolve()

			var pdfBuf, pngBuf bytes.Buffer
			pdf := render.NewPDF(&pdfBuf, font, plan.Images)
			pdf.Title = g.cfg.Sheet.PageName
			pdf.Subject = plan.Details.Customer + " / " + plan.Details.Vehicle
			pdf.Creator = "specsheet " + Version
			pdf.Logger = g.logger
			pdf.Now = now
			renderers := render.Multi{pdf}
			if preview != "" {
				p := render.NewPreview(&pngBuf, plan.Images, input.BoardRects())
				p.Scale = g.cfg.Preview.Scale
				renderers = append(renderers, p)
			}

			if err := gen.Render(cmd.Context(), plan, renderers); err != nil {
				return err
			}

			path, err := outputPath(out, plan)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, pdfBuf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			if preview != "" {
				if err := os.WriteFile(preview, pngBuf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", preview, err)
				}
			}

			fmt.Fprintf(g.stdout, "created %d pages: %s\n", len(plan.Outputs), path)
			return nil
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PDF file or directory")
	cmd.Flags().StringVar(&preview, "preview", "", "also write a PNG preview of the document")
	return cmd
}

// outputPath resolves --out. Empty or a directory gets the suggested
// file name.
func outputPath(out string, plan *specsheet.Plan) (string, error) {
	name := source.OutputName(now(), plan.Details)
	if out == "" {
		return name, nil
	}
	info, err := os.Stat(out)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(out, name), nil
	case err == nil, errors.Is(err, os.ErrNotExist):
		return out, nil
	default:
		return "", err
	}
}
