// Package details collects the customer and vehicle shown on a spec sheet.
package details

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultVehicle is used when the vehicle is left blank.
const DefaultVehicle = "MIXER"

// ErrCancelled is returned when the user dismisses the prompt. Callers
// abort the run without output and without reporting an error.
var ErrCancelled = errors.New("details entry cancelled")

// Details are the job details printed in the details table.
type Details struct {
	Customer string `yaml:"customer" json:"customer"`
	Vehicle  string `yaml:"vehicle" json:"vehicle"`
}

// Normalize trims both fields and falls back to DefaultVehicle.
func (d Details) Normalize() Details {
	d.Customer = strings.TrimSpace(d.Customer)
	d.Vehicle = strings.TrimSpace(d.Vehicle)
	if d.Vehicle == "" {
		d.Vehicle = DefaultVehicle
	}
	return d
}

// Provider supplies details for a run.
type Provider interface {
	RequestDetails(ctx context.Context, defaultCustomer, defaultVehicle string) (Details, error)
}

// Static returns fixed details. Blank fields take the defaults.
type Static struct {
	Customer string
	Vehicle  string
}

// RequestDetails implements Provider.
func (s Static) RequestDetails(ctx context.Context, defaultCustomer, defaultVehicle string) (Details, error) {
	if err := ctx.Err(); err != nil {
		return Details{}, err
	}
	d := Details{Customer: s.Customer, Vehicle: s.Vehicle}
	if strings.TrimSpace(d.Customer) == "" {
		d.Customer = defaultCustomer
	}
	if strings.TrimSpace(d.Vehicle) == "" {
		d.Vehicle = defaultVehicle
	}
	return d.Normalize(), nil
}

// Cancelled is a Provider that always cancels.
type Cancelled struct{}

// RequestDetails implements Provider.
func (Cancelled) RequestDetails(context.Context, string, string) (Details, error) {
	return Details{}, ErrCancelled
}

// CancelToken typed alone on a line cancels the prompt.
const CancelToken = "."

// Prompt asks for the details on a line-oriented terminal. An empty answer
// keeps the default; end of input or CancelToken cancels.
type Prompt struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// NewPrompt creates a prompt reading from in and writing to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{In: in, Out: out}
}

// RequestDetails implements Provider.
func (p *Prompt) RequestDetails(ctx context.Context, defaultCustomer, defaultVehicle string) (Details, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	if defaultVehicle == "" {
		defaultVehicle = DefaultVehicle
	}

	fmt.Fprintln(p.Out, "Spec Sheet Details (enter \".\" to cancel)")

	customer, err := p.ask(ctx, "Customer", defaultCustomer)
	if err != nil {
		return Details{}, err
	}
	vehicle, err := p.ask(ctx, "Vehicle", defaultVehicle)
	if err != nil {
		return Details{}, err
	}

	return Details{Customer: customer, Vehicle: vehicle}.Normalize(), nil
}

type lineResult struct {
	line string
	err  error
}

func (p *Prompt) ask(ctx context.Context, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.Out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.Out, "%s: ", label)
	}

	ch := make(chan lineResult, 1)
	go func() {
		line, err := p.reader.ReadString('\n')
		ch <- lineResult{line, err}
	}()

	var res lineResult
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res = <-ch:
	}

	line := strings.TrimSpace(res.line)
	if res.err != nil {
		if !errors.Is(res.err, io.EOF) {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), res.err)
		}
		// A final line without a newline still counts.
		if line == "" {
			return "", ErrCancelled
		}
	}

	switch line {
	case CancelToken:
		return "", ErrCancelled
	case "":
		return def, nil
	}
	return line, nil
}
