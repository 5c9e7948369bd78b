package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/address-verify-service/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// batchFile is the YAML layout accepted by "verify batch":
//
//	addresses:
//	  - city: תל אביב
//	    street: דיזנגוף
//	    house: "100"
//	    zip: "6433222"
type batchFile struct {
	Addresses []batchEntry `yaml:"addresses"`
}

type batchEntry struct {
	City   string `yaml:"city"`
	Street string `yaml:"street"`
	House  string `yaml:"house"`
	Zip    string `yaml:"zip"`
}

func (e batchEntry) query() domain.AddressQuery {
	return domain.AddressQuery{City: e.City, Street: e.Street, House: e.House}
}

type batchResult struct {
	Index   int            `json:"index"`
	Address *addressOutput `json:"address,omitempty"`
	Zip     *zipOutput     `json:"zip,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func (r batchResult) ok() bool {
	if r.Error != "" || r.Address == nil || !r.Address.Verdict.Valid {
		return false
	}
	return r.Zip == nil || r.Zip.Verdict.Valid
}

func loadBatch(path string) ([]batchEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	var f batchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse batch file %s: %w", path, err)
	}
	if len(f.Addresses) == 0 {
		return nil, fmt.Errorf("batch file %s has no addresses", path)
	}
	return f.Addresses, nil
}

func batchCmd(newVerifier verifierFactory) *cobra.Command {
	var file string
	var format string

	c := &cobra.Command{
		Use:   "batch",
		Short: "Verify every address listed in a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "json" && format != "pretty" {
				return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
			}
			entries, err := loadBatch(file)
			if err != nil {
				return err
			}
			v, err := newVerifier()
			if err != nil {
				return err
			}

			results := runBatch(cmd.Context(), v, entries)

			if format == "json" {
				err = printJSON(cmd.OutOrStdout(), results)
			} else {
				printPretty(cmd.OutOrStdout(), entries, results)
			}
			if err != nil {
				return err
			}

			var failed int
			for _, r := range results {
				if !r.ok() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d addresses not verified", failed, len(results))
			}
			return nil
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "YAML file with an addresses list (required)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	_ = c.MarkFlagRequired("file")
	return c
}

// runBatch checks entries one at a time. A provider failure on one entry is
// recorded and does not stop the rest.
func runBatch(ctx context.Context, v verifier, entries []batchEntry) []batchResult {
	results := make([]batchResult, len(entries))
	for i, e := range entries {
		results[i].Index = i

		check, err := v.VerifyAddress(ctx, e.query())
		if err != nil {
			results[i].Error = err.Error()
			if errors.Is(err, context.Canceled) {
				return results[:i+1]
			}
			continue
		}
		results[i].Address = newAddressOutput(check)

		if e.Zip == "" {
			continue
		}
		zc, err := v.VerifyZip(ctx, e.query(), e.Zip)
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		results[i].Zip = newZipOutput(zc)
	}
	return results
}

func printPretty(w io.Writer, entries []batchEntry, results []batchResult) {
	for _, r := range results {
		status := "OK"
		if !r.ok() {
			status = "FAIL"
		}
		e := entries[r.Index]
		fmt.Fprintf(w, "- [%s] %s", status, domain.BuildQuery(e.query(), ""))
		switch {
		case r.Error != "":
			fmt.Fprintf(w, " error=%q", r.Error)
		case !r.Address.Verdict.Valid:
			fmt.Fprintf(w, " reason=%s", r.Address.Verdict.Reason)
			if d := r.Address.Verdict.HouseDetail; d != domain.HouseDetailNone {
				fmt.Fprintf(w, " detail=%s", d)
			}
		case r.Zip != nil && !r.Zip.Verdict.Valid:
			fmt.Fprintf(w, " zip_reason=%s", r.Zip.Verdict.Reason)
		}
		fmt.Fprintln(w)
	}
}
