package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/couchcryptid/address-verify-service/internal/app"
	"github.com/couchcryptid/address-verify-service/internal/config"
	"github.com/couchcryptid/address-verify-service/internal/domain"
	"github.com/couchcryptid/address-verify-service/internal/observability"
	"github.com/couchcryptid/address-verify-service/internal/verify"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// verifier is the part of verify.Service the commands use.
type verifier interface {
	VerifyAddress(ctx context.Context, q domain.AddressQuery) (verify.AddressCheck, error)
	VerifyZip(ctx context.Context, q domain.AddressQuery, userZip string) (verify.ZipCheck, error)
}

type verifierFactory func() (verifier, error)

// loadVerifier builds a verify.Service from the environment, after loading
// a .env file from the working directory when one exists. Logs go to stderr
// so stdout carries only results.
func loadVerifier() (verifier, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLoggerTo(os.Stderr, cfg)
	return app.NewService(cfg, nil, observability.NewMetrics(), logger), nil
}

func newRootCmd(factory ...verifierFactory) *cobra.Command {
	newVerifier := loadVerifier
	if len(factory) > 0 && factory[0] != nil {
		newVerifier = factory[0]
	}

	cmd := &cobra.Command{
		Use:          "verify",
		Short:        "Verify Israeli addresses and postal codes against Google geocoding",
		SilenceUsage: true,
	}
	cmd.AddCommand(addressCmd(newVerifier), zipCmd(newVerifier), batchCmd(newVerifier))
	return cmd
}

type addressFlags struct {
	city   string
	street string
	house  string
}

func (f *addressFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.city, "city", "", "City or settlement name (required)")
	c.Flags().StringVar(&f.street, "street", "", "Street name")
	c.Flags().StringVar(&f.house, "house", "", "House number, optionally with a sub-unit letter")
	_ = c.MarkFlagRequired("city")
}

func (f *addressFlags) query() domain.AddressQuery {
	return domain.AddressQuery{City: f.city, Street: f.street, House: f.house}
}

type addressOutput struct {
	Query   string              `json:"query"`
	Address string              `json:"address,omitempty"`
	Verdict domain.MatchVerdict `json:"verdict"`
}

func newAddressOutput(c verify.AddressCheck) *addressOutput {
	return &addressOutput{Query: c.Search, Address: c.Result.FormattedAddress, Verdict: c.Verdict}
}

type zipOutput struct {
	Query    string            `json:"query"`
	Address  string            `json:"address,omitempty"`
	Fallback verify.Fallback   `json:"fallback,omitempty"`
	Verdict  domain.ZipVerdict `json:"verdict"`
}

func newZipOutput(c verify.ZipCheck) *zipOutput {
	return &zipOutput{Query: c.Search, Address: c.Result.FormattedAddress, Fallback: c.Fallback, Verdict: c.Verdict}
}

func addressCmd(newVerifier verifierFactory) *cobra.Command {
	var flags addressFlags

	c := &cobra.Command{
		Use:   "address",
		Short: "Check that an address exists as typed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := newVerifier()
			if err != nil {
				return err
			}
			check, err := v.VerifyAddress(cmd.Context(), flags.query())
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), newAddressOutput(check)); err != nil {
				return err
			}
			if !check.Verdict.Valid {
				return fmt.Errorf("address not verified: %s", check.Verdict.Reason)
			}
			return nil
		},
	}
	flags.register(c)
	return c
}

func zipCmd(newVerifier verifierFactory) *cobra.Command {
	var flags addressFlags
	var zip string

	c := &cobra.Command{
		Use:   "zip",
		Short: "Check a postal code against the official one for an address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := newVerifier()
			if err != nil {
				return err
			}
			check, err := v.VerifyZip(cmd.Context(), flags.query(), zip)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), newZipOutput(check)); err != nil {
				return err
			}
			if !check.Verdict.Valid {
				return fmt.Errorf("postal code not verified: %s", check.Verdict.Reason)
			}
			return nil
		},
	}
	flags.register(c)
	c.Flags().StringVar(&zip, "zip", "", "Postal code to check, 5 or 7 digits (required)")
	_ = c.MarkFlagRequired("zip")
	return c
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
