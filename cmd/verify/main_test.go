package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/address-verify-service/internal/domain"
	"github.com/couchcryptid/address-verify-service/internal/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockVerifier struct {
	verdicts map[string]domain.MatchVerdict
	zips     map[string]domain.ZipVerdict
	errs     map[string]error
	queries  []domain.AddressQuery
}

func (m *mockVerifier) VerifyAddress(_ context.Context, q domain.AddressQuery) (verify.AddressCheck, error) {
	m.queries = append(m.queries, q)
	if err := m.errs[q.City]; err != nil {
		return verify.AddressCheck{}, err
	}
	return verify.AddressCheck{
		Query:   q,
		Search:  domain.BuildQuery(q, ""),
		Result:  domain.GeocodeResult{Found: true, FormattedAddress: q.Street + " " + q.House + ", " + q.City + ", ישראל"},
		Verdict: m.verdicts[q.City],
	}, nil
}

func (m *mockVerifier) VerifyZip(_ context.Context, q domain.AddressQuery, userZip string) (verify.ZipCheck, error) {
	v := m.zips[q.City]
	v.UserZip = userZip
	return verify.ZipCheck{Query: q, Search: domain.BuildQuery(q, ""), Verdict: v}, nil
}

func run(t *testing.T, m *mockVerifier, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(func() (verifier, error) { return m, nil })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeBatch(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "addresses.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestAddressCmd_Valid(t *testing.T) {
	m := &mockVerifier{verdicts: map[string]domain.MatchVerdict{"חיפה": {Valid: true}}}

	out, err := run(t, m, "address", "--city", "חיפה", "--street", "הרצל", "--house", "5")
	require.NoError(t, err)

	assert.Equal(t, []domain.AddressQuery{{City: "חיפה", Street: "הרצל", House: "5"}}, m.queries)

	var got addressOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "הרצל 5, חיפה, ישראל", got.Query)
	assert.True(t, got.Verdict.Valid)
}

func TestAddressCmd_InvalidReturnsError(t *testing.T) {
	m := &mockVerifier{verdicts: map[string]domain.MatchVerdict{
		"חיפה": {Reason: domain.ReasonStreetMismatch},
	}}

	out, err := run(t, m, "address", "--city", "חיפה", "--street", "הרצלל")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STREET_MISMATCH")
	assert.Contains(t, out, `"reason": "STREET_MISMATCH"`)
}

func TestAddressCmd_CityRequired(t *testing.T) {
	_, err := run(t, &mockVerifier{}, "address", "--street", "הרצל")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "city")
}

func TestAddressCmd_FactoryError(t *testing.T) {
	cmd := newRootCmd(func() (verifier, error) { return nil, errors.New("load config: invalid GEOCODE_TIMEOUT") })
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"address", "--city", "חיפה"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOCODE_TIMEOUT")
}

func TestZipCmd(t *testing.T) {
	m := &mockVerifier{zips: map[string]domain.ZipVerdict{
		"תל אביב": {Valid: true, OfficialZip: "6433222"},
	}}

	out, err := run(t, m, "zip", "--city", "תל אביב", "--street", "דיזנגוף", "--house", "100", "--zip", "64332")
	require.NoError(t, err)

	var got zipOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Verdict.Valid)
	assert.Equal(t, "64332", got.Verdict.UserZip)
	assert.Equal(t, "6433222", got.Verdict.OfficialZip)
}

func TestZipCmd_ZipRequired(t *testing.T) {
	_, err := run(t, &mockVerifier{}, "zip", "--city", "חיפה")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zip")
}

func TestLoadBatch(t *testing.T) {
	p := writeBatch(t, `
addresses:
  - city: תל אביב
    street: דיזנגוף
    house: "100"
    zip: "6433222"
  - city: קיבוץ גבעת חיים
`)

	entries, err := loadBatch(p)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, batchEntry{City: "תל אביב", Street: "דיזנגוף", House: "100", Zip: "6433222"}, entries[0])
	assert.Equal(t, "קיבוץ גבעת חיים", entries[1].City)
	assert.Empty(t, entries[1].Street)
}

func TestLoadBatch_Errors(t *testing.T) {
	_, err := loadBatch(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read batch file")

	_, err = loadBatch(writeBatch(t, "addresses: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse batch file")

	_, err = loadBatch(writeBatch(t, "addresses: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no addresses")
}

func TestBatchCmd_Pretty(t *testing.T) {
	m := &mockVerifier{
		verdicts: map[string]domain.MatchVerdict{
			"תל אביב": {Valid: true},
			"חיפה":    {Reason: domain.ReasonHouseMismatch, HouseDetail: domain.HouseDetailNumberDiffers},
		},
		zips: map[string]domain.ZipVerdict{
			"תל אביב": {Valid: true, OfficialZip: "6433222"},
		},
		errs: map[string]error{
			"אילת": &domain.ProviderError{Query: "אילת, ישראל", Err: errors.New("status 500")},
		},
	}
	p := writeBatch(t, `
addresses:
  - {city: תל אביב, street: דיזנגוף, house: "100", zip: "6433222"}
  - {city: חיפה, street: הרצל, house: "100"}
  - {city: אילת}
`)

	out, err := run(t, m, "batch", "--file", p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 addresses not verified")

	assert.Contains(t, out, "- [OK] דיזנגוף 100, תל אביב, ישראל")
	assert.Contains(t, out, "- [FAIL] הרצל 100, חיפה, ישראל reason=HOUSE_MISMATCH detail=HOUSE_NUMBER_DIFFERS")
	assert.Contains(t, out, "- [FAIL] אילת, ישראל error=")
	assert.Len(t, m.queries, 3)
}

func TestBatchCmd_JSON(t *testing.T) {
	m := &mockVerifier{
		verdicts: map[string]domain.MatchVerdict{"תל אביב": {Valid: true}},
		zips:     map[string]domain.ZipVerdict{"תל אביב": {Reason: domain.ReasonZipMismatch, OfficialZip: "6433222"}},
	}
	p := writeBatch(t, "addresses:\n  - {city: תל אביב, street: דיזנגוף, house: \"100\", zip: \"6433299\"}\n")

	out, err := run(t, m, "batch", "-f", p, "--format", "json")
	require.Error(t, err)

	var results []batchResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Address)
	require.NotNil(t, results[0].Zip)
	assert.True(t, results[0].Address.Verdict.Valid)
	assert.Equal(t, domain.ReasonZipMismatch, results[0].Zip.Verdict.Reason)
	assert.Equal(t, "6433299", results[0].Zip.Verdict.UserZip)
}

func TestBatchCmd_AllValid(t *testing.T) {
	m := &mockVerifier{verdicts: map[string]domain.MatchVerdict{"חיפה": {Valid: true}}}
	p := writeBatch(t, "addresses:\n  - {city: חיפה, street: הרצל, house: \"5\"}\n")

	out, err := run(t, m, "batch", "--file", p)
	require.NoError(t, err)
	assert.Contains(t, out, "[OK]")
}

func TestBatchCmd_UnsupportedFormat(t *testing.T) {
	p := writeBatch(t, "addresses:\n  - {city: חיפה}\n")
	_, err := run(t, &mockVerifier{}, "batch", "--file", p, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
