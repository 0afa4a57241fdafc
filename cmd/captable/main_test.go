package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/captable-simulator/internal/fixedpoint"
)

func writeScenario(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	scenarioPath, locale, currencyCode, outputFormat = "", "", "", "table"
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

const twoRoundScenario = `
rounds:
  - pre_money: 4000000
    investment: 1000000
  - pre_money: 5000000
    investment: 500000
`

func TestSimulateTable(t *testing.T) {
	out, err := execute(t, "simulate", "-f", writeScenario(t, twoRoundScenario))
	require.NoError(t, err)

	assert.Contains(t, out, "Initial cap table")
	assert.Contains(t, out, "Round 1")
	assert.Contains(t, out, "Round 2")
	assert.Contains(t, out, "5,500,000.00")
	assert.Contains(t, out, "72.73%")
	assert.Contains(t, out, "18.18%")
	assert.Contains(t, out, "9.09%")
	assert.Contains(t, out, "Investor B")
}

func TestSimulateLocaleOverride(t *testing.T) {
	out, err := execute(t, "simulate", "-f", writeScenario(t, twoRoundScenario), "--locale", "de-DE", "--currency", "EUR")
	require.NoError(t, err)
	assert.Contains(t, out, "72,73%")
	assert.Contains(t, out, "5.500.000,00")
}

func TestSimulateJSON(t *testing.T) {
	out, err := execute(t, "simulate", "-f", writeScenario(t, twoRoundScenario), "--format", "json")
	require.NoError(t, err)

	var doc struct {
		Report struct {
			Rounds []struct {
				InvestorOwnership string `json:"investor_ownership"`
			} `json:"rounds"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Report.Rounds, 2)
	assert.Equal(t, "20.00%", doc.Report.Rounds[0].InvestorOwnership)
}

func TestSimulateFailurePrintsPriorRounds(t *testing.T) {
	doc := `
rounds:
  - pre_money: 4000000
    investment: 1000000
  - pre_money: -1
    investment: 1
`
	out, err := execute(t, "simulate", "-f", writeScenario(t, doc))
	assert.ErrorIs(t, err, fixedpoint.ErrInvalidArgument)
	assert.Contains(t, out, "Round 1")
	assert.NotContains(t, out, "Round 2")
}

func TestSimulateRejectsFormat(t *testing.T) {
	_, err := execute(t, "simulate", "-f", writeScenario(t, twoRoundScenario), "--format", "xml")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "captable dev\n", out)
}
