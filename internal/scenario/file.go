package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/sheikh-saqib/captable-simulator/internal/fixedpoint"
	"github.com/sheikh-saqib/captable-simulator/internal/models"
)

// File is the YAML form of a SimulationRequest. Money fields are read as
// text so that values such as 1234.565 keep every digit.
type File struct {
	Locale   string          `yaml:"locale"`
	Currency string          `yaml:"currency"`
	Initial  []models.Holder `yaml:"initial"`
	Rounds   []fileRound     `yaml:"rounds"`
}

type fileRound struct {
	PreMoney   string        `yaml:"pre_money"`
	Investment string        `yaml:"investment"`
	Investor   string        `yaml:"investor"`
	Investors  []fileTranche `yaml:"investors"`
}

type fileTranche struct {
	Label  string `yaml:"label"`
	Amount string `yaml:"amount"`
}

// LoadFile reads a scenario file from path.
func LoadFile(path string) (models.SimulationRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.SimulationRequest{}, err
	}
	defer f.Close()
	return ParseFile(f)
}

// ParseFile decodes a scenario file. Unknown keys and malformed amounts are
// rejected with fixedpoint.ErrInvalidArgument.
func ParseFile(r io.Reader) (models.SimulationRequest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return models.SimulationRequest{}, fmt.Errorf("%w: decode scenario: %v", fixedpoint.ErrInvalidArgument, err)
	}

	req := models.SimulationRequest{
		Initial:  file.Initial,
		Rounds:   make([]models.FundingRound, 0, len(file.Rounds)),
		Locale:   file.Locale,
		Currency: file.Currency,
	}
	for i, fr := range file.Rounds {
		where := fmt.Sprintf("rounds[%d]", i)
		pre, err := parseMoney(where+".pre_money", fr.PreMoney)
		if err != nil {
			return models.SimulationRequest{}, err
		}
		inv, err := parseMoney(where+".investment", fr.Investment)
		if err != nil {
			return models.SimulationRequest{}, err
		}
		round := models.FundingRound{PreMoney: pre, Investment: inv, InvestorLabel: fr.Investor}
		for j, t := range fr.Investors {
			amount, err := parseMoney(fmt.Sprintf("%s.investors[%d].amount", where, j), t.Amount)
			if err != nil {
				return models.SimulationRequest{}, err
			}
			round.Investors = append(round.Investors, models.Tranche{Label: t.Label, Amount: amount})
		}
		req.Rounds = append(req.Rounds, round)
	}
	return req, nil
}

// parseMoney treats an absent amount as zero.
func parseMoney(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %q is not a number", fixedpoint.ErrInvalidArgument, field, s)
	}
	return d, nil
}
