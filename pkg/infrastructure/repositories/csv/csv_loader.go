package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/blendopt/pkg/domain/entities"
)

// Loader handles loading blend planning data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadLots loads lots from a lots CSV plus an analyses CSV holding their
// measured parameters
func (l *Loader) LoadLots(lotsFile, analysesFile string) ([]*entities.Lot, error) {
	records, err := readCSV(lotsFile, []string{
		"lot_number", "product_code", "sub_type", "available_mass",
		"year", "folio", "unit_cost", "warehouse", "expiry_date",
	})
	if err != nil {
		return nil, fmt.Errorf("lots CSV: %w", err)
	}

	analyses, err := l.loadAnalyses(analysesFile)
	if err != nil {
		return nil, err
	}

	var lots []*entities.Lot
	for i, record := range records {
		lot, err := parseLot(record, analyses)
		if err != nil {
			return nil, fmt.Errorf("lots CSV row %d: %w", i+2, err)
		}
		lots = append(lots, lot)
	}

	return lots, nil
}

// loadAnalyses loads measured parameters grouped by lot number
func (l *Loader) loadAnalyses(filename string) (map[entities.LotNumber][]entities.AnalyticalParameter, error) {
	records, err := readCSV(filename, []string{"lot_number", "parameter", "value", "unit"})
	if err != nil {
		return nil, fmt.Errorf("analyses CSV: %w", err)
	}

	analyses := make(map[entities.LotNumber][]entities.AnalyticalParameter)
	for i, record := range records {
		lotNumber := entities.LotNumber(record[0])
		value, err := decimal.NewFromString(record[2])
		if err != nil {
			return nil, fmt.Errorf("analyses CSV row %d: invalid value: %s", i+2, record[2])
		}
		analyses[lotNumber] = append(analyses[lotNumber], entities.AnalyticalParameter{
			Name:  entities.Parameter(strings.ToLower(record[1])),
			Value: value,
			Unit:  record[3],
		})
	}

	return analyses, nil
}

// LoadSpecifications loads specification windows from a CSV file, grouped
// into one Specification per (product_code, customer_id)
func (l *Loader) LoadSpecifications(filename string) ([]*entities.Specification, error) {
	records, err := readCSV(filename, []string{
		"product_code", "customer_id", "parameter", "min", "max", "criticality",
	})
	if err != nil {
		return nil, fmt.Errorf("specifications CSV: %w", err)
	}

	type specID struct {
		product  entities.ProductCode
		customer string
	}
	windows := make(map[specID][]entities.ParameterWindow)
	var order []specID

	for i, record := range records {
		id := specID{entities.ProductCode(record[0]), record[1]}

		min, err := decimal.NewFromString(record[3])
		if err != nil {
			return nil, fmt.Errorf("specifications CSV row %d: invalid min: %s", i+2, record[3])
		}
		max, err := decimal.NewFromString(record[4])
		if err != nil {
			return nil, fmt.Errorf("specifications CSV row %d: invalid max: %s", i+2, record[4])
		}
		criticality, err := parseCriticality(record[5])
		if err != nil {
			return nil, fmt.Errorf("specifications CSV row %d: %w", i+2, err)
		}

		window, err := entities.NewParameterWindow(
			entities.Parameter(strings.ToLower(record[2])), min, max, criticality)
		if err != nil {
			return nil, fmt.Errorf("specifications CSV row %d: %w", i+2, err)
		}

		if _, seen := windows[id]; !seen {
			order = append(order, id)
		}
		windows[id] = append(windows[id], *window)
	}

	var specs []*entities.Specification
	for _, id := range order {
		spec, err := entities.NewSpecification(id.product, id.customer, windows[id])
		if err != nil {
			return nil, fmt.Errorf("specification %s/%s: %w", id.product, id.customer, err)
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

// LoadCostProfiles loads cost profiles from a CSV file
func (l *Loader) LoadCostProfiles(filename string) ([]*entities.CostProfile, error) {
	records, err := readCSV(filename, []string{"product_code", "target_cost", "max_cost"})
	if err != nil {
		return nil, fmt.Errorf("cost profiles CSV: %w", err)
	}

	var profiles []*entities.CostProfile
	for i, record := range records {
		target, err := decimal.NewFromString(record[1])
		if err != nil {
			return nil, fmt.Errorf("cost profiles CSV row %d: invalid target_cost: %s", i+2, record[1])
		}
		max, err := decimal.NewFromString(record[2])
		if err != nil {
			return nil, fmt.Errorf("cost profiles CSV row %d: invalid max_cost: %s", i+2, record[2])
		}

		profile, err := entities.NewCostProfile(entities.ProductCode(record[0]), target, max)
		if err != nil {
			return nil, fmt.Errorf("cost profiles CSV row %d: %w", i+2, err)
		}
		profiles = append(profiles, profile)
	}

	return profiles, nil
}

// Helper functions for parsing CSV records

func readCSV(filename string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s must have header and at least one data row", filename)
	}

	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("%s header mismatch. Expected: %v, Got: %v", filename, expectedHeader, records[0])
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s row %d: expected %d columns, got %d",
				filename, i+2, len(expectedHeader), len(record))
		}
	}

	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}
	return true
}

func parseLot(record []string, analyses map[entities.LotNumber][]entities.AnalyticalParameter) (*entities.Lot, error) {
	lotNumber := entities.LotNumber(record[0])

	availableMass, err := decimal.NewFromString(record[3])
	if err != nil {
		return nil, fmt.Errorf("invalid available_mass: %s", record[3])
	}

	year, err := strconv.Atoi(record[4])
	if err != nil {
		return nil, fmt.Errorf("invalid year: %s", record[4])
	}
	folio, err := strconv.Atoi(record[5])
	if err != nil {
		return nil, fmt.Errorf("invalid folio: %s", record[5])
	}
	sequenceKey, err := entities.NewSequenceKey(year, folio)
	if err != nil {
		return nil, err
	}

	unitCost, err := decimal.NewFromString(record[6])
	if err != nil {
		return nil, fmt.Errorf("invalid unit_cost: %s", record[6])
	}

	expiryDate, err := time.Parse("2006-01-02", record[8])
	if err != nil {
		return nil, fmt.Errorf("invalid expiry_date format: %s (expected YYYY-MM-DD)", record[8])
	}

	return entities.NewLot(
		lotNumber,
		entities.ProductCode(record[1]),
		record[2],
		availableMass,
		sequenceKey,
		unitCost,
		record[7],
		expiryDate,
		entities.AnalysisFromParameters(analyses[lotNumber]),
	)
}

func parseCriticality(s string) (entities.Criticality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return entities.Critical, nil
	case "flexible":
		return entities.Flexible, nil
	default:
		return entities.Critical, fmt.Errorf("invalid criticality: %s (expected: critical or flexible)", s)
	}
}
