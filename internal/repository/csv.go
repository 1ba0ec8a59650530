package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"chatimmo/internal/model"
)

// Source columns of the property export
const (
	ColTitle     = "PI_TITLE"
	ColContent   = "PI_CONTENT"
	ColBedrooms  = "PI_ATTR_BED"
	ColBathrooms = "PI_ATTR_BATH"
	ColSurface   = "PI_ATTR_SURFACE"
	ColPrice     = "PI_PRICE_TND"
	ColParking   = "PI_ATTR_PARKING"
	ColAlias     = "PI_ALIAS"
)

var requiredColumns = []string{
	ColTitle, ColContent, ColBedrooms, ColBathrooms,
	ColSurface, ColPrice, ColParking, ColAlias,
}

// ErrMissingColumn is returned when the CSV header lacks a required column
var ErrMissingColumn = errors.New("missing column")

// LoadError reports the row and column that made a catalog load fail.
// Line is the 1-based line in a CSV source (the row id for PostgreSQL),
// 0 for header problems.
type LoadError struct {
	Line   int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("catalog: column %s: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("catalog: line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadCSV reads the catalog from the CSV file at path
func LoadCSV(path string) (model.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %q: %w", path, err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses a property export. Any missing column or unusable numeric
// cell fails the whole load; nothing is silently defaulted to zero.
func ReadCSV(r io.Reader) (model.Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &LoadError{Column: ColTitle, Err: ErrMissingColumn}
		}
		return nil, fmt.Errorf("catalog: read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &LoadError{Column: col, Err: ErrMissingColumn}
		}
	}

	catalog := model.Catalog{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		listing, err := parseRecord(record, index, line)
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, listing)
	}

	return catalog, nil
}

func parseRecord(record []string, index map[string]int, line int) (model.Listing, error) {
	cell := func(col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	fail := func(col string, err error) (model.Listing, error) {
		return model.Listing{}, &LoadError{Line: line, Column: col, Err: err}
	}

	bedrooms, err := parseCount(cell(ColBedrooms))
	if err != nil {
		return fail(ColBedrooms, err)
	}
	bathrooms, err := parseCount(cell(ColBathrooms))
	if err != nil {
		return fail(ColBathrooms, err)
	}
	surface, err := parseAmount(cell(ColSurface))
	if err != nil {
		return fail(ColSurface, err)
	}
	if surface <= 0 {
		return fail(ColSurface, fmt.Errorf("surface must be > 0, got %g", surface))
	}
	price, err := parseAmount(cell(ColPrice))
	if err != nil {
		return fail(ColPrice, err)
	}
	parking, err := parseFlag(cell(ColParking))
	if err != nil {
		return fail(ColParking, err)
	}

	description := record[index[ColContent]]
	return model.Listing{
		Title:       cell(ColTitle),
		Description: description,
		Bedrooms:    bedrooms,
		Bathrooms:   bathrooms,
		Surface:     surface,
		Price:       price,
		Parking:     parking,
		Location:    DeriveLocation(description),
		Link:        cell(ColAlias),
	}, nil
}

// parseCount accepts integers in [0, math.MaxInt32], including integral floats like "3.0"
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("must be >= 0, got %d", n)
		}
		if n > math.MaxInt32 {
			return 0, fmt.Errorf("out of range, got %d", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("must be >= 0, got %g", f)
	}
	if f > math.MaxInt32 {
		return 0, fmt.Errorf("out of range, got %g", f)
	}
	return int(f), nil
}

// parseAmount accepts non-negative finite numbers
func parseAmount(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("must be >= 0, got %g", f)
	}
	return f, nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "0.0", "false", "no", "non", "n":
		return false, nil
	case "1", "1.0", "true", "yes", "oui", "y":
		return true, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}
