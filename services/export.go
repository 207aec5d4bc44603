package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ngshiheng/passportindexdb/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Sheet names of the exported workbook
const (
	SheetCountries    = "Countries"
	SheetRankings     = "Rankings"
	SheetRequirements = "Visa Requirements"
)

// ExportContentType is the MIME type of ExportWorkbook output
const ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportWorkbook writes the whole store to an XLSX workbook, one sheet per table
func ExportWorkbook(ctx context.Context, dbConn *gorm.DB) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	// --- Countries Sheet ---
	f.SetSheetName("Sheet1", SheetCountries)
	writeHeader(f, SheetCountries, headerStyle, []interface{}{"Code", "Name", "Region", "Updated At"})

	var countries []models.Country
	if err := dbConn.WithContext(ctx).Order("code").Find(&countries).Error; err != nil {
		return nil, fmt.Errorf("failed to load countries: %w", err)
	}
	for i, c := range countries {
		region := ""
		if c.Region != nil {
			region = *c.Region
		}
		if err := setRow(f, SheetCountries, i+2, []interface{}{c.Code, c.Name, region, c.UpdatedAt}); err != nil {
			return nil, err
		}
	}
	f.SetColWidth(SheetCountries, "B", "B", 40)

	// --- Rankings Sheet ---
	f.NewSheet(SheetRankings)
	writeHeader(f, SheetRankings, headerStyle, []interface{}{"Country", "Year", "Rank", "Visa Free Count"})

	var rankings []models.CountryRanking
	if err := dbConn.WithContext(ctx).Order("country_code").Order("year").Find(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to load rankings: %w", err)
	}
	for i, r := range rankings {
		if err := setRow(f, SheetRankings, i+2, []interface{}{r.CountryCode, r.Year, nullable(r.Rank), nullable(r.VisaFreeCount)}); err != nil {
			return nil, err
		}
	}

	// --- Visa Requirements Sheet ---
	f.NewSheet(SheetRequirements)
	writeHeader(f, SheetRequirements, headerStyle, []interface{}{"From", "To", "Effective Date", "Requirement", "Run"})

	// The ledger is the largest table, stream it instead of loading it whole
	rows, err := dbConn.WithContext(ctx).Model(&models.VisaRequirement{}).
		Order("from_country").Order("to_country").Order("effective_date").Order("id").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to load visa requirements: %w", err)
	}
	defer rows.Close()

	row := 2
	for rows.Next() {
		var r models.VisaRequirement
		if err := dbConn.ScanRows(rows, &r); err != nil {
			return nil, fmt.Errorf("failed to scan visa requirement: %w", err)
		}
		if err := setRow(f, SheetRequirements, row, []interface{}{r.FromCountry, r.ToCountry, r.EffectiveDate, r.RequirementType, r.RunID}); err != nil {
			return nil, err
		}
		row++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to export visa requirements: %w", err)
	}
	f.SetColWidth(SheetRequirements, "D", "D", 34)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func writeHeader(f *excelize.File, sheet string, style int, headers []interface{}) {
	f.SetSheetRow(sheet, "A1", &headers)
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// nullable keeps NULL cells empty instead of writing 0
func nullable(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
