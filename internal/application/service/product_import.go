package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/pagination"
	"github.com/sangkips/storefront-admin/pkg/pricing"
	"github.com/sangkips/storefront-admin/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ImportColumns are the header names recognised in an import sheet
var ImportColumns = []string{
	"name", "code", "category", "description", "quantity", "quantity_alert",
	"price", "compare_at_price", "cost_price",
}

// WriteImportTemplate writes an empty workbook with the import header row
// and one example line
func WriteImportTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	example := []interface{}{"Canvas sneaker", "SNK-001", "Shoes", "White, size 42", 12, 3, "4500", "5200", "2800"}
	for i, name := range ImportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
		cell, _ = excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(sheet, cell, example[i]); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// ImportProductRow represents a single row from the import file
type ImportProductRow struct {
	Row            int
	Name           string
	Code           string
	CategoryName   string
	Description    string
	Quantity       int
	QuantityAlert  int
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	CostPrice      decimal.Decimal
}

// ImportResult contains the result of a product import operation
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError describes an error for a specific row during import
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseProductSheet reads the first sheet of an .xlsx workbook. Row 1 is the
// header; columns are matched by name in any order. Cells that cannot be
// parsed are reported per row and the row is skipped.
func ParseProductSheet(r io.Reader) ([]ImportProductRow, []ImportRowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, apperror.Wrap(400, "Could not read the spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, apperror.NewBadRequestError("Spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, apperror.Wrap(400, "Could not read the spreadsheet", err)
	}
	if len(rows) == 0 {
		return nil, nil, apperror.NewBadRequestError("Spreadsheet is empty")
	}

	columns := make(map[string]int)
	for i, h := range rows[0] {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		columns[key] = i
	}
	for _, required := range []string{"name", "price"} {
		if _, ok := columns[required]; !ok {
			return nil, nil, apperror.NewBadRequestf("Missing required column %q", required)
		}
	}

	var out []ImportProductRow
	var rowErrors []ImportRowError
	for i, cells := range rows[1:] {
		rowNum := i + 2
		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[idx])
		}
		if isBlankRow(cells) {
			continue
		}

		row := ImportProductRow{
			Row:          rowNum,
			Name:         cell("name"),
			Code:         cell("code"),
			CategoryName: cell("category"),
			Description:  cell("description"),
		}

		var rowErr *ImportRowError
		parseInt := func(field string, dst *int) {
			v := cell(field)
			if v == "" || rowErr != nil {
				return
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				rowErr = &ImportRowError{Row: rowNum, Field: field, Message: fmt.Sprintf("%q is not a whole number", v)}
				return
			}
			*dst = n
		}
		parseMoney := func(field string) *decimal.Decimal {
			v := cell(field)
			if v == "" || rowErr != nil {
				return nil
			}
			d, err := decimal.NewFromString(v)
			if err != nil || d.IsNegative() {
				rowErr = &ImportRowError{Row: rowNum, Field: field, Message: fmt.Sprintf("%q is not a valid amount", v)}
				return nil
			}
			return &d
		}

		parseInt("quantity", &row.Quantity)
		parseInt("quantity_alert", &row.QuantityAlert)
		if price := parseMoney("price"); price != nil {
			row.Price = *price
		} else if rowErr == nil {
			rowErr = &ImportRowError{Row: rowNum, Field: "price", Message: "Price is required"}
		}
		row.CompareAtPrice = parseMoney("compare_at_price")
		if cost := parseMoney("cost_price"); cost != nil {
			row.CostPrice = *cost
		}

		if rowErr != nil {
			rowErrors = append(rowErrors, *rowErr)
			continue
		}
		out = append(out, row)
	}

	return out, rowErrors, nil
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ImportProductsFromSheet parses an .xlsx upload and imports its rows
func (s *ProductService) ImportProductsFromSheet(ctx context.Context, userID uuid.UUID, r io.Reader) (*ImportResult, error) {
	rows, parseErrors, err := ParseProductSheet(r)
	if err != nil {
		return nil, err
	}

	result, err := s.ImportProducts(ctx, userID, rows)
	if err != nil {
		return nil, err
	}

	result.TotalRows += len(parseErrors)
	result.Failed += len(parseErrors)
	result.Errors = append(parseErrors, result.Errors...)
	return result, nil
}

// ImportProducts validates and bulk-creates products from parsed import rows.
// Prices go through the pricing rules so a compare-at price that is not above
// the price is dropped.
func (s *ProductService) ImportProducts(ctx context.Context, userID uuid.UUID, rows []ImportProductRow) (*ImportResult, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{TotalRows: len(rows)}
	var rowErrors []ImportRowError

	categoryMap, err := s.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}

	seenCodes := make(map[string]int)
	var validProducts []entity.Product

	for i, row := range rows {
		rowNum := row.Row
		if rowNum == 0 {
			rowNum = i + 2
		}

		if strings.TrimSpace(row.Name) == "" {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "name", Message: "Name is required"})
			continue
		}

		code := strings.TrimSpace(row.Code)
		if code == "" {
			code = utils.GenerateProductCode()
		}

		if prevRow, exists := seenCodes[code]; exists {
			rowErrors = append(rowErrors, ImportRowError{
				Row:     rowNum,
				Field:   "code",
				Message: fmt.Sprintf("Duplicate code '%s' (same as row %d)", code, prevRow),
			})
			continue
		}

		existingProduct, err := s.productRepo.GetByCode(ctx, code)
		if err != nil {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "code", Message: "Error checking code: " + err.Error()})
			continue
		}
		if existingProduct != nil {
			rowErrors = append(rowErrors, ImportRowError{
				Row:     rowNum,
				Field:   "code",
				Message: fmt.Sprintf("Product code '%s' already exists", code),
			})
			continue
		}

		var categoryID *uuid.UUID
		if row.CategoryName != "" {
			id, ok := categoryMap[strings.ToLower(strings.TrimSpace(row.CategoryName))]
			if !ok {
				rowErrors = append(rowErrors, ImportRowError{
					Row:     rowNum,
					Field:   "category",
					Message: fmt.Sprintf("Unknown category '%s'", row.CategoryName),
				})
				continue
			}
			categoryID = &id
		}

		seenCodes[code] = rowNum

		product := entity.Product{
			TenantID:      tenantID,
			UserID:        userID,
			CategoryID:    categoryID,
			Name:          strings.TrimSpace(row.Name),
			Slug:          utils.Slugify(row.Name) + "-" + strings.ToLower(uuid.New().String()[:8]),
			Code:          code,
			Quantity:      row.Quantity,
			QuantityAlert: row.QuantityAlert,
			CostPrice:     row.CostPrice.Round(2),
			Status:        enum.ProductStatusActive,
		}
		product.ApplyEmission(pricing.FromPersisted(row.Price, row.CompareAtPrice).Emission())

		if row.Description != "" {
			description := row.Description
			product.Description = &description
		}

		validProducts = append(validProducts, product)
	}

	if len(validProducts) > 0 {
		if err := s.productRepo.CreateBatch(ctx, validProducts); err != nil {
			return nil, apperror.Wrap(500, "Failed to import products", err)
		}
	}

	result.Successful = len(validProducts)
	result.Failed = len(rowErrors)
	result.Errors = rowErrors

	return result, nil
}

// categoryIndex maps lower-cased category names to IDs
func (s *ProductService) categoryIndex(ctx context.Context) (map[string]uuid.UUID, error) {
	index := make(map[string]uuid.UUID)
	params := &pagination.Params{Page: 1, PerPage: 100}
	for {
		categories, total, err := s.categoryRepo.List(ctx, params, "")
		if err != nil {
			return nil, err
		}
		for _, c := range categories {
			index[strings.ToLower(c.Name)] = c.ID
		}
		if len(categories) == 0 || int64(params.Page*params.PerPage) >= total {
			return index, nil
		}
		params.Page++
	}
}
