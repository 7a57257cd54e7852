package extract

import (
	"sort"
	"strings"

	"docscan-backend/internal/ocr"
)

// InvoiceData is the structured payload extracted from invoice documents.
type InvoiceData struct {
	Customer      Party      `json:"customer"`
	Supplier      Party      `json:"supplier"`
	InvoiceNumber string     `json:"invoiceNumber"`
	IssueDate     string     `json:"issueDate"`
	LineItems     []LineItem `json:"lineItems"`
	Total         string     `json:"total"`
}

// Party identifies one side of an invoice.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// LineItem is one row of the invoice's item table. Values are kept as the
// text the analysis produced.
type LineItem struct {
	Quantity    string `json:"quantity"`
	Description string `json:"description"`
	UnitPrice   string `json:"unitPrice"`
	LineTotal   string `json:"lineTotal"`
}

// Lookup terms per field. A form key matches when it contains any term,
// case-insensitive; the first term with a match wins.
var (
	customerNameKeys    = []string{"cliente", "customer", "nombre cliente"}
	customerAddressKeys = []string{"dirección cliente", "customer address", "direccion"}
	supplierNameKeys    = []string{"proveedor", "supplier", "empresa", "company"}
	supplierAddressKeys = []string{"dirección proveedor", "supplier address"}
	invoiceNumberKeys   = []string{"número", "numero", "nº", "n°", "invoice number", "factura"}
	issueDateKeys       = []string{"fecha", "date", "fecha de emisión"}
	totalKeys           = []string{"total", "total a pagar", "amount due"}
)

// Header keywords for detecting labeled item-table columns.
var (
	quantityHeaders    = []string{"cantidad", "qty", "quantity"}
	descriptionHeaders = []string{"descripción", "descripcion", "description", "producto", "concepto", "item"}
	unitPriceHeaders   = []string{"precio", "price", "unitario", "unit"}
	lineTotalHeaders   = []string{"total", "importe", "amount"}
)

func extractInvoice(a ocr.RawAnalysis) InvoiceData {
	pairs := sortedPairs(a.KeyValues)

	return InvoiceData{
		Customer: Party{
			Name:    findValue(pairs, customerNameKeys),
			Address: findValue(pairs, customerAddressKeys),
		},
		Supplier: Party{
			Name:    findValue(pairs, supplierNameKeys),
			Address: findValue(pairs, supplierAddressKeys),
		},
		InvoiceNumber: findValue(pairs, invoiceNumberKeys),
		IssueDate:     findValue(pairs, issueDateKeys),
		LineItems:     extractLineItems(a.Tables),
		Total:         findValue(pairs, totalKeys),
	}
}

type pair struct {
	key   string
	value string
}

// sortedPairs fixes an iteration order so repeated extractions of the same
// analysis pick the same match.
func sortedPairs(kv map[string]string) []pair {
	out := make([]pair, 0, len(kv))
	for k, v := range kv {
		out = append(out, pair{key: strings.ToLower(k), value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

func findValue(pairs []pair, terms []string) string {
	for _, term := range terms {
		for _, p := range pairs {
			if strings.Contains(p.key, term) && strings.TrimSpace(p.value) != "" {
				return p.value
			}
		}
	}
	return FieldNotFound
}

// extractLineItems reads item rows from the first detected table. A header
// row maps columns by keyword; without one, columns are read positionally.
// Malformed tables degrade to sentinel-filled items, never an error.
func extractLineItems(tables [][][]string) []LineItem {
	items := make([]LineItem, 0)
	if len(tables) == 0 || len(tables[0]) == 0 {
		return items
	}
	table := tables[0]

	cols, hasHeader := detectHeader(table[0])
	rows := table
	if hasHeader {
		rows = table[1:]
	}

	for _, row := range rows {
		if emptyRow(row) {
			continue
		}
		items = append(items, LineItem{
			Quantity:    cellAt(row, cols.quantity),
			Description: cellAt(row, cols.description),
			UnitPrice:   cellAt(row, cols.unitPrice),
			LineTotal:   cellAt(row, cols.lineTotal),
		})
	}
	return items
}

type columnMap struct {
	quantity    int
	description int
	unitPrice   int
	lineTotal   int
}

// detectHeader reports whether the first row labels its columns. At least
// two recognized headers are required to treat it as a header row.
func detectHeader(row []string) (columnMap, bool) {
	cols := columnMap{quantity: 0, description: 1, unitPrice: 2, lineTotal: 3}
	found := 0

	match := func(cell string, terms []string) bool {
		lower := strings.ToLower(cell)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return true
			}
		}
		return false
	}

	for i, cell := range row {
		switch {
		case match(cell, quantityHeaders):
			cols.quantity = i
			found++
		case match(cell, descriptionHeaders):
			cols.description = i
			found++
		case match(cell, unitPriceHeaders):
			cols.unitPrice = i
			found++
		case match(cell, lineTotalHeaders):
			cols.lineTotal = i
			found++
		}
	}

	if found >= 2 {
		return cols, true
	}
	return columnMap{quantity: 0, description: 1, unitPrice: 2, lineTotal: 3}, false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
		return FieldNotFound
	}
	return strings.TrimSpace(row[idx])
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
