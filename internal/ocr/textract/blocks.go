package textract

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"docscan-backend/internal/ocr"
)

func analyzeInput(data []byte) *textract.AnalyzeDocumentInput {
	return &textract.AnalyzeDocumentInput{
		Document:     &types.Document{Bytes: data},
		FeatureTypes: []types.FeatureType{types.FeatureTypeForms, types.FeatureTypeTables},
	}
}

// flattenBlocks walks the Textract block graph and produces the
// engine-agnostic analysis shape: LINE blocks become lines, KEY_VALUE_SET
// pairs become the key/value map, and TABLE cells become row-major tables.
func flattenBlocks(blocks []types.Block) ocr.RawAnalysis {
	byID := make(map[string]types.Block, len(blocks))
	for _, b := range blocks {
		if b.Id != nil {
			byID[*b.Id] = b
		}
	}

	out := ocr.RawAnalysis{KeyValues: map[string]string{}}
	for _, b := range blocks {
		switch b.BlockType {
		case types.BlockTypeLine:
			if b.Text != nil && *b.Text != "" {
				out.Lines = append(out.Lines, *b.Text)
			}
		case types.BlockTypeKeyValueSet:
			if !hasEntityType(b, types.EntityTypeKey) {
				continue
			}
			key := childText(b, byID)
			if key == "" {
				continue
			}
			out.KeyValues[key] = valueText(b, byID)
		case types.BlockTypeTable:
			if table := tableCells(b, byID); len(table) > 0 {
				out.Tables = append(out.Tables, table)
			}
		}
	}
	return out
}

func hasEntityType(b types.Block, want types.EntityType) bool {
	for _, et := range b.EntityTypes {
		if et == want {
			return true
		}
	}
	return false
}

// childText collects the WORD children of a block in order. Selected
// checkboxes contribute an X marker, matching Textract's console rendering.
func childText(b types.Block, byID map[string]types.Block) string {
	var parts []string
	for _, rel := range b.Relationships {
		if rel.Type != types.RelationshipTypeChild {
			continue
		}
		for _, id := range rel.Ids {
			cb, ok := byID[id]
			if !ok {
				continue
			}
			switch cb.BlockType {
			case types.BlockTypeWord:
				if cb.Text != nil && *cb.Text != "" {
					parts = append(parts, *cb.Text)
				}
			case types.BlockTypeSelectionElement:
				if cb.SelectionStatus == types.SelectionStatusSelected {
					parts = append(parts, "X")
				}
			}
		}
	}
	return strings.Join(parts, " ")
}

func valueText(keyBlock types.Block, byID map[string]types.Block) string {
	var parts []string
	for _, rel := range keyBlock.Relationships {
		if rel.Type != types.RelationshipTypeValue {
			continue
		}
		for _, id := range rel.Ids {
			vb, ok := byID[id]
			if !ok {
				continue
			}
			if v := childText(vb, byID); v != "" {
				parts = append(parts, v)
			}
		}
	}
	return strings.Join(parts, " ")
}

func tableCells(b types.Block, byID map[string]types.Block) [][]string {
	type cell struct {
		row, col int
		text     string
	}

	var cells []cell
	maxRow, maxCol := 0, 0
	for _, rel := range b.Relationships {
		if rel.Type != types.RelationshipTypeChild {
			continue
		}
		for _, id := range rel.Ids {
			cb, ok := byID[id]
			if !ok || cb.BlockType != types.BlockTypeCell {
				continue
			}
			row, col := 1, 1
			if cb.RowIndex != nil && *cb.RowIndex > 0 {
				row = int(*cb.RowIndex)
			}
			if cb.ColumnIndex != nil && *cb.ColumnIndex > 0 {
				col = int(*cb.ColumnIndex)
			}
			if row > maxRow {
				maxRow = row
			}
			if col > maxCol {
				maxCol = col
			}
			cells = append(cells, cell{row: row, col: col, text: childText(cb, byID)})
		}
	}

	if maxRow == 0 || maxCol == 0 {
		return nil
	}
	table := make([][]string, maxRow)
	for i := range table {
		table[i] = make([]string, maxCol)
	}
	for _, c := range cells {
		table[c.row-1][c.col-1] = c.text
	}
	return table
}
