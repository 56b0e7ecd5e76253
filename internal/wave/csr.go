package wave

import "sort"

// CSRMatrix is a compressed sparse row view of the aisle catalog keyed by
// item: row i lists every aisle stocking item i together with the stocked
// quantity. Rows are sorted ascending by quantity at construction, so a
// reverse traversal visits the largest stocks first.
type CSRMatrix struct {
	rowPtr []int
	col    []int
	qty    []int
}

func newCSRMatrix(elements []map[int]int, transpose, sortRows bool, nItems int) *CSRMatrix {
	if transpose {
		elements = transposeListMaps(elements, nItems)
	}

	m := &CSRMatrix{rowPtr: make([]int, 1, len(elements)+1)}

	type entry struct{ qty, col int }
	for _, element := range elements {
		row := make([]entry, 0, len(element))
		for col, qty := range element {
			row = append(row, entry{qty: qty, col: col})
		}
		if sortRows {
			sort.Slice(row, func(i, j int) bool {
				if row[i].qty != row[j].qty {
					return row[i].qty < row[j].qty
				}
				return row[i].col < row[j].col
			})
		}
		for _, e := range row {
			m.qty = append(m.qty, e.qty)
			m.col = append(m.col, e.col)
		}
		m.rowPtr = append(m.rowPtr, len(m.col))
	}
	return m
}

func transposeListMaps(maps []map[int]int, nItems int) []map[int]int {
	transposed := make([]map[int]int, nItems)
	for i := range transposed {
		transposed[i] = map[int]int{}
	}
	for j, m := range maps {
		for item, qty := range m {
			if item >= 0 && item < nItems {
				transposed[item][j] = qty
			}
		}
	}
	return transposed
}

// Rows returns the number of rows.
func (m *CSRMatrix) Rows() int { return len(m.rowPtr) - 1 }

// Row returns the column and quantity slices for one row. The returned
// slices alias the matrix storage and must not be mutated.
func (m *CSRMatrix) Row(row int) (cols, qtys []int) {
	return m.col[m.rowPtr[row]:m.rowPtr[row+1]], m.qty[m.rowPtr[row]:m.rowPtr[row+1]]
}

// CoverRow walks row `row`, skipping columns not in eligible, collecting
// columns until their quantities sum to at least demand. With descending
// set the walk starts at the largest quantity. Returns nil when the
// eligible columns of the row cannot cover the demand.
func (m *CSRMatrix) CoverRow(row int, eligible map[int]bool, demand int, descending bool) []int {
	result := []int{}
	start, end := m.rowPtr[row], m.rowPtr[row+1]

	for i := start; i < end; i++ {
		j := i
		if descending {
			j = end - 1 - (i - start)
		}
		if !eligible[m.col[j]] {
			continue
		}
		demand -= m.qty[j]
		result = append(result, m.col[j])
		if demand <= 0 {
			break
		}
	}

	if demand > 0 {
		return nil
	}
	return result
}
