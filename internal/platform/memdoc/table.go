package memdoc

import (
	"fmt"

	"github.com/mj1618/docbind/internal/platform"
)

func (e *element) RowsCount() (int, error) {
	if err := e.node.fault("RowsCount"); err != nil {
		return 0, err
	}
	if !e.node.isTable() {
		return 0, notSupported("RowsCount")
	}
	return len(e.node.Rows), nil
}

func (e *element) Row(i int) (platform.TableRow, error) {
	if !e.node.isTable() {
		return nil, notSupported("Row")
	}
	if i < 0 || i >= len(e.node.Rows) {
		return nil, fmt.Errorf("row %d out of range", i)
	}
	return &row{table: e, index: i}, nil
}

type row struct {
	table *element
	index int
}

func (r *row) Index() (int, error) { return r.index, nil }

func (r *row) CellsCount() (int, error) {
	return len(r.table.node.Rows[r.index]), nil
}

func (r *row) ParentTable() (platform.Table, error) { return r.table, nil }

func (r *row) Cell(j int) (platform.TableCell, error) {
	if j < 0 || j >= len(r.table.node.Rows[r.index]) {
		return nil, fmt.Errorf("cell %d out of range", j)
	}
	return &cell{row: r, index: j}, nil
}

type cell struct {
	row   *row
	index int
}

func (c *cell) Index() (int, error) { return c.index, nil }

func (c *cell) ParentRow() (platform.TableRow, error) { return c.row, nil }

func (c *cell) Text() (string, error) {
	return c.row.table.node.Rows[c.row.index][c.index], nil
}
