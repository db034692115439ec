package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Table is a flat export: a header row and one row of cells per record.
type Table struct {
	Name   string // file & sheet base name
	Header []string
	Rows   [][]interface{}
}

func (t Table) Filename(format string) string {
	return t.Name + "_report." + format
}

func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	record := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i, cell := range row {
			record[i] = csvCell(cell)
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "writing csv row")
		}
	}
	cw.Flush()
	return cw.Error()
}

func (t Table) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := t.Name
	index, err := f.NewSheet(sheet)
	if err != nil {
		return errors.Wrap(err, "creating sheet")
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err = f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing xlsx header")
	}
	for i, row := range t.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := row
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrap(err, "writing xlsx row")
		}
	}
	return f.Write(w)
}

func csvCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// StudentsTable lists all students: ID, Name, Age, Class, Contact, Email.
func (svc *Service) StudentsTable(ctx context.Context) (Table, error) {
	students, err := svc.students.QueryAll(ctx)
	if err != nil {
		return Table{}, errors.Wrap(err, "querying students")
	}
	t := Table{
		Name:   "students",
		Header: []string{"ID", "Name", "Age", "Class", "Contact", "Email"},
		Rows:   make([][]interface{}, 0, len(students)),
	}
	for _, st := range students {
		t.Rows = append(t.Rows, []interface{}{
			st.ID, st.FullName, st.Age, st.ClassType, st.ContactNumber.String, st.Email,
		})
	}
	return t, nil
}

// AttendanceTable lists all attendance rows: Student ID, Student Name, Batch, Date, Present, Notes.
func (svc *Service) AttendanceTable(ctx context.Context) (Table, error) {
	atts, err := svc.attendances.QueryAll(ctx)
	if err != nil {
		return Table{}, errors.Wrap(err, "querying attendances")
	}
	t := Table{
		Name:   "attendance",
		Header: []string{"Student ID", "Student Name", "Batch", "Date", "Present", "Notes"},
		Rows:   make([][]interface{}, 0, len(atts)),
	}
	for _, att := range atts {
		present := "No"
		if att.Present {
			present = "Yes"
		}
		t.Rows = append(t.Rows, []interface{}{
			att.StudentID, att.StudentName, att.BatchName, att.DateString(), present, att.Notes.String,
		})
	}
	return t, nil
}
