package exportsvc

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/kitobai/kitob/core/feedback"
	"github.com/kitobai/kitob/core/member"
)

const (
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout   = "02.01.2006 15:04"
	defaultSheet = "Sheet1"
)

// WriteSheet writes a single-sheet workbook with a header row followed by rows.
func WriteSheet(w io.Writer, sheet string, headers []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}
	if len(headers) > 0 {
		last, _ := excelize.ColumnNumberToName(len(headers))
		_ = f.SetColWidth(sheet, "A", last, 22)
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}

var personHeaders = []string{"Ism", "Familiya", "Email", "Jinsi", "Holati", "Yaratilgan"}

func personRow(p member.Person) []interface{} {
	return []interface{}{p.FirstName, p.LastName, p.Email, string(p.Gender), string(p.Status), p.CreatedAt.Format(dateLayout)}
}

// People writes students or teachers.
func People(w io.Writer, sheet string, people []member.Person) error {
	rows := make([][]interface{}, 0, len(people))
	for _, p := range people {
		rows = append(rows, personRow(p))
	}
	return WriteSheet(w, sheet, personHeaders, rows)
}

func Employees(w io.Writer, employees []member.Employee) error {
	headers := append(append([]string{}, personHeaders...), "Lavozim", "Filial")
	rows := make([][]interface{}, 0, len(employees))
	for _, e := range employees {
		rows = append(rows, append(personRow(e.Person), e.TypeName, e.BranchName))
	}
	return WriteSheet(w, "Xodimlar", headers, rows)
}

// Results writes the feedback of an interview, one student per row.
func Results(w io.Writer, results []feedback.Feedback) error {
	headers := []string{"Talaba", "Umumiy ball", "Kuchli tomonlar", "Yaxshilash kerak", "Yakuniy xulosa", "Sana"}
	rows := make([][]interface{}, 0, len(results))
	for _, f := range results {
		rows = append(rows, []interface{}{
			f.StudentName,
			f.TotalScore,
			strings.Join(f.Strengths, "; "),
			strings.Join(f.AreasForImprovement, "; "),
			f.FinalAssessment,
			f.CreatedAt.Format(dateLayout),
		})
	}
	return WriteSheet(w, "Natijalar", headers, rows)
}
