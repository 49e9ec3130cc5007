package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type column int

const (
	colFullName column = iota
	colFirstName
	colMiddleName
	colLastName
	colPositionID
	colCompanyCode
	colJobTitle
	colDepartment
	colLocation
	colPositionStatus
	colHireDate
	colRehireDate
	colReportsTo
	colDirectReports
)

// headerAliases maps normalized header text to a column. Exports from
// different payroll systems name the same column differently.
var headerAliases = map[string]column{
	"name":                      colFullName,
	"fullname":                  colFullName,
	"employeename":              colFullName,
	"legalname":                 colFullName,
	"firstname":                 colFirstName,
	"givenname":                 colFirstName,
	"legalfirstname":            colFirstName,
	"middlename":                colMiddleName,
	"legalmiddlename":           colMiddleName,
	"lastname":                  colLastName,
	"surname":                   colLastName,
	"familyname":                colLastName,
	"legallastname":             colLastName,
	"positionid":                colPositionID,
	"companycode":               colCompanyCode,
	"jobtitle":                  colJobTitle,
	"title":                     colJobTitle,
	"jobtitledescription":       colJobTitle,
	"department":                colDepartment,
	"homedepartment":            colDepartment,
	"homedepartmentdescription": colDepartment,
	"location":                  colLocation,
	"worklocation":              colLocation,
	"locationdescription":       colLocation,
	"positionstatus":            colPositionStatus,
	"status":                    colPositionStatus,
	"hiredate":                  colHireDate,
	"originalhiredate":          colHireDate,
	"rehiredate":                colRehireDate,
	"reportsto":                 colReportsTo,
	"reportstoname":             colReportsTo,
	"reportstolegalname":        colReportsTo,
	"manager":                   colReportsTo,
	"directreports":             colDirectReports,
	"directreportscount":        colDirectReports,
	"numberofdirectreports":     colDirectReports,
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"2006/01/02",
	"01-02-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Parse decodes a roster export. The format is chosen by file extension:
// .xlsx and .xlsm are read as spreadsheets, anything else as delimited text.
// Rows without any name are skipped.
func Parse(name string, data []byte) ([]*model.RosterRecord, error) {
	var rows [][]string
	var err error

	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		rows, err = readSpreadsheet(data)
	default:
		rows, err = readDelimited(data, ext)
	}
	if err != nil {
		return nil, err
	}

	return buildRecords(rows)
}

func readSpreadsheet(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open spreadsheet", goerr.V(FormatKey, "xlsx"))
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, goerr.New("spreadsheet has no sheets", goerr.V(FormatKey, "xlsx"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read spreadsheet rows",
			goerr.V(FormatKey, "xlsx"), goerr.V("sheet", sheets[0]))
	}
	return rows, nil
}

func readDelimited(data []byte, ext string) ([][]string, error) {
	decoded, err := decodeText(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode roster text", goerr.V(FormatKey, ext))
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.Comma = sniffDelimiter(decoded, ext)

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A broken line only loses that row
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// decodeText honors a UTF-8/UTF-16 byte order mark and otherwise falls back
// to Latin-1 for input that is not valid UTF-8
func decodeText(data []byte) ([]byte, error) {
	var fallback transform.Transformer = encoding.Nop.NewDecoder()
	if !utf8.Valid(data) {
		fallback = charmap.ISO8859_1.NewDecoder()
	}
	out, _, err := transform.Bytes(xunicode.BOMOverride(fallback), data)
	return out, err
}

func sniffDelimiter(data []byte, ext string) rune {
	if ext == ".tsv" {
		return '\t'
	}
	header, _, _ := bytes.Cut(data, []byte("\n"))
	candidates := []rune{',', '\t', ';', '|'}
	best, bestCount := ',', 0
	for _, c := range candidates {
		if n := bytes.Count(header, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

func buildRecords(rows [][]string) ([]*model.RosterRecord, error) {
	headerIdx := -1
	var columns map[column]int
	for i, row := range rows {
		if cols := mapHeader(row); len(cols) > 0 {
			headerIdx, columns = i, cols
			break
		}
	}
	if headerIdx < 0 {
		return nil, goerr.New("roster has no recognizable header row")
	}
	if !hasNameColumn(columns) {
		return nil, goerr.New("roster header has no name column",
			goerr.V("header", rows[headerIdx]))
	}

	records := make([]*model.RosterRecord, 0, len(rows)-headerIdx-1)
	for i, row := range rows[headerIdx+1:] {
		cell := func(c column) string {
			idx, ok := columns[c]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		rec := &model.RosterRecord{
			RowID:              headerIdx + i + 2, // 1-indexed sheet row
			FullName:           cell(colFullName),
			FirstName:          cell(colFirstName),
			MiddleName:         cell(colMiddleName),
			LastName:           cell(colLastName),
			PositionID:         cell(colPositionID),
			CompanyCode:        cell(colCompanyCode),
			JobTitle:           cell(colJobTitle),
			Department:         cell(colDepartment),
			Location:           cell(colLocation),
			PositionStatus:     cell(colPositionStatus),
			HireDate:           parseDate(cell(colHireDate)),
			RehireDate:         parseDate(cell(colRehireDate)),
			ReportsTo:          cell(colReportsTo),
			DirectReportsCount: parseCount(cell(colDirectReports)),
		}
		if rec.Name() == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func mapHeader(row []string) map[column]int {
	cols := make(map[column]int)
	for i, h := range row {
		c, ok := headerAliases[headerKey(h)]
		if !ok {
			continue
		}
		if _, dup := cols[c]; !dup {
			cols[c] = i
		}
	}
	return cols
}

func hasNameColumn(cols map[column]int) bool {
	for _, c := range []column{colFullName, colFirstName, colLastName} {
		if _, ok := cols[c]; ok {
			return true
		}
	}
	return false
}

func headerKey(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parseDate(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	// Unformatted spreadsheet cells carry the Excel serial number
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// parseCount keeps 0 as a real value and returns nil for blank or garbage
func parseCount(v string) *int {
	if v == "" {
		return nil
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return &n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f == float64(int(f)) {
		n := int(f)
		return &n
	}
	return nil
}
