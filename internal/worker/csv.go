package worker

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"go-warehouse/internal/apperror"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	stockHeader   = "ID,编号,名称,分类,单位,单价,库存数量,预警阈值"
	recordsHeader = "ID,货品ID,类型(1入0出),数量,时间,备注"

	recordTimeLayout = "2006-01-02 15:04:05"

	// export progress fires every exportProgressStep rows, import progress
	// every importProgressStep inserted products
	exportProgressStep = 10
	importProgressStep = 50
)

// csvFile writes UTF-8 CSV with a leading byte order mark. Rows are a plain
// comma join; only fields holding a comma, quote or line break are quoted.
type csvFile struct {
	path string
	file *os.File
	bom  io.WriteCloser
	w    *bufio.Writer
}

func createCSV(path string) (*csvFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, &apperror.FileIOError{Op: "create", Path: path, Err: err}
	}
	bom := transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	return &csvFile{path: path, file: f, bom: bom, w: bufio.NewWriter(bom)}, nil
}

func (c *csvFile) writeHeader(header string) error {
	return c.write(strings.Split(header, ","))
}

func (c *csvFile) write(record []string) error {
	for i, field := range record {
		if i > 0 {
			c.w.WriteByte(',')
		}
		c.w.WriteString(quoteField(field))
	}
	if err := c.w.WriteByte('\n'); err != nil {
		return &apperror.FileIOError{Op: "write", Path: c.path, Err: err}
	}
	return nil
}

func quoteField(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Close flushes everything and reports the first error seen.
func (c *csvFile) Close() error {
	err := c.w.Flush()
	if cerr := c.bom.Close(); err == nil {
		err = cerr
	}
	if cerr := c.file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &apperror.FileIOError{Op: "write", Path: c.path, Err: err}
	}
	return nil
}

// maxLineSize caps one physical line of an import file.
const maxLineSize = 1 << 20

// lineReader yields an import file one physical line at a time, so a stray
// quote never reaches past its own line.
type lineReader struct {
	path string
	sc   *bufio.Scanner
	line int
}

// openCSV reads UTF-8 CSV, dropping a leading byte order mark when present.
// Invalid UTF-8 is replaced rather than rejected.
func openCSV(path string) (*lineReader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &apperror.FileIOError{Op: "open", Path: path, Err: err}
	}
	sc := bufio.NewScanner(transform.NewReader(f, unicode.UTF8BOM.NewDecoder()))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineReader{path: path, sc: sc}, f, nil
}

// Next returns the fields of the next line and its 1-based line number, or
// io.EOF at the end of the file.
func (r *lineReader) Next() ([]string, int, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return nil, r.line, &apperror.FileIOError{Op: "read", Path: r.path, Err: err}
		}
		return nil, r.line, io.EOF
	}
	r.line++
	return splitLine(strings.TrimSuffix(r.sc.Text(), "\r")), r.line, nil
}

// splitLine honours well-formed quoting and falls back to a plain comma
// split when the line's quotes do not parse.
func splitLine(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	fields, err := cr.Read()
	if err != nil {
		return strings.Split(line, ",")
	}
	return fields
}

// parseInt is lenient: anything unparseable counts as 0.
func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// parseDecimal is lenient: anything unparseable counts as 0.
func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func itoa[T ~int | ~uint | ~int64](v T) string {
	return strconv.FormatInt(int64(v), 10)
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
