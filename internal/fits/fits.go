// Package fits reads columns from FITS binary-table extensions, the storage
// format used by HEALPix sky maps. It implements just enough of the FITS
// standard for that: 2880-byte header/data units, keyword cards, and
// big-endian BINTABLE column decoding.
package fits

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	blockSize = 2880
	cardSize  = 80
)

// column describes one field of a binary table row.
type column struct {
	repeat    int
	typ       byte // TFORM type letter
	byteWidth int  // per element
	offset    int  // byte offset within a row
}

// Table is one BINTABLE extension loaded into memory.
type Table struct {
	NRows    int
	rowBytes int
	cols     []column
	data     []byte
	keywords map[string]string
}

// OpenTable opens path and loads its first binary-table extension.
func OpenTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FITS file: %w", err)
	}
	defer f.Close()

	t, err := readFirstBinTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// NumFields returns the number of columns in the table.
func (t *Table) NumFields() int { return len(t.cols) }

// Keyword returns the string value of a header keyword from the table HDU.
func (t *Table) Keyword(name string) (string, bool) {
	v, ok := t.keywords[name]
	return v, ok
}

// KeywordInt returns an integer-valued header keyword from the table HDU.
func (t *Table) KeywordInt(name string) (int, bool) {
	v, ok := t.keywords[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Column decodes field (0-based) as float64 values, flattened row-major over
// the repeat count. Integer column types are widened; L (logical) columns
// decode to 0/1.
func (t *Table) Column(field int) ([]float64, error) {
	if field < 0 || field >= len(t.cols) {
		return nil, fmt.Errorf("field index %d out of range (table has %d fields)", field, len(t.cols))
	}
	c := t.cols[field]

	out := make([]float64, 0, t.NRows*c.repeat)
	for r := 0; r < t.NRows; r++ {
		base := r*t.rowBytes + c.offset
		for k := 0; k < c.repeat; k++ {
			b := t.data[base+k*c.byteWidth:]
			switch c.typ {
			case 'E':
				out = append(out, float64(math.Float32frombits(binary.BigEndian.Uint32(b))))
			case 'D':
				out = append(out, math.Float64frombits(binary.BigEndian.Uint64(b)))
			case 'B':
				out = append(out, float64(b[0]))
			case 'I':
				out = append(out, float64(int16(binary.BigEndian.Uint16(b))))
			case 'J':
				out = append(out, float64(int32(binary.BigEndian.Uint32(b))))
			case 'K':
				out = append(out, float64(int64(binary.BigEndian.Uint64(b))))
			case 'L':
				if b[0] == 'T' {
					out = append(out, 1)
				} else {
					out = append(out, 0)
				}
			default:
				return nil, fmt.Errorf("unsupported TFORM type %q in field %d", string(c.typ), field)
			}
		}
	}
	return out, nil
}

// readFirstBinTable walks the HDU sequence until it finds a BINTABLE
// extension, then loads its header keywords, column layout and data.
func readFirstBinTable(r io.Reader) (*Table, error) {
	// Primary HDU.
	hdr, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("primary header: %w", err)
	}
	if _, ok := hdr["SIMPLE"]; !ok {
		return nil, fmt.Errorf("not a FITS file (missing SIMPLE keyword)")
	}
	if err := skipData(r, hdr); err != nil {
		return nil, fmt.Errorf("primary data: %w", err)
	}

	for {
		hdr, err = readHeader(r)
		if err == io.EOF {
			return nil, fmt.Errorf("no BINTABLE extension found")
		}
		if err != nil {
			return nil, fmt.Errorf("extension header: %w", err)
		}
		if strings.TrimSpace(hdr["XTENSION"]) == "BINTABLE" {
			break
		}
		if err := skipData(r, hdr); err != nil {
			return nil, fmt.Errorf("extension data: %w", err)
		}
	}

	rowBytes, err := intKeyword(hdr, "NAXIS1")
	if err != nil {
		return nil, err
	}
	nrows, err := intKeyword(hdr, "NAXIS2")
	if err != nil {
		return nil, err
	}
	nfields, err := intKeyword(hdr, "TFIELDS")
	if err != nil {
		return nil, err
	}

	cols := make([]column, nfields)
	offset := 0
	for i := 0; i < nfields; i++ {
		tform, ok := hdr[fmt.Sprintf("TFORM%d", i+1)]
		if !ok {
			return nil, fmt.Errorf("missing TFORM%d", i+1)
		}
		c, err := parseTForm(tform)
		if err != nil {
			return nil, fmt.Errorf("TFORM%d: %w", i+1, err)
		}
		c.offset = offset
		offset += c.repeat * c.byteWidth
		cols[i] = c
	}
	if offset != rowBytes {
		return nil, fmt.Errorf("row layout is %d bytes but NAXIS1=%d", offset, rowBytes)
	}

	dataBytes := rowBytes * nrows
	data := make([]byte, dataBytes)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("table data (%d bytes): %w", dataBytes, err)
	}

	return &Table{
		NRows:    nrows,
		rowBytes: rowBytes,
		cols:     cols,
		data:     data,
		keywords: hdr,
	}, nil
}

// readHeader reads 2880-byte blocks of 80-char cards until the END card.
func readHeader(r io.Reader) (map[string]string, error) {
	hdr := make(map[string]string)
	block := make([]byte, blockSize)
	for {
		if _, err := io.ReadFull(r, block); err != nil {
			if err == io.ErrUnexpectedEOF {
				err = io.EOF
			}
			if err == io.EOF && len(hdr) == 0 {
				return nil, io.EOF
			}
			if err == io.EOF {
				return nil, fmt.Errorf("unexpected end of file inside header")
			}
			return nil, err
		}
		for i := 0; i < blockSize; i += cardSize {
			card := string(block[i : i+cardSize])
			key := strings.TrimSpace(card[:8])
			if key == "END" {
				return hdr, nil
			}
			if key == "" || key == "COMMENT" || key == "HISTORY" {
				continue
			}
			if len(card) < 10 || card[8] != '=' {
				continue
			}
			hdr[key] = parseCardValue(card[10:])
		}
	}
}

// parseCardValue extracts the value portion of a card, stripping an inline
// comment and quoting. Quoted values keep internal spaces but lose padding.
func parseCardValue(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "'") {
		// find closing quote; '' inside a string is an escaped quote
		var b strings.Builder
		for i := 1; i < len(s); i++ {
			if s[i] == '\'' {
				if i+1 < len(s) && s[i+1] == '\'' {
					b.WriteByte('\'')
					i++
					continue
				}
				return strings.TrimRight(b.String(), " ")
			}
			b.WriteByte(s[i])
		}
		return strings.TrimRight(b.String(), " ")
	}
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func intKeyword(hdr map[string]string, name string) (int, error) {
	v, ok := hdr[name]
	if !ok {
		return 0, fmt.Errorf("missing %s keyword", name)
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("bad %s value %q", name, v)
	}
	return n, nil
}

// parseTForm decodes a binary-table column format like "1024E" or "D".
func parseTForm(tform string) (column, error) {
	s := strings.TrimSpace(tform)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	repeat := 1
	if i > 0 {
		var err error
		repeat, err = strconv.Atoi(s[:i])
		if err != nil {
			return column{}, fmt.Errorf("bad repeat count in %q", tform)
		}
	}
	if i >= len(s) {
		return column{}, fmt.Errorf("missing type letter in %q", tform)
	}
	typ := s[i]
	width, ok := tformWidths[typ]
	if !ok {
		return column{}, fmt.Errorf("unsupported type letter %q", string(typ))
	}
	return column{repeat: repeat, typ: typ, byteWidth: width}, nil
}

var tformWidths = map[byte]int{
	'L': 1, 'B': 1, 'I': 2, 'J': 4, 'K': 8, 'E': 4, 'D': 8, 'A': 1,
}

// skipData advances past the data unit described by hdr, including padding
// to the next 2880-byte boundary.
func skipData(r io.Reader, hdr map[string]string) error {
	naxis, err := intKeyword(hdr, "NAXIS")
	if err != nil {
		return err
	}
	if naxis == 0 {
		return nil
	}
	bitpix, err := intKeyword(hdr, "BITPIX")
	if err != nil {
		return err
	}
	size := abs(bitpix) / 8
	for i := 1; i <= naxis; i++ {
		n, err := intKeyword(hdr, fmt.Sprintf("NAXIS%d", i))
		if err != nil {
			return err
		}
		size *= n
	}
	if pcount, ok := hdr["PCOUNT"]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(pcount)); err == nil {
			size += n
		}
	}
	padded := (size + blockSize - 1) / blockSize * blockSize
	_, err = io.CopyN(io.Discard, r, int64(padded))
	return err
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
