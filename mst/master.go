// Package mst reads the KOSPI/KOSDAQ stock master files published by the
// broker download server. Each line is a CP949 encoded fixed-width record.
package mst

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/stockdesk/krfeed/model"
	"golang.org/x/text/encoding/korean"
)

// Field layout of a master line, counted in decoded characters.
const (
	codeEnd         = 9
	standardCodeEnd = 21
	nameEnd         = 71
)

// Master describes one downloadable master file.
type Master struct {
	Market      string
	URL         string
	ArchiveName string
	FileName    string
}

const (
	KospiURL  = "https://new.real.download.dws.co.kr/common/master/kospi_code.mst.zip"
	KosdaqURL = "https://new.real.download.dws.co.kr/common/master/kosdaq_code.mst.zip"
)

// Masters lists the sources in output order: KOSPI first.
func Masters(kospiURL, kosdaqURL string) []Master {
	return []Master{
		{Market: "KOSPI", URL: kospiURL, ArchiveName: "kospi.zip", FileName: "kospi_code.mst"},
		{Market: "KOSDAQ", URL: kosdaqURL, ArchiveName: "kosdaq.zip", FileName: "kosdaq_code.mst"},
	}
}

// ParseLine slices a decoded line at [0,9) [9,21) [21,71) and trims each
// field. Short lines give truncated or empty fields.
func ParseLine(line string) model.StockRecord {
	runes := []rune(line)
	return model.StockRecord{
		Code:         slice(runes, 0, codeEnd),
		StandardCode: slice(runes, codeEnd, standardCodeEnd),
		Name:         slice(runes, standardCodeEnd, nameEnd),
	}
}

func slice(runes []rune, from, to int) string {
	if from >= len(runes) {
		return ""
	}
	if to > len(runes) {
		to = len(runes)
	}
	return strings.TrimSpace(string(runes[from:to]))
}

// ErrInvalidEncoding marks a line that is not valid CP949.
var ErrInvalidEncoding = errors.New("invalid CP949 byte sequence")

// DecodeLine converts one CP949 line to UTF-8. The x/text decoder
// substitutes U+FFFD for bad bytes; CP949 cannot encode U+FFFD, so any
// replacement in the output is reported as ErrInvalidEncoding.
func DecodeLine(raw []byte) (string, error) {
	out, err := korean.EUCKR.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", ErrInvalidEncoding
	}
	return string(out), nil
}

// ParseReader parses every line of r. Blank lines become empty records.
func ParseReader(r io.Reader) ([]model.StockRecord, error) {
	br := bufio.NewReader(r)
	var records []model.StockRecord
	for lineNo := 1; ; lineNo++ {
		raw, err := br.ReadBytes('\n')
		if len(raw) > 0 {
			raw = bytes.TrimRight(raw, "\r\n")
			line, derr := DecodeLine(raw)
			if derr != nil {
				return nil, fmt.Errorf("failed to decode line %d: %w", lineNo, derr)
			}
			records = append(records, ParseLine(line))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", lineNo, err)
		}
	}
	return records, nil
}

func ParseFile(path string) ([]model.StockRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open master file %s: %w", path, err)
	}
	defer f.Close()

	records, err := ParseReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}
