package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"reflect"
)

// utf8BOM 让 Excel 按 UTF-8 打开
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter 通用 CSV 写入器
type CSVWriter[T any] struct {
	file          *os.File
	writer        *csv.Writer
	headerWritten bool
	columns       []columnInfo
}

type columnInfo struct {
	Index      int    // 字段索引
	HeaderName string // CSV 表头 (来自 col 标签)
}

type csvOptions struct {
	bom  bool
	crlf bool
}

type CSVOption func(*csvOptions)

// WithBOM 在文件开头写入 UTF-8 BOM
func WithBOM() CSVOption {
	return func(o *csvOptions) { o.bom = true }
}

// WithCRLF 每行以 \r\n 结尾
func WithCRLF() CSVOption {
	return func(o *csvOptions) { o.crlf = true }
}

// NewCSVWriter 创建 (或清空) filename, 表头取自 T 的 col 标签
func NewCSVWriter[T any](filename string, opts ...CSVOption) (*CSVWriter[T], error) {
	var o csvOptions
	for _, opt := range opts {
		opt(&o)
	}

	cols, err := analyzeStructTags[T]()
	if err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	if o.bom {
		if _, err := f.Write(utf8BOM); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	w := csv.NewWriter(f)
	w.UseCRLF = o.crlf

	return &CSVWriter[T]{
		file:    f,
		writer:  w,
		columns: cols,
	}, nil
}

// analyzeStructTags 解析 col 标签
func analyzeStructTags[T any]() ([]columnInfo, error) {
	var t T
	typ := reflect.TypeOf(t)
	if typ == nil {
		return nil, fmt.Errorf("generic type T must be a struct")
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("generic type T must be a struct")
	}

	var cols []columnInfo
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		colTag := field.Tag.Get("col")
		if colTag == "" {
			colTag = field.Name
		}

		cols = append(cols, columnInfo{Index: i, HeaderName: colTag})
	}
	return cols, nil
}

func (cw *CSVWriter[T]) writeHeader() error {
	if cw.headerWritten {
		return nil
	}
	headers := make([]string, len(cw.columns))
	for i, col := range cw.columns {
		headers[i] = col.HeaderName
	}
	if err := cw.writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	cw.headerWritten = true
	return nil
}

// Write 追加数据行, 第一次写入前先写表头
func (cw *CSVWriter[T]) Write(data []T) error {
	if err := cw.writeHeader(); err != nil {
		return err
	}

	record := make([]string, len(cw.columns))
	for _, item := range data {
		val := reflect.ValueOf(item)
		if val.Kind() == reflect.Ptr {
			val = val.Elem()
		}

		for i, col := range cw.columns {
			record[i] = fmt.Sprint(val.Field(col.Index).Interface())
		}

		if err := cw.writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	return nil
}

// Close 刷新缓冲并关闭文件, 没有数据行时也会写表头
func (cw *CSVWriter[T]) Close() error {
	if err := cw.writeHeader(); err != nil {
		cw.file.Close()
		return err
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		cw.file.Close()
		return fmt.Errorf("failed to flush: %w", err)
	}
	return cw.file.Close()
}

// WriteCSV 用表头加 rows 覆盖 path, 必要时创建父目录
func WriteCSV[T any](path string, rows []T, opts ...CSVOption) error {
	if err := EnsureParentDir(path); err != nil {
		return err
	}
	w, err := NewCSVWriter[T](path, opts...)
	if err != nil {
		return err
	}
	if err := w.Write(rows); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
