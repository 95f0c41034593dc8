package utils

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
)

type ParquetWriter[T any] struct {
	file   *os.File
	writer *parquet.GenericWriter[T]
}

// NewParquetWriter 创建 Snappy 压缩的 Parquet 文件, 调用方的选项追加在默认值之后
func NewParquetWriter[T any](filename string, options ...parquet.WriterOption) (*ParquetWriter[T], error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	// 股票列表很小, 4MB 足够
	opts := append([]parquet.WriterOption{
		parquet.Compression(&parquet.Snappy),
		parquet.WriteBufferSize(4 * 1024 * 1024),
	}, options...)

	return &ParquetWriter[T]{
		file:   f,
		writer: parquet.NewGenericWriter[T](f, opts...),
	}, nil
}

func (p *ParquetWriter[T]) Write(data []T) error {
	_, err := p.writer.Write(data)
	return err
}

// Close 先写 footer 再关文件
func (p *ParquetWriter[T]) Close() error {
	if err := p.writer.Close(); err != nil {
		p.file.Close()
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	if err := p.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// WriteParquet 一次写入全部行, 必要时创建父目录
func WriteParquet[T any](path string, rows []T) error {
	if err := EnsureParentDir(path); err != nil {
		return err
	}
	pw, err := NewParquetWriter[T](path)
	if err != nil {
		return err
	}
	if err := pw.Write(rows); err != nil {
		pw.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	return pw.Close()
}
