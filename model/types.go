package model

// StockRecord is one row of a KOSPI/KOSDAQ master file.
type StockRecord struct {
	Code         string `col:"code"         db:"code"         parquet:"code"`
	StandardCode string `col:"standardCode" db:"standardCode" parquet:"standard_code"`
	Name         string `col:"name"         db:"name"         parquet:"name"`
}

// FeedEntry is one normalized item of a syndication feed. Published keeps
// the source format untouched.
type FeedEntry struct {
	Title     string `col:"title"     db:"title"`
	Link      string `col:"link"      db:"link"`
	Published string `col:"published" db:"published"`
}

type DBType string

const (
	DBTypeDuckDB DBType = "duckdb"
)

type DBConfig struct {
	Type DBType
	DSN  string
}
