package model

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Column 表中的一列. 所有列都按文本存储, 与 CSV 保持一致
type Column struct {
	Name string
}

type TableMeta struct {
	TableName string
	Columns   []Column
}

var (
	tableRegistry   []*TableMeta
	tableRegistryMu sync.Mutex
)

func registerTable(t *TableMeta) {
	tableRegistryMu.Lock()
	defer tableRegistryMu.Unlock()
	tableRegistry = append(tableRegistry, t)
}

// AllTables 返回当前所有已注册的表结构
func AllTables() []*TableMeta {
	tableRegistryMu.Lock()
	defer tableRegistryMu.Unlock()

	result := make([]*TableMeta, len(tableRegistry))
	copy(result, tableRegistry)
	return result
}

// ColumnNames 按声明顺序返回列名
func (m *TableMeta) ColumnNames() []string {
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.Name
	}
	return names
}

// SchemaFromStruct 通过反射生成 TableMeta 并自动注册, 只接受 string 字段
func SchemaFromStruct(tableName string, model interface{}) *TableMeta {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var cols []Column

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Type.Kind() != reflect.String {
			panic(fmt.Sprintf("table %s: field %s is %s, only string columns are supported", tableName, field.Name, field.Type))
		}

		colName := field.Tag.Get("col")
		if colName == "" {
			colName = strings.ToLower(field.Name)
		}
		cols = append(cols, Column{Name: colName})
	}

	meta := &TableMeta{
		TableName: tableName,
		Columns:   cols,
	}

	registerTable(meta)

	return meta
}

var TableKrStocks = SchemaFromStruct("kr_stocks", StockRecord{})

var TableNews = SchemaFromStruct("ai_news", FeedEntry{})
