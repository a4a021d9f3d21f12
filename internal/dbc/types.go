package dbc

import (
	"fmt"
	"strconv"
	"strings"
)

const defaultScale = 2

// defaultLength is used for attributes that declare no length.
var defaultLength = map[string]int{
	"ALN":      30,
	"UPPER":    30,
	"LOWER":    30,
	"INTEGER":  12,
	"SMALLINT": 4,
	"BIGINT":   19,
	"DECIMAL":  10,
	"AMOUNT":   10,
	"FLOAT":    8,
	"DATE":     10,
	"DATETIME": 10,
	"TIME":     10,
	"YORN":     1,
	"CLOB":     32000,
}

func hasScale(maxType string) bool {
	return maxType == "DECIMAL" || maxType == "AMOUNT"
}

func numeric(maxType string) bool {
	switch maxType {
	case "INTEGER", "SMALLINT", "BIGINT", "DECIMAL", "AMOUNT", "FLOAT", "YORN":
		return true
	}
	return false
}

// ColumnType maps an attribute's storage tag to a column type.
func ColumnType(a Attribute) string {
	switch a.MaxType {
	case "ALN", "UPPER", "LOWER":
		return fmt.Sprintf("VARCHAR2(%d)", a.Length)
	case "INTEGER":
		return "NUMBER(10)"
	case "SMALLINT":
		return "NUMBER(5)"
	case "BIGINT":
		return "NUMBER(19)"
	case "DECIMAL", "AMOUNT":
		return fmt.Sprintf("NUMBER(%d,%d)", a.Length, a.Scale)
	case "FLOAT":
		return "FLOAT"
	case "DATE":
		return "DATE"
	case "DATETIME", "TIME":
		return "TIMESTAMP"
	case "YORN":
		return "NUMBER(1)"
	case "CLOB":
		return "CLOB"
	default:
		length := a.Length
		if length <= 0 {
			length = defaultLength["ALN"]
		}
		return fmt.Sprintf("VARCHAR2(%d)", length)
	}
}

// literal renders a default value for a column of the given type. Numeric
// defaults that do not parse fall back to zero.
func literal(maxType, value string) string {
	if numeric(maxType) {
		if maxType == "YORN" {
			switch strings.ToLower(value) {
			case "1", "y", "yes", "true":
				return "1"
			}
			return "0"
		}
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return "0"
		}
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
