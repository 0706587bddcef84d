package schema

import (
	"fmt"
	"strings"
)

// Type is the value type stored in a column.
type Type uint8

// Column types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeInt
	TypeInt64
	TypeFloat
	TypeString
	TypeBytes
	TypeTime
	TypeUUID
	TypeJSON
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeBool:    "bool",
	TypeInt:     "int",
	TypeInt64:   "int64",
	TypeFloat:   "float",
	TypeString:  "string",
	TypeBytes:   "bytes",
	TypeTime:    "time",
	TypeUUID:    "uuid",
	TypeJSON:    "json",
}

// String returns the type name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Integer reports if the type is an integer type.
func (t Type) Integer() bool { return t == TypeInt || t == TypeInt64 }

// ParseType parses a type name as used in schema files. Common SQL
// spellings are accepted as aliases.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bool", "boolean":
		return TypeBool, nil
	case "int", "integer", "int32", "serial":
		return TypeInt, nil
	case "int64", "bigint", "bigserial":
		return TypeInt64, nil
	case "float", "float64", "double", "real":
		return TypeFloat, nil
	case "string", "text", "varchar":
		return TypeString, nil
	case "bytes", "blob", "bytea":
		return TypeBytes, nil
	case "time", "timestamp", "timestamptz", "datetime":
		return TypeTime, nil
	case "uuid":
		return TypeUUID, nil
	case "json", "jsonb":
		return TypeJSON, nil
	}
	return TypeInvalid, fmt.Errorf("schema: unknown column type %q", s)
}

// Role is the part a column plays in its table.
type Role uint8

// Column roles, in canonical column order.
const (
	RolePrimaryKey Role = iota + 1
	RoleForeignKey
	RoleData
	RoleTimestamp
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RolePrimaryKey:
		return "primary key"
	case RoleForeignKey:
		return "foreign key"
	case RoleData:
		return "data"
	case RoleTimestamp:
		return "timestamp"
	}
	return fmt.Sprintf("Role(%d)", r)
}

// TimestampKind tells what a timestamp column records.
type TimestampKind uint8

// Timestamp kinds.
const (
	NoTimestamp TimestampKind = iota
	Created
	Updated
	Deleted
)

// String returns the timestamp kind name.
func (k TimestampKind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	}
	return "none"
}
