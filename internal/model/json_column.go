package model

import (
	"database/sql/driver"
	"fmt"

	"github.com/bytedance/sonic"
)

// scanJSON decodes a MySQL JSON column into dst.  NULL leaves dst untouched.
func scanJSON(src any, dst any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return sonic.Unmarshal(raw, dst)
}

func valueJSON(v any) (driver.Value, error) {
	b, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
