package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSON 通用 JSON 文档类型
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := normalizeJSONBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// ContentBundle 促销码内容映射（内容项ID → 发放数量）
type ContentBundle map[string]int64

// Value 实现 driver.Valuer 接口
func (b ContentBundle) Value() (driver.Value, error) {
	if b == nil {
		return nil, nil
	}
	return json.Marshal(b)
}

// Scan 实现 sql.Scanner 接口
func (b *ContentBundle) Scan(value interface{}) error {
	if value == nil {
		*b = make(ContentBundle)
		return nil
	}
	bytes, ok := normalizeJSONBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, b)
}

func normalizeJSONBytes(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
