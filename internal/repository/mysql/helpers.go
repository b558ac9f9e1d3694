package mysql

import (
	"encoding/json"
	"strings"
)

// marshalJSON 把集合字段编码为JSON列的值，nil 编码为 SQL NULL
func marshalJSON(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// unmarshalJSON 解码JSON列，NULL 保持目标为零值
func unmarshalJSON(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// placeholders 生成 n 个逗号分隔的占位符
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// intArgs 把整数切片转为查询参数切片
func intArgs(ids []int) []interface{} {
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
