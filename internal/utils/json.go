package utils

import (
	"encoding/json"
	"fmt"

	"k8s.io/klog/v2"
)

// ExtractJSON 从模型输出中截取第一个完整的 JSON 对象
// 忽略字符串内的括号，兼容 ```json 代码块和前后说明文字
func ExtractJSON(content string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, ch := range content {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start != -1 {
				return content[start : i+1]
			}
		}
	}

	return content
}

// DecodeJSON 截取并解析模型输出中的 JSON
func DecodeJSON[T any](content string) (T, error) {
	var v T
	raw := ExtractJSON(content)
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		klog.V(6).Infof("[DecodeJSON] 解析失败: 长度=%d, err=%v", len(raw), err)
		return v, fmt.Errorf("decode model json: %w", err)
	}
	return v, nil
}

func ToJSON(v any) string {
	jsonData, err := json.Marshal(v)
	if err != nil {
		klog.Errorf("JSON序列化失败: %v", err)
		return ""
	}
	return string(jsonData)
}
