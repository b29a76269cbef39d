package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMaterialType 资料类型不在封闭枚举内
var ErrUnknownMaterialType = errors.New("unknown material type")

// MaterialType 资料类型（客户端词汇）
// 入库时转换为存储词汇，读取时再转换回来
type MaterialType string

const (
	MaterialTypeSummary     MaterialType = "summary"
	MaterialTypeApplication MaterialType = "application"
)

// 存储词汇
const (
	StorageLabelSummary     = "요약"
	StorageLabelApplication = "적용"
)

// typeMapping 双向映射表，两种词汇互为键值
var typeMapping = map[string]string{
	StorageLabelSummary:             string(MaterialTypeSummary),
	StorageLabelApplication:         string(MaterialTypeApplication),
	string(MaterialTypeSummary):     StorageLabelSummary,
	string(MaterialTypeApplication): StorageLabelApplication,
}

// ParseMaterialType 接受任一词汇，未识别的值直接报错
func ParseMaterialType(s string) (MaterialType, error) {
	switch strings.TrimSpace(s) {
	case string(MaterialTypeSummary), StorageLabelSummary:
		return MaterialTypeSummary, nil
	case string(MaterialTypeApplication), StorageLabelApplication:
		return MaterialTypeApplication, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMaterialType, s)
}

// MaterialTypeFromStorage 存储词汇 -> 客户端词汇
func MaterialTypeFromStorage(label string) (MaterialType, error) {
	switch label {
	case StorageLabelSummary:
		return MaterialTypeSummary, nil
	case StorageLabelApplication:
		return MaterialTypeApplication, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMaterialType, label)
}

func (t MaterialType) Valid() bool {
	return t == MaterialTypeSummary || t == MaterialTypeApplication
}

// StorageLabel 客户端词汇 -> 存储词汇
func (t MaterialType) StorageLabel() (string, error) {
	switch t {
	case MaterialTypeSummary:
		return StorageLabelSummary, nil
	case MaterialTypeApplication:
		return StorageLabelApplication, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMaterialType, string(t))
}

// Label 用于提示词和语音的韩文名称
func (t MaterialType) Label() string {
	if label, err := t.StorageLabel(); err == nil {
		return label
	}
	return string(t)
}

// Value 写库时转换为存储词汇
func (t MaterialType) Value() (driver.Value, error) {
	label, err := t.StorageLabel()
	if err != nil {
		return nil, err
	}
	return label, nil
}

// Scan 读库时转换回客户端词汇，未识别的标签原样保留
func (t *MaterialType) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = ""
	case string:
		*t = MaterialType(FromStorage(v))
	case []byte:
		*t = MaterialType(FromStorage(string(v)))
	default:
		return fmt.Errorf("unsupported material type column value: %T", value)
	}
	return nil
}

func (MaterialType) GormDataType() string {
	return "string"
}

// ToStorage 宽松转换：识别的值翻译为存储词汇，其余原样返回
func ToStorage(s string) string {
	if _, err := MaterialTypeFromStorage(s); err == nil {
		return s
	}
	if mapped, ok := typeMapping[s]; ok {
		return mapped
	}
	return s
}

// FromStorage 宽松转换：识别的值翻译为客户端词汇，其余原样返回
func FromStorage(s string) string {
	if MaterialType(s).Valid() {
		return s
	}
	if mapped, ok := typeMapping[s]; ok {
		return mapped
	}
	return s
}
