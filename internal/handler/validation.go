package handler

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/readingroom/backend/internal/model"
	"github.com/readingroom/backend/internal/service"
	"k8s.io/klog/v2"
)

var registerOnce sync.Once

// RegisterValidators 在 gin 的校验引擎上注册 material_type 标签
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			klog.Warningf("gin 校验引擎不是 validator/v10，跳过自定义标签注册")
			return
		}
		if err := v.RegisterValidation("material_type", validateMaterialType); err != nil {
			klog.Errorf("注册 material_type 校验失败: %v", err)
		}
	})
}

func validateMaterialType(fl validator.FieldLevel) bool {
	_, err := model.ParseMaterialType(fl.Field().String())
	return err == nil
}

// bindingMessage 把查询参数校验错误翻译为提示信息
func bindingMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return msgBadRequest
	}
	switch errs[0].Field() {
	case "BookTitle":
		return service.MsgMissingBookTitle
	case "Type":
		return service.MsgUnknownType
	}
	return msgBadRequest
}
