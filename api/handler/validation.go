package handler

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/fyerfyer/treaty-aligner/api/model"
)

var registerOnce sync.Once

// RegisterValidators 向gin的校验器注册自定义规则
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterStructValidation(alignTextStructLevel, model.AlignTextRequest{})
		}
	})
}

// alignTextStructLevel 段落模式下每个段落都不能为空白
// 按行输入时空行是段落分隔符，允许出现
func alignTextStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(model.AlignTextRequest)
	if req.Lines {
		return
	}
	for _, p := range req.Japanese {
		if strings.TrimSpace(p) == "" {
			sl.ReportError(req.Japanese, "Japanese", "ja", "nonblank", "")
			break
		}
	}
	for _, p := range req.English {
		if strings.TrimSpace(p) == "" {
			sl.ReportError(req.English, "English", "en", "nonblank", "")
			break
		}
	}
}
