package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	hhmmPattern     = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	matricIDPattern = regexp.MustCompile(`^[ALS]\d{7}$`)
)

// Register 在 gin 默认绑定引擎上注册自定义校验规则
//   - hhmm:   "15:04" 格式的上课时间
//   - date:   "2006-01-02" 格式的日期
//   - matric: A/L/S + 7 位数字的学号
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin 绑定引擎不是 validator/v10")
	}
	return RegisterOn(v)
}

// RegisterOn 向指定 validator 注册规则（测试使用独立实例）
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("matric", func(fl validator.FieldLevel) bool {
		return matricIDPattern.MatchString(fl.Field().String())
	})
}

// Describe 将绑定错误转换为可读的提示信息
func Describe(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "请求参数格式错误"
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, describeField(fe))
	}
	return strings.Join(msgs, "; ")
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " 为必填项"
	case "min":
		return fmt.Sprintf("%s 不能小于 %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s 不能大于 %s", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " 不是合法邮箱"
	case "oneof":
		return fmt.Sprintf("%s 必须是 [%s] 之一", fe.Field(), fe.Param())
	case "hhmm":
		return fe.Field() + " 必须为 HH:MM 格式"
	case "date":
		return fe.Field() + " 必须为 YYYY-MM-DD 格式"
	case "matric":
		return fe.Field() + " 必须为 A/L/S 加 7 位数字"
	default:
		return fe.Field() + " 校验失败: " + fe.Tag()
	}
}
