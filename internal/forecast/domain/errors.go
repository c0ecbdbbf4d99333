package domain

import (
	"errors"
	"fmt"

	"github.com/wyfcoding/pkg/xerrors"
)

// 管线错误码。4xxxxx 为输入侧错误，5xxxxx 为内部错误。
// 四类错误全部致命：运行立即终止，不产出部分结果。
const (
	CodeSchema            = 400101
	CodeInsufficientData  = 400102
	CodeEmptyResult       = 400103
	CodeProbabilityDomain = 500101
)

// NewSchemaError 历史数据不符合固定列模式（列缺失、类型不合法、日期乱序或重复）。
// 每次调用返回新实例，便于携带各自的现场上下文。
func NewSchemaError(detail string, cause error) *xerrors.Error {
	return xerrors.New(xerrors.ErrInvalidArg, CodeSchema, "schema error", detail, cause)
}

// NewInsufficientDataError 有效观测不足，方差无定义。
func NewInsufficientDataError(observations int) *xerrors.Error {
	e := xerrors.New(xerrors.ErrInvalidArg, CodeInsufficientData, "insufficient data",
		"at least 2 non-missing log returns are required to estimate variance", nil)
	return e.WithContext("observations", observations)
}

// NewEmptyResultError 模拟规模为零（horizon 或 iterations 不为正），运行前即拒绝。
func NewEmptyResultError(horizon, iterations int) *xerrors.Error {
	e := xerrors.New(xerrors.ErrInvalidArg, CodeEmptyResult, "empty simulation request",
		fmt.Sprintf("horizon and iterations must be positive, got horizon=%d iterations=%d", horizon, iterations), nil)
	return e.WithContext("horizon", horizon).WithContext("iterations", iterations)
}

// NewProbabilityDomainError 逆 CDF 收到开区间 (0,1) 之外的概率。
// 均匀抽样已排除 0 和 1，出现该错误说明生成器有缺陷，属内部错误。
func NewProbabilityDomainError(p float64) *xerrors.Error {
	e := xerrors.New(xerrors.ErrInternal, CodeProbabilityDomain, "probability out of domain",
		fmt.Sprintf("inverse CDF requires p in the open interval (0,1), got %g", p), nil)
	return e.WithContext("p", p)
}

// IsSchemaError 判断错误链中是否为数据模式错误。
func IsSchemaError(err error) bool { return hasCode(err, CodeSchema) }

// IsInsufficientDataError 判断错误链中是否为观测不足错误。
func IsInsufficientDataError(err error) bool { return hasCode(err, CodeInsufficientData) }

// IsEmptyResultError 判断错误链中是否为零规模请求错误。
func IsEmptyResultError(err error) bool { return hasCode(err, CodeEmptyResult) }

// IsProbabilityDomainError 判断错误链中是否为概率域错误。
func IsProbabilityDomainError(err error) bool { return hasCode(err, CodeProbabilityDomain) }

func hasCode(err error, code int) bool {
	var e *xerrors.Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}
