package domain

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wyfcoding/pkg/xerrors"
)

// 可选的分布名称。
const (
	DistributionNormal   = "normal"
	DistributionStudentT = "student-t"

	// DefaultStudentTDoF Student-t 分布的默认自由度。
	DefaultStudentTDoF = 5.0
)

// Distribution 连续概率分布的能力接口，管线只要求逆累积分布函数这一个操作。
// 任何满足该能力的分布都可插入因子生成器。
type Distribution interface {
	// InverseCDF 把开区间 (0,1) 内的概率映射为分布的分位数。
	// p<=0 或 p>=1 对应 ±无穷，属非法输入，直接拒绝，不做钳制。
	InverseCDF(p float64) (float64, error)
}

// NormalDistribution 标准正态分布，管线的默认分布。
type NormalDistribution struct {
	dist distuv.Normal
}

// NewNormalDistribution 创建标准正态分布。
func NewNormalDistribution() *NormalDistribution {
	return &NormalDistribution{dist: distuv.Normal{Mu: 0, Sigma: 1}}
}

func (d *NormalDistribution) InverseCDF(p float64) (float64, error) {
	if p <= 0 || p >= 1 {
		return 0, NewProbabilityDomainError(p)
	}
	return d.dist.Quantile(p), nil
}

// StudentTDistribution 标准化 Student-t 分布，尾部比正态更厚，
// 用于对极端行情更敏感的情景。
type StudentTDistribution struct {
	dist distuv.StudentsT
}

// NewStudentTDistribution 创建自由度为 nu 的 Student-t 分布，nu 必须为正。
func NewStudentTDistribution(nu float64) (*StudentTDistribution, error) {
	if nu <= 0 {
		return nil, xerrors.InvalidArg("degrees of freedom must be positive").
			WithContext("nu", nu)
	}
	return &StudentTDistribution{dist: distuv.StudentsT{Mu: 0, Sigma: 1, Nu: nu}}, nil
}

func (d *StudentTDistribution) InverseCDF(p float64) (float64, error) {
	if p <= 0 || p >= 1 {
		return 0, NewProbabilityDomainError(p)
	}
	return d.dist.Quantile(p), nil
}

// ParseDistribution 按名称构造分布。空名称取标准正态；
// student-t 的自由度为 0 时取默认值。
func ParseDistribution(name string, nu float64) (Distribution, error) {
	switch name {
	case "", DistributionNormal:
		return NewNormalDistribution(), nil
	case DistributionStudentT:
		if nu == 0 {
			nu = DefaultStudentTDoF
		}
		return NewStudentTDistribution(nu)
	default:
		return nil, xerrors.InvalidArg("unsupported distribution").
			WithContext("distribution", name)
	}
}
