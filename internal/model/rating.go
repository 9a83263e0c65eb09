package model

import (
	"fmt"
	"math"
)

// RatingScale 评分刻度 (min, max, step)
//
// 三个历史版本分别使用过 1–5 整数、1–5 半星、0–10 半星，
// 统一为可配置的刻度，校验时只看这三个参数。
type RatingScale struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

var (
	ScaleFiveInteger = RatingScale{Min: 1, Max: 5, Step: 1}
	ScaleFiveHalf    = RatingScale{Min: 1, Max: 5, Step: 0.5}
	ScaleTenHalf     = RatingScale{Min: 0, Max: 10, Step: 0.5}
)

// DefaultRatingScale 默认使用 1–5 半星
func DefaultRatingScale() RatingScale {
	return ScaleFiveHalf
}

const stepEpsilon = 1e-9

// Check 校验刻度自身是否合法
func (s RatingScale) Check() error {
	if s.Step <= 0 {
		return fmt.Errorf("rating step must be positive, got %v", s.Step)
	}
	if s.Min >= s.Max {
		return fmt.Errorf("rating min %v must be below max %v", s.Min, s.Max)
	}
	if !onStep((s.Max-s.Min)/s.Step) {
		return fmt.Errorf("rating range %v..%v is not a multiple of step %v", s.Min, s.Max, s.Step)
	}
	return nil
}

// Contains 评分是否落在刻度上
func (s RatingScale) Contains(r float64) bool {
	if math.IsNaN(r) || r < s.Min-stepEpsilon || r > s.Max+stepEpsilon {
		return false
	}
	return onStep((r - s.Min) / s.Step)
}

// Validate 同 Contains，返回可读错误
func (s RatingScale) Validate(r float64) error {
	if !s.Contains(r) {
		return fmt.Errorf("rating %v is outside %v..%v (step %v)", r, s.Min, s.Max, s.Step)
	}
	return nil
}

// LikedThreshold 默认“喜欢”阈值：刻度 75% 处，1–5 刻度即 4 分
func (s RatingScale) LikedThreshold() float64 {
	return s.Min + 0.75*(s.Max-s.Min)
}

func onStep(steps float64) bool {
	return math.Abs(steps-math.Round(steps)) < 1e-6
}
