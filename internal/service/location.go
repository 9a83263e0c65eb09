package service

import (
	"strings"

	"github.com/user/movielog/internal/model"
)

// LocationClassifier 由地点文本推导观影方式
type LocationClassifier interface {
	Classify(location string) model.LocationCategory
}

// KeywordClassifier 关键字子串匹配（忽略大小写），影院优先于流媒体
type KeywordClassifier struct {
	Theater   []string
	Streaming []string
}

// DefaultClassifier 韩国院线与常见流媒体的中英韩关键字
func DefaultClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		Theater: []string{
			"cgv", "megabox", "lotte cinema", "lottecinema", "imax", "4dx", "screenx", "theater", "theatre", "cinema",
			"메가박스", "롯데시네마", "극장", "영화관", "시네마",
		},
		Streaming: []string{
			"netflix", "disney", "watcha", "wavve", "tving", "coupang", "apple tv", "prime video", "amazon", "youtube",
			"넷플릭스", "디즈니", "왓챠", "웨이브", "티빙", "쿠팡", "애플tv", "유튜브",
		},
	}
}

// Classify 空文本归为 other
func (k *KeywordClassifier) Classify(location string) model.LocationCategory {
	text := strings.ToLower(strings.TrimSpace(location))
	if text == "" {
		return model.LocationOther
	}
	if containsAny(text, k.Theater) {
		return model.LocationTheater
	}
	if containsAny(text, k.Streaming) {
		return model.LocationStreaming
	}
	return model.LocationOther
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
