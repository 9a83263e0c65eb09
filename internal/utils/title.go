package utils

import (
	"regexp"
	"strings"
)

var (
	// 方括号与圆括号中的备注（재개봉、영문명、상영 포맷等）
	reTitleBrackets = regexp.MustCompile(`[\[【<〈].*?[\]】>〉]|\(.*?\)`)
	// 重映、版本与放映格式标记
	reTitleEdition = regexp.MustCompile(`(?i)(재개봉|리마스터링?|확장판|감독판|무삭제판|디렉터스\s*컷|director'?s\s*cut|extended|remastered|imax|4dx|screenx)`)
)

// CleanMovieTitle 清理票房榜标题中的版本与备注信息，便于匹配 TMDB
//
// 清理后为空时返回去掉首尾空格的原标题。
func CleanMovieTitle(title string) string {
	raw := strings.TrimSpace(title)
	if raw == "" {
		return ""
	}

	cleaned := reTitleBrackets.ReplaceAllString(raw, " ")
	cleaned = reTitleEdition.ReplaceAllString(cleaned, " ")
	cleaned = strings.Trim(strings.Join(strings.Fields(cleaned), " "), " :-")
	if cleaned == "" {
		return raw
	}
	return cleaned
}
