package model

import (
	"strconv"
	"strings"
)

// UnknownGenre 未收录的 TMDB 类型 ID
const UnknownGenre = "Unknown"

// genreNames TMDB 电影类型 ID → 名称
var genreNames = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// GenreName 类型名称
func GenreName(id int) string {
	if name, ok := genreNames[id]; ok {
		return name
	}
	return UnknownGenre
}

// GenreNames 批量转换
func GenreNames(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, GenreName(id))
	}
	return names
}

// JoinGenreIDs 转为逗号分隔存储格式，如 "28,12"
func JoinGenreIDs(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}

// SplitGenreIDs 解析逗号分隔的类型 ID，忽略非数字片段
func SplitGenreIDs(s string) []int {
	if s == "" {
		return nil
	}
	res := []int{}
	for _, p := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		res = append(res, id)
	}
	return res
}
