package utils

import (
	"strconv"

	"VidTube.com/config"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
)

// ValidateIDs 任意一个 id 不是 24 位十六进制时返回 InvalidReferenceErr
func ValidateIDs(ids ...string) error {
	for _, id := range ids {
		if !docstore.IsValidID(id) {
			return errno.InvalidReferenceErr.WithMessage("invalid id: " + strconv.Quote(id))
		}
	}
	return nil
}

// NormalizePage page 从 1 开始；limit 非正取默认值，超过上限截断
func NormalizePage(page, limit int64) (int64, int64) {
	def, max := int64(config.ConfigInfo.Pagination.DefaultLimit), int64(config.ConfigInfo.Pagination.MaxLimit)
	if def <= 0 {
		def = constants.DefaultLimit
	}
	if max <= 0 {
		max = constants.MaxLimit
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, limit
}

// Transfer 把查询参数解析为 int64，解析失败返回 def
func Transfer(value string, def int64) int64 {
	if value == "" {
		return def
	}
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return v
}
