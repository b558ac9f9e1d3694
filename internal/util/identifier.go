package util

import "strconv"

// ParseIdentifier 区分主键ID和人类可读的用户名/slug。
// 纯数字串按ID处理，其余的留给调用方做用户名或slug的回退查询
func ParseIdentifier(identifier string) (int, bool) {
	id, err := strconv.Atoi(identifier)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
