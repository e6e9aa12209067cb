// File: internal/model/id.go
package model

import (
	"math"
	"strconv"
)

// MaxID 資料表 id 為 SERIAL (int4)
const MaxID = math.MaxInt32

// ParseID 解析路徑上的 id；超出 int4 範圍視為無效
func ParseID(s string) (int, error) {
	id, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int(id), nil
}
