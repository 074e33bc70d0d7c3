package model

import (
	"strconv"
	"time"
)

// LocalTime 按 "YYYY-MM-DD HH:MM:SS" 输出，用于检索结果这类直接展示给用户的时间。
type LocalTime time.Time

const localTimeLayout = "2006-01-02 15:04:05"

func (t LocalTime) String() string {
	return time.Time(t).Format(localTimeLayout)
}

// MarshalJSON 实现 json.Marshaler 接口。
func (t LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}
