package utility

import (
	"time"
)

var cstZone = time.FixedZone("CST", 8*3600)

func GetTime() time.Time {
	return time.Now().In(cstZone)
}

func FormatTime(t time.Time) time.Time {
	return t.In(cstZone)
}
