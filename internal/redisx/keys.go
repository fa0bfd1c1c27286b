package redisx

import (
	"fmt"
	"time"
)

const (
	// Session entry: portal:session:{client}:{key} -> value
	KeySession = "portal:session:%s"
)

var TTLSession = 24 * time.Hour

func SessionKey(key string) string {
	return fmt.Sprintf(KeySession, key)
}
