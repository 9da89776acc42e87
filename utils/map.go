package utils

import (
	"fmt"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// OrderedMapToString formats an ordered map as "[k1=v1 k2=v2]", keeping insertion order.
func OrderedMapToString[K comparable, V any](data *orderedmap.OrderedMap[K, V]) string {
	if data == nil {
		return "[]"
	}

	var sb strings.Builder
	sb.WriteByte('[')
	for el := data.Front(); el != nil; el = el.Next() {
		if el != data.Front() {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%v=%v", el.Key, el.Value)
	}
	sb.WriteByte(']')
	return sb.String()
}
