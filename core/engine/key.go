package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// keySeparator joins key tokens. Tokens are quoted or numeric, so the
// separator byte cannot appear unescaped inside one.
const keySeparator = "\x1f"

// compositeKey builds the matching key for a record from the ordered key
// field names. Two records match iff their composite keys are equal.
//
// Each value is encoded as a type-tagged token, so distinct value
// combinations cannot stringify identically: the number 1, the string "1"
// and a nil value all produce different tokens, and string values are quoted
// so the separator cannot collide either.
func compositeKey(row Record, keyFields []string) string {
	var b strings.Builder
	for i, field := range keyFields {
		if i > 0 {
			b.WriteString(keySeparator)
		}
		b.WriteString(keyToken(row[field]))
	}
	return b.String()
}

// keyToken encodes one key field value in canonical form.
func keyToken(value any) string {
	switch v := value.(type) {
	case nil:
		return "~"
	case string:
		return "s:" + strconv.Quote(v)
	case bool:
		if v {
			return "b:1"
		}
		return "b:0"
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("i:%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("i:%d", v)
	case float32:
		return floatToken(float64(v))
	case float64:
		return floatToken(v)
	case time.Time:
		return "t:" + v.UTC().Format(time.RFC3339Nano)
	default:
		return "v:" + strconv.Quote(fmt.Sprintf("%v", v))
	}
}

// floatToken folds integral floats onto the integer token, so a source that
// decodes JSON numbers as float64 still matches a destination that loads the
// same values as int.
func floatToken(f float64) string {
	if f == float64(int64(f)) {
		return "i:" + strconv.FormatInt(int64(f), 10)
	}
	return "f:" + strconv.FormatFloat(f, 'g', -1, 64)
}
