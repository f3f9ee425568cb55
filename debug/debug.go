package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Emitter bool
	Refs    bool
	Lookup  bool
}

var d *debug

func init() {
	d = &debug{}
	d.Emitter = boolEnv("XSTREAM_DEBUG_EMITTER")
	d.Refs = boolEnv("XSTREAM_DEBUG_REFS")
	d.Lookup = boolEnv("XSTREAM_DEBUG_LOOKUP")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Emitter() bool {
	return d.Emitter
}
func Refs() bool {
	return d.Refs
}
func Lookup() bool {
	return d.Lookup
}

func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
}
