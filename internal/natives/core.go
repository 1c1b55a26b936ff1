package natives

import (
	"time"

	"github.com/ochre-lang/ochre/internal/value"
)

// InstallCore registers the two native functions spec §6 names as the
// core's entire standard library.
func InstallCore(h Host) {
	h.Define("clock", func(args []value.Value) (value.Value, error) {
		if len(args) != 0 {
			return value.Nil, argError("clock", 0, len(args))
		}
		return value.Number(float64(time.Now().UnixNano()) / 1e9), nil
	})

	h.Define("tostring", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Nil, argError("tostring", 1, len(args))
		}
		return value.FromObj(h.Heap().InternString(h.Stringify(args[0]))), nil
	})
}
