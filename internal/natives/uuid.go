package natives

import (
	"github.com/google/uuid"

	"github.com/ochre-lang/ochre/internal/value"
)

// installUUID wires google/uuid, a dependency the teacher's go.mod already
// carries but never calls from any of its own packages — this native is
// its first real caller.
func installUUID(h Host) {
	h.Define("uuid", func(args []value.Value) (value.Value, error) {
		if len(args) != 0 {
			return value.Nil, argError("uuid", 0, len(args))
		}
		return value.FromObj(h.Heap().InternString(uuid.NewString())), nil
	})
}
