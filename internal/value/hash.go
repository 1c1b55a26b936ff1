package value

// HashString computes the 32-bit FNV-1a hash spec §3.2 requires strings to
// carry precomputed.
func HashString(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}
