package object

// FNV1a computes the hash stored in every String's Hash field. The VM's
// intern table is keyed by string content and does not use this hash.
func FNV1a(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}

// String is a heap-allocated, interned string. Every reachable string
// with distinct content exists exactly once on the heap; construction and
// interning is the VM heap's responsibility, not this type's.
type String struct {
	Header
	Value string
	Hash  uint32
}

func NewString(value string) *String {
	return &String{Header: Header{ObjType: ObjString}, Value: value, Hash: FNV1a(value)}
}
