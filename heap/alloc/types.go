package alloc

// Ptr is a payload address expressed as an offset from the heap start.
// Payload offsets are always 16-byte aligned and never zero.
type Ptr uint64

// Nil is the null Ptr returned by zero-size and failed requests.
const Nil Ptr = 0

// BlockInfo is a decoded snapshot of one block, for inspection and printing.
type BlockInfo struct {
	Offset        int  // Heap offset of the header
	Size          int  // Total block size
	Allocated     bool // ThisAllocated bit
	PrevAllocated bool // PrevAllocated bit
	InQuickList   bool // Parked in a quick list
}

// Payload returns the Ptr a client would hold for this block.
func (b BlockInfo) Payload() Ptr { return Ptr(b.Offset + 8) }
