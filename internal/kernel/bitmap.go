package kernel

// Two-level 8x8 bitmap over priorities [0, PMAX]. Group byte holds one bit
// per group-of-eight; tbl[y] holds one bit per priority within group y.
// mapTbl/unmapTbl make "highest ready priority" a pair of table lookups
// with no branches, ported verbatim from uC/OS-II's OSMapTbl/OSUnMapTbl.

// mapTbl[p] is the bitmask for bit position p (0..7).
var mapTbl = [8]uint8{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80}

// unmapTbl[b] is the bit position of the least-significant set bit of b.
// unmapTbl[0] is never consulted by a correct caller (the group/table byte
// being unmapped is only read when known non-zero).
var unmapTbl = [256]uint8{
	0, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	5, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	6, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	5, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	7, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	5, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	6, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	5, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
}

// prioBits is the precomputed group/position split for a priority, cached
// on every TCB and ECB waiter so insert/remove never recompute a shift.
type prioBits struct {
	y    uint8 // prio >> 3, index into tbl
	bitY uint8 // 1 << y
	x    uint8 // prio & 7
	bitX uint8 // 1 << x
}

func computePrioBits(prio int) prioBits {
	y := uint8(prio >> 3)
	x := uint8(prio & 7)
	return prioBits{y: y, bitY: mapTbl[y], x: x, bitX: mapTbl[x]}
}

// bitmapIndex is the group-byte + 8-row table pair shared by the ready set
// (kernel-global) and every ECB's wait-list.
type bitmapIndex struct {
	grp uint8
	tbl [8]uint8
}

func (b *bitmapIndex) insert(pb prioBits) {
	b.grp |= pb.bitY
	b.tbl[pb.y] |= pb.bitX
}

func (b *bitmapIndex) remove(pb prioBits) {
	b.tbl[pb.y] &^= pb.bitX
	if b.tbl[pb.y] == 0 {
		b.grp &^= pb.bitY
	}
}

func (b *bitmapIndex) empty() bool {
	return b.grp == 0
}

// highest returns the highest-priority (lowest numeric) set bit. Only
// defined when the index is non-empty; callers must check empty() first
// (the ready set's non-emptiness is guaranteed by the idle task).
func (b *bitmapIndex) highest() int {
	y := unmapTbl[b.grp]
	x := unmapTbl[b.tbl[y]]
	return int(y)<<3 | int(x)
}
