package kernel

import "unsafe"

const pointerSize = unsafe.Sizeof(uintptr(0))

// memPart is one fixed-block partition. Addr is the caller-supplied
// backing array; the free list is threaded through block *indices* rather
// than literally overwriting each free block's first word, which keeps
// MemGet/MemPut O(1) and branchless the same way the original's
// in-block linked list does.
type memPart struct {
	addr     []byte
	blkSize  int
	nBlks    int
	nFree    int
	freeHead int   // index of the first free block, -1 if none
	next     []int // next[i] = index of the next free block after i

	nextFree *memPart // MCB free-list link
}

type memPool struct {
	parts []memPart
	free  *memPart
}

func newMemPool(n int) *memPool {
	p := &memPool{parts: make([]memPart, n)}
	for i := range p.parts {
		p.parts[i].nextFree = p.free
		p.free = &p.parts[i]
	}
	return p
}

func (p *memPool) popFree() *memPart {
	if p.free == nil {
		return nil
	}
	m := p.free
	p.free = m.nextFree
	m.nextFree = nil
	return m
}

func (p *memPool) pushFree(m *memPart) {
	m.addr, m.next = nil, nil
	m.nextFree = p.free
	p.free = m
}

// MemCreate validates addr/nblks/blksize, draws an MCB from the free pool,
// and threads a free list across all nblks blocks.
func (k *Kernel) MemCreate(addr []byte, nblks, blksize int) (*memPart, Err) {
	if addr == nil {
		return nil, ErrMemInvalidAddr
	}
	if nblks < 2 {
		return nil, ErrMemInvalidBlks
	}
	if blksize < int(pointerSize) {
		return nil, ErrMemInvalidSize
	}
	if len(addr) < nblks*blksize {
		return nil, ErrMemInvalidAddr
	}

	k.enterCritical()
	defer k.exitCritical()

	m := k.mem.popFree()
	if m == nil {
		return nil, ErrMemInvalidPart
	}

	next := make([]int, nblks)
	for i := 0; i < nblks; i++ {
		if i == nblks-1 {
			next[i] = -1
		} else {
			next[i] = i + 1
		}
	}

	m.addr = addr
	m.blkSize = blksize
	m.nBlks = nblks
	m.nFree = nblks
	m.freeHead = 0
	m.next = next

	return m, ErrNone
}

func (m *memPart) blockAt(i int) []byte {
	return m.addr[i*m.blkSize : (i+1)*m.blkSize]
}

// MemGet pops the head of the free list, or returns ErrMemNoFreeBlks.
func (k *Kernel) MemGet(m *memPart) ([]byte, Err) {
	k.enterCritical()
	defer k.exitCritical()

	if m.nFree == 0 {
		return nil, ErrMemNoFreeBlks
	}
	i := m.freeHead
	m.freeHead = m.next[i]
	m.nFree--
	return m.blockAt(i), ErrNone
}

// MemPut pushes blk back onto the free list (LIFO), or returns
// ErrMemFull if the pool is already full (a double-free or a pointer
// that never came from MemGet). blk must be a slice previously returned
// by MemGet on this same *memPart.
func (k *Kernel) MemPut(m *memPart, blk []byte) Err {
	k.enterCritical()
	defer k.exitCritical()

	if m.nFree >= m.nBlks {
		return ErrMemFull
	}

	off := int(uintptr(unsafe.Pointer(&blk[0])) - uintptr(unsafe.Pointer(&m.addr[0])))
	if off < 0 || off%m.blkSize != 0 || off/m.blkSize >= m.nBlks {
		return ErrMemInvalidPBlk
	}
	i := off / m.blkSize

	m.next[i] = m.freeHead
	m.freeHead = i
	m.nFree++
	return ErrNone
}

// MemInfo is MemQuery's snapshot.
type MemInfo struct {
	BlkSize int
	NBlks   int
	NFree   int
	NUsed   int
}

// MemQuery snapshots partition totals under a critical section.
func (k *Kernel) MemQuery(m *memPart) MemInfo {
	k.enterCritical()
	defer k.exitCritical()
	return MemInfo{BlkSize: m.blkSize, NBlks: m.nBlks, NFree: m.nFree, NUsed: m.nBlks - m.nFree}
}
