package ecs

// EntityID identifies a unit or a city. Units and cities share one id space and
// ids are never reused within a game, so a stale id simply fails to resolve.
type EntityID int32

func (id EntityID) IsZero() bool { return id == 0 }

// IDPool hands out monotonically increasing entity ids starting at 1.
type IDPool struct {
	next EntityID
}

func NewIDPool() *IDPool {
	return &IDPool{next: 1}
}

func (p *IDPool) Create() EntityID {
	id := p.next
	p.next++
	return id
}

// Issued reports whether id has ever been handed out by this pool.
func (p *IDPool) Issued(id EntityID) bool {
	return id > 0 && id < p.next
}

// Reset restarts numbering. Only valid when every store fed by the pool is empty.
func (p *IDPool) Reset() {
	p.next = 1
}
