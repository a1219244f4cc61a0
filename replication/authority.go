package replication

import (
	"sync"

	"replicore/tick"
	"replicore/world"
)

// pendingTransfer is a scheduled authority handoff that has not yet taken
// effect, so updates from the incoming owner are rejected (and updates from
// the outgoing owner still accepted) until effectiveTick arrives.
type pendingTransfer struct {
	peer          string
	effectiveTick tick.Tick
}

// AuthorityTable records which peer, if any, owns write-authority over each
// entity. The server is always implicitly authoritative; a peer id here
// additionally marks an entity as client-predicted, letting the prediction
// layer know which incoming updates are reconciliation data for its own
// predicted state versus plain observation.
type AuthorityTable struct {
	mu      sync.RWMutex
	byID    map[world.EntityID]string
	pending map[world.EntityID]pendingTransfer
}

// NewAuthorityTable constructs an empty authority table.
func NewAuthorityTable() *AuthorityTable {
	return &AuthorityTable{
		byID:    make(map[world.EntityID]string),
		pending: make(map[world.EntityID]pendingTransfer),
	}
}

// SetAuthority assigns a peer as the authority for an entity immediately,
// with no transfer-tick gating. An empty peer id clears client authority,
// returning the entity to pure server ownership. Use TransferAuthority
// instead when a live hand-off must not race in-flight updates from the
// outgoing owner.
func (a *AuthorityTable) SetAuthority(entity world.EntityID, peer string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.pending, entity)
	if peer == "" {
		delete(a.byID, entity)
		return
	}
	a.byID[entity] = peer
}

// TransferAuthority schedules entity's authority to move to peer once
// effectiveTick arrives, so updates already in flight from the current
// owner are not rejected as authority violations mid-transfer. Call
// ResolveTransfers every tick to promote it.
func (a *AuthorityTable) TransferAuthority(entity world.EntityID, peer string, effectiveTick tick.Tick) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending[entity] = pendingTransfer{peer: peer, effectiveTick: effectiveTick}
}

// ResolveTransfers promotes any pending authority transfer whose
// effectiveTick is not after `at`, to be called once per tick from the
// owning orchestrator before applying received updates.
func (a *AuthorityTable) ResolveTransfers(at tick.Tick) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for entity, t := range a.pending {
		if t.effectiveTick.Since(at) > 0 {
			continue
		}
		if t.peer == "" {
			delete(a.byID, entity)
		} else {
			a.byID[entity] = t.peer
		}
		delete(a.pending, entity)
	}
}

// AuthorityOf returns the peer with write-authority over an entity, if any.
func (a *AuthorityTable) AuthorityOf(entity world.EntityID) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	peer, ok := a.byID[entity]
	return peer, ok
}

// IsAuthority reports whether the given peer owns the entity.
func (a *AuthorityTable) IsAuthority(entity world.EntityID, peer string) bool {
	owner, ok := a.AuthorityOf(entity)
	return ok && owner == peer
}

// Clear removes authority bookkeeping for a despawned entity.
func (a *AuthorityTable) Clear(entity world.EntityID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.byID, entity)
	delete(a.pending, entity)
}
