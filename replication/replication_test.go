package replication

import (
	"errors"
	"testing"

	"replicore/protocol"
	"replicore/world"
)

func stringCodec() protocol.ComponentDescriptor {
	return protocol.ComponentDescriptor{
		Name: "label",
		Serialize: func(v any) ([]byte, error) {
			return []byte(v.(string)), nil
		},
		Deserialize: func(b []byte) (any, error) {
			return string(b), nil
		},
	}
}

func newTestSender() (*Sender, *world.World, *AuthorityTable) {
	registry := protocol.NewRegistry()
	registry.RegisterComponent(stringCodec())
	w := world.New()
	authority := NewAuthorityTable()
	return NewSender(registry, w, authority), w, authority
}

func TestBuildTickSendsSpawnInsertAndUpdate(t *testing.T) {
	sender, w, _ := newTestSender()
	entity := w.Spawn(1)
	w.SetComponent(entity, 0, "hello", 1)

	payload, ok := sender.BuildTick("peerA", SinceLastAck, 1, nil)
	if !ok || payload == nil {
		t.Fatalf("expected a payload on first tick")
	}

	actions, updates, err := decodeTick(payload)
	if err != nil {
		t.Fatalf("decodeTick() error = %v", err)
	}
	if len(actions) != 2 || actions[0].Op != actionSpawn || actions[1].Op != actionInsert {
		t.Fatalf("expected [spawn, insert] actions, got %+v", actions)
	}
	if len(updates) != 1 || string(updates[0].Payload) != "hello" {
		t.Fatalf("unexpected updates: %+v", updates)
	}
}

func TestBuildTickSuppressesUnchangedAfterAck(t *testing.T) {
	sender, w, _ := newTestSender()
	entity := w.Spawn(1)
	w.SetComponent(entity, 0, "hello", 1)

	if _, ok := sender.BuildTick("peerA", SinceLastAck, 1, nil); !ok {
		t.Fatalf("expected a payload on first send")
	}
	sender.ApplyAck("peerA", entity, 1)

	if _, ok := sender.BuildTick("peerA", SinceLastAck, 2, nil); ok {
		t.Fatalf("an acked, unchanged component must not be resent")
	}

	w.SetComponent(entity, 0, "world", 3)
	payload, ok := sender.BuildTick("peerA", SinceLastAck, 3, nil)
	if !ok {
		t.Fatalf("a changed component must be resent even after an ack")
	}
	_, updates, err := decodeTick(payload)
	if err != nil || len(updates) != 1 || string(updates[0].Payload) != "world" {
		t.Fatalf("unexpected resend payload: %+v, %v", updates, err)
	}
}

func TestBuildTickDespawnSendsDespawnAction(t *testing.T) {
	sender, w, _ := newTestSender()
	entity := w.Spawn(1)
	w.SetComponent(entity, 0, "hello", 1)
	sender.BuildTick("peerA", SinceLastAck, 1, nil)

	w.Despawn(entity)
	payload, ok := sender.BuildTick("peerA", SinceLastAck, 2, nil)
	if !ok {
		t.Fatalf("expected a despawn action")
	}
	actions, updates, err := decodeTick(payload)
	if err != nil || len(actions) != 1 || actions[0].Op != actionDespawn || len(updates) != 0 {
		t.Fatalf("expected a single despawn action, got %+v, %+v, %v", actions, updates, err)
	}
}

func TestAuthorityTargetFiltering(t *testing.T) {
	sender, w, authority := newTestSender()
	entity := w.Spawn(1)
	w.SetComponent(entity, 0, "mine", 1)
	sender.SetReplicate(entity, protocol.Replicate{Target: protocol.TargetExcludeAuthority, PriorityBias: 1})
	authority.SetAuthority(entity, "owner")

	if _, ok := sender.BuildTick("owner", SinceLastAck, 1, nil); ok {
		t.Fatalf("authority peer must not receive its own excluded entity")
	}
	if _, ok := sender.BuildTick("observer", SinceLastAck, 1, nil); !ok {
		t.Fatalf("non-authority observer should still receive the entity")
	}
}

func TestReceiverAppliesUpdatesAndDespawns(t *testing.T) {
	registry := protocol.NewRegistry()
	registry.RegisterComponent(stringCodec())
	senderWorld := world.New()
	authority := NewAuthorityTable()
	sender := NewSender(registry, senderWorld, authority)
	entity := senderWorld.Spawn(1)
	senderWorld.SetComponent(entity, 0, "hi", 1)

	payload, ok := sender.BuildTick("client", SinceLastAck, 1, nil)
	if !ok {
		t.Fatalf("expected a payload")
	}

	clientWorld := world.New()
	receiver := NewReceiver(registry, clientWorld, NewAuthorityTable())
	spawned, touched, err := receiver.Apply(payload, 1, "server")
	if err != nil || len(spawned) != 1 || len(touched) != 1 {
		t.Fatalf("Apply() = spawned=%v touched=%v err=%v", spawned, touched, err)
	}
	value, ok := clientWorld.Component(touched[0], 0)
	if !ok || value != "hi" {
		t.Fatalf("mirrored component = %v, %v", value, ok)
	}

	senderWorld.Despawn(entity)
	despawnPayload, ok := sender.BuildTick("client", SinceLastAck, 2, nil)
	if !ok {
		t.Fatalf("expected a despawn payload")
	}
	if _, _, err := receiver.Apply(despawnPayload, 2, "server"); err != nil {
		t.Fatalf("Apply() despawn returned error: %v", err)
	}
	if clientWorld.Alive(touched[0]) {
		t.Fatalf("mirrored entity should be despawned after a despawn action")
	}
}

// TestReceiverBuffersUpdatesAheadOfTheirSpawn checks that an Update
// referencing a NetworkID no Action has resolved yet waits for that Action
// rather than auto-spawning a mirror entity.
func TestReceiverBuffersUpdatesAheadOfTheirSpawn(t *testing.T) {
	registry := protocol.NewRegistry()
	registry.RegisterComponent(stringCodec())
	clientWorld := world.New()
	receiver := NewReceiver(registry, clientWorld, NewAuthorityTable())

	orphanUpdate := encodeTick(nil, []componentUpdate{{Entity: 1, Component: 0, Payload: []byte("early")}})
	spawned, touched, err := receiver.Apply(orphanUpdate, 1, "server")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(spawned) != 0 || len(touched) != 0 {
		t.Fatalf("an update with no resolved spawn must not touch the world yet: spawned=%v touched=%v", spawned, touched)
	}

	spawnPayload := encodeTick([]actionRecord{{Entity: 1, Op: actionSpawn}}, nil)
	spawned, touched, err = receiver.Apply(spawnPayload, 2, "server")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(spawned) != 1 || len(touched) != 1 {
		t.Fatalf("the waitlisted update should replay once its spawn arrives: spawned=%v touched=%v", spawned, touched)
	}
	value, ok := clientWorld.Component(touched[0], 0)
	if !ok || value != "early" {
		t.Fatalf("replayed update did not apply: %v, %v", value, ok)
	}
}

// TestReceiverRejectsUpdatesFromNonAuthority checks that once an entity's
// authority is established, an Update from any other peer is discarded.
func TestReceiverRejectsUpdatesFromNonAuthority(t *testing.T) {
	registry := protocol.NewRegistry()
	registry.RegisterComponent(stringCodec())
	clientWorld := world.New()
	receiver := NewReceiver(registry, clientWorld, NewAuthorityTable())

	spawnPayload := encodeTick([]actionRecord{{Entity: 1, Op: actionSpawn}}, []componentUpdate{{Entity: 1, Component: 0, Payload: []byte("owner-value")}})
	_, _, err := receiver.Apply(spawnPayload, 1, "server")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	impostorUpdate := encodeTick(nil, []componentUpdate{{Entity: 1, Component: 0, Payload: []byte("forged")}})
	_, touched, err := receiver.Apply(impostorUpdate, 2, "impostor")
	if err != nil {
		t.Fatalf("Apply() should not itself error on a rejected update, got %v", err)
	}
	if len(touched) != 0 {
		t.Fatalf("an update from a non-authoritative peer must be dropped, touched=%v", touched)
	}

	local, ok := receiver.LocalEntity(1)
	if !ok {
		t.Fatalf("entity should still exist")
	}
	value, _ := clientWorld.Component(local, 0)
	if value != "owner-value" {
		t.Fatalf("forged update must not overwrite the authoritative value, got %v", value)
	}
}

func TestApplyUpdateReportsAuthorityViolation(t *testing.T) {
	registry := protocol.NewRegistry()
	registry.RegisterComponent(stringCodec())
	w := world.New()
	authority := NewAuthorityTable()
	receiver := NewReceiver(registry, w, authority)
	local := w.Spawn(1)
	authority.SetAuthority(local, "server")

	err := receiver.applyUpdate(local, componentUpdate{Component: 0, Payload: []byte("x")}, "impostor", 1)
	if !errors.Is(err, ErrAuthorityViolation) {
		t.Fatalf("expected ErrAuthorityViolation, got %v", err)
	}
}
