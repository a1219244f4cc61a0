// Package engine wires the packet, protocol, world, replication,
// prediction, interpolation, input, visibility, networking, room,
// timesync, and schedule subsystems together into the PreUpdate /
// FixedUpdate / Update / PostUpdate phase model that drives one peer's
// simulation loop.
package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"replicore/channel"
	"replicore/entitymap"
	"replicore/input"
	"replicore/interpolation"
	"replicore/logging"
	"replicore/networking"
	"replicore/packet"
	"replicore/prediction"
	"replicore/protocol"
	"replicore/replication"
	"replicore/room"
	"replicore/schedule"
	"replicore/tick"
	"replicore/timesync"
	"replicore/visibility"
	"replicore/world"
)

// peerState bundles the per-connection subsystem state a symmetric
// peer-to-peer or client/server link needs: packet transport, the entity
// bijection, and RTT estimation.
type peerState struct {
	transceiver *packet.Transceiver
	entities    *entitymap.Map[world.EntityID]
	exchange    *timesync.Exchange
	remote      *tick.RemoteTimeline
	pingSeq     uint32
	lastPing    time.Time
}

// Core is the shared orchestrator behind Server and Client: both sides of
// a replicore link run the identical phase model with the same defaults.
type Core struct {
	registry  *protocol.Registry
	world     *world.World
	authority *replication.AuthorityTable
	sender    *replication.Sender
	receiver  *replication.Receiver
	room      *room.Room
	visible   visibility.Strategy

	bandwidth *networking.BandwidthRegulator
	budget    *networking.BudgetPlanner
	metrics   *networking.SnapshotMetrics

	socket Socket
	sink   EventSink
	logger *logging.Logger

	timeline *tick.LocalTimeline
	monitor  *schedule.TickMonitor
	loop     *schedule.Loop
	nudger   *timesync.Nudger

	tickDuration       time.Duration
	serverSendInterval time.Duration
	pingInterval       time.Duration
	replicationPolicy  replication.Policy

	inputDelayTicks         int
	maxRollbackTicks        int
	interpolationDelayTicks int
	mutateStabilityK        int

	peers map[PeerID]*peerState

	predictionSims         map[int]prediction.Simulate[any]
	predictionEq           map[int]prediction.Equal[any]
	predictionHistories    map[predKey]*prediction.History[any]
	predictionReconciledAt map[predKey]tick.Tick

	interpolationBlends     map[int]interpolation.Blend[any]
	interpolationHistories  map[predKey]*interpolation.History[any]
	interpolationTimelines  map[PeerID]*interpolation.Timeline

	mutateTrackers map[PeerID]*replication.MutateTicks

	hasInputChannel  bool
	inputChannel     channel.ID
	inputGate        *input.Gate
	inputBuffers     map[PeerID]*input.Buffer
	localInputBuffer *input.Buffer
	localInputSeq    uint64
}

// NewCore constructs an orchestrator around the given protocol registry
// and socket, applying options.
func NewCore(registry *protocol.Registry, socket Socket, opts ...Option) *Core {
	c := &Core{
		registry:                registry,
		world:                   world.New(),
		authority:               replication.NewAuthorityTable(),
		room:                    room.New(),
		visible:                 visibility.AllVisible{},
		metrics:                 networking.NewSnapshotMetrics(),
		socket:                  socket,
		sink:                    EventSinkFunc(func(Event) {}),
		logger:                  logging.NewTestLogger(),
		timeline:                tick.NewLocalTimeline(0),
		monitor:                 schedule.NewTickMonitor(),
		nudger:                  timesync.NewNudger(),
		tickDuration:            50 * time.Millisecond,
		serverSendInterval:      50 * time.Millisecond,
		pingInterval:            time.Second,
		replicationPolicy:       replication.SinceLastAck,
		inputDelayTicks:         2,
		maxRollbackTicks:        32,
		interpolationDelayTicks: 2,
		mutateStabilityK:        3,
		peers:                   make(map[PeerID]*peerState),
		predictionSims:          make(map[int]prediction.Simulate[any]),
		predictionEq:            make(map[int]prediction.Equal[any]),
		predictionHistories:     make(map[predKey]*prediction.History[any]),
		predictionReconciledAt:  make(map[predKey]tick.Tick),
		interpolationBlends:     make(map[int]interpolation.Blend[any]),
		interpolationHistories:  make(map[predKey]*interpolation.History[any]),
		interpolationTimelines:  make(map[PeerID]*interpolation.Timeline),
		mutateTrackers:          make(map[PeerID]*replication.MutateTicks),
		inputGate:               input.NewGate(input.Config{}),
		inputBuffers:            make(map[PeerID]*input.Buffer),
		localInputBuffer:        input.NewBuffer(input.DefaultRedundancy),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sender = replication.NewSender(registry, c.world, c.authority)
	c.receiver = replication.NewReceiver(registry, c.world, c.authority)
	c.loop = schedule.NewLoop(float64(time.Second)/float64(c.tickDuration), c.timeline, c.monitor, schedule.Phases{
		PreUpdate:  func(t tick.Tick, step time.Duration) { c.preUpdate(t) },
		PostUpdate: func(t tick.Tick, step time.Duration) { c.postUpdate(t) },
	})
	return c
}

// RegisterChannel adds a channel descriptor to the protocol registry.
func (c *Core) RegisterChannel(d channel.Descriptor) { c.registry.RegisterChannel(d) }

// RegisterComponent adds a component descriptor to the protocol registry.
func (c *Core) RegisterComponent(d protocol.ComponentDescriptor) int {
	return c.registry.RegisterComponent(d)
}

// RegisterInput adds an input descriptor to the protocol registry.
func (c *Core) RegisterInput(d protocol.InputDescriptor) int {
	return c.registry.RegisterInput(d)
}

// SetReplicate configures how entity is replicated to observers.
func (c *Core) SetReplicate(entity world.EntityID, r protocol.Replicate) {
	c.sender.SetReplicate(entity, r)
}

// SetAuthority assigns the write-authority peer for entity.
func (c *Core) SetAuthority(entity world.EntityID, peer PeerID) {
	c.authority.SetAuthority(entity, string(peer))
}

// World exposes the underlying entity-component store for host simulation code.
func (c *Core) World() *world.World { return c.world }

// ProtocolHash exposes the registry's handshake hash.
func (c *Core) ProtocolHash() uint64 { return c.registry.Hash() }

// Metrics exposes the per-peer bandwidth/drop accounting.
func (c *Core) Metrics() *networking.SnapshotMetrics { return c.metrics }

// CurrentTick reports the local fixed-update tick, satisfying admin.TickProvider.
func (c *Core) CurrentTick() uint32 { return uint32(c.timeline.Tick()) }

// ConnectedPeers lists the currently-tracked peer ids, satisfying admin.TickProvider.
func (c *Core) ConnectedPeers() []string { return c.room.Peers() }

// ensurePeer lazily creates per-peer subsystem state on first sight of a
// peer, grounded in the registry's fixed channel set.
func (c *Core) ensurePeer(peer PeerID) *peerState {
	if p, ok := c.peers[peer]; ok {
		return p
	}
	descriptors := c.peerChannelDescriptors()
	send := channel.NewSet(descriptors)
	recv := channel.NewReceiverSet(descriptors)
	p := &peerState{
		transceiver: packet.NewTransceiver(send, recv, descriptors),
		entities:    entitymap.New[world.EntityID](),
		exchange:    timesync.NewExchange(),
		remote:      tick.NewRemoteTimeline(),
	}
	c.peers[peer] = p
	return p
}

func (c *Core) forgetPeer(peer PeerID) {
	delete(c.peers, peer)
	c.sender.RemoveObserver(string(peer))
	if c.bandwidth != nil {
		c.bandwidth.Forget(string(peer))
	}
}

// preUpdate drains inbound socket traffic, applies lifecycle events,
// deframes packets, and applies replication receive.
func (c *Core) preUpdate(now tick.Tick) {
	for _, peer := range c.socket.Linked() {
		_ = c.room.Join(string(peer))
		c.ensurePeer(peer)
		c.sink.HandleEvent(Event{Kind: EventConnected, Peer: peer})
	}
	for _, peer := range c.socket.Unlinked() {
		c.room.Leave(string(peer))
		c.forgetPeer(peer)
		c.sink.HandleEvent(Event{Kind: EventDisconnected, Peer: peer})
	}

	controlID := c.controlChannelID()
	for _, in := range c.socket.Poll() {
		p, ok := c.peers[in.Peer]
		if !ok {
			continue
		}
		delivered, peerTick, err := p.transceiver.OnPacketReceived(in.Payload)
		if err != nil {
			continue
		}
		p.remote.Observe(tick.Tick(peerTick), 0)

		appliedThisTick := false
		for _, msg := range delivered {
			switch {
			case msg.Channel == controlID:
				c.handleControlMessage(in.Peer, p, msg.Bytes, time.Now())
			case c.hasInputChannel && msg.Channel == c.inputChannel:
				c.handleInputMessage(in.Peer, msg.Bytes)
			default:
				spawned, touched, err := c.receiver.Apply(msg.Bytes, now, string(in.Peer))
				if err != nil {
					continue
				}
				appliedThisTick = true
				for _, e := range spawned {
					c.sink.HandleEvent(Event{Kind: EventEntitySpawned, Peer: in.Peer, Entity: e})
				}
				c.reconcilePredictedComponents(in.Peer, touched, now)
				c.pushInterpolationSamples(in.Peer, touched, now)
			}
		}
		if appliedThisTick {
			c.mutateTracker(in.Peer).Mark(now)
		}
		c.reconcileStableComponents(in.Peer, now)
		c.applyClockSync(in.Peer, p, now)
	}
}

// postUpdate builds outgoing replication messages for each connected
// peer, regulates them through the bandwidth/budget gates, packs them
// into packets, and flushes them to the socket.
func (c *Core) postUpdate(now tick.Tick) {
	for peer, p := range c.peers {
		if data, ok := c.sender.BuildTick(string(peer), c.replicationPolicy, now, func(e world.EntityID) bool { return c.visible.Visible(string(peer), e) }); ok {
			if c.budget != nil {
				plan := c.budget.Plan([]networking.Candidate{{Tier: visibility.TierSelf, Bytes: len(data)}})
				c.metrics.Observe(string(peer), plan)
				if plan.Exhausted {
					continue
				}
			}
			p.transceiver.Write(0, data, 0)
		}
		c.sendPing(peer, p, time.Now())
		c.flushLocalInput(p, now)
		for _, raw := range p.transceiver.Flush(time.Now(), uint16(now)) {
			if c.bandwidth != nil && !c.bandwidth.Allow(string(peer), len(raw)) {
				continue
			}
			if err := c.socket.Send(peer, raw); err != nil {
				continue
			}
		}
	}
}

// Start runs the fixed-step loop until ctx is cancelled, using an
// errgroup so a future second coordination goroutine (e.g. an admin
// control channel) can be added without restructuring shutdown.
func (c *Core) Start(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		c.loop.Start(gctx)
		<-gctx.Done()
		c.loop.Stop()
		return gctx.Err()
	})
	return group.Wait()
}

// Step runs exactly one fixed-update cycle synchronously, for tests and
// offline tools that don't want a background ticker.
func (c *Core) Step() tick.Tick {
	return c.loop.Step()
}
