package app

import (
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hangout-mates/signaling/internal/core"
	"github.com/hangout-mates/signaling/internal/domain"
)

// RoomPolicy decides what a join to an unknown room id does.
type RoomPolicy string

const (
	// RoomPolicyAutoCreate creates the room on first reference.
	RoomPolicyAutoCreate RoomPolicy = "auto_create"
	// RoomPolicyReject refuses the join with domain.ErrRoomNotFound.
	RoomPolicyReject RoomPolicy = "reject"
)

// room is one membership set, ordered by join time. Its mutex serializes
// mutations and the notifier callbacks they trigger, so every member observes
// the same room-data sequence.
type room struct {
	mu        sync.Mutex
	id        domain.RoomID
	createdAt time.Time
	members   []core.Member
}

func (r *room) participants() []domain.Participant {
	out := make([]domain.Participant, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m.Participant)
	}
	return out
}

// Directory exclusively owns all room and participant records. Lock order is
// always Directory.mu before room.mu; Directory.mu is never held across a
// notifier callback.
type Directory struct {
	mu       sync.Mutex
	policy   RoomPolicy
	notifier core.Notifier
	now      func() time.Time
	rooms    map[domain.RoomID]*room
	byConn   map[domain.ConnID]domain.RoomID
}

func NewDirectory(policy RoomPolicy, notifier core.Notifier) *Directory {
	return &Directory{
		policy:   policy,
		notifier: notifier,
		now:      time.Now,
		rooms:    make(map[domain.RoomID]*room),
		byConn:   make(map[domain.ConnID]domain.RoomID),
	}
}

// Create registers a freshly minted, empty room. Under the reject policy this
// is the only way a room comes to exist. Idempotent.
func (d *Directory) Create(id domain.RoomID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.rooms[id]; ok {
		return
	}
	d.rooms[id] = &room{id: id, createdAt: d.now()}
	log.Info().Str("module", "app.directory").Str("room", string(id)).Msg("room created")
}

// Join appends p to the room's participant list and returns the updated list.
// Existing members are told about the newcomer, then everyone (newcomer
// included) gets the fresh snapshot, all before the room lock is released.
func (d *Directory) Join(id domain.RoomID, p domain.Participant, conn core.SignalConnection) ([]domain.Participant, error) {
	d.mu.Lock()
	if _, joined := d.byConn[p.ID]; joined {
		d.mu.Unlock()
		return nil, domain.ErrAlreadyJoined
	}
	r, ok := d.rooms[id]
	if !ok {
		if d.policy == RoomPolicyReject {
			d.mu.Unlock()
			return nil, domain.ErrRoomNotFound
		}
		r = &room{id: id, createdAt: d.now()}
		d.rooms[id] = r
	}
	d.byConn[p.ID] = id
	r.mu.Lock()
	d.mu.Unlock()
	defer r.mu.Unlock()

	prior := slices.Clone(r.members)
	r.members = append(r.members, core.Member{Participant: p, Conn: conn})
	snapshot := r.participants()
	if d.notifier != nil {
		d.notifier.MemberJoined(prior, p)
		d.notifier.RoomData(slices.Clone(r.members), snapshot)
	}
	log.Info().Str("module", "app.directory").Str("room", string(id)).
		Str("cid", string(p.ID)).Int("count", len(snapshot)).Msg("participant joined")
	return snapshot, nil
}

// Leave removes the connection's participant from whichever room it belongs
// to (at most one) and reports which room that was. A room is dropped from
// the directory the moment its last participant leaves.
func (d *Directory) Leave(cid domain.ConnID) (domain.RoomID, []domain.Participant, bool) {
	d.mu.Lock()
	id, ok := d.byConn[cid]
	if !ok {
		d.mu.Unlock()
		return "", nil, false
	}
	delete(d.byConn, cid)
	r := d.rooms[id]
	r.mu.Lock()
	r.members = slices.DeleteFunc(r.members, func(m core.Member) bool {
		return m.Participant.ID == cid
	})
	if len(r.members) == 0 {
		delete(d.rooms, id)
		log.Info().Str("module", "app.directory").Str("room", string(id)).Msg("empty room dropped")
	}
	d.mu.Unlock()
	defer r.mu.Unlock()

	snapshot := r.participants()
	if d.notifier != nil {
		d.notifier.MemberLeft(slices.Clone(r.members), cid)
		d.notifier.RoomData(slices.Clone(r.members), snapshot)
	}
	log.Info().Str("module", "app.directory").Str("room", string(id)).
		Str("cid", string(cid)).Int("count", len(snapshot)).Msg("participant left")
	return id, snapshot, true
}

// Participants returns a read-only snapshot, in join order.
func (d *Directory) Participants(id domain.RoomID) []domain.Participant {
	d.mu.Lock()
	r, ok := d.rooms[id]
	if !ok {
		d.mu.Unlock()
		return nil
	}
	r.mu.Lock()
	d.mu.Unlock()
	defer r.mu.Unlock()
	return r.participants()
}

// Others returns the room mates of cid, excluding cid itself.
func (d *Directory) Others(cid domain.ConnID) ([]core.Member, domain.RoomID, bool) {
	d.mu.Lock()
	id, ok := d.byConn[cid]
	if !ok {
		d.mu.Unlock()
		return nil, "", false
	}
	r := d.rooms[id]
	r.mu.Lock()
	d.mu.Unlock()
	defer r.mu.Unlock()
	out := make([]core.Member, 0, len(r.members))
	for _, m := range r.members {
		if m.Participant.ID != cid {
			out = append(out, m)
		}
	}
	return out, id, true
}

func (d *Directory) List() []core.RoomInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]core.RoomInfo, 0, len(d.rooms))
	for id, r := range d.rooms {
		r.mu.Lock()
		out = append(out, core.RoomInfo{ID: id, Participants: len(r.members)})
		r.mu.Unlock()
	}
	return out
}

// Reap drops rooms that were minted but never joined and have sat empty for
// longer than maxIdle. Rooms that saw members are cleaned up on leave, so
// this only catches ids handed out over HTTP and abandoned.
func (d *Directory) Reap(maxIdle time.Duration) int {
	cutoff := d.now().Add(-maxIdle)
	d.mu.Lock()
	defer d.mu.Unlock()
	reaped := 0
	for id, r := range d.rooms {
		r.mu.Lock()
		if len(r.members) == 0 && r.createdAt.Before(cutoff) {
			delete(d.rooms, id)
			reaped++
		}
		r.mu.Unlock()
	}
	if reaped > 0 {
		log.Info().Str("module", "app.directory").Int("reaped", reaped).Msg("reaped idle rooms")
	}
	return reaped
}
