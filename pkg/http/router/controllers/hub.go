package controllers

import (
	"encoding/json"
	"io"
	"net"
	"sort"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/openrlce/routelock/pkg/concurrent"
)

// User is one websocket subscriber of the decision feed.
type User struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id  uint
	hub *Hub
}

// Drain consumes the next client frame. The feed is push-only, so incoming
// data frames are discarded; control frames (ping, close) get their protocol
// reply.
func (u *User) Drain() error {
	u.io.Lock()
	defer u.io.Unlock()

	h, r, err := wsutil.NextReader(u.conn, ws.StateServerSide)
	if err != nil {
		return err
	}
	if h.OpCode.IsControl() {
		return wsutil.ControlFrameHandler(u.conn, ws.StateServerSide)(h, r)
	}

	_, err = io.Copy(io.Discard, r)
	return err
}

func (u *User) write(x interface{}) error {
	w := wsutil.NewWriter(u.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	u.io.Lock()
	defer u.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}

	return w.Flush()
}

// Hub tracks the connected subscribers and fans decision events out to them
// on the shared worker pool.
type Hub struct {
	mu  sync.RWMutex
	seq uint
	us  []*User
	ns  map[uint]*User

	pool *concurrent.WorkerPool
}

func NewHub(pool *concurrent.WorkerPool) *Hub {
	return &Hub{
		pool: pool,
		ns:   make(map[uint]*User),
		us:   make([]*User, 0),
	}
}

func (h *Hub) Register(conn net.Conn) *User {
	user := &User{
		hub:  h,
		conn: conn,
	}

	h.mu.Lock()
	user.id = h.seq
	h.ns[user.id] = user
	h.us = append(h.us, user)

	h.seq++
	h.mu.Unlock()

	return user
}

func (h *Hub) Remove(user *User) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, oki := h.ns[user.id]; !oki {
		return
	}
	delete(h.ns, user.id)

	i := sort.Search(len(h.us), func(i int) bool {
		return h.us[i].id >= user.id
	})

	newUs := make([]*User, len(h.us)-1)
	copy(newUs[:i], h.us[:i])
	copy(newUs[i:], h.us[i+1:])
	h.us = newUs
}

func (h *Hub) RemoveAllUser() {
	h.mu.RLock()
	users := make([]*User, len(h.us))
	copy(users, h.us)
	h.mu.RUnlock()

	for _, user := range users {
		user.conn.Close()
		h.Remove(user)
	}
}

// Broadcast pushes x to every subscriber. Writes run on the worker pool so a
// slow client never stalls the control loop; a failed write drops the user.
func (h *Hub) Broadcast(x interface{}) {
	h.mu.RLock()
	users := make([]*User, len(h.us))
	copy(users, h.us)
	h.mu.RUnlock()

	for _, user := range users {
		u := user
		h.pool.Schedule(func() {
			if err := u.write(x); err != nil {
				u.conn.Close()
				h.Remove(u)
			}
		})
	}
}
