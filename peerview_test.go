package elector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeerRegistrySnapshot(t *testing.T) {
	assert := assert.New(t)

	config := ReplicaSetConfig{
		Name:    "rs0",
		Version: 1,
		Members: []Member{{ID: 1, Votes: 1}, {ID: 2, Votes: 1}},
	}
	reg := NewPeerRegistry(config)
	reg.UpdateHeartbeat(2, HeartbeatInfo{Up: true, LastLogPosition: LogPosition{Term: 1, Index: 5}})

	view := reg.Snapshot()

	t.Run("snapshot_reflects_config_and_heartbeats", func(t *testing.T) {
		assert.Equal(uint64(1), view.Config().Version)
		hb, ok := view.Heartbeat(2)
		assert.True(ok)
		assert.True(hb.Up)
	})

	t.Run("snapshot_is_immutable_against_later_registry_writes", func(t *testing.T) {
		reg.SetConfig(ReplicaSetConfig{Name: "rs0", Version: 2, Members: config.Members})
		reg.UpdateHeartbeat(1, HeartbeatInfo{Up: true})

		assert.Equal(uint64(1), view.Config().Version)
		_, ok := view.Heartbeat(1)
		assert.False(ok)
	})
}

func TestPeerViewPossiblyUp(t *testing.T) {
	assert := assert.New(t)

	config := ReplicaSetConfig{
		Members: []Member{{ID: 1}, {ID: 2}, {ID: 3}},
	}
	heartbeats := map[MemberId]HeartbeatInfo{
		2: {Up: false},
	}
	view := PeerView{config: config, heartbeats: heartbeats}

	up := view.PossiblyUp()
	ids := make([]MemberId, 0, len(up))
	for _, m := range up {
		ids = append(ids, m.ID)
	}

	// member 1 has no recorded heartbeat (optimistic default), member 2 is
	// explicitly down, member 3 has no recorded heartbeat either.
	assert.ElementsMatch([]MemberId{1, 3}, ids)
}

func TestPeerViewBestKnownPosition(t *testing.T) {
	assert := assert.New(t)

	local := LogPosition{Term: 1, Index: 5}
	heartbeats := map[MemberId]HeartbeatInfo{
		2: {Up: true, LastLogPosition: LogPosition{Term: 1, Index: 10}},
		3: {Up: false, LastLogPosition: LogPosition{Term: 5, Index: 0}},
	}
	view := PeerView{heartbeats: heartbeats}

	best := view.BestKnownPosition(local)

	assert.Equal(LogPosition{Term: 1, Index: 10}, best)
}
