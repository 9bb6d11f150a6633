package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/relset/elector"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// connectionManager caches one *grpc.ClientConn and ElectorClient per peer
// address, grounded on grpc_connection.go's connectionManager (mu sync.Mutex,
// connections map[string]*grpc.ClientConn, clients map[string]raftypb.RaftyClient).
type connectionManager struct {
	mu          sync.Mutex
	connections map[string]*grpc.ClientConn
	clients     map[string]ElectorClient
	logger      *zerolog.Logger
}

// NewClient builds an elector.Transport that dials peers lazily over gRPC,
// caching connections by Member.Host.
func NewClient() elector.Transport {
	return &connectionManager{
		connections: make(map[string]*grpc.ClientConn),
		clients:     make(map[string]ElectorClient),
	}
}

// NewClientWithLogger is NewClient with a logger attached, so failed peer
// RPCs are reported with their gRPC status code the way rafty.go logs a
// failed RequestVotes call.
func NewClientWithLogger(logger *zerolog.Logger) elector.Transport {
	return &connectionManager{
		connections: make(map[string]*grpc.ClientConn),
		clients:     make(map[string]ElectorClient),
		logger:      logger,
	}
}

func (c *connectionManager) logRPCError(peer elector.Member, rpc string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn().
		Uint32("peerId", uint32(peer.ID)).
		Str("peerHost", peer.Host).
		Str("statusCode", status.Code(err).String()).
		Err(err).
		Msgf("fail to %s peer %s", rpc, peer.Host)
}

func (c *connectionManager) getClient(host string) (ElectorClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[host]; ok {
		return client, nil
	}

	conn, err := grpc.NewClient(host, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("elector: dial %s: %w", host, err)
	}

	client := NewElectorClient(conn)
	c.connections[host] = conn
	c.clients[host] = client
	return client, nil
}

// SendFreshQuery implements elector.Transport.
func (c *connectionManager) SendFreshQuery(ctx context.Context, peer elector.Member, req elector.FreshQuery) (elector.FreshReply, error) {
	client, err := c.getClient(peer.Host)
	if err != nil {
		return elector.FreshReply{}, err
	}
	reply, err := client.SendFresh(ctx, &req)
	if err != nil {
		c.logRPCError(peer, "send fresh query to", err)
		return elector.FreshReply{}, err
	}
	return *reply, nil
}

// SendElectRequest implements elector.Transport.
func (c *connectionManager) SendElectRequest(ctx context.Context, peer elector.Member, req elector.ElectRequest) (elector.ElectReply, error) {
	client, err := c.getClient(peer.Host)
	if err != nil {
		return elector.ElectReply{}, err
	}
	reply, err := client.SendElect(ctx, &req)
	if err != nil {
		c.logRPCError(peer, "send elect request to", err)
		return elector.ElectReply{}, err
	}
	return *reply, nil
}

// DisconnectAll closes every cached connection, mirroring
// grpc_connection.go's disconnectAllPeers.
func (c *connectionManager) DisconnectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for host, conn := range c.connections {
		_ = conn.Close()
		delete(c.connections, host)
		delete(c.clients, host)
	}
}
