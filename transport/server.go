package transport

import (
	"context"

	"github.com/relset/elector"
)

// Server adapts an *elector.Responder to the ElectorServer gRPC interface.
type Server struct {
	responder *elector.Responder
}

// NewServer wraps responder for registration via RegisterElectorServer.
func NewServer(responder *elector.Responder) *Server {
	return &Server{responder: responder}
}

// SendFresh implements ElectorServer.
func (s *Server) SendFresh(_ context.Context, in *elector.FreshQuery) (*elector.FreshReply, error) {
	reply := s.responder.RespondFreshness(*in)
	return &reply, nil
}

// SendElect implements ElectorServer.
func (s *Server) SendElect(_ context.Context, in *elector.ElectRequest) (*elector.ElectReply, error) {
	reply := s.responder.RespondElect(*in)
	return &reply, nil
}
