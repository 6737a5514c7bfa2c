package clients

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

const serviceTokenHeader = "x-service-token"

// Health checks the server's gRPC health endpoint.
type Health struct {
	Conn   *grpc.ClientConn
	client healthpb.HealthClient
	token  string
}

func NewHealth(ctx context.Context, addr, serviceToken string, timeout time.Duration, opts ...grpc.DialOption) (*Health, error) {
	conn, err := dial(ctx, addr, timeout, opts...)
	if err != nil {
		return nil, err
	}
	return &Health{
		Conn:   conn,
		client: healthpb.NewHealthClient(conn),
		token:  serviceToken,
	}, nil
}

func (h *Health) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	if h.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, serviceTokenHeader, h.token)
	}
	resp, err := h.client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

func (h *Health) Close() {
	if h == nil || h.Conn == nil {
		return
	}
	_ = h.Conn.Close()
}

func dial(ctx context.Context, addr string, timeout time.Duration, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, extra...)
	return grpc.DialContext(ctx, addr, opts...)
}
