package grpc

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestServiceAuthUnaryInterceptor(t *testing.T) {
	if _, err := NewServiceAuthUnaryInterceptor(""); err == nil {
		t.Fatalf("expected error for empty token")
	}
	interceptor, err := NewServiceAuthUnaryInterceptor("secret")
	if err != nil {
		t.Fatalf("interceptor error: %v", err)
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	}
	withToken := func(token string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.Pairs(ServiceTokenHeader, token))
	}

	cases := map[string]struct {
		ctx    context.Context
		method string
		code   codes.Code
	}{
		"health open":   {context.Background(), "/grpc.health.v1.Health/Check", codes.OK},
		"missing token": {context.Background(), "/schoolmon.Admin/Reload", codes.Unauthenticated},
		"wrong token":   {withToken("nope"), "/schoolmon.Admin/Reload", codes.PermissionDenied},
		"valid token":   {withToken(" secret "), "/schoolmon.Admin/Reload", codes.OK},
	}
	for name, c := range cases {
		resp, err := interceptor(c.ctx, nil, &grpc.UnaryServerInfo{FullMethod: c.method}, handler)
		if got := status.Code(err); got != c.code {
			t.Fatalf("%s: expected %s, got %s", name, c.code, got)
		}
		if c.code == codes.OK && resp != "ok" {
			t.Fatalf("%s: expected handler to run", name)
		}
	}
}

type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s fakeStream) Context() context.Context { return s.ctx }

func TestServiceAuthStreamInterceptor(t *testing.T) {
	interceptor, err := NewServiceAuthStreamInterceptor("secret")
	if err != nil {
		t.Fatalf("interceptor error: %v", err)
	}
	called := false
	handler := func(srv interface{}, ss grpc.ServerStream) error {
		called = true
		return nil
	}

	info := &grpc.StreamServerInfo{FullMethod: "/grpc.reflection.v1.ServerReflection/ServerReflectionInfo"}
	err = interceptor(nil, fakeStream{ctx: context.Background()}, info, handler)
	if status.Code(err) != codes.Unauthenticated || called {
		t.Fatalf("expected reflection to require the token, got %v", err)
	}

	info = &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch"}
	if err := interceptor(nil, fakeStream{ctx: context.Background()}, info, handler); err != nil || !called {
		t.Fatalf("expected health watch to pass, got %v", err)
	}
}
