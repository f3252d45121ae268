package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey  = "worklens-provider"
	serviceName   = "worklens.provider.v1.TelemetryProvider"
	jsonCodecName = "json"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "WORKLENS_PROVIDER",
	MagicCookieValue: "worklens",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Info struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type WindowSnapshot struct {
	App   string `json:"app"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

type InputCounts struct {
	Keyboard int32 `json:"keyboard"`
	Mouse    int32 `json:"mouse"`
}

type ElapsedSinceInput struct {
	Millis int64 `json:"millis"`
}

type CameraHandle struct {
	Handle string `json:"handle"`
}

type CameraFrameRequest struct {
	Handle string `json:"handle"`
}

type Frame struct {
	Width  int32  `json:"width"`
	Height int32  `json:"height"`
	Ready  bool   `json:"ready"`
	PNG    []byte `json:"png,omitempty"`
}

type ScreenshotRequest struct {
	Blur bool `json:"blur"`
}

type Screenshot struct {
	PNG []byte `json:"png,omitempty"`
}

type TelemetryProviderServer interface {
	GetInfo(ctx context.Context, in *Empty) (*Info, error)
	ActiveWindow(ctx context.Context, in *Empty) (*WindowSnapshot, error)
	InputCounts(ctx context.Context, in *Empty) (*InputCounts, error)
	ElapsedSinceInput(ctx context.Context, in *Empty) (*ElapsedSinceInput, error)
	CameraOpen(ctx context.Context, in *Empty) (*CameraHandle, error)
	CameraFrame(ctx context.Context, in *CameraFrameRequest) (*Frame, error)
	CameraClose(ctx context.Context, in *CameraHandle) (*Empty, error)
	Screenshot(ctx context.Context, in *ScreenshotRequest) (*Screenshot, error)
}

type TelemetryProviderClient struct {
	conn *grpc.ClientConn
}

func NewTelemetryProviderClient(conn *grpc.ClientConn) *TelemetryProviderClient {
	return &TelemetryProviderClient{conn: conn}
}

func invoke[Out any](ctx context.Context, conn *grpc.ClientConn, method string, in any) (*Out, error) {
	out := new(Out)
	if err := conn.Invoke(ctx, "/"+serviceName+"/"+method, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TelemetryProviderClient) GetInfo(ctx context.Context) (*Info, error) {
	return invoke[Info](ctx, c.conn, "GetInfo", &Empty{})
}

func (c *TelemetryProviderClient) ActiveWindow(ctx context.Context) (*WindowSnapshot, error) {
	return invoke[WindowSnapshot](ctx, c.conn, "ActiveWindow", &Empty{})
}

func (c *TelemetryProviderClient) InputCounts(ctx context.Context) (*InputCounts, error) {
	return invoke[InputCounts](ctx, c.conn, "InputCounts", &Empty{})
}

func (c *TelemetryProviderClient) ElapsedSinceInput(ctx context.Context) (*ElapsedSinceInput, error) {
	return invoke[ElapsedSinceInput](ctx, c.conn, "ElapsedSinceInput", &Empty{})
}

func (c *TelemetryProviderClient) CameraOpen(ctx context.Context) (*CameraHandle, error) {
	return invoke[CameraHandle](ctx, c.conn, "CameraOpen", &Empty{})
}

func (c *TelemetryProviderClient) CameraFrame(ctx context.Context, in *CameraFrameRequest) (*Frame, error) {
	return invoke[Frame](ctx, c.conn, "CameraFrame", in)
}

func (c *TelemetryProviderClient) CameraClose(ctx context.Context, in *CameraHandle) (*Empty, error) {
	return invoke[Empty](ctx, c.conn, "CameraClose", in)
}

func (c *TelemetryProviderClient) Screenshot(ctx context.Context, in *ScreenshotRequest) (*Screenshot, error) {
	return invoke[Screenshot](ctx, c.conn, "Screenshot", in)
}

func unary[Req any](name string, call func(ctx context.Context, in *Req) (any, error)) grpc.MethodDesc {
	fullMethod := "/" + serviceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(_ any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(ctx, in)
			}
			info := &grpc.UnaryServerInfo{FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				typed, ok := req.(*Req)
				if !ok {
					return nil, fmt.Errorf("invalid request type for %s", name)
				}
				return call(ctx, typed)
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func RegisterTelemetryProviderServer(server grpc.ServiceRegistrar, impl TelemetryProviderServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*TelemetryProviderServer)(nil),
		Methods: []grpc.MethodDesc{
			unary("GetInfo", func(ctx context.Context, in *Empty) (any, error) { return impl.GetInfo(ctx, in) }),
			unary("ActiveWindow", func(ctx context.Context, in *Empty) (any, error) { return impl.ActiveWindow(ctx, in) }),
			unary("InputCounts", func(ctx context.Context, in *Empty) (any, error) { return impl.InputCounts(ctx, in) }),
			unary("ElapsedSinceInput", func(ctx context.Context, in *Empty) (any, error) { return impl.ElapsedSinceInput(ctx, in) }),
			unary("CameraOpen", func(ctx context.Context, in *Empty) (any, error) { return impl.CameraOpen(ctx, in) }),
			unary("CameraFrame", func(ctx context.Context, in *CameraFrameRequest) (any, error) { return impl.CameraFrame(ctx, in) }),
			unary("CameraClose", func(ctx context.Context, in *CameraHandle) (any, error) { return impl.CameraClose(ctx, in) }),
			unary("Screenshot", func(ctx context.Context, in *ScreenshotRequest) (any, error) { return impl.Screenshot(ctx, in) }),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/provider-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl TelemetryProviderServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterTelemetryProviderServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewTelemetryProviderClient(conn), nil
}

func PluginMap(impl TelemetryProviderServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
