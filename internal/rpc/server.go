package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/danielpatrickdp/stamina-go/internal/genmodel"
	"github.com/danielpatrickdp/stamina-go/internal/solver"
	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

// GeneratorServer exposes a local genmodel.Generator[string] over gRPC,
// so a remote engine can drive exploration without linking the model's
// own package. It is deliberately narrow: it maintains no index map of
// its own. Initial states are numbered with a local counter purely for
// round-trip identification, and expand resolves every successor to 0.
type GeneratorServer struct {
	gen    genmodel.Generator[string]
	solver solver.Solver
}

// NewGeneratorServer wraps a local Generator and Solver pair for gRPC
// dispatch.
func NewGeneratorServer(gen genmodel.Generator[string], sv solver.Solver) *GeneratorServer {
	return &GeneratorServer{gen: gen, solver: sv}
}

func (s *GeneratorServer) initialStates(_ context.Context, _ *InitialStatesRequest) (*InitialStatesResponse, error) {
	var packed []string
	_, err := s.gen.InitialStates(func(state string) stateindex.Ix {
		packed = append(packed, state)
		return stateindex.Ix(len(packed) - 1)
	})
	if err != nil {
		return nil, err
	}
	return &InitialStatesResponse{PackedStates: packed}, nil
}

func (s *GeneratorServer) load(_ context.Context, req *LoadRequest) (*LoadResponse, error) {
	if err := s.gen.Load(req.PackedState); err != nil {
		return nil, err
	}
	return &LoadResponse{}, nil
}

func (s *GeneratorServer) expand(_ context.Context, _ *ExpandRequest) (*ExpandResponse, error) {
	behavior, err := s.gen.Expand(func(state string) stateindex.Ix { return 0 })
	if err != nil {
		return nil, err
	}
	resp := &ExpandResponse{Reward: behavior.Reward}
	for _, choice := range behavior.Choices {
		wire := ChoiceWire{Label: choice.Label}
		for _, succ := range choice.Successors {
			wire.Successors = append(wire.Successors, SuccessorWire{PackedState: succ.State, Rate: succ.Rate})
		}
		resp.Choices = append(resp.Choices, wire)
	}
	return resp, nil
}

func (s *GeneratorServer) variableInfo(_ context.Context, _ *VariableInfoRequest) (*VariableInfoResponse, error) {
	info := s.gen.VariableInfo()
	return &VariableInfoResponse{
		AbsorbingVarIndex: info.AbsorbingVarIndex,
		AbsorbingBitWidth: info.AbsorbingBitWidth,
		TotalVars:         info.TotalVars,
	}, nil
}

func (s *GeneratorServer) modelType(_ context.Context, _ *ModelTypeRequest) (*ModelTypeResponse, error) {
	return &ModelTypeResponse{ModelType: s.gen.ModelType().String()}, nil
}

func (s *GeneratorServer) check(_ context.Context, req *CheckRequest) (*CheckResponse, error) {
	ctmc := &solver.CTMC{
		Rows:   make([][]solver.Edge, len(req.Rows)),
		Labels: make(map[string][]stateindex.Ix, len(req.Labels)),
	}
	for i, row := range req.Rows {
		edges := make([]solver.Edge, len(row))
		for j, e := range row {
			edges[j] = solver.Edge{Target: stateindex.Ix(e.Target), Rate: e.Rate}
		}
		ctmc.Rows[i] = edges
	}
	for _, ix := range req.Initial {
		ctmc.Initial = append(ctmc.Initial, stateindex.Ix(ix))
	}
	for label, ixs := range req.Labels {
		converted := make([]stateindex.Ix, len(ixs))
		for i, ix := range ixs {
			converted[i] = stateindex.Ix(ix)
		}
		ctmc.Labels[label] = converted
	}
	prob, err := s.solver.Check(ctmc, solver.Property{TargetLabel: req.TargetLabel, TimeBound: req.TimeBound})
	if err != nil {
		return nil, err
	}
	return &CheckResponse{Probability: prob}, nil
}

// ServiceDesc is the hand-built stand-in for a protoc-generated
// _ServiceDesc: it wires each RPC name to a handler with the same
// (context, decode func) -> (any, error) shape grpc-go expects, without
// requiring a .proto file or generated stubs.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "InitialStates", Handler: initialStatesHandler},
		{MethodName: "Load", Handler: loadHandler},
		{MethodName: "Expand", Handler: expandHandler},
		{MethodName: "VariableInfo", Handler: variableInfoHandler},
		{MethodName: "ModelType", Handler: modelTypeHandler},
		{MethodName: "Check", Handler: checkHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stamina/rpc.proto",
}

func initialStatesHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(InitialStatesRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*GeneratorServer).initialStates(ctx, req)
}

func loadHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(LoadRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*GeneratorServer).load(ctx, req)
}

func expandHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(ExpandRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*GeneratorServer).expand(ctx, req)
}

func variableInfoHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(VariableInfoRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*GeneratorServer).variableInfo(ctx, req)
}

func modelTypeHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(ModelTypeRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*GeneratorServer).modelType(ctx, req)
}

func checkHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(CheckRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*GeneratorServer).check(ctx, req)
}

// Register attaches the collaborator service to a *grpc.Server.
func Register(gs *grpc.Server, gen genmodel.Generator[string], sv solver.Solver) {
	gs.RegisterService(&ServiceDesc, NewGeneratorServer(gen, sv))
}
