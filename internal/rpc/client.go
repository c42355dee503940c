package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/danielpatrickdp/stamina-go/internal/genmodel"
	"github.com/danielpatrickdp/stamina-go/internal/solver"
	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

const serviceName = "stamina.rpc.Collaborator"

func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// callOpt selects the JSON codec for one RPC, per grpc-go's
// content-subtype negotiation (appends "+json" to the request
// content-type so the server's codec registry resolves jsonCodec).
func callOpt() grpc.CallOption { return grpc.CallContentSubtype(codecName) }

// GeneratorClient is a remote genmodel.Generator[string] adapter: it
// forwards every collaborator call over a single gRPC connection to an
// out-of-process model service, using Invoke directly against
// hand-built message types rather than generated stubs.
type GeneratorClient struct {
	conn *grpc.ClientConn
}

// Dial connects to a generator service at addr.
func Dial(addr string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return conn, nil
}

// NewGeneratorClient wraps an established connection.
func NewGeneratorClient(conn *grpc.ClientConn) *GeneratorClient {
	return &GeneratorClient{conn: conn}
}

var _ genmodel.Generator[string] = (*GeneratorClient)(nil)

func (c *GeneratorClient) TotalStateSize() int { return 64 }

func (c *GeneratorClient) InitialStates(on genmodel.OnUnknown[string]) ([]stateindex.Ix, error) {
	var resp InitialStatesResponse
	if err := c.conn.Invoke(context.Background(), fullMethod("InitialStates"), &InitialStatesRequest{}, &resp, callOpt()); err != nil {
		return nil, fmt.Errorf("rpc InitialStates: %w", err)
	}
	out := make([]stateindex.Ix, 0, len(resp.PackedStates))
	for _, s := range resp.PackedStates {
		out = append(out, on(s))
	}
	return out, nil
}

func (c *GeneratorClient) Load(s string) error {
	var resp LoadResponse
	if err := c.conn.Invoke(context.Background(), fullMethod("Load"), &LoadRequest{PackedState: s}, &resp, callOpt()); err != nil {
		return fmt.Errorf("rpc Load: %w", err)
	}
	return nil
}

func (c *GeneratorClient) Expand(on genmodel.OnUnknown[string]) (genmodel.Behavior[string], error) {
	var resp ExpandResponse
	if err := c.conn.Invoke(context.Background(), fullMethod("Expand"), &ExpandRequest{}, &resp, callOpt()); err != nil {
		return genmodel.Behavior[string]{}, fmt.Errorf("rpc Expand: %w", err)
	}
	behavior := genmodel.Behavior[string]{Reward: resp.Reward}
	for _, c := range resp.Choices {
		var succs []genmodel.Successor[string]
		for _, s := range c.Successors {
			on(s.PackedState)
			succs = append(succs, genmodel.Successor[string]{State: s.PackedState, Rate: s.Rate})
		}
		behavior.Choices = append(behavior.Choices, genmodel.Choice[string]{Label: c.Label, Successors: succs})
	}
	return behavior, nil
}

func (c *GeneratorClient) VariableInfo() genmodel.VariableInfo {
	var resp VariableInfoResponse
	if err := c.conn.Invoke(context.Background(), fullMethod("VariableInfo"), &VariableInfoRequest{}, &resp, callOpt()); err != nil {
		return genmodel.VariableInfo{AbsorbingVarIndex: -1}
	}
	return genmodel.VariableInfo{
		AbsorbingVarIndex: resp.AbsorbingVarIndex,
		AbsorbingBitWidth: resp.AbsorbingBitWidth,
		TotalVars:         resp.TotalVars,
	}
}

// Label is answered locally: the remote side has no index map to
// consult, so the caller's own generator-side labeling (if any) must
// already be folded into "init"/"deadlock" before this adapter is used
// for finalize. Remote generators are intended for exploration, not
// finalize, in this reference wiring.
func (c *GeneratorClient) Label(idx *stateindex.Map[string], initials, deadlocks []stateindex.Ix) (genmodel.Labeling, error) {
	return genmodel.Labeling{"init": initials, "deadlock": deadlocks}, nil
}

func (c *GeneratorClient) RemapStateIDs(f func(stateindex.Ix) stateindex.Ix) error { return nil }

func (c *GeneratorClient) ModelType() genmodel.ModelType {
	var resp ModelTypeResponse
	if err := c.conn.Invoke(context.Background(), fullMethod("ModelType"), &ModelTypeRequest{}, &resp, callOpt()); err != nil {
		return genmodel.Unsupported
	}
	switch resp.ModelType {
	case "CTMC":
		return genmodel.CTMC
	case "DTMC":
		return genmodel.DTMC
	default:
		return genmodel.Unsupported
	}
}

// SolverClient is a remote solver.Solver adapter.
type SolverClient struct {
	conn *grpc.ClientConn
}

// NewSolverClient wraps an established connection.
func NewSolverClient(conn *grpc.ClientConn) *SolverClient {
	return &SolverClient{conn: conn}
}

var _ solver.Solver = (*SolverClient)(nil)

func (c *SolverClient) Check(ctmc *solver.CTMC, prop solver.Property) (float64, error) {
	req := &CheckRequest{
		TargetLabel: prop.TargetLabel,
		TimeBound:   prop.TimeBound,
		Labels:      make(map[string][]uint32, len(ctmc.Labels)),
	}
	for _, ix := range ctmc.Initial {
		req.Initial = append(req.Initial, uint32(ix))
	}
	for label, ixs := range ctmc.Labels {
		wire := make([]uint32, len(ixs))
		for i, ix := range ixs {
			wire[i] = uint32(ix)
		}
		req.Labels[label] = wire
	}
	req.Rows = make([][]EdgeWire, len(ctmc.Rows))
	for i, row := range ctmc.Rows {
		wireRow := make([]EdgeWire, len(row))
		for j, e := range row {
			wireRow[j] = EdgeWire{Target: uint32(e.Target), Rate: e.Rate}
		}
		req.Rows[i] = wireRow
	}

	var resp CheckResponse
	if err := c.conn.Invoke(context.Background(), fullMethod("Check"), req, &resp, callOpt()); err != nil {
		return 0, fmt.Errorf("rpc Check: %w", err)
	}
	return resp.Probability, nil
}
