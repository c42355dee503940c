package rpc

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/danielpatrickdp/stamina-go/internal/genmodel"
	"github.com/danielpatrickdp/stamina-go/internal/solver"
	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

// fakeGenerator is a minimal fixed two-state chain: s0 -> s1 at rate 2.
type fakeGenerator struct {
	loaded string
}

func (g *fakeGenerator) TotalStateSize() int { return 8 }

func (g *fakeGenerator) InitialStates(on genmodel.OnUnknown[string]) ([]stateindex.Ix, error) {
	return []stateindex.Ix{on("s0")}, nil
}

func (g *fakeGenerator) Load(s string) error { g.loaded = s; return nil }

func (g *fakeGenerator) Expand(on genmodel.OnUnknown[string]) (genmodel.Behavior[string], error) {
	if g.loaded != "s0" {
		return genmodel.Behavior[string]{}, nil
	}
	on("s1")
	return genmodel.Behavior[string]{
		Choices: []genmodel.Choice[string]{
			{Label: "a", Successors: []genmodel.Successor[string]{{State: "s1", Rate: 2}}},
		},
	}, nil
}

func (g *fakeGenerator) VariableInfo() genmodel.VariableInfo {
	return genmodel.VariableInfo{AbsorbingVarIndex: 1, AbsorbingBitWidth: 1, TotalVars: 2}
}

func (g *fakeGenerator) Label(idx *stateindex.Map[string], initials, deadlocks []stateindex.Ix) (genmodel.Labeling, error) {
	return genmodel.Labeling{"init": initials}, nil
}

func (g *fakeGenerator) RemapStateIDs(f func(stateindex.Ix) stateindex.Ix) error { return nil }

func (g *fakeGenerator) ModelType() genmodel.ModelType { return genmodel.CTMC }

type fakeSolver struct{}

func (fakeSolver) Check(ctmc *solver.CTMC, prop solver.Property) (float64, error) {
	return 0.75, nil
}

func dialBufconn(t *testing.T, gen genmodel.Generator[string], sv solver.Solver) (*grpc.ClientConn, func()) {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	gs := grpc.NewServer()
	Register(gs, gen, sv)
	go func() {
		_ = gs.Serve(lis)
	}()

	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	return conn, func() {
		conn.Close()
		gs.Stop()
	}
}

func TestGeneratorClientInitialStatesRoundTrips(t *testing.T) {
	conn, cleanup := dialBufconn(t, &fakeGenerator{}, fakeSolver{})
	defer cleanup()

	client := NewGeneratorClient(conn)
	var seen []string
	ixs, err := client.InitialStates(func(s string) stateindex.Ix {
		seen = append(seen, s)
		return stateindex.Ix(len(seen) - 1)
	})
	if err != nil {
		t.Fatalf("InitialStates: %v", err)
	}
	if len(ixs) != 1 || len(seen) != 1 || seen[0] != "s0" {
		t.Fatalf("expected single initial state s0, got ixs=%v seen=%v", ixs, seen)
	}
}

func TestGeneratorClientExpandRoundTrips(t *testing.T) {
	conn, cleanup := dialBufconn(t, &fakeGenerator{loaded: "s0"}, fakeSolver{})
	defer cleanup()

	client := NewGeneratorClient(conn)
	if err := client.Load("s0"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	behavior, err := client.Expand(func(s string) stateindex.Ix { return 0 })
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(behavior.Choices) != 1 || behavior.Choices[0].Successors[0].State != "s1" {
		t.Fatalf("expected single successor s1, got %+v", behavior)
	}
	if behavior.Choices[0].Successors[0].Rate != 2 {
		t.Fatalf("expected rate 2, got %v", behavior.Choices[0].Successors[0].Rate)
	}
}

func TestGeneratorClientModelTypeRoundTrips(t *testing.T) {
	conn, cleanup := dialBufconn(t, &fakeGenerator{}, fakeSolver{})
	defer cleanup()

	client := NewGeneratorClient(conn)
	if got := client.ModelType(); got != genmodel.CTMC {
		t.Fatalf("expected CTMC, got %v", got)
	}
}

func TestSolverClientCheckRoundTrips(t *testing.T) {
	conn, cleanup := dialBufconn(t, &fakeGenerator{}, fakeSolver{})
	defer cleanup()

	client := NewSolverClient(conn)
	ctmc := &solver.CTMC{
		Rows:    [][]solver.Edge{{{Target: 1, Rate: 2}}, nil},
		Initial: []stateindex.Ix{0},
		Labels:  map[string][]stateindex.Ix{"target": {1}},
	}
	prob, err := client.Check(ctmc, solver.Property{TargetLabel: "target"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if prob != 0.75 {
		t.Fatalf("expected 0.75, got %v", prob)
	}
}
