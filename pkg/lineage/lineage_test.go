package lineage

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/session"
	"github.com/matzehuels/nodegraph/pkg/session/sessiontest"
)

func mustGraph(t *testing.T, doc *session.Document) *graph.Graph {
	t.Helper()
	g, err := graph.Build(doc)
	if err != nil {
		t.Fatalf("graph.Build() error = %v", err)
	}
	return g
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func TestBranch(t *testing.T) {
	tests := []struct {
		name string
		want *string
	}{
		{"root0", nil},
		{"root0_0", ptr("0")},
		{"root0_1_2", ptr("1")},
		{"root0_", nil},
		{"_x", ptr("x")},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Branch(tt.name)
			if deref(got) != deref(tt.want) {
				t.Errorf("Branch(%q) = %s, want %s", tt.name, deref(got), deref(tt.want))
			}
		})
	}
}

func ptr(s string) *string { return &s }

func TestAnnotate_EndToEnd(t *testing.T) {
	doc, err := session.Parse([]byte(`{
	  "nodes": {"0": {"name": "root0"}, "1": {"name": "root0_0"}},
	  "connections": [{"out": ["0", "output0"], "in": ["1", "input0"]}]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	m := Annotate(mustGraph(t, doc))

	got, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"root0":{"name":"root0","inputs":[],"outputs":[` +
		`{"connected_to":"root0_0","output_port":"output0","input_port":"input0"}],` +
		`"metadata":{"root":"root0","branch":null}},` +
		`"root0_0":{"name":"root0_0","inputs":[` +
		`{"connected_from":"root0","output_port":"output0","input_port":"input0"}],"outputs":[],` +
		`"metadata":{"root":"root0","branch":"0"}}}`
	if string(got) != want {
		t.Errorf("json =\n%s\nwant\n%s", got, want)
	}
}

func TestAnnotate_FirstRootWins(t *testing.T) {
	// r1 -> a -> shared, r2 -> shared: BFS from r1 runs first and claims shared.
	doc := sessiontest.New().
		Node("s", "shared").Node("r1", "r1").Node("a", "a").Node("r2", "r2").
		Link("r1", "a").Link("a", "s").Link("r2", "s").
		Doc()
	m := Annotate(mustGraph(t, doc))

	if got := m.Roots(); !slices.Equal(got, []string{"r1", "r2"}) {
		t.Errorf("Roots() = %v, want [r1 r2]", got)
	}
	for name, want := range map[string]string{"shared": "r1", "a": "r1", "r1": "r1", "r2": "r2"} {
		e, _ := m.Get(name)
		if deref(e.Metadata.Root) != want {
			t.Errorf("%s.root = %s, want %s", name, deref(e.Metadata.Root), want)
		}
	}
}

func TestAnnotate_UnreachedCycle(t *testing.T) {
	doc := sessiontest.New().
		Node("r", "r").Node("x", "x").Node("c1", "c1").Node("c2", "c2").
		Link("r", "x").Link("c1", "c2").Link("c2", "c1").
		Doc()
	m := Annotate(mustGraph(t, doc))

	if got := m.Unreached(); !slices.Equal(got, []string{"c1", "c2"}) {
		t.Errorf("Unreached() = %v, want [c1 c2]", got)
	}
	c1, _ := m.Get("c1")
	if c1.Metadata.Root != nil {
		t.Errorf("c1.root = %s, want null", *c1.Metadata.Root)
	}
	if len(c1.Inputs) != 1 || len(c1.Outputs) != 1 {
		t.Errorf("cycle members keep their neighbor lists: %+v", c1)
	}
}

func TestAnnotate_YAMLNulls(t *testing.T) {
	m := Annotate(mustGraph(t, sessiontest.Chain("root0", "root0_0")))

	out, err := yaml.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]struct {
		Name     string `yaml:"name"`
		Metadata struct {
			Root   *string `yaml:"root"`
			Branch *string `yaml:"branch"`
		} `yaml:"metadata"`
	}
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("yaml.Unmarshal: %v\n%s", err, out)
	}
	root := decoded["root0"]
	if root.Name != "root0" || deref(root.Metadata.Root) != "root0" || root.Metadata.Branch != nil {
		t.Errorf("root0 = %+v\n%s", root, out)
	}
	if deref(decoded["root0_0"].Metadata.Branch) != "0" {
		t.Errorf("root0_0 branch wrong:\n%s", out)
	}
}

func TestLineageProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("roots own themselves and reachable nodes have a root", prop.ForAll(
		func(n int, ends []int) bool {
			g, err := graph.Build(sessiontest.Arbitrary(n, ends))
			if err != nil {
				return false
			}
			m := Annotate(g)

			for _, r := range g.Roots() {
				e, _ := m.Get(r.Name)
				if deref(e.Metadata.Root) != r.Name {
					return false
				}
			}
			// Any successor of an attributed node is attributed too.
			for _, e := range m.Entries() {
				if e.Metadata.Root == nil {
					continue
				}
				for _, o := range e.Outputs {
					next, _ := m.Get(o.ConnectedTo)
					if next.Metadata.Root == nil {
						return false
					}
				}
			}
			return m.Len() == g.NodeCount()
		},
		gen.IntRange(1, 12),
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.Property("annotation is deterministic", prop.ForAll(
		func(n int, ends []int) bool {
			doc := sessiontest.Arbitrary(n, ends)
			g1, err1 := graph.Build(doc)
			g2, err2 := graph.Build(doc)
			if err1 != nil || err2 != nil {
				return false
			}
			a, _ := json.Marshal(Annotate(g1))
			b, _ := json.Marshal(Annotate(g2))
			return string(a) == string(b)
		},
		gen.IntRange(1, 12),
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}
