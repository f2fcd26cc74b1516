package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/patchplan/pkg/cache"
	"github.com/matzehuels/patchplan/pkg/catalog"
	"github.com/matzehuels/patchplan/pkg/geom"
	"github.com/matzehuels/patchplan/pkg/pipeline"
	"github.com/matzehuels/patchplan/pkg/render"
	"github.com/matzehuels/patchplan/pkg/world"
)

const ironScenario = `
name = "iron"

[settings]
unit = "electric-mining-drill"
transporter = "transport-belt"
relay = "medium-electric-pole"

[[deposit]]
type = "iron-ore"
area = { min_x = 0, min_y = 0, max_x = 10, max_y = 10 }

[[obstacle]]
name = "tree"
class = "vegetation"
area = { min_x = 2, min_y = 1, max_x = 3, max_y = 2 }
`

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "iron.toml")
	if err := os.WriteFile(path, []byte(ironScenario), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.Execute()
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"text"}},
		{"svg", []string{"svg"}},
		{"text, json,,svg", []string{"text", "json", "svg"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "examples/iron.toml", "examples/iron"},
		{"out/plan.svg", "iron.toml", "out/plan"},
		{"out/plan.txt", "iron.toml", "out/plan"},
		{"out/plan.v2", "iron.toml", "out/plan.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestPlanOptsApply(t *testing.T) {
	c := New(io.Discard, LogInfo)
	cmd := c.planCommand()
	if err := cmd.ParseFlags([]string{"--density", "sparse", "--conservative", "--quota", "2", "--tail-exit"}); err != nil {
		t.Fatal(err)
	}

	opts := pipeline.Options{Unit: "burner-mining-drill", Flow: "north", Refresh: true}
	var po planOpts
	po.density, po.conservative, po.quota, po.tailExit = "sparse", true, 2, true
	po.flow = pipeline.DefaultFlow
	po.apply(cmd, &opts)

	if opts.Density != "sparse" || !opts.Conservative || opts.BoosterQuota != 2 || !opts.TailExit {
		t.Errorf("changed flags not applied: %+v", opts)
	}
	if opts.Flow != "north" || opts.Unit != "burner-mining-drill" {
		t.Errorf("unchanged flags overrode the scenario: flow %q unit %q", opts.Flow, opts.Unit)
	}
	if opts.Refresh {
		t.Error("Refresh should follow --refresh")
	}
}

func TestPlanCommand(t *testing.T) {
	scen := writeScenario(t)
	cacheDir := t.TempDir()
	out := filepath.Join(t.TempDir(), "plans", "iron")

	for i := 0; i < 2; i++ {
		if err := runCLI(t, "--cache", cacheDir, "plan", scen, "-f", "text,json", "-o", out, "-q"); err != nil {
			t.Fatalf("plan run %d: %v", i, err)
		}
	}

	text, err := os.ReadFile(out + ".txt")
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSuffix(string(text), "\n"), "\n"); len(lines) != 10 {
		t.Errorf("text plan has %d rows, want 10", len(lines))
	}
	if !bytes.Contains(text, []byte{byte(render.GlyphUnit)}) {
		t.Errorf("text plan has no units:\n%s", text)
	}

	data, err := os.ReadFile(out + ".json")
	if err != nil {
		t.Fatal(err)
	}
	var res struct {
		Stages []pipeline.StageReport `json:"stages"`
		Cache  struct {
			PlanHit bool `json:"plan_hit"`
		} `json:"cache"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decode json output: %v", err)
	}
	if len(res.Stages) != 4 || res.Stages[0].Stage != pipeline.StageUnits || res.Stages[0].Placed != 6 {
		t.Errorf("stages = %+v, want units first with 6 placed", res.Stages)
	}
	if !res.Cache.PlanHit {
		t.Error("second run should hit the plan cache")
	}

	fc, err := cache.NewFileCache(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	if entries, _, _ := fc.Stats(); entries != 1 {
		t.Errorf("cache holds %d plans, want 1", entries)
	}
}

func TestPlanCommandErrors(t *testing.T) {
	scen := writeScenario(t)
	tests := []struct {
		name string
		args []string
	}{
		{"missing scenario", []string{"plan", filepath.Join(t.TempDir(), "nope.toml")}},
		{"bad format", []string{"plan", scen, "-f", "png"}},
		{"bad density", []string{"plan", scen, "--density", "loose", "-q"}},
		{"unknown unit", []string{"plan", scen, "--unit", "pumpjack", "-q"}},
		{"remote cache", []string{"--cache", "memcached://x", "plan", scen, "-q"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runCLI(t, append([]string{"--cache", "none"}, tt.args...)...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCustomCatalogScope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	data := `
[[unit]]
name = "drill"
width = 3
height = 3
radius = 2.49

[[deposit]]
name = "iron-ore"
glyph = "i"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	c := New(io.Discard, LogInfo)
	c.catalogPath = path

	cat, scope, err := c.loadCatalog()
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Units) != 1 || len(scope) != catalogScopeLen {
		t.Errorf("catalog units %d scope %q", len(cat.Units), scope)
	}

	c.catalogPath = ""
	if cat, scope, _ := c.loadCatalog(); cat != catalog.Default() || scope != "" {
		t.Error("empty --catalog should select the built-in catalog without a scope")
	}
}

func TestCacheCommands(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plans")
	if err := runCLI(t, "--cache", dir, "cache", "stats"); err != nil {
		t.Fatalf("stats on missing dir: %v", err)
	}
	if err := runCLI(t, "--cache", dir, "plan", writeScenario(t), "-q"); err != nil {
		t.Fatal(err)
	}
	if err := runCLI(t, "--cache", dir, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if entries, _, _ := fc.Stats(); entries != 0 {
		t.Errorf("%d plans left after clear", entries)
	}
	if err := runCLI(t, "--cache", "redis://localhost:6379", "cache", "path"); err == nil {
		t.Error("cache path should reject remote locations")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KiB"},
		{3 << 20, "3.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestPrintCatalog(t *testing.T) {
	var buf bytes.Buffer
	printCatalog(&buf, catalog.Default())
	out := buf.String()
	for _, want := range []string{"Units", "electric-mining-drill", "3x3", "substation", "beacon", "uranium-ore", "legendary"} {
		if !strings.Contains(out, want) {
			t.Errorf("catalog listing missing %q", want)
		}
	}
}

func TestDash(t *testing.T) {
	if got := dash(""); got != "-" {
		t.Errorf("dash(\"\") = %q, want \"-\"", got)
	}
	if got := dash("beacon"); got != "beacon" {
		t.Errorf("dash(beacon) = %q", got)
	}
}

func TestPreviewModel(t *testing.T) {
	scene := render.Scene{
		Bounds: geom.Area{MaxX: 30, MaxY: 40},
		Markers: []world.Marker{
			{Name: "burner-mining-drill", Kind: world.KindUnit, Position: geom.Vec{X: 1, Y: 1}, Width: 2, Height: 2},
		},
	}
	m := newPreviewModel("iron", scene)
	if len(m.Rows) != 40 || m.gridWidth() != 30 {
		t.Fatalf("grid %dx%d, want 30x40", m.gridWidth(), len(m.Rows))
	}

	step := func(m PreviewModel, msg tea.Msg) PreviewModel {
		next, _ := m.Update(msg)
		return next.(PreviewModel)
	}

	m = step(m, tea.WindowSizeMsg{Width: 40, Height: 15})
	if m.Height != 10 {
		t.Errorf("height = %d, want 10", m.Height)
	}
	m = step(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Y != 0 {
		t.Errorf("scrolling up at the top moved to %d", m.Y)
	}
	m = step(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	if m.Y != 30 {
		t.Errorf("G scrolled to %d, want 30", m.Y)
	}
	m = step(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	if m.X != 0 || m.Y != 0 {
		t.Errorf("g moved to %d,%d", m.X, m.Y)
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}); cmd == nil {
		t.Error("q should quit")
	}
	if view := m.View(); !strings.Contains(view, "iron") || !strings.Contains(view, "burner-mining-drill") {
		t.Errorf("view lacks title or legend:\n%s", view)
	}
}
