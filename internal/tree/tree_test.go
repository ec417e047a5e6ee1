package tree

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"fileorg/internal/planner"
)

func TestSimulateRendersPlan(t *testing.T) {
	plan := &planner.OperationPlan{
		Root: "/out",
		Operations: []planner.Operation{
			{Source: "/in/a.jpg", Destination: "/out/nature/rose.jpg"},
			{Source: "/in/b.jpg", Destination: "/out/nature/rose_1.jpg"},
			{Source: "/in/c.txt", Destination: "/out/docs/2023/memo.txt"},
			{Source: "/in/d.pdf", Destination: "/out/docs/report.pdf"},
		},
	}
	got := Simulate(plan).String()
	want := strings.Join([]string{
		"/out/",
		"├── nature/",
		"│   ├── rose.jpg",
		"│   └── rose_1.jpg",
		"└── docs/",
		"    ├── 2023/",
		"    │   └── memo.txt",
		"    └── report.pdf",
		"",
	}, "\n")
	if got != want {
		t.Fatalf("unexpected render:\n%s\nwant:\n%s", got, want)
	}
}

func TestSimulateEmptyPlan(t *testing.T) {
	got := Simulate(&planner.OperationPlan{Root: "/out"}).String()
	if got != "/out/\n" {
		t.Fatalf("unexpected render %q", got)
	}
}

func TestSimulateDoesNotTouchFilesystem(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	plan := &planner.OperationPlan{
		Root:       root,
		Operations: []planner.Operation{{Source: "/in/a", Destination: filepath.Join(root, "x", "a")}},
	}
	_ = Simulate(plan)
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatalf("simulate created files, stat err=%v", err)
	}
}

func TestFromDirectoryMatchesSimulation(t *testing.T) {
	root := t.TempDir()
	files := []string{"nature/rose.jpg", "nature/rose_1.jpg", "docs/memo.txt"}
	plan := &planner.OperationPlan{Root: root}
	for _, rel := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		plan.Operations = append(plan.Operations, planner.Operation{Destination: path})
	}
	if err := os.WriteFile(filepath.Join(root, ".fileorg.lock"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	disk, err := FromDirectory(root)
	if err != nil {
		t.Fatalf("FromDirectory: %v", err)
	}
	if !reflect.DeepEqual(disk.Files(), Simulate(plan).Files()) {
		t.Fatalf("disk %v != simulated %v", disk.Files(), Simulate(plan).Files())
	}
	if !strings.Contains(disk.String(), "└── nature/") {
		t.Fatalf("expected lexical order with nature last:\n%s", disk.String())
	}
}

func TestFromDirectoryKeepsEmptyDirs(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}
	node, err := FromDirectory(root)
	if err != nil {
		t.Fatalf("FromDirectory: %v", err)
	}
	if len(node.Children()) != 1 || !node.Children()[0].Dir {
		t.Fatalf("expected one empty directory child, got %+v", node.Children())
	}
	if len(node.Files()) != 0 {
		t.Fatalf("expected no files, got %v", node.Files())
	}
}

func TestFromDirectoryErrors(t *testing.T) {
	if _, err := FromDirectory(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing root")
	}
	file := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := FromDirectory(file); err == nil {
		t.Fatal("expected error for file root")
	}
}
