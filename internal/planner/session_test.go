package planner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"fileorg/internal/metadata"
	"fileorg/internal/services"
)

type fakeCapability struct {
	hardlink, symlink bool
	devices           map[string]bool
}

func (f fakeCapability) SupportsHardlink() bool { return f.hardlink }
func (f fakeCapability) SupportsSymlink() bool { return f.symlink }
func (f fakeCapability) SameDevice(path string) bool {
	if f.devices == nil {
		return true
	}
	return f.devices[path]
}

func record(source, folder, name string) metadata.FileRecord {
	return metadata.FileRecord{SourcePath: source, Foldername: folder, Filename: name}
}

func TestPlanResolvesCollisionsInOrder(t *testing.T) {
	session := NewSession(Options{Root: "/out"})
	plan, err := session.PlanRecords([]metadata.FileRecord{
		record("/in/a.jpg", "nature", "rose"),
		record("/in/b.jpg", "nature", "rose"),
		record("/in/c.jpg", "nature", "rose"),
		record("/in/d.png", "nature", "rose"),
	})
	if err != nil {
		t.Fatalf("PlanRecords: %v", err)
	}
	want := []string{
		"/out/nature/rose.jpg",
		"/out/nature/rose_1.jpg",
		"/out/nature/rose_2.jpg",
		"/out/nature/rose.png",
	}
	if plan.Len() != len(want) {
		t.Fatalf("expected %d operations, got %d", len(want), plan.Len())
	}
	for i, op := range plan.Operations {
		if op.Destination != want[i] {
			t.Fatalf("op %d destination = %q, want %q", i, op.Destination, want[i])
		}
		if op.Action != ActionCopy {
			t.Fatalf("op %d action = %v, want copy", i, op.Action)
		}
	}
}

func TestPlanDestinationsDistinctAcrossCalls(t *testing.T) {
	session := NewSession(Options{Root: "/out"})
	first, _ := session.PlanRecords([]metadata.FileRecord{record("/in/a.txt", "docs", "memo")})
	second, _ := session.PlanRecords([]metadata.FileRecord{record("/in/b.txt", "docs", "memo")})
	if first.Operations[0].Destination == second.Operations[0].Destination {
		t.Fatalf("destination reused across calls: %q", first.Operations[0].Destination)
	}
	if second.Operations[0].Destination != "/out/docs/memo_1.txt" {
		t.Fatalf("unexpected second destination %q", second.Operations[0].Destination)
	}
}

func TestPlanSkipsProcessedSources(t *testing.T) {
	session := NewSession(Options{Root: "/out"})
	records := []metadata.FileRecord{record("/in/a.jpg", "nature", "rose")}
	if _, err := session.PlanRecords(records); err != nil {
		t.Fatalf("PlanRecords: %v", err)
	}
	again, err := session.PlanRecords(records)
	if err != nil {
		t.Fatalf("PlanRecords: %v", err)
	}
	if again.Len() != 0 {
		t.Fatalf("expected no operations for processed source, got %+v", again.Operations)
	}
	if len(again.Skipped) != 1 || again.Skipped[0] != "/in/a.jpg" {
		t.Fatalf("unexpected skipped list %v", again.Skipped)
	}

	seeded := NewSession(Options{Root: "/out"})
	seeded.MarkProcessed("/in/a.jpg")
	plan, _ := seeded.PlanRecords(append(records, record("/in/a.jpg", "x", "y")))
	if plan.Len() != 0 {
		t.Fatalf("seeded processed set ignored: %+v", plan.Operations)
	}
}

func TestPlanDuplicateSourceInSameBatch(t *testing.T) {
	session := NewSession(Options{Root: "/out"})
	plan, _ := session.PlanRecords([]metadata.FileRecord{
		record("/in/a.jpg", "nature", "rose"),
		record("/in/a.jpg", "other", "tulip"),
	})
	if plan.Len() != 1 {
		t.Fatalf("expected a single operation, got %d", plan.Len())
	}
}

func TestPlanCheckExistingAvoidsFilesOnDisk(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "nature"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"rose.jpg", "rose_1.jpg"} {
		if err := os.WriteFile(filepath.Join(root, "nature", name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	session := NewSession(Options{Root: root, CheckExisting: true})
	plan, err := session.PlanRecords([]metadata.FileRecord{record("/in/a.jpg", "nature", "rose")})
	if err != nil {
		t.Fatalf("PlanRecords: %v", err)
	}
	if got := plan.Operations[0].Destination; got != filepath.Join(root, "nature", "rose_2.jpg") {
		t.Fatalf("unexpected destination %q", got)
	}

	unchecked := NewSession(Options{Root: root})
	plan, _ = unchecked.PlanRecords([]metadata.FileRecord{record("/in/a.jpg", "nature", "rose")})
	if got := plan.Operations[0].Destination; got != filepath.Join(root, "nature", "rose.jpg") {
		t.Fatalf("unchecked session should ignore disk, got %q", got)
	}
}

func TestPlanCaseInsensitiveExtensionCollision(t *testing.T) {
	session := NewSession(Options{Root: "/out"})
	plan, _ := session.PlanRecords([]metadata.FileRecord{
		record("/in/a.JPG", "nature", "rose"),
		record("/in/b.jpg", "nature", "rose"),
	})
	if plan.Operations[1].Destination != "/out/nature/rose_1.jpg" {
		t.Fatalf("unexpected destination %q", plan.Operations[1].Destination)
	}
}

func TestChooseAction(t *testing.T) {
	tests := []struct {
		name       string
		link       LinkPreference
		capability Capability
		want       Action
	}{
		{"copy requested", LinkCopy, fakeCapability{hardlink: true, symlink: true}, ActionCopy},
		{"hardlink supported", LinkHardlink, fakeCapability{hardlink: true}, ActionHardlink},
		{"hardlink unsupported", LinkHardlink, fakeCapability{symlink: true}, ActionCopy},
		{"symlink supported", LinkSymlink, fakeCapability{hardlink: true, symlink: true}, ActionSymlink},
		{"auto prefers hardlink", LinkAuto, fakeCapability{hardlink: true, symlink: true}, ActionHardlink},
		{"auto falls back to symlink", LinkAuto, fakeCapability{symlink: true}, ActionSymlink},
		{"auto cross device", LinkAuto, fakeCapability{hardlink: true, symlink: true, devices: map[string]bool{}}, ActionSymlink},
		{"auto nothing supported", LinkAuto, fakeCapability{}, ActionCopy},
		{"nil capability", LinkAuto, nil, ActionCopy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSession(Options{Root: "/out", Link: tt.link, Capability: tt.capability})
			plan, err := session.Plan([]Placement{{Source: "/in/a.jpg", Dir: "x", Stem: "a"}})
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if got := plan.Operations[0].Action; got != tt.want {
				t.Fatalf("action = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanMixedDevicesPerEntry(t *testing.T) {
	capability := fakeCapability{hardlink: true, symlink: true, devices: map[string]bool{"/in/local.jpg": true}}
	session := NewSession(Options{Root: "/out", Link: LinkAuto, Capability: capability})
	plan, _ := session.Plan([]Placement{
		{Source: "/in/local.jpg", Dir: "a", Stem: "local"},
		{Source: "/mnt/usb/remote.jpg", Dir: "a", Stem: "remote"},
	})
	if plan.Operations[0].Action != ActionHardlink || plan.Operations[1].Action != ActionSymlink {
		t.Fatalf("unexpected actions: %v %v", plan.Operations[0].Action, plan.Operations[1].Action)
	}
	counts := plan.Counts()
	if counts[ActionHardlink] != 1 || counts[ActionSymlink] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestPlanRejectsEscapingFolders(t *testing.T) {
	session := NewSession(Options{Root: "/out"})
	for _, dir := range []string{"../etc", "/abs", "a/../../b"} {
		_, err := session.Plan([]Placement{{Source: "/in/" + dir, Dir: dir, Stem: "x"}})
		if err == nil {
			t.Fatalf("expected error for %q", dir)
		}
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected validation error for %q, got %v", dir, err)
		}
	}
	plan, err := session.Plan([]Placement{{Source: "/in/ok", Dir: "a/../b", Stem: "x"}})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Operations[0].Destination != "/out/b/x" {
		t.Fatalf("unexpected destination %q", plan.Operations[0].Destination)
	}
}

func TestPlanRejectedBatchLeavesSessionUntouched(t *testing.T) {
	session := NewSession(Options{Root: "/out"})
	_, err := session.Plan([]Placement{
		{Source: "/in/first.txt", Dir: "docs", Stem: "report"},
		{Source: "/in/second.txt", Dir: "../escape", Stem: "report"},
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if session.Processed("/in/first.txt") {
		t.Fatalf("first source marked processed after rejected batch")
	}
	plan, err := session.Plan([]Placement{{Source: "/in/first.txt", Dir: "docs", Stem: "report"}})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Operations) != 1 || plan.Operations[0].Destination != "/out/docs/report.txt" {
		t.Fatalf("unexpected plan %+v", plan.Operations)
	}
}

func TestPlanCallsDoNotInterleave(t *testing.T) {
	session := NewSession(Options{Root: "/out"})
	var wg sync.WaitGroup
	results := make([]*OperationPlan, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			plan, err := session.Plan([]Placement{
				{Source: fmt.Sprintf("/in/%d-a.txt", i), Dir: "same", Stem: "report"},
				{Source: fmt.Sprintf("/in/%d-b.txt", i), Dir: "same", Stem: "report"},
			})
			if err != nil {
				t.Errorf("Plan: %v", err)
				return
			}
			results[i] = plan
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, plan := range results {
		if plan == nil {
			t.Fatalf("missing plan")
		}
		first, second := plan.Operations[0].Destination, plan.Operations[1].Destination
		if suffixOf(second) != suffixOf(first)+1 {
			t.Fatalf("batch destinations not claimed together: %s, %s", first, second)
		}
		for _, op := range plan.Operations {
			if seen[op.Destination] {
				t.Fatalf("destination %s chosen twice", op.Destination)
			}
			seen[op.Destination] = true
		}
	}
}

func suffixOf(destination string) int {
	stem := strings.TrimSuffix(filepath.Base(destination), ".txt")
	_, n, found := strings.Cut(stem, "_")
	if !found {
		return 0
	}
	k, _ := strconv.Atoi(n)
	return k
}

func TestPlanIsDeterministic(t *testing.T) {
	placements := []Placement{
		{Source: "/in/1.jpg", Dir: "a", Stem: "x"},
		{Source: "/in/2.jpg", Dir: "a", Stem: "x"},
		{Source: "/in/3.txt", Dir: "b", Stem: "y"},
		{Source: "/in/4.jpg", Dir: "a", Stem: "x"},
	}
	var first []string
	for run := 0; run < 5; run++ {
		plan, _ := NewSession(Options{Root: "/out"}).Plan(placements)
		var got []string
		for _, op := range plan.Operations {
			got = append(got, op.Destination)
		}
		if run == 0 {
			first = got
			continue
		}
		if strings.Join(got, ",") != strings.Join(first, ",") {
			t.Fatalf("run %d differs: %v vs %v", run, got, first)
		}
	}
}

func TestModePlacements(t *testing.T) {
	mod := time.Date(2023, time.March, 9, 10, 0, 0, 0, time.UTC)
	date := DatePlacement("/in/IMG_1.JPG", mod)
	if date.Dir != filepath.Join("2023", "03") || date.Stem != "IMG_1" {
		t.Fatalf("unexpected date placement %+v", date)
	}
	tests := map[string]string{
		"/in/a.png":  "images",
		"/in/b.md":   "texts",
		"/in/c.pdf":  "pdfs",
		"/in/d.docx": "docx",
		"/in/e.zip":  "others",
	}
	for source, want := range tests {
		if got := TypePlacement(source); got.Dir != want {
			t.Fatalf("TypePlacement(%q).Dir = %q, want %q", source, got.Dir, want)
		}
	}

	session := NewSession(Options{Root: "/out"})
	plan, _ := session.Plan([]Placement{date, DatePlacement("/other/IMG_1.JPG", mod)})
	if plan.Operations[1].Destination != "/out/2023/03/IMG_1_1.JPG" {
		t.Fatalf("unexpected date collision destination %q", plan.Operations[1].Destination)
	}
}

func TestParseLinkPreference(t *testing.T) {
	if pref, err := ParseLinkPreference(" Hardlink "); err != nil || pref != LinkHardlink {
		t.Fatalf("unexpected result %q %v", pref, err)
	}
	if pref, err := ParseLinkPreference(""); err != nil || pref != LinkAuto {
		t.Fatalf("expected auto default, got %q %v", pref, err)
	}
	if _, err := ParseLinkPreference("move"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
