package planner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"fileorg/internal/metadata"
	"fileorg/internal/services"
)

// Capability is the filesystem knowledge the planner needs to pick an
// action. linkcap.Capability satisfies it.
type Capability interface {
	SupportsHardlink() bool
	SupportsSymlink() bool
	SameDevice(path string) bool
}

type noLinks struct{}

func (noLinks) SupportsHardlink() bool { return false }
func (noLinks) SupportsSymlink() bool { return false }
func (noLinks) SameDevice(string) bool { return false }

// Options configures a planning session.
type Options struct {
	// Root is the output directory every destination is placed under.
	Root string
	// Link is the requested duplication strategy.
	Link LinkPreference
	// Capability describes Root's filesystem. Nil means copy only.
	Capability Capability
	// CheckExisting treats files already on disk as taken.
	CheckExisting bool
}

// Session holds the processed-source and chosen-destination sets for one
// organize pass. It is not meant for concurrent planning; the mutex only
// keeps a single writer on the sets at any time.
type Session struct {
	mu        sync.Mutex
	opts      Options
	processed map[string]struct{}
	chosen    map[string]struct{}
}

// NewSession starts a session with empty sets.
func NewSession(opts Options) *Session {
	if opts.Capability == nil {
		opts.Capability = noLinks{}
	}
	if opts.Link == "" {
		opts.Link = LinkCopy
	}
	opts.Root = filepath.Clean(opts.Root)
	return &Session{
		opts:      opts,
		processed: make(map[string]struct{}),
		chosen:    make(map[string]struct{}),
	}
}

// Root returns the output root.
func (s *Session) Root() string {
	return s.opts.Root
}

// MarkProcessed seeds the processed set, e.g. with sources handled by an
// earlier pass sharing this session.
func (s *Session) MarkProcessed(sources ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, src := range sources {
		s.processed[src] = struct{}{}
	}
}

// Processed reports whether source has been planned in this session.
func (s *Session) Processed(source string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.processed[source]
	return ok
}

// PlanRecords places each record in <root>/<foldername>/<filename><ext>.
func (s *Session) PlanRecords(records []metadata.FileRecord) (*OperationPlan, error) {
	placements := make([]Placement, 0, len(records))
	for _, record := range records {
		placements = append(placements, Placement{
			Source: record.SourcePath,
			Dir:    record.Foldername,
			Stem:   record.Filename,
		})
	}
	return s.Plan(placements)
}

// Plan resolves placements in input order. Sources already processed are
// skipped; colliding names get _1, _2, ... appended to the stem. Folders are
// checked before anything is claimed, so a rejected batch leaves the session
// unchanged.
func (s *Session) Plan(placements []Placement) (*OperationPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirs := make([]string, len(placements))
	for i, placement := range placements {
		if _, done := s.processed[placement.Source]; done {
			continue
		}
		dir, err := s.resolveDir(placement.Dir)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "plan", "resolve folder",
				fmt.Sprintf("unusable folder for %s", filepath.Base(placement.Source)), err)
		}
		dirs[i] = dir
	}

	plan := &OperationPlan{Root: s.opts.Root}
	for i, placement := range placements {
		if _, done := s.processed[placement.Source]; done {
			plan.Skipped = append(plan.Skipped, placement.Source)
			continue
		}
		s.processed[placement.Source] = struct{}{}

		stem := strings.TrimSpace(placement.Stem)
		if stem == "" {
			stem = strings.TrimSuffix(filepath.Base(placement.Source), filepath.Ext(placement.Source))
		}
		destination := s.claim(dirs[i], stem, filepath.Ext(placement.Source))
		plan.Operations = append(plan.Operations, Operation{
			Source:      placement.Source,
			Destination: destination,
			Action:      s.chooseAction(placement.Source),
		})
	}
	return plan, nil
}

func (s *Session) resolveDir(rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return s.opts.Root, nil
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("folder %q must be relative", rel)
	}
	cleaned := filepath.Clean(rel)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("folder %q escapes the output root", rel)
	}
	return filepath.Join(s.opts.Root, cleaned), nil
}

// claim picks the first free name among stem, stem_1, stem_2, ... and
// records it as chosen.
func (s *Session) claim(dir, stem, ext string) string {
	candidate := filepath.Join(dir, stem+ext)
	for k := 1; s.taken(candidate); k++ {
		candidate = filepath.Join(dir, stem+"_"+strconv.Itoa(k)+ext)
	}
	s.chosen[chosenKey(candidate)] = struct{}{}
	return candidate
}

func (s *Session) taken(path string) bool {
	if _, ok := s.chosen[chosenKey(path)]; ok {
		return true
	}
	if !s.opts.CheckExisting {
		return false
	}
	_, err := os.Lstat(path)
	if err == nil {
		return true
	}
	// Anything other than a clean "not found" is treated as occupied.
	return !errors.Is(err, fs.ErrNotExist)
}

// chosenKey folds case so names differing only in extension case do not
// collide on case-insensitive filesystems.
func chosenKey(path string) string {
	return strings.ToLower(path)
}

func (s *Session) chooseAction(source string) Action {
	link, capability := s.opts.Link, s.opts.Capability
	if link.wantsHardlink() && capability.SupportsHardlink() && capability.SameDevice(source) {
		return ActionHardlink
	}
	if link.wantsSymlink() && capability.SupportsSymlink() {
		return ActionSymlink
	}
	return ActionCopy
}
