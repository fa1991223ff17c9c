// Package validator checks a catalog content tree before it is published.
// It is a build-time gate: the browsing runtime never calls it.
package validator

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/a2companion/internal/catalog"
)

// IndexFile is the catalog index file name, expected at the tree root.
const IndexFile = "catalog_index.xml"

var (
	eventIDPattern = regexp.MustCompile(`^archero2\.event\.[a-z0-9_.-]+\.v\d+$`)
	taskIDPattern  = regexp.MustCompile(`^[a-z0-9_]+_tier_\d+$`)
	toolIDPattern  = regexp.MustCompile(`^archero2\.tool\.[a-z0-9_.-]+\.v\d+$`)
)

// Report summarizes a successful validation pass.
type Report struct {
	Files  int
	Events int
	Tasks  int
	Tools  int
}

// Option configures a validation run.
type Option func(*validation)

// WithLogger sets the logger used for per-file debug output.
func WithLogger(l *zap.Logger) Option {
	return func(v *validation) { v.logger = l }
}

// validation holds the identifier sets of one pass. Identifiers must be
// unique across the whole tree, whatever order files are visited in.
type validation struct {
	root   string
	logger *zap.Logger

	eventIDs map[string]string // id -> first path
	taskIDs  map[string]string
	toolIDs  map[string]string

	report Report
}

func newValidation(root string, opts []Option) *validation {
	v := &validation{
		root:     root,
		logger:   zap.NewNop(),
		eventIDs: make(map[string]string),
		taskIDs:  make(map[string]string),
		toolIDs:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run validates the catalog tree under root and stops at the first
// violation. Event and tool documents are recognized by their containing
// directory name ("events", "tools"); files elsewhere are only checked for
// well-formedness.
func Run(ctx context.Context, root string, opts ...Option) (*Report, error) {
	v := newValidation(root, opts)
	if err := v.validateIndex(); err != nil {
		return nil, err
	}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".xml" {
			return nil
		}
		return v.validateFile(p)
	})
	if err != nil {
		return nil, err
	}
	return &v.report, nil
}

func (v *validation) displayPath(p string) string {
	return filepath.ToSlash(p)
}

func (v *validation) readDocument(p string) (*catalog.Document, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, &catalog.ErrFetch{Path: v.displayPath(p), Err: err}
	}
	return catalog.Parse(v.displayPath(p), data)
}

func (v *validation) validateIndex() error {
	doc, err := v.readDocument(filepath.Join(v.root, IndexFile))
	if err != nil {
		return err
	}
	root, err := doc.Expect("catalog_index")
	if err != nil {
		return err
	}
	_, err = root.RequiredAttr("catalog_schema_version")
	return err
}

func (v *validation) validateFile(p string) error {
	doc, err := v.readDocument(p)
	if err != nil {
		return err
	}
	v.report.Files++

	if strings.HasSuffix(filepath.ToSlash(p), IndexFile) {
		return nil
	}

	rel, err := filepath.Rel(v.root, p)
	if err != nil {
		return fmt.Errorf("relative path for %s: %w", p, err)
	}
	switch classify(rel) {
	case kindEvent:
		v.logger.Debug("validating event document", zap.String("path", doc.Path))
		return v.validateEvent(doc)
	case kindTool:
		v.logger.Debug("validating tool document", zap.String("path", doc.Path))
		return v.validateTool(doc)
	default:
		v.logger.Debug("skipping unclassified document", zap.String("path", doc.Path))
		return nil
	}
}

type docKind int

const (
	kindOther docKind = iota
	kindEvent
	kindTool
)

// classify decides the document kind from the directories of rel alone.
// Content is never inspected, so a misfiled document is not validated.
func classify(rel string) docKind {
	dir := path.Dir(filepath.ToSlash(rel))
	for _, seg := range strings.Split(dir, "/") {
		switch seg {
		case "events":
			return kindEvent
		case "tools":
			return kindTool
		}
	}
	return kindOther
}

func (v *validation) claim(kind string, seen map[string]string, id, p string) error {
	if first, dup := seen[id]; dup {
		return &ErrDuplicateID{Kind: kind, ID: id, FirstPath: first, Path: p}
	}
	seen[id] = p
	return nil
}

func (v *validation) validateEvent(doc *catalog.Document) error {
	ev, err := doc.Expect("event")
	if err != nil {
		return err
	}

	eventID, err := ev.RequiredAttr("event_id")
	if err != nil {
		return err
	}
	if !eventIDPattern.MatchString(eventID) {
		return &ErrInvalidID{Path: doc.Path, Kind: "event_id", Value: eventID}
	}
	if err := v.claim("event_id", v.eventIDs, eventID, doc.Path); err != nil {
		return err
	}
	if _, err := ev.RequiredInt("event_version"); err != nil {
		return err
	}
	if _, err := ev.RequiredAttr("title"); err != nil {
		return err
	}
	v.report.Events++

	if tasks, ok := ev.FirstDescendant("tasks"); ok {
		for _, task := range tasks.Descendants("task") {
			if err := v.validateTask(doc.Path, task); err != nil {
				return err
			}
		}
	}

	// Every section below <guide> is checked, nested ones included.
	if guide, ok := ev.FirstDescendant("guide"); ok {
		for _, section := range guide.Descendants("section") {
			if err := requireAttrs(section, "section_id", "title"); err != nil {
				return err
			}
		}
	}

	if faq, ok := ev.FirstDescendant("faq"); ok {
		for _, item := range faq.Descendants("item") {
			if err := requireAttrs(item, "faq_id", "question"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *validation) validateTask(p string, task catalog.Node) error {
	taskID, err := task.RequiredAttr("task_id")
	if err != nil {
		return err
	}
	if !taskIDPattern.MatchString(taskID) {
		return &ErrInvalidID{Path: p, Kind: "task_id", Value: taskID}
	}
	if err := v.claim("task_id", v.taskIDs, taskID, p); err != nil {
		return err
	}

	if _, err := task.RequiredInt("display_order"); err != nil {
		return err
	}
	if err := requireAttrs(task, "requirement_action", "requirement_object", "requirement_scope"); err != nil {
		return err
	}
	if _, err := task.RequiredInt("requirement_target_value"); err != nil {
		return err
	}
	if _, err := task.RequiredAttr("reward_type"); err != nil {
		return err
	}
	if _, err := task.RequiredInt("reward_amount"); err != nil {
		return err
	}
	v.report.Tasks++
	return nil
}

func (v *validation) validateTool(doc *catalog.Document) error {
	tool, err := doc.Expect("tool")
	if err != nil {
		return err
	}

	toolID, err := tool.RequiredAttr("tool_id")
	if err != nil {
		return err
	}
	if !toolIDPattern.MatchString(toolID) {
		return &ErrInvalidID{Path: doc.Path, Kind: "tool_id", Value: toolID}
	}
	if err := v.claim("tool_id", v.toolIDs, toolID, doc.Path); err != nil {
		return err
	}
	if err := requireAttrs(tool, "tool_type", "title"); err != nil {
		return err
	}
	v.report.Tools++
	return nil
}

func requireAttrs(n catalog.Node, names ...string) error {
	for _, name := range names {
		if _, err := n.RequiredAttr(name); err != nil {
			return err
		}
	}
	return nil
}
