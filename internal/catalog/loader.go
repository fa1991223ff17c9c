package catalog

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultIndexPath is where the catalog index lives relative to the content root.
const DefaultIndexPath = "catalog/catalog_index.xml"

// Loader turns catalog documents into typed records. It never retries and
// never caches; see Cache for session-level memoization.
type Loader struct {
	fetcher     Fetcher
	logger      *zap.Logger
	indexPath   string
	concurrency int
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) { ld.logger = l }
}

// WithIndexPath overrides DefaultIndexPath.
func WithIndexPath(p string) Option {
	return func(ld *Loader) { ld.indexPath = p }
}

// WithConcurrency bounds the number of documents fetched at once by batch
// loads. Values below 1 mean one at a time.
func WithConcurrency(n int) Option {
	return func(ld *Loader) { ld.concurrency = n }
}

// NewLoader creates a Loader reading through f.
func NewLoader(f Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher:     f,
		logger:      zap.NewNop(),
		indexPath:   DefaultIndexPath,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.concurrency < 1 {
		l.concurrency = 1
	}
	return l
}

func (l *Loader) fetchDocument(ctx context.Context, p string) (*Document, error) {
	data, err := l.fetcher.Fetch(ctx, p)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("fetched catalog document", zap.String("path", p), zap.Int("bytes", len(data)))
	return Parse(p, data)
}

// LoadIndex fetches and parses the catalog index.
func (l *Loader) LoadIndex(ctx context.Context) (*Index, error) {
	doc, err := l.fetchDocument(ctx, l.indexPath)
	if err != nil {
		return nil, err
	}
	root, err := doc.Expect("catalog_index")
	if err != nil {
		return nil, err
	}

	version, err := root.OptionalInt("catalog_schema_version", 1)
	if err != nil {
		return nil, err
	}

	idx := &Index{SchemaVersion: version}
	refs := []struct {
		tag string
		out *[]string
	}{
		{"event_ref", &idx.EventPaths},
		{"tool_ref", &idx.ToolPaths},
		{"progression_model_ref", &idx.ProgressionModelPaths},
		{"shared_ref", &idx.SharedPaths},
	}
	for _, ref := range refs {
		paths := []string{}
		for _, n := range root.Descendants(ref.tag) {
			p, err := n.RequiredAttr("path")
			if err != nil {
				return nil, err
			}
			paths = append(paths, p)
		}
		*ref.out = paths
	}

	l.logger.Debug("loaded catalog index",
		zap.Int("events", len(idx.EventPaths)),
		zap.Int("tools", len(idx.ToolPaths)),
		zap.Int("shared", len(idx.SharedPaths)))
	return idx, nil
}

// LoadEventSummaries loads the list view of every event path. Documents are
// fetched concurrently but the result keeps the order of paths. The first
// failure aborts the whole batch.
func (l *Loader) LoadEventSummaries(ctx context.Context, paths []string) ([]EventSummary, error) {
	out := make([]EventSummary, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, p := range paths {
		g.Go(func() error {
			doc, err := l.fetchDocument(gctx, p)
			if err != nil {
				return err
			}
			root, err := doc.Expect("event")
			if err != nil {
				return err
			}
			s, err := parseSummary(root)
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadEventByID fetches event documents in order until one has the given
// event_id and returns its full detail. Documents without an <event> root
// are skipped. It returns (nil, nil) when no document matches.
func (l *Loader) LoadEventByID(ctx context.Context, paths []string, id string) (*Event, error) {
	for _, p := range paths {
		doc, err := l.fetchDocument(ctx, p)
		if err != nil {
			return nil, err
		}
		root := doc.Root()
		if root.Tag() != "event" {
			l.logger.Debug("skipping non-event document", zap.String("path", p))
			continue
		}
		if root.OptionalAttr("event_id") != id {
			continue
		}
		return parseEvent(root)
	}
	return nil, nil
}

// LoadTools loads every tool document in order.
func (l *Loader) LoadTools(ctx context.Context, paths []string) ([]Tool, error) {
	tools := make([]Tool, 0, len(paths))
	for _, p := range paths {
		doc, err := l.fetchDocument(ctx, p)
		if err != nil {
			return nil, err
		}
		root, err := doc.Expect("tool")
		if err != nil {
			return nil, err
		}
		r := fieldReader{n: root}
		t := Tool{
			ToolID:   r.str("tool_id"),
			ToolType: r.str("tool_type"),
			Title:    r.str("title"),
			Body:     root.ParagraphText(),
		}
		if r.err != nil {
			return nil, r.err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// LoadSharedItems merges every shared registry document into one map keyed
// by type code. Later documents overwrite earlier entries.
func (l *Loader) LoadSharedItems(ctx context.Context, paths []string) (map[string]SharedItem, error) {
	items := make(map[string]SharedItem)
	for _, p := range paths {
		doc, err := l.fetchDocument(ctx, p)
		if err != nil {
			return nil, err
		}
		for _, n := range doc.Root().Descendants("item") {
			typ, err := n.RequiredAttr("item_type")
			if err != nil {
				return nil, err
			}
			if _, dup := items[typ]; dup {
				l.logger.Debug("shared item overridden", zap.String("type", typ), zap.String("path", p))
			}
			items[typ] = SharedItem{
				Type:          typ,
				Label:         n.OptionalAttr("label"),
				Icon:          n.OptionalAttr("icon"),
				FallbackLabel: n.OptionalAttr("fallback_label"),
			}
		}
	}
	return items, nil
}

func parseSummary(root Node) (EventSummary, error) {
	r := fieldReader{n: root}
	s := EventSummary{
		EventID:          r.str("event_id"),
		EventVersion:     r.num("event_version"),
		Title:            r.str("title"),
		Subtitle:         root.OptionalAttr("subtitle"),
		LastVerifiedDate: root.OptionalAttr("last_verified_date"),
		Schedule:         root.OptionalAttr("schedule"),
		ActivityStatus:   root.OptionalAttr("activity_status"),
		Sections: SectionCounts{
			TaskCount:         root.CountDescendants("tasks", "task"),
			GuideSectionCount: root.CountDescendants("guide", "section"),
			FAQCount:          root.CountDescendants("faq", "item"),
			ToolCount:         root.CountDescendants("tools", "tool_ref"),
		},
	}
	if r.err != nil {
		return EventSummary{}, r.err
	}
	return s, nil
}

func parseEvent(root Node) (*Event, error) {
	summary, err := parseSummary(root)
	if err != nil {
		return nil, err
	}
	ev := &Event{
		EventSummary:  summary,
		Tasks:         []Task{},
		GuideSections: []GuideSection{},
		FAQItems:      []FAQItem{},
	}

	if tasks, ok := root.FirstDescendant("tasks"); ok {
		for _, n := range tasks.Descendants("task") {
			t, err := parseTask(n)
			if err != nil {
				return nil, err
			}
			ev.Tasks = append(ev.Tasks, t)
		}
	}
	slices.SortStableFunc(ev.Tasks, func(a, b Task) int {
		return cmp.Compare(a.DisplayOrder, b.DisplayOrder)
	})

	if guide, ok := root.FirstDescendant("guide"); ok {
		for _, n := range guide.Children("section") {
			s, err := parseGuideSection(n)
			if err != nil {
				return nil, err
			}
			ev.GuideSections = append(ev.GuideSections, s)
		}
	}

	if faq, ok := root.FirstDescendant("faq"); ok {
		for _, n := range faq.Children("item") {
			item, err := parseFAQItem(n)
			if err != nil {
				return nil, err
			}
			ev.FAQItems = append(ev.FAQItems, item)
		}
	}

	if tools, ok := root.FirstDescendant("tools"); ok {
		for _, n := range tools.Descendants("tool_ref") {
			id, err := n.RequiredAttr("tool_id")
			if err != nil {
				return nil, err
			}
			ev.ToolRefs = append(ev.ToolRefs, id)
		}
	}

	if assets, ok := root.FirstDescendant("assets"); ok {
		ev.Assets = make(map[string]RewardAsset)
		for _, n := range assets.Children("asset") {
			r := fieldReader{n: n}
			typ := r.str("reward_type")
			label := r.str("label")
			if r.err != nil {
				return nil, r.err
			}
			ev.Assets[typ] = RewardAsset{Label: label, Icon: n.OptionalAttr("icon")}
		}
	}

	ev.Sections.TaskCount = len(ev.Tasks)
	return ev, nil
}

func parseTask(n Node) (Task, error) {
	r := fieldReader{n: n}
	t := Task{
		TaskID:       r.str("task_id"),
		DisplayOrder: r.num("display_order"),
		Requirement: Requirement{
			Action:      r.str("requirement_action"),
			Object:      r.str("requirement_object"),
			Scope:       r.str("requirement_scope"),
			TargetValue: r.num("requirement_target_value"),
		},
		Reward: Reward{
			Type:   r.str("reward_type"),
			Amount: r.num("reward_amount"),
		},
	}
	if r.err != nil {
		return Task{}, r.err
	}
	return t, nil
}

// parseGuideSection builds the section tree rooted at n. The recursion
// follows document nesting, so it is finite and acyclic.
func parseGuideSection(n Node) (GuideSection, error) {
	r := fieldReader{n: n}
	s := GuideSection{
		SectionID: r.str("section_id"),
		Title:     r.str("title"),
		Body:      n.ParagraphText(),
	}
	if r.err != nil {
		return GuideSection{}, r.err
	}
	for _, child := range n.Children("section") {
		sub, err := parseGuideSection(child)
		if err != nil {
			return GuideSection{}, fmt.Errorf("section %s: %w", s.SectionID, err)
		}
		s.Subsections = append(s.Subsections, sub)
	}
	return s, nil
}

func parseFAQItem(n Node) (FAQItem, error) {
	r := fieldReader{n: n}
	item := FAQItem{
		FAQID:    r.str("faq_id"),
		Question: r.str("question"),
	}
	if r.err != nil {
		return FAQItem{}, r.err
	}
	if answer, ok := n.FirstDescendant("answer"); ok {
		item.Answer = answer.ParagraphText()
	}
	if raw := n.OptionalAttr("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				item.Tags = append(item.Tags, tag)
			}
		}
	}
	return item, nil
}
