package catalog

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIndex(t *testing.T) {
	l := testLoader(t, testCatalogFS())

	idx, err := l.LoadIndex(context.Background())
	require.NoError(t, err)

	want := &Index{
		SchemaVersion:         1,
		EventPaths:            []string{"catalog/events/gold_rush.xml", "catalog/events/wish_festival.xml"},
		ToolPaths:             []string{"catalog/tools/gem_calc.xml"},
		ProgressionModelPaths: []string{"catalog/progression/hero_levels.xml"},
		SharedPaths:           []string{"catalog/shared/items.xml", "catalog/shared/items_extra.xml"},
	}
	if diff := cmp.Diff(want, idx); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadIndex_DefaultsSchemaVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"catalog/catalog_index.xml": {Data: []byte(`<catalog_index/>`)},
	}
	idx, err := testLoader(t, fsys).LoadIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Num(1), idx.SchemaVersion)
	assert.Empty(t, idx.EventPaths)
}

func TestLoadIndex_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := testLoader(t, fstest.MapFS{}).LoadIndex(context.Background())
		var fetchErr *ErrFetch
		require.True(t, errors.As(err, &fetchErr), "got %v", err)
	})

	t.Run("wrong root", func(t *testing.T) {
		fsys := fstest.MapFS{"catalog/catalog_index.xml": {Data: []byte(`<index/>`)}}
		_, err := testLoader(t, fsys).LoadIndex(context.Background())
		var rootErr *ErrMissingRoot
		require.True(t, errors.As(err, &rootErr), "got %v", err)
	})

	t.Run("ref without path", func(t *testing.T) {
		fsys := fstest.MapFS{"catalog/catalog_index.xml": {Data: []byte(`<catalog_index><event_ref/></catalog_index>`)}}
		_, err := testLoader(t, fsys).LoadIndex(context.Background())
		var missing *ErrMissingAttribute
		require.True(t, errors.As(err, &missing), "got %v", err)
		assert.Equal(t, "path", missing.Attr)
	})

	t.Run("malformed", func(t *testing.T) {
		fsys := fstest.MapFS{"catalog/catalog_index.xml": {Data: []byte(`<catalog_index>`)}}
		_, err := testLoader(t, fsys).LoadIndex(context.Background())
		var parseErr *ErrParse
		require.True(t, errors.As(err, &parseErr), "got %v", err)
	})
}

func TestLoadEventSummaries(t *testing.T) {
	l := NewLoader(NewFSFetcher(testCatalogFS()), WithConcurrency(2))
	paths := []string{"catalog/events/wish_festival.xml", "catalog/events/gold_rush.xml"}

	got, err := l.LoadEventSummaries(context.Background(), paths)
	require.NoError(t, err)

	want := []EventSummary{
		{
			EventID:      "archero2.event.wish_festival.v2",
			EventVersion: 1,
			Title:        "Wish Festival",
		},
		{
			EventID:          "archero2.event.gold_rush.v1",
			EventVersion:     3,
			Title:            "Gold Rush",
			Subtitle:         "Weekend sprint",
			LastVerifiedDate: "2026-09-01",
			ActivityStatus:   "active",
			Sections:         SectionCounts{TaskCount: 3, GuideSectionCount: 3, FAQCount: 1, ToolCount: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summaries mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEventSummaries_MissingRootAbortsBatch(t *testing.T) {
	fsys := testCatalogFS()
	fsys["catalog/events/not_event.xml"] = &fstest.MapFile{Data: []byte(`<tool tool_id="x"/>`)}

	paths := []string{"catalog/events/gold_rush.xml", "catalog/events/not_event.xml"}
	got, err := testLoader(t, fsys).LoadEventSummaries(context.Background(), paths)
	require.Nil(t, got)
	var rootErr *ErrMissingRoot
	require.True(t, errors.As(err, &rootErr), "got %v", err)
	assert.Equal(t, "catalog/events/not_event.xml", rootErr.Path)
}

func TestLoadEventSummaries_MissingTitle(t *testing.T) {
	fsys := fstest.MapFS{
		"e.xml": {Data: []byte(`<event event_id="archero2.event.x.v1" event_version="1"/>`)},
	}
	_, err := testLoader(t, fsys).LoadEventSummaries(context.Background(), []string{"e.xml"})
	var missing *ErrMissingAttribute
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "title", missing.Attr)
}

func TestLoadEventByID(t *testing.T) {
	l := testLoader(t, testCatalogFS())
	idx, err := l.LoadIndex(context.Background())
	require.NoError(t, err)

	ev, err := l.LoadEventByID(context.Background(), idx.EventPaths, "archero2.event.gold_rush.v1")
	require.NoError(t, err)
	require.NotNil(t, ev)

	var orders []Num
	for _, task := range ev.Tasks {
		orders = append(orders, task.DisplayOrder)
	}
	assert.Equal(t, []Num{10, 20, 30}, orders)
	assert.Equal(t, "gold_rush_tier_1", ev.Tasks[0].TaskID)
	assert.Equal(t, Requirement{Action: "collect", Object: "gold", Scope: "event", TargetValue: 5}, ev.Tasks[0].Requirement)
	assert.Equal(t, Reward{Type: "gems", Amount: 50}, ev.Tasks[0].Reward)
	assert.Equal(t, 3, ev.Sections.TaskCount)

	wantGuide := []GuideSection{
		{
			SectionID: "basics",
			Title:     "Basics",
			Body:      "A\n\nB",
			Subsections: []GuideSection{
				{SectionID: "basics_more", Title: "More", Body: "Nested body"},
			},
		},
		{SectionID: "tips", Title: "Tips", Body: "Direct text only"},
	}
	if diff := cmp.Diff(wantGuide, ev.GuideSections); diff != "" {
		t.Errorf("guide mismatch (-want +got):\n%s", diff)
	}

	wantFAQ := []FAQItem{{
		FAQID:    "q1",
		Question: "When does it end?",
		Answer:   "Sunday.\n\nMidnight UTC.",
		Tags:     []string{"schedule", "timing"},
	}}
	if diff := cmp.Diff(wantFAQ, ev.FAQItems); diff != "" {
		t.Errorf("faq mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"archero2.tool.gem_calc.v1"}, ev.ToolRefs)
	assert.Equal(t, map[string]RewardAsset{"gems": {Label: "Gems", Icon: "icons/gem.png"}}, ev.Assets)

	task, ok := ev.Task("gold_rush_tier_3")
	require.True(t, ok)
	assert.Equal(t, Num(3), task.Requirement.TargetValue)
}

func TestLoadEventByID_NotFound(t *testing.T) {
	l := testLoader(t, testCatalogFS())
	ev, err := l.LoadEventByID(context.Background(),
		[]string{"catalog/events/gold_rush.xml"}, "archero2.event.nope.v1")
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestLoadEventByID_FirstMatchWins(t *testing.T) {
	fsys := fstest.MapFS{
		"a.xml":    {Data: []byte(`<event event_id="archero2.event.dup.v1" event_version="1" title="First"/>`)},
		"b.xml":    {Data: []byte(`<event event_id="archero2.event.dup.v1" event_version="1" title="Second"/>`)},
		"tool.xml": {Data: []byte(`<tool/>`)},
	}
	f := newCountingFetcher(NewFSFetcher(fsys))
	l := NewLoader(f)

	ev, err := l.LoadEventByID(context.Background(), []string{"tool.xml", "a.xml", "b.xml"}, "archero2.event.dup.v1")
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "First", ev.Title)
	assert.Equal(t, 0, f.count("b.xml"), "later duplicates must not be fetched")
}

func TestLoadEventByID_SubsectionErrorNamesParent(t *testing.T) {
	fsys := fstest.MapFS{
		"e.xml": {Data: []byte(`<event event_id="archero2.event.x.v1" event_version="1" title="X">
			<guide><section section_id="top" title="Top"><section section_id="inner"/></section></guide>
		</event>`)},
	}
	_, err := testLoader(t, fsys).LoadEventByID(context.Background(), []string{"e.xml"}, "archero2.event.x.v1")
	var missing *ErrMissingAttribute
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "title", missing.Attr)
	assert.Contains(t, err.Error(), "section top")
}

func TestLoadEventByID_DecimalDisplayOrderKept(t *testing.T) {
	fsys := fstest.MapFS{
		"e.xml": {Data: []byte(`<event event_id="archero2.event.x.v1" event_version="1" title="X"><tasks>
			<task task_id="x_tier_2" display_order="1.5" requirement_action="a" requirement_object="o"
			      requirement_scope="s" requirement_target_value="1" reward_type="gems" reward_amount="1"/>
			<task task_id="x_tier_1" display_order="1" requirement_action="a" requirement_object="o"
			      requirement_scope="s" requirement_target_value="1" reward_type="gems" reward_amount="1"/>
		</tasks></event>`)},
	}
	ev, err := testLoader(t, fsys).LoadEventByID(context.Background(), []string{"e.xml"}, "archero2.event.x.v1")
	require.NoError(t, err)
	require.Len(t, ev.Tasks, 2)
	assert.Equal(t, Num(1), ev.Tasks[0].DisplayOrder)
	assert.Equal(t, Num(1.5), ev.Tasks[1].DisplayOrder)
}

func TestLoadTools(t *testing.T) {
	tools, err := testLoader(t, testCatalogFS()).LoadTools(context.Background(), []string{"catalog/tools/gem_calc.xml"})
	require.NoError(t, err)
	assert.Equal(t, []Tool{{
		ToolID:   "archero2.tool.gem_calc.v1",
		ToolType: "calculator",
		Title:    "Gem Calculator",
		Body:     "Estimates gem income.",
	}}, tools)
}

func TestLoadSharedItems_LastWriteWins(t *testing.T) {
	items, err := testLoader(t, testCatalogFS()).LoadSharedItems(context.Background(),
		[]string{"catalog/shared/items.xml", "catalog/shared/items_extra.xml"})
	require.NoError(t, err)

	assert.Len(t, items, 3)
	assert.Equal(t, SharedItem{Type: "gold_key", Label: "Golden Key", Icon: "icons/key.png"}, items["gold_key"])
	assert.Equal(t, SharedItem{Type: "gems", Label: "Gems", Icon: "icons/gems.png"}, items["gems"])
	assert.Equal(t, "Hero Scroll", items["scroll"].FallbackLabel)
}
