package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTasks() []Task {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return []Task{
		{ID: "p1", Text: "plan trip", CreatedAt: base},
		{ID: "c1", Text: "book flight", CreatedAt: base.Add(time.Microsecond), ParentID: StringPtr("p1")},
		{ID: "c2", Text: "book hotel", CreatedAt: base.Add(2 * time.Microsecond), ParentID: StringPtr("p1")},
		{ID: "solo", Text: "water plants", CreatedAt: base.Add(time.Hour), Completed: true},
	}
}

func TestCheckParent(t *testing.T) {
	top := Task{ID: "p"}
	sub := Task{ID: "c", ParentID: StringPtr("p")}

	assert.NoError(t, CheckParent("p", &top))
	assert.ErrorIs(t, CheckParent("missing", nil), ErrValidation)
	assert.ErrorIs(t, CheckParent("c", &sub), ErrValidation)
}

func TestRemoveCascade_ParentRemovesChildren(t *testing.T) {
	kept, ok := RemoveCascade(sampleTasks(), "p1")
	require.True(t, ok)
	require.Len(t, kept, 1)
	assert.Equal(t, "solo", kept[0].ID)
}

func TestRemoveCascade_LeafRemovesOnlyItself(t *testing.T) {
	kept, ok := RemoveCascade(sampleTasks(), "c1")
	require.True(t, ok)
	require.Len(t, kept, 3)
	assert.Nil(t, FindByID(kept, "c1"))
	assert.NotNil(t, FindByID(kept, "c2"))
	assert.NotNil(t, FindByID(kept, "p1"))
}

func TestRemoveCascade_Missing(t *testing.T) {
	tasks := sampleTasks()
	kept, ok := RemoveCascade(tasks, "nope")
	assert.False(t, ok)
	assert.Len(t, kept, len(tasks))
}

func TestDescendants_Transitive(t *testing.T) {
	tasks := []Task{
		{ID: "a"},
		{ID: "b", ParentID: StringPtr("a")},
		{ID: "c", ParentID: StringPtr("b")},
	}
	assert.ElementsMatch(t, []string{"b", "c"}, Descendants(tasks, "a"))
}

func TestSortNewestFirst(t *testing.T) {
	tasks := sampleTasks()
	SortNewestFirst(tasks)
	assert.Equal(t, "solo", tasks[0].ID)
	assert.Equal(t, "p1", tasks[len(tasks)-1].ID)
}

func TestTree_GroupsChildrenUnderParent(t *testing.T) {
	tasks := sampleTasks()
	SortNewestFirst(tasks)

	nodes := Tree(tasks)
	require.Len(t, nodes, 2)
	assert.Equal(t, "solo", nodes[0].Task.ID)
	assert.Empty(t, nodes[0].Children)
	assert.Equal(t, "p1", nodes[1].Task.ID)
	require.Len(t, nodes[1].Children, 2)
	assert.Equal(t, "c1", nodes[1].Children[0].ID)
	assert.Equal(t, "c2", nodes[1].Children[1].ID)
}

func TestTree_OrphanPromoted(t *testing.T) {
	nodes := Tree([]Task{{ID: "x", ParentID: StringPtr("gone")}})
	require.Len(t, nodes, 1)
	assert.Equal(t, "x", nodes[0].Task.ID)
}

func TestSummarize_CountsTopLevelOnly(t *testing.T) {
	p := Summarize(sampleTasks())
	assert.Equal(t, Progress{Completed: 1, Total: 2}, p)
}
