package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/types"
)

// genItem generates a dialogue item with a unique ID. System items are
// sometimes persona instructions, matching how real contexts look.
func genItem() *rapid.Generator[types.Item] {
	return rapid.Custom(func(t *rapid.T) types.Item {
		role := rapid.SampledFrom([]types.Role{
			types.RoleSystem,
			types.RoleUser,
			types.RoleAssistant,
			types.RoleTool,
		}).Draw(t, "role")
		content := rapid.StringMatching(`[a-zA-Z0-9 .,?]{0,60}`).Draw(t, "content")
		it := types.NewItem(role, content)
		if role == types.RoleSystem {
			it.Instruction = rapid.Bool().Draw(t, "instruction")
		}
		return it
	})
}

func genItems(maxLen int) *rapid.Generator[[]types.Item] {
	return rapid.SliceOfN(genItem(), 0, maxLen)
}

func TestProperty_Truncate_KeepsMostRecentSuffix(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		items := genItems(20).Draw(rt, "items")
		k := rapid.IntRange(0, 25).Draw(rt, "k")

		c := NewChatContext(items...)
		got := c.Truncate(k).Items()

		want := len(items)
		if k < want {
			want = k
		}
		require.Len(rt, got, want)

		// The kept items are exactly the suffix, order preserved.
		offset := len(items) - want
		for i, it := range got {
			assert.Equal(rt, items[offset+i].ID, it.ID)
		}

		// Pure: the source still holds everything.
		assert.Equal(rt, len(items), c.Len())
	})
}

func TestProperty_CopyExcludingInstructions_DropsOnlyInstructions(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		items := genItems(20).Draw(rt, "items")

		c := NewChatContext(items...)
		got := c.Copy(true).Items()

		var want []types.Item
		for _, it := range items {
			if !it.Instruction {
				want = append(want, it)
			}
		}

		require.Len(rt, got, len(want))
		for i, it := range got {
			assert.Equal(rt, want[i].ID, it.ID)
			assert.False(rt, it.Instruction)
		}
		assert.Equal(rt, len(items), c.Len())
	})
}

func TestProperty_MergeNew_NeverProducesDuplicateIDs(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := genItems(15).Draw(rt, "base")
		incoming := genItems(15).Draw(rt, "incoming")

		c := NewChatContext(base...)
		// Shared history: some of the incoming batch may already be present.
		if len(base) > 0 && rapid.Bool().Draw(rt, "overlap") {
			incoming = append(incoming, base[rapid.IntRange(0, len(base)-1).Draw(rt, "sharedIdx")])
		}

		added := c.MergeNew(incoming)

		assert.False(rt, c.HasDuplicateIDs())
		assert.Equal(rt, len(base)+added, c.Len())

		// Merging the same batch again adds nothing.
		assert.Equal(rt, 0, c.MergeNew(incoming))
		assert.False(rt, c.HasDuplicateIDs())
	})
}

// The entry-protocol composition: own context plus the previous agent's
// instruction-excluded, truncated history never yields duplicate IDs, and
// every carried item really came from the previous agent's recent history.
func TestProperty_EntryCarry_Composition(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		own := genItems(12).Draw(rt, "own")
		prevItems := genItems(12).Draw(rt, "prev")

		ownCtx := NewChatContext(own...)
		prevCtx := NewChatContext(prevItems...)

		working := ownCtx.Copy(false)
		carried := prevCtx.Copy(true).Truncate(DefaultCarryItems)
		added := working.MergeNew(carried.Items())

		assert.False(rt, working.HasDuplicateIDs())
		assert.LessOrEqual(rt, added, DefaultCarryItems)
		assert.Equal(rt, len(own)+added, working.Len())

		for _, it := range working.Items()[len(own):] {
			assert.True(rt, prevCtx.ContainsID(it.ID), "carried item must come from previous history")
			assert.False(rt, it.Instruction, "persona instructions never carry over")
		}
	})
}
