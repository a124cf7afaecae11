package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryamurray/roku-svelte-sub001/internal/ast"
)

func TestComponentNameFromFilename(t *testing.T) {
	assert.Equal(t, "VideoRow", ComponentName("video-row.svelte"))
	assert.Equal(t, "App", ComponentName("src/App.svelte"))
	assert.Equal(t, "MyWidget", ComponentName("my_widget.svelte"))
	assert.Equal(t, "Component", ComponentName(".svelte"))
}

const counterSource = `<script>
  import Badge from "./Badge.svelte";

  export let title = "Counter";
  let count = 0;
  $: doubled = count * 2;

  function increment() {
    count += 1;
  }
</script>

<group style="display: flex; gap: 20px">
  <label>Count: {count}</label>
  <button on:select={increment}>More</button>
  <Badge value={doubled} />
</group>
`

func TestParseScriptDeclarations(t *testing.T) {
	comp, perr := Parse(counterSource, "counter.svelte")
	require.Nil(t, perr)
	script := comp.Instance
	require.NotNil(t, script)

	require.Len(t, script.Imports, 1)
	assert.Equal(t, "Badge", script.Imports[0].Name)
	assert.Equal(t, "./Badge.svelte", script.Imports[0].Path)

	require.Len(t, script.Props, 1)
	assert.Equal(t, "title", script.Props[0].Name)
	assert.Equal(t, `"Counter"`, script.Props[0].Init.Text)

	require.Len(t, script.Vars, 1)
	assert.Equal(t, "count", script.Vars[0].Name)
	assert.Equal(t, "0", script.Vars[0].Init.Text)

	require.Len(t, script.Reactives, 1)
	assert.Equal(t, "doubled", script.Reactives[0].Target)
	assert.Equal(t, "count * 2", script.Reactives[0].Expr.Text)

	require.Len(t, script.Functions, 1)
	fn := script.Functions[0]
	assert.Equal(t, "increment", fn.Name)
	require.Len(t, fn.Body, 1)
	assign := fn.Body[0].(*ast.AssignStmt)
	assert.Equal(t, "count", assign.Target)
	assert.Equal(t, "+=", assign.Op)
	assert.Equal(t, "1", assign.Value.Text)
	assert.Empty(t, script.Bad)
}

func TestParseTemplateStructure(t *testing.T) {
	comp, perr := Parse(counterSource, "counter.svelte")
	require.Nil(t, perr)

	require.Len(t, comp.Fragment.Nodes, 1)
	group := comp.Fragment.Nodes[0].(*ast.Element)
	assert.Equal(t, "group", group.Tag)
	assert.Equal(t, "display: flex; gap: 20px", group.StyleRaw)
	require.Len(t, group.Children, 3)

	label := group.Children[0].(*ast.Element)
	assert.Equal(t, "label", label.Tag)
	require.Len(t, label.Children, 2)
	text := label.Children[0].(*ast.Text)
	assert.Equal(t, "Count: ", text.Text)
	mustache := label.Children[1].(*ast.Mustache)
	assert.Equal(t, "count", mustache.Expr.Text)

	button := group.Children[1].(*ast.Element)
	require.Len(t, button.Events, 1)
	assert.Equal(t, "select", button.Events[0].Event)
	assert.Equal(t, "increment", button.Events[0].Handler)
	assert.False(t, button.Events[0].Inline)

	// The HTML parser lowercases tags; original casing is recovered.
	badge := group.Children[2].(*ast.Element)
	assert.Equal(t, "Badge", badge.Tag)
	require.Len(t, badge.Attrs, 1)
	assert.Equal(t, "value", badge.Attrs[0].Name)
	require.NotNil(t, badge.Attrs[0].Expr)
	assert.Equal(t, "doubled", badge.Attrs[0].Expr.Text)
}

func TestParseSelfClosingKeepsSiblings(t *testing.T) {
	src := `<group>
  <poster />
  <label>after</label>
</group>`
	comp, perr := Parse(src, "app.svelte")
	require.Nil(t, perr)
	group := comp.Fragment.Nodes[0].(*ast.Element)
	// Without expansion the HTML5 parser would nest the label inside the
	// poster.
	require.Len(t, group.Children, 2)
	assert.Equal(t, "poster", group.Children[0].(*ast.Element).Tag)
	assert.Equal(t, "label", group.Children[1].(*ast.Element).Tag)
}

func TestParseEachBlock(t *testing.T) {
	src := `<script>
  let items = [1, 2, 3];
</script>

{#each items as item}
  <label>{item}</label>
{/each}
`
	comp, perr := Parse(src, "list.svelte")
	require.Nil(t, perr)
	require.Len(t, comp.Fragment.Nodes, 1)
	each := comp.Fragment.Nodes[0].(*ast.EachBlock)
	assert.Equal(t, "items", each.Expr.Text)
	assert.Equal(t, "item", each.Item)
	assert.Empty(t, each.Index)
	assert.Nil(t, each.Key)
	require.Len(t, each.Children, 1)
}

func TestParseEachWithIndexAndKeyCaptured(t *testing.T) {
	src := `{#each items as item, i (item.id)}<label>{item}</label>{/each}`
	comp, perr := Parse(src, "list.svelte")
	require.Nil(t, perr)
	each := comp.Fragment.Nodes[0].(*ast.EachBlock)
	assert.Equal(t, "i", each.Index)
	require.NotNil(t, each.Key)
	assert.Equal(t, "item.id", each.Key.Text)
}

func TestParseAwaitBlock(t *testing.T) {
	src := `{#await promise}<label>waiting</label>{:then value}<label>done</label>{/await}`
	comp, perr := Parse(src, "app.svelte")
	require.Nil(t, perr)
	var found bool
	for _, n := range comp.Fragment.Nodes {
		if _, ok := n.(*ast.AwaitBlock); ok {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParseUnknownBlock(t *testing.T) {
	src := `{#if visible}<label>hi</label>{/if}`
	comp, perr := Parse(src, "app.svelte")
	require.Nil(t, perr)
	var blk *ast.UnknownBlock
	for _, n := range comp.Fragment.Nodes {
		if u, ok := n.(*ast.UnknownBlock); ok {
			blk = u
		}
	}
	require.NotNil(t, blk)
	assert.Equal(t, "if", blk.Name)
}

func TestParseUnsupportedStatementBecomesBad(t *testing.T) {
	src := `<script>
  let count = 0;
  await somePromise;
</script>
<label>hi</label>`
	comp, perr := Parse(src, "app.svelte")
	require.Nil(t, perr)
	require.Len(t, comp.Instance.Bad, 1)
	assert.Contains(t, comp.Instance.Bad[0].Text, "await")
}

func TestParseInlineHandlerMarked(t *testing.T) {
	src := `<button on:select={() => count++}>hi</button>`
	comp, perr := Parse(src, "app.svelte")
	require.Nil(t, perr)
	button := comp.Fragment.Nodes[0].(*ast.Element)
	require.Len(t, button.Events, 1)
	assert.True(t, button.Events[0].Inline)
}

func TestParseOffsetsPointIntoSource(t *testing.T) {
	comp, perr := Parse(counterSource, "counter.svelte")
	require.Nil(t, perr)
	group := comp.Fragment.Nodes[0].(*ast.Element)
	assert.Equal(t, "<group", counterSource[group.Start:group.Start+6])

	label := group.Children[0].(*ast.Element)
	mustache := label.Children[1].(*ast.Mustache)
	assert.Equal(t, "{count}", counterSource[mustache.Start:mustache.Start+7])
}

func TestParseIfElseChainInHandler(t *testing.T) {
	src := `<script>
  let n = 0;
  function step() {
    if (n > 10) {
      n = 0;
    } else if (n > 5) {
      n -= 1;
    } else {
      n += 1;
    }
  }
</script>
<label>{n}</label>`
	comp, perr := Parse(src, "app.svelte")
	require.Nil(t, perr)
	fn := comp.Instance.Functions[0]
	require.Len(t, fn.Body, 1)
	ifStmt := fn.Body[0].(*ast.IfStmt)
	require.Len(t, ifStmt.Branches, 2)
	assert.Equal(t, "n > 10", ifStmt.Branches[0].Cond.Text)
	assert.Equal(t, "n > 5", ifStmt.Branches[1].Cond.Text)
	require.Len(t, ifStmt.Else, 1)
}

func TestParseForOfLoop(t *testing.T) {
	src := `<script>
  let items = [1];
  let total = 0;
  function sum() {
    for (const x of items) {
      total += x;
    }
  }
</script>
<label>{total}</label>`
	comp, perr := Parse(src, "app.svelte")
	require.Nil(t, perr)
	fn := comp.Instance.Functions[0]
	loop := fn.Body[0].(*ast.ForEachStmt)
	assert.Equal(t, "x", loop.Var)
	assert.Equal(t, "items", loop.Iterable.Text)
	require.Len(t, loop.Body, 1)
}
