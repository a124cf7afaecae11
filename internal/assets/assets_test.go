package assets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryamurray/roku-svelte-sub001/pkg/compiler"
)

func TestPlanLaysOutComponentTree(t *testing.T) {
	res := compiler.Result{
		XML:          "<xml/>",
		BrightScript: "sub init()\nend sub\n",
		AdditionalComponents: []compiler.GeneratedComponent{
			{Name: "AppItem1", XML: "<item/>", BrightScript: "' item"},
		},
		RequiresRuntime: true,
	}
	files := Plan("App", res)

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"components/App/App.xml",
		"components/App/App.brs",
		"components/App/AppItem1.xml",
		"components/App/AppItem1.brs",
		"source/rsv-runtime.brs",
	}, paths)
}

func TestPlanSkipsRuntimeWhenUnused(t *testing.T) {
	files := Plan("App", compiler.Result{XML: "<xml/>", BrightScript: "' brs"})
	for _, f := range files {
		assert.NotEqual(t, RuntimePath, f.Path)
	}
}

func TestSetDeduplicatesRuntime(t *testing.T) {
	var set Set
	set.Add(Plan("A", compiler.Result{XML: "a", BrightScript: "a", RequiresRuntime: true})...)
	set.Add(Plan("B", compiler.Result{XML: "b", BrightScript: "b", RequiresRuntime: true})...)

	count := 0
	for _, f := range set.All() {
		if f.Path == RuntimePath {
			count++
		}
	}
	assert.Equal(t, 1, count)
	require.Len(t, set.All(), 5)
}

func TestRuntimeCarriesHelpersAndPolyfills(t *testing.T) {
	for _, fn := range []string{
		"function rsv_str(",
		"function rsv_contentFromArray(",
		"function rsv_arrayIncludes(",
		"function rsv_arrayIndexOf(",
		"function rsv_arrayJoin(",
	} {
		assert.True(t, strings.Contains(RuntimeBRS, fn), fn)
	}
}
