package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Reason(t *testing.T) {
	t.Parallel()
	filter, err := NewFilter(DefaultReservedMarkers)
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
		want SkipReason
	}{
		{name: "plain statements", text: "    let x = 1;\n", want: SkipNone},
		{name: "errors marker", text: "    #[derive(Debug)]\n    pub enum E {\n        #errors\n    }\n", want: SkipReserved},
		{name: "preludes marker", text: "    pub mod prelude {\n        #preludes\n    }\n", want: SkipReserved},
		{name: "defuns marker", text: "    impl #name {\n        #defuns\n    }\n", want: SkipReserved},
		{name: "part_core marker with trailing spaces", text: "    #part_core   \n", want: SkipReserved},
		{name: "marker inside an expression", text: "    let e = vec![#errors];\n", want: SkipNone},
		{name: "longer identifier", text: "    #errors_list\n", want: SkipNone},
		{name: "marker without hash", text: "    errors\n", want: SkipNone},
		{name: "repetition close", text: "    #(\n        let _ = #x;\n    )*\n", want: SkipReserved},
		{name: "brace repetition close", text: "    #(\n        impl A for #t {\n    })*\n", want: SkipReserved},
		{name: "separated repetition close", text: "    #(\n        #field\n    ),*\n", want: SkipReserved},
		{name: "one or more repetition close", text: "    #(\n        #field\n    )+\n", want: SkipReserved},
		{name: "inline repetition", text: "    let v = [#(#items),*];\n", want: SkipNone},
		{name: "empty", text: "", want: SkipEmpty},
		{name: "blank lines only", text: "\n   \n", want: SkipNone},
		{name: "placeholder already present", text: "    let Δ = 1;\n", want: SkipPlaceholder},
		{name: "missing final newline", text: "    let x = 1;", want: SkipUnterminatedLn},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, filter.Reason(tt.text))
			assert.Equal(t, tt.want != SkipNone, filter.ShouldSkip(tt.text))
		})
	}
}

func TestNewFilter(t *testing.T) {
	t.Parallel()

	t.Run("custom markers replace the defaults", func(t *testing.T) {
		t.Parallel()
		filter, err := NewFilter([]string{"body"})
		require.NoError(t, err)
		assert.True(t, filter.ShouldSkip("    #body\n"))
		assert.False(t, filter.ShouldSkip("    #errors\n"))
		assert.True(t, filter.ShouldSkip("    )*\n"), "repetitions are always skipped")
	})

	t.Run("no markers", func(t *testing.T) {
		t.Parallel()
		filter, err := NewFilter(nil)
		require.NoError(t, err)
		assert.False(t, filter.ShouldSkip("    #errors\n"))
		assert.True(t, filter.ShouldSkip("    })*\n"))
	})

	t.Run("invalid marker", func(t *testing.T) {
		t.Parallel()
		_, err := NewFilter([]string{"errors", "part-core"})
		var ime *InvalidMarkerError
		require.ErrorAs(t, err, &ime)
		assert.Equal(t, "part-core", ime.Marker)
	})
}

func TestIsIdentifier(t *testing.T) {
	t.Parallel()
	assert.True(t, IsIdentifier("part_core"))
	assert.True(t, IsIdentifier("_x1"))
	assert.False(t, IsIdentifier("1x"))
	assert.False(t, IsIdentifier(""))
	assert.False(t, IsIdentifier("a-b"))
}
