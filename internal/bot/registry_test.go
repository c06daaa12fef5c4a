package bot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Descriptor{Name: "Roll"})

	desc, ok := reg.Lookup("roll")
	require.True(t, ok)
	require.Equal(t, "roll", desc.Name)

	desc, ok = reg.Lookup("ROLL")
	require.True(t, ok)
	require.Equal(t, "roll", desc.Name)
}

func TestRegistryListVisibleSkipsHidden(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Descriptor{Name: "flip"})
	reg.Register(Descriptor{Name: "slow_stats", Hidden: true})
	reg.Register(Descriptor{Name: "add"})

	visible := reg.ListVisible()
	require.Len(t, visible, 2)
	require.Equal(t, "add", visible[0].Name)
	require.Equal(t, "flip", visible[1].Name)

	require.Len(t, reg.All(), 3)
}

func TestValidateRepliesCatchesMissingHelp(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Descriptor{Name: "no_such_command", RequiresArgs: true})

	require.Error(t, ValidateReplies(reg))
}

func TestValidateRepliesPassesForBuiltins(t *testing.T) {
	reg := NewRegistry()
	commands := NewCommands(nil, nil, nil, nil, nil, "http://localhost")
	commands.Register(reg)

	require.NoError(t, ValidateReplies(reg))
}
