package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *cobra.Command {
	root := &cobra.Command{Use: "cravings", Short: "root"}
	root.PersistentFlags().Bool("output", false, "Output as JSON")
	AddHelpJSONFlag(root)

	search := &cobra.Command{Use: "search [prompt...]", Short: "search", Run: func(*cobra.Command, []string) {}}
	search.Flags().StringP("location", "l", "", "Locality")
	root.AddCommand(search)

	hidden := &cobra.Command{Use: "debug", Hidden: true, Run: func(*cobra.Command, []string) {}}
	root.AddCommand(hidden)
	return root
}

func TestCheckHelpJSON_NotRequested(t *testing.T) {
	var buf bytes.Buffer
	handled, err := CheckHelpJSON(testTree(), []string{"search", "thai"}, &buf)
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, buf.String())
}

func TestCheckHelpJSON_Subcommand(t *testing.T) {
	var buf bytes.Buffer
	handled, err := CheckHelpJSON(testTree(), []string{"search", "--help-json"}, &buf)
	require.NoError(t, err)
	require.True(t, handled)

	var schema CommandSchema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &schema))
	assert.Equal(t, "search", schema.Name)

	names := map[string]bool{}
	for _, f := range schema.Flags {
		names[f.Name] = f.Inherited
	}
	assert.Equal(t, map[string]bool{"location": false, "output": true}, names)
}

func TestCheckHelpJSON_RootSkipsHidden(t *testing.T) {
	var buf bytes.Buffer
	handled, err := CheckHelpJSON(testTree(), []string{"--help-json"}, &buf)
	require.NoError(t, err)
	require.True(t, handled)

	var schema CommandSchema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &schema))
	assert.Equal(t, "cravings", schema.Name)
	require.Len(t, schema.Subcommands, 1)
	assert.Equal(t, "search", schema.Subcommands[0].Name)
}
