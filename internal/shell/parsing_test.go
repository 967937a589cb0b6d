package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSegments_SimpleCommand(t *testing.T) {
	segments := SplitSegments("echo hello")
	require.Len(t, segments, 1)
	assert.Equal(t, "echo hello", segments[0])
}

func TestSplitSegments_MultipleCommands(t *testing.T) {
	segments := SplitSegments("echo hello; pwd; exit")
	require.Len(t, segments, 3)
	assert.Equal(t, "echo hello", segments[0])
	assert.Equal(t, " pwd", segments[1])
	assert.Equal(t, " exit", segments[2])
}

func TestSplitSegments_EmptyInput(t *testing.T) {
	assert.Empty(t, SplitSegments(""))
}

func TestSplitSegments_WhitespaceOnly(t *testing.T) {
	assert.Empty(t, SplitSegments("   "))
}

func TestSplitSegments_SemicolonInsideQuotes(t *testing.T) {
	segments := SplitSegments(`echo "a;b"`)
	require.Len(t, segments, 1)
	assert.Equal(t, `echo "a;b"`, segments[0])
}

func TestParseSegment_SimpleCommand(t *testing.T) {
	pipeline, err := ParseSegment("echo hello")
	require.NoError(t, err)
	require.Len(t, pipeline.Commands, 1)
	assert.Equal(t, []string{"echo", "hello"}, pipeline.Commands[0].Argv)
}

func TestParseSegment_EnvAssignmentLooksLikeAWord(t *testing.T) {
	pipeline, err := ParseSegment("VAR=value")
	require.NoError(t, err)
	require.Len(t, pipeline.Commands, 1)
	assert.Equal(t, []string{"VAR=value"}, pipeline.Commands[0].Argv)
}

func TestParseSegment_MultipleArgs(t *testing.T) {
	pipeline, err := ParseSegment("echo hello world test")
	require.NoError(t, err)
	require.Len(t, pipeline.Commands, 1)
	assert.Equal(t, []string{"echo", "hello", "world", "test"}, pipeline.Commands[0].Argv)
}

func TestParseSegment_InputRedirection(t *testing.T) {
	pipeline, err := ParseSegment("cat < input.txt")
	require.NoError(t, err)
	require.Len(t, pipeline.Commands, 1)

	cmd := pipeline.Commands[0]
	assert.Equal(t, []string{"cat"}, cmd.Argv)
	require.Len(t, cmd.Redirs, 1)
	assert.Equal(t, RedirRead, cmd.Redirs[0].Kind)
	assert.Equal(t, 0, cmd.Redirs[0].TargetFD)
	assert.Equal(t, "input.txt", cmd.Redirs[0].Filename)
}

func TestParseSegment_OutputRedirectionTruncate(t *testing.T) {
	pipeline, err := ParseSegment("echo hello > output.txt")
	require.NoError(t, err)
	require.Len(t, pipeline.Commands, 1)

	cmd := pipeline.Commands[0]
	assert.Equal(t, []string{"echo", "hello"}, cmd.Argv)
	require.Len(t, cmd.Redirs, 1)
	assert.Equal(t, RedirWriteTruncate, cmd.Redirs[0].Kind)
	assert.Equal(t, 1, cmd.Redirs[0].TargetFD)
	assert.Equal(t, "output.txt", cmd.Redirs[0].Filename)
}

func TestParseSegment_OutputRedirectionAppend(t *testing.T) {
	pipeline, err := ParseSegment("echo hello >> output.txt")
	require.NoError(t, err)
	cmd := pipeline.Commands[0]
	require.Len(t, cmd.Redirs, 1)
	assert.Equal(t, RedirWriteAppend, cmd.Redirs[0].Kind)
	assert.Equal(t, "output.txt", cmd.Redirs[0].Filename)
}

func TestParseSegment_RedirectionFusedToPrecedingWord(t *testing.T) {
	pipeline, err := ParseSegment("echo>file.txt")
	require.NoError(t, err)
	require.Len(t, pipeline.Commands, 1)

	cmd := pipeline.Commands[0]
	assert.Equal(t, []string{"echo"}, cmd.Argv)
	require.Len(t, cmd.Redirs, 1)
	assert.Equal(t, RedirWriteTruncate, cmd.Redirs[0].Kind)
	assert.Equal(t, 1, cmd.Redirs[0].TargetFD)
	assert.Equal(t, "file.txt", cmd.Redirs[0].Filename)
}

func TestParseSegment_RedirectionFusedToWordEndingInDigit(t *testing.T) {
	// The trailing "2" in "cmd2" belongs to the word, not to the operator:
	// scanOperator only recognizes a leading fd digit-run at a token
	// boundary, so this redirects fd 1 (the operator's default), not fd 2.
	pipeline, err := ParseSegment("cmd2>err.log")
	require.NoError(t, err)
	require.Len(t, pipeline.Commands, 1)

	cmd := pipeline.Commands[0]
	assert.Equal(t, []string{"cmd2"}, cmd.Argv)
	require.Len(t, cmd.Redirs, 1)
	assert.Equal(t, RedirWriteTruncate, cmd.Redirs[0].Kind)
	assert.Equal(t, 1, cmd.Redirs[0].TargetFD)
	assert.Equal(t, "err.log", cmd.Redirs[0].Filename)
}

func TestParseSegment_FDDuplication(t *testing.T) {
	pipeline, err := ParseSegment("cmd 2>&1")
	require.NoError(t, err)
	cmd := pipeline.Commands[0]
	require.Len(t, cmd.Redirs, 1)
	assert.Equal(t, RedirDup, cmd.Redirs[0].Kind)
	assert.Equal(t, 2, cmd.Redirs[0].TargetFD)
	assert.Equal(t, 1, cmd.Redirs[0].SourceFD)
}

func TestParseSegment_SimplePipe(t *testing.T) {
	pipeline, err := ParseSegment("echo hello | cat")
	require.NoError(t, err)
	require.Len(t, pipeline.Commands, 2)
	assert.Equal(t, []string{"echo", "hello"}, pipeline.Commands[0].Argv)
	assert.Equal(t, []string{"cat"}, pipeline.Commands[1].Argv)
}

func TestParseSegment_MultiplePipes(t *testing.T) {
	pipeline, err := ParseSegment("echo hello | cat | wc file.txt")
	require.NoError(t, err)
	require.Len(t, pipeline.Commands, 3)
	assert.Equal(t, []string{"wc", "file.txt"}, pipeline.Commands[2].Argv)
}

func TestParseSegment_PipeWithRedirection(t *testing.T) {
	pipeline, err := ParseSegment("echo hello > file.txt | cat")
	require.NoError(t, err)
	require.Len(t, pipeline.Commands, 2)

	first := pipeline.Commands[0]
	require.Len(t, first.Redirs, 1)
	assert.Equal(t, "file.txt", first.Redirs[0].Filename)

	assert.Equal(t, []string{"cat"}, pipeline.Commands[1].Argv)
}

func TestParseSegment_DoubleQuotedArgument(t *testing.T) {
	pipeline, err := ParseSegment(`echo "hello"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "hello"}, pipeline.Commands[0].Argv)
}

func TestParseSegment_PipeInsideQuotesIsLiteral(t *testing.T) {
	pipeline, err := ParseSegment(`echo "a|b"`)
	require.NoError(t, err)
	require.Len(t, pipeline.Commands, 1)
	assert.Equal(t, []string{"echo", "a|b"}, pipeline.Commands[0].Argv)
}

func TestParseSegment_SingleQuotesAreLiteral(t *testing.T) {
	pipeline, err := ParseSegment(`echo 'a$b\c'`)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", `a$b\c`}, pipeline.Commands[0].Argv)
}

func TestParseSegment_UnterminatedQuoteErrors(t *testing.T) {
	_, err := ParseSegment(`echo "unterminated`)
	assert.Error(t, err)
}

func TestParseSegment_RedirectionWithNoFilenameErrors(t *testing.T) {
	_, err := ParseSegment("echo hello >")
	assert.Error(t, err)
}

func TestParseSegment_EmptyCommand(t *testing.T) {
	pipeline, err := ParseSegment("")
	require.NoError(t, err)
	require.Len(t, pipeline.Commands, 1)
	assert.True(t, pipeline.Commands[0].Empty())
}
