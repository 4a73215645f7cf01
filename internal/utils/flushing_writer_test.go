package utils_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repomerge/internal/utils"
)

const testStreamedLineConstant = "Cloning into 'base_repo'...\n"

func TestFlushingWriterFlushesBufferedDestination(testInstance *testing.T) {
	destination := &bytes.Buffer{}
	bufferedDestination := bufio.NewWriterSize(destination, 4096)

	writer := utils.NewFlushingWriter(bufferedDestination)
	bytesWritten, writeError := writer.Write([]byte(testStreamedLineConstant))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, len(testStreamedLineConstant), bytesWritten)
	require.Equal(testInstance, testStreamedLineConstant, destination.String())

	require.Same(testInstance, writer, utils.NewFlushingWriter(writer))
	require.Nil(testInstance, utils.NewFlushingWriter(nil))
}
