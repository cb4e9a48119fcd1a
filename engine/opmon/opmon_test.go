package opmon

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bmizerany/assert"
)

func TestOperation(t *testing.T) {
	Collect()
	for i := 0; i < 3; i++ {
		StartOperation("storage.save").Finish(time.Hour)
	}
	StartOperation("storage.load").Finish(time.Hour)

	stats := Collect()
	assert.Equal(t, 2, len(stats))
	assert.Equal(t, "storage.load", stats[0].Name)
	assert.Equal(t, uint64(3), stats[1].Count)
	assert.T(t, stats[1].MaxDuration >= stats[1].Avg(), "max should not be below average")
	assert.Equal(t, 0, len(Collect()))
}

func TestDump(t *testing.T) {
	StartOperation("codec.write").Finish(time.Hour)
	var buf bytes.Buffer
	Dump(&buf)
	assert.T(t, strings.Contains(buf.String(), "codec.write"), "dump should list the operation")
}
