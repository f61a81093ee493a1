package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet_Overrides(t *testing.T) {
	info := Get("1.2.3", "abc1234")
	assert.Equal(t, Info{Version: "1.2.3", Commit: "abc1234"}, info)
}

func TestGet_Defaults(t *testing.T) {
	info := Get("", "")
	assert.Equal(t, version, info.Version)
	assert.NotEmpty(t, info.Commit)
	assert.LessOrEqual(t, len(info.Commit), 7)
}
