package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInit_Level(t *testing.T) {
	t.Cleanup(func() { Logger = logrus.New() })

	Init("", "debug")
	assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())

	Init("", "loud")
	assert.Equal(t, logrus.InfoLevel, Logger.GetLevel())
}

func TestFor_TagsComponentAndAppName(t *testing.T) {
	t.Cleanup(func() { Logger = logrus.New() })

	Init("worklog", "info")
	var buf bytes.Buffer
	Logger.SetOutput(&buf)

	For("tracker").Info("loaded")

	out := buf.String()
	assert.Contains(t, out, "[worklog] loaded")
	assert.Contains(t, out, "component=tracker")
}
