package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Debugw("profile selected", "joint", 0, "type", "trapezoidal")
	logger.Infof("total time %.2f", 1.1)

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	test.That(t, logs.FilterMessage("profile selected").Len(), test.ShouldEqual, 1)
	entry := logs.All()[0]
	test.That(t, entry.ContextMap()["type"], test.ShouldEqual, "trapezoidal")
	test.That(t, logs.All()[1].Message, test.ShouldEqual, "total time 1.10")
}

func TestSubloggerNaming(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("ptp").Sublogger("sampler")
	sub.Warn("hello")

	test.That(t, logs.Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[0].LoggerName, test.ShouldEqual, "ptp.sampler")
}

func TestSetLevel(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.SetLevel(zapcore.WarnLevel)
	test.That(t, logger.Level(), test.ShouldEqual, zapcore.WarnLevel)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Error("kept")
	test.That(t, logs.Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[0].Message, test.ShouldEqual, "kept")
}

func TestGlobal(t *testing.T) {
	orig := Global()
	defer ReplaceGlobal(orig)

	blank := NewBlankLogger("blank")
	ReplaceGlobal(blank)
	test.That(t, Global(), test.ShouldEqual, blank)
	Global().Info("goes nowhere")
	test.That(t, blank.Sync(), test.ShouldBeNil)
}
