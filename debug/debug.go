package debug

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//
// Debug output is controled by KVMRDEBUG environment variable, which
// can be a list of labels (e.g., "MR;MR_MERGE").
//

const ENV = "KVMRDEBUG"

var (
	once   sync.Once
	labels map[Tselector]bool
	logger *zap.SugaredLogger
	name   = "kvmr"
)

func initLogger() {
	labels = debugLabels(os.Getenv(ENV))
	ec := zap.NewDevelopmentEncoderConfig()
	ec.TimeKey = "T"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr), zap.DebugLevel)
	logger = zap.New(core).Sugar()
}

func debugLabels(s string) map[Tselector]bool {
	m := make(map[Tselector]bool)
	if s == "" {
		return m
	}
	for _, l := range strings.Split(s, ";") {
		m[Tselector(l)] = true
	}
	return m
}

// SetName sets the name printed in front of every debug line.
func SetName(n string) {
	name = n
}

func WillBePrinted(label Tselector) bool {
	once.Do(initLogger)
	return label == ALWAYS || labels[label]
}

func DPrintf(label Tselector, format string, v ...interface{}) {
	if !WillBePrinted(label) {
		return
	}
	msg := fmt.Sprintf("%v %v %v", name, label, fmt.Sprintf(format, v...))
	if label == ERROR {
		logger.Error(msg)
		return
	}
	logger.Info(msg)
}

func DFatalf(format string, v ...interface{}) {
	once.Do(initLogger)
	// Get info for the caller.
	pc, file, line, ok := runtime.Caller(1)
	fnDetails := runtime.FuncForPC(pc)
	if ok && fnDetails != nil {
		logger.Fatalf("FATAL %v %v %v:%v %v", name, fnDetails.Name(), file, line, fmt.Sprintf(format, v...))
	} else {
		logger.Fatalf("FATAL %v (missing details) %v", name, fmt.Sprintf(format, v...))
	}
}

// Sync flushes buffered log output.
func Sync() {
	once.Do(initLogger)
	logger.Sync()
}
