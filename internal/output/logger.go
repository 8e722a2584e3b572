package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output file names, created in the output directory on every run.
const (
	LogFileName    = "logFile.txt"
	ReportFileName = "outfile.txt"
	VerifyFileName = "verify.txt"
)

// NewLogger returns a logger that writes timestamped entries to w and, when
// console is non-nil, mirrors them there. Both sinks are unbuffered.
func NewLogger(w io.Writer, console io.Writer, level zapcore.Level) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeCaller = nil
	enc := zapcore.NewConsoleEncoder(encCfg)

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(w), level)}
	if console != nil {
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.AddSync(console), level))
	}
	return zap.New(zapcore.NewTee(cores...))
}

// Streams holds the files of a run: the diagnostic log and the report.
type Streams struct {
	Dir    string
	Logger *zap.Logger
	Report *ReportWriter

	logFile    *os.File
	reportFile *os.File
}

// OpenLog creates dir if needed and truncates logFile.txt in it. The
// returned Streams has no Report; outfile.txt is left untouched.
func OpenLog(dir string, console io.Writer, level zapcore.Level) (*Streams, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	logFile, err := os.Create(filepath.Join(dir, LogFileName))
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return &Streams{
		Dir:     dir,
		Logger:  NewLogger(logFile, console, level),
		logFile: logFile,
	}, nil
}

// OpenStreams opens the log like OpenLog and also truncates outfile.txt.
// Log entries are mirrored to logConsole and report lines to reportConsole;
// either may be nil.
func OpenStreams(dir string, logConsole, reportConsole io.Writer, level zapcore.Level) (*Streams, error) {
	s, err := OpenLog(dir, logConsole, level)
	if err != nil {
		return nil, err
	}

	reportFile, err := os.Create(filepath.Join(dir, ReportFileName))
	if err != nil {
		s.logFile.Close()
		return nil, fmt.Errorf("create report file: %w", err)
	}
	s.Report = NewReportWriter(reportFile, reportConsole)
	s.reportFile = reportFile
	return s, nil
}

// Close flushes and closes the open files.
func (s *Streams) Close() error {
	_ = s.Logger.Sync()
	var firstErr error
	if s.Report != nil {
		if err := s.Report.Flush(); err != nil {
			firstErr = err
		}
		if err := s.reportFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := s.logFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
